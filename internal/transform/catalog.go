package transform

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.Rule = (*CatalogRule)(nil)

// CatalogRule turns a song file into one CatalogItem and one Creator. Only the
// first document is used; song files carry a single record.
type CatalogRule struct{}

func NewCatalogRule() *CatalogRule {
	return &CatalogRule{}
}

func (r *CatalogRule) Name() string { return pgetl.PassCatalog }

func (r *CatalogRule) Apply(_ context.Context, docs []pgetl.Document) (pgetl.RuleOutput, error) {
	if len(docs) == 0 {
		return pgetl.RuleOutput{}, fmt.Errorf("catalog file contains no records")
	}
	doc := docs[0]

	item := pgetl.CatalogItem{
		ItemID:      stringField(doc, "song_id"),
		Title:       stringField(doc, "title"),
		CreatorID:   stringField(doc, "artist_id"),
		ReleaseYear: intField(doc, "year"),
		Duration:    floatField(doc, "duration"),
	}
	creator := pgetl.Creator{
		CreatorID: stringField(doc, "artist_id"),
		Name:      stringField(doc, "artist_name"),
		Location:  stringField(doc, "artist_location"),
		Latitude:  floatField(doc, "artist_latitude"),
		Longitude: floatField(doc, "artist_longitude"),
	}

	return pgetl.RuleOutput{Records: []pgetl.Record{item, creator}}, nil
}
