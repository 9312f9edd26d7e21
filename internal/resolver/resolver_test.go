package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgetl/internal/logging"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

type fakeFetcher struct {
	rows  [][]any
	err   error
	query string
	args  []any
}

func (f *fakeFetcher) Fetch(_ context.Context, query string, args ...any) ([][]any, error) {
	f.query = query
	f.args = args
	return f.rows, f.err
}

func strPtr(s string) *string { return &s }

func TestResolve_Resolved(t *testing.T) {
	fetcher := &fakeFetcher{rows: [][]any{{"SOABC0000001", "ARXYZ"}}}
	r := New(fetcher, "Q", logging.NewNullLogger())

	length := 210.5
	res := r.Resolve(context.Background(), strPtr("Song A"), strPtr("Band X"), &length)

	assert.Equal(t, pgetl.Resolved, res.Status)
	require.NotNil(t, res.ItemID)
	require.NotNil(t, res.CreatorID)
	assert.Equal(t, "SOABC0000001", *res.ItemID)
	assert.Equal(t, "ARXYZ", *res.CreatorID)
	assert.NoError(t, res.Err)

	assert.Equal(t, "Q", fetcher.query)
	require.Len(t, fetcher.args, 3)
	assert.Equal(t, "Song A", *fetcher.args[0].(*string))
	assert.Equal(t, "Band X", *fetcher.args[1].(*string))
	assert.Equal(t, 210.5, *fetcher.args[2].(*float64))
}

func TestResolve_NoMatch(t *testing.T) {
	r := New(&fakeFetcher{}, "Q", logging.NewNullLogger())
	res := r.Resolve(context.Background(), strPtr("Song Z"), strPtr("Band Y"), nil)

	assert.Equal(t, pgetl.NoMatch, res.Status)
	assert.Nil(t, res.ItemID)
	assert.Nil(t, res.CreatorID)
	assert.NoError(t, res.Err)
}

func TestResolve_QueryFailedIsDistinctFromNoMatch(t *testing.T) {
	queryErr := errors.New("relation \"songs\" does not exist")
	r := New(&fakeFetcher{err: queryErr}, "Q", logging.NewNullLogger())
	res := r.Resolve(context.Background(), nil, nil, nil)

	assert.Equal(t, pgetl.QueryFailed, res.Status)
	assert.ErrorIs(t, res.Err, queryErr)
	assert.Nil(t, res.ItemID)
}

func TestResolve_ShortRow(t *testing.T) {
	r := New(&fakeFetcher{rows: [][]any{{"SO1"}}}, "Q", logging.NewNullLogger())
	res := r.Resolve(context.Background(), nil, nil, nil)
	assert.Equal(t, pgetl.QueryFailed, res.Status)
}

func TestResolve_NullArtistID(t *testing.T) {
	r := New(&fakeFetcher{rows: [][]any{{"SO1", nil}}}, "Q", logging.NewNullLogger())
	res := r.Resolve(context.Background(), nil, nil, nil)

	assert.Equal(t, pgetl.Resolved, res.Status)
	assert.Equal(t, "SO1", *res.ItemID)
	assert.Nil(t, res.CreatorID)
}

func TestNew_Panics(t *testing.T) {
	assert.Panics(t, func() { New(nil, "Q", logging.NewNullLogger()) })
	assert.Panics(t, func() { New(&fakeFetcher{}, "", logging.NewNullLogger()) })
	assert.Panics(t, func() { New(&fakeFetcher{}, "Q", nil) })
}
