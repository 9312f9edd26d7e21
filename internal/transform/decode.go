package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// Decode reads a stream of JSON values: newline-delimited objects, a single
// object, or arrays of objects (flattened). Numbers are kept as json.Number.
// Any malformed value fails the whole input with pgetl.ErrParseFailed.
func Decode(data []byte) ([]pgetl.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []pgetl.Document
	for index := 0; ; index++ {
		var value any
		err := dec.Decode(&value)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", pgetl.ErrParseFailed, index, err)
		}

		flattened, err := flatten(value)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", pgetl.ErrParseFailed, index, err)
		}
		docs = append(docs, flattened...)
	}
	return docs, nil
}

func flatten(value any) ([]pgetl.Document, error) {
	switch v := value.(type) {
	case map[string]any:
		return []pgetl.Document{v}, nil
	case []any:
		var docs []pgetl.Document
		for i, elem := range v {
			nested, err := flatten(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			docs = append(docs, nested...)
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("expected object or array, got %T", value)
	}
}
