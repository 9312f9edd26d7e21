package transform

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// Field accessors treat a missing key and JSON null alike: both yield nil.
// Producers are inconsistent about scalar types, so numbers and numeric
// strings are accepted interchangeably.

func stringField(doc pgetl.Document, key string) *string {
	switch v := doc[key].(type) {
	case string:
		return &v
	case json.Number:
		s := v.String()
		return &s
	case bool:
		s := strconv.FormatBool(v)
		return &s
	default:
		return nil
	}
}

func floatField(doc pgetl.Document, key string) *float64 {
	var f float64
	var err error
	switch v := doc[key].(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &f
}

func int64Field(doc pgetl.Document, key string) *int64 {
	var raw string
	switch v := doc[key].(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	default:
		return nil
	}
	if raw == "" {
		return nil
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &n
	}
	// Whole floats such as "39.0" appear when a producer went through a float column.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int64(f)) {
		n := int64(f)
		return &n
	}
	return nil
}

func intField(doc pgetl.Document, key string) *int {
	n := int64Field(doc, key)
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}
