package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"single object", `{"a": 1}`, 1},
		{"newline delimited", "{\"a\": 1}\n{\"a\": 2}\n{\"a\": 3}\n", 3},
		{"array flattened", `[{"a": 1}, {"a": 2}]`, 2},
		{"mixed stream", "{\"a\": 1}\n[{\"a\": 2}, [{\"a\": 3}]]", 3},
		{"empty input", "", 0},
		{"whitespace only", "  \n\t", 0},
		{"empty array", "[]", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Len(t, docs, tt.want)
		})
	}
}

func TestDecode_KeepsNumbers(t *testing.T) {
	docs, err := Decode([]byte(`{"ts": 1541903636796, "length": 210.5}`))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, json.Number("1541903636796"), docs[0]["ts"])
	assert.Equal(t, json.Number("210.5"), docs[0]["length"])
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"a": `},
		{"trailing garbage", "{\"a\": 1}\nnot json"},
		{"scalar value", `42`},
		{"array of scalars", `[{"a": 1}, "x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.ErrorIs(t, err, pgetl.ErrParseFailed)
		})
	}
}
