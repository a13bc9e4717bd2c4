package typeparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starspread/internal/schematree"
	"starspread/internal/typeparse"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "scalar", input: "INT", want: "INT"},
		{name: "scalar_params", input: "DECIMAL(10,2)", want: "DECIMAL(10,2)"},
		{name: "struct", input: "STRUCT<a:INT,b:STRING>", want: "STRUCT<a:INT,b:STRING>"},
		{name: "struct_spaces_dropped", input: "STRUCT<a: INT, b: STRING>", want: "STRUCT<a:INT,b:STRING>"},
		{name: "keyword_uppercased", input: "struct<a:INT>", want: "STRUCT<a:INT>"},
		{name: "array", input: "ARRAY<STRING>", want: "ARRAY<STRING>"},
		{name: "map", input: "MAP<STRING, INT>", want: "MAP<STRING,INT>"},
		{
			name:  "nested",
			input: "STRUCT<items:ARRAY<STRUCT<id:STRING,price:DECIMAL(10,2)>>,meta:MAP<STRING,STRING>>",
			want:  "STRUCT<items:ARRAY<STRUCT<id:STRING,price:DECIMAL(10,2)>>,meta:MAP<STRING,STRING>>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := typeparse.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typeparse.Format(node))
		})
	}
}

// Formatting a parsed tree and re-parsing the result must yield a
// structurally identical tree.
func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"INT",
		"DECIMAL(38,18)",
		"STRUCT<street: STRING, city: STRING>",
		"ARRAY<STRUCT<product_id: STRING, qty: INT>>",
		"MAP<STRING, ARRAY<STRUCT<x: INT>>>",
		"STRUCT<l1:STRUCT<l2:STRUCT<l3:STRUCT<l4:STRUCT<l5:INT>>>>>",
		"array<map<string, struct<a: decimal(10,2), b: array<int>>>>",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := typeparse.Parse(input)
			require.NoError(t, err)

			second, err := typeparse.Parse(typeparse.Format(first))
			require.NoError(t, err)

			assert.True(t, schematree.Equal(first, second),
				"round trip changed the tree: %s vs %s", typeparse.Format(first), typeparse.Format(second))

			// A second round trip is a fixed point.
			assert.Equal(t, typeparse.Format(first), typeparse.Format(second))
		})
	}
}
