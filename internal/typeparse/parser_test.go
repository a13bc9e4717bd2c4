package typeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starspread/internal/domain"
)

func TestParseScalar(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
	}{
		{name: "int", input: "INT", wantType: "INT"},
		{name: "string", input: "STRING", wantType: "STRING"},
		{name: "lowercase", input: "bigint", wantType: "bigint"},
		{name: "decimal_params", input: "DECIMAL(10,2)", wantType: "DECIMAL(10,2)"},
		{name: "varchar_param", input: "VARCHAR(255)", wantType: "VARCHAR(255)"},
		{name: "timestamp", input: "TIMESTAMP", wantType: "TIMESTAMP"},
		{name: "surrounding_whitespace", input: "  BOOLEAN  ", wantType: "BOOLEAN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)

			scalar, ok := node.(*domain.ScalarNode)
			require.True(t, ok, "expected *domain.ScalarNode, got %T", node)
			assert.Equal(t, tt.wantType, scalar.Type)
			assert.True(t, scalar.Nullable())
		})
	}
}

func TestParseStruct(t *testing.T) {
	node, err := ParseColumn("address", "STRUCT<street:STRING,city:STRING,zip:INT>", false)
	require.NoError(t, err)

	s, ok := node.(*domain.StructNode)
	require.True(t, ok, "expected *domain.StructNode, got %T", node)
	assert.Equal(t, "address", s.Name())
	assert.False(t, s.Nullable())

	require.Len(t, s.Fields, 3)
	assert.Equal(t, "street", s.Fields[0].Name())
	assert.Equal(t, "city", s.Fields[1].Name())
	assert.Equal(t, "zip", s.Fields[2].Name())
	for _, f := range s.Fields {
		assert.True(t, f.Nullable(), "struct fields are always nullable")
	}
}

func TestParseStructPreservesFieldOrder(t *testing.T) {
	node, err := Parse("STRUCT<z:INT,a:INT,m:INT,b:INT>")
	require.NoError(t, err)

	s := node.(*domain.StructNode)
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name()
	}
	assert.Equal(t, []string{"z", "a", "m", "b"}, names)
}

func TestParseStructWithSpaces(t *testing.T) {
	// Unity Catalog type_text often carries spaces after colons and commas.
	node, err := Parse("STRUCT<street: STRING, city: STRING>")
	require.NoError(t, err)

	s := node.(*domain.StructNode)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "street", s.Fields[0].Name())
	assert.Equal(t, "STRING", s.Fields[0].TypeText())
	assert.Equal(t, "city", s.Fields[1].Name())
}

func TestParseNestedStruct(t *testing.T) {
	node, err := Parse("STRUCT<name:STRING,contact:STRUCT<email:STRING,phone:STRUCT<home:STRING,work:STRING>>>")
	require.NoError(t, err)

	outer := node.(*domain.StructNode)
	require.Len(t, outer.Fields, 2)

	contact, ok := outer.Fields[1].(*domain.StructNode)
	require.True(t, ok)
	assert.Equal(t, "contact", contact.Name())
	require.Len(t, contact.Fields, 2)

	phone, ok := contact.Fields[1].(*domain.StructNode)
	require.True(t, ok)
	assert.Equal(t, "phone", phone.Name())
	require.Len(t, phone.Fields, 2)
	assert.Equal(t, "home", phone.Fields[0].Name())
	assert.Equal(t, "work", phone.Fields[1].Name())
}

func TestParseArray(t *testing.T) {
	node, err := ParseColumn("tags", "ARRAY<STRING>", true)
	require.NoError(t, err)

	arr, ok := node.(*domain.ArrayNode)
	require.True(t, ok, "expected *domain.ArrayNode, got %T", node)
	assert.Equal(t, "tags", arr.Name())

	elem, ok := arr.Element.(*domain.ScalarNode)
	require.True(t, ok)
	assert.Equal(t, domain.ArrayElementName, elem.Name())
	assert.Equal(t, "STRING", elem.Type)
	assert.True(t, elem.Nullable())
}

func TestParseArrayOfStruct(t *testing.T) {
	node, err := Parse("ARRAY<STRUCT<product_id:STRING,qty:INT>>")
	require.NoError(t, err)

	arr := node.(*domain.ArrayNode)
	elem, ok := arr.Element.(*domain.StructNode)
	require.True(t, ok)
	assert.Equal(t, domain.ArrayElementName, elem.Name())
	require.Len(t, elem.Fields, 2)
	assert.Equal(t, "product_id", elem.Fields[0].Name())
	assert.Equal(t, "qty", elem.Fields[1].Name())
}

func TestParseNestedArray(t *testing.T) {
	node, err := Parse("ARRAY<ARRAY<STRING>>")
	require.NoError(t, err)

	outer := node.(*domain.ArrayNode)
	inner, ok := outer.Element.(*domain.ArrayNode)
	require.True(t, ok)
	assert.Equal(t, domain.ArrayElementName, inner.Name())

	elem := inner.Element.(*domain.ScalarNode)
	assert.Equal(t, "STRING", elem.Type)
}

func TestParseMap(t *testing.T) {
	node, err := ParseColumn("attrs", "MAP<STRING,INT>", true)
	require.NoError(t, err)

	m, ok := node.(*domain.MapNode)
	require.True(t, ok, "expected *domain.MapNode, got %T", node)
	assert.Equal(t, "attrs", m.Name())

	assert.Equal(t, domain.MapKeyName, m.Key.Name())
	assert.False(t, m.Key.Nullable(), "map keys are never nullable")
	assert.Equal(t, domain.MapValueName, m.Value.Name())
	assert.True(t, m.Value.Nullable(), "map values are always nullable")
}

func TestParseMapWithStructValue(t *testing.T) {
	node, err := Parse("MAP<STRING,STRUCT<x:INT,y:DECIMAL(10,2)>>")
	require.NoError(t, err)

	m := node.(*domain.MapNode)
	value, ok := m.Value.(*domain.StructNode)
	require.True(t, ok)
	require.Len(t, value.Fields, 2)
	assert.Equal(t, "DECIMAL(10,2)", value.Fields[1].TypeText())
}

func TestParseKeywordCaseInsensitive(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "lower_struct", input: "struct<a:int>"},
		{name: "mixed_struct", input: "Struct<a:Int>"},
		{name: "lower_array", input: "array<string>"},
		{name: "lower_map", input: "map<string,int>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.NoError(t, err)
		})
	}
}

func TestParseParamCommasDoNotSplit(t *testing.T) {
	// The comma inside DECIMAL(10,2) must not separate struct fields.
	node, err := Parse("STRUCT<amount:DECIMAL(10,2),currency:STRING>")
	require.NoError(t, err)

	s := node.(*domain.StructNode)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "DECIMAL(10,2)", s.Fields[0].TypeText())
	assert.Equal(t, "STRING", s.Fields[1].TypeText())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "empty type"},
		{name: "whitespace_only", input: "   ", wantErr: "empty type"},
		{name: "unbalanced_struct", input: "STRUCT<x:INT,y:", wantErr: "unbalanced"},
		{name: "unbalanced_array", input: "ARRAY<STRING", wantErr: "unbalanced"},
		{name: "unbalanced_nested", input: "STRUCT<a:ARRAY<INT>", wantErr: "unbalanced"},
		{name: "trailing_text", input: "ARRAY<INT>>", wantErr: "trailing"},
		{name: "empty_struct", input: "STRUCT<>", wantErr: "no fields"},
		{name: "missing_colon", input: "STRUCT<street STRING>", wantErr: "missing ':'"},
		{name: "empty_field_name", input: "STRUCT<:INT>", wantErr: "empty name"},
		{name: "trailing_comma", input: "STRUCT<a:INT,>", wantErr: "empty struct field"},
		{name: "empty_field_type", input: "STRUCT<a:>", wantErr: "empty type"},
		{name: "map_one_param", input: "MAP<STRING>", wantErr: "exactly two type parameters"},
		{name: "map_three_params", input: "MAP<STRING,INT,INT>", wantErr: "exactly two type parameters"},
		{name: "array_two_params", input: "ARRAY<INT,INT>", wantErr: "exactly one type parameter"},
		{name: "empty_array", input: "ARRAY<>", wantErr: "exactly one type parameter"},
		{name: "stray_close", input: "INT>", wantErr: "unexpected"},
		{name: "unbalanced_paren", input: "DECIMAL(10,2", wantErr: "unbalanced '('"},
		{name: "stray_close_paren", input: "DECIMAL)", wantErr: "unbalanced ')'"},
		{name: "mismatched_bracket", input: "STRUCT<a:INT)", wantErr: "mismatched"},
		{name: "space_before_struct_bracket", input: "STRUCT <a:INT>", wantErr: "immediately followed by '<'"},
		{name: "space_before_array_bracket", input: "ARRAY <INT>", wantErr: "immediately followed by '<'"},
		{name: "space_before_map_bracket", input: "MAP <STRING,INT>", wantErr: "immediately followed by '<'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, node, "no tree may be produced on error")

			var parseErr *domain.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.input, parseErr.Input)
		})
	}
}

func TestParseErrorOffsets(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOffset int
	}{
		// Offset of the second field's type, after "STRUCT<a:INT,b:".
		{name: "nested_bad_field", input: "STRUCT<a:INT,b:>", wantOffset: 15},
		// Offset of the inner unbalanced '<'.
		{name: "inner_unbalanced", input: "DECIMAL(10,2", wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var parseErr *domain.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantOffset, parseErr.Offset)
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	const input = "STRUCT<a:ARRAY<STRUCT<b:MAP<STRING,DECIMAL(10,2)>>>,c:STRING>"

	first, err := Parse(input)
	require.NoError(t, err)
	second, err := Parse(input)
	require.NoError(t, err)

	assert.Equal(t, Format(first), Format(second))
}

func TestParseDepthFive(t *testing.T) {
	const input = "STRUCT<l1:STRUCT<l2:STRUCT<l3:STRUCT<l4:STRUCT<l5:INT>>>>>"

	node, err := Parse(input)
	require.NoError(t, err)

	cur := node
	for depth := 1; depth <= 4; depth++ {
		s, ok := cur.(*domain.StructNode)
		require.True(t, ok, "depth %d", depth)
		require.Len(t, s.Fields, 1)
		cur = s.Fields[0]
	}
	leafParent := cur.(*domain.StructNode)
	leaf := leafParent.Fields[0].(*domain.ScalarNode)
	assert.Equal(t, "l5", leaf.Name())
	assert.Equal(t, "INT", leaf.Type)
}
