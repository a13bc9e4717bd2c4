// Package domain defines the schema tree model, ports, and errors for starspread.
package domain

import "strings"

// Sentinel child names used inside ARRAY and MAP nodes.
const (
	ArrayElementName = "element"
	MapKeyName       = "key"
	MapValueName     = "value"
)

// ColumnNode is one node in a table's schema tree. The set of implementations
// is closed: ScalarNode, StructNode, ArrayNode, and MapNode. Generation logic
// type-switches over these and treats anything else as an invariant violation.
type ColumnNode interface {
	// Name returns the column or field name. For array elements it is the
	// fixed sentinel "element"; for map children "key" and "value".
	Name() string

	// Nullable reports whether the column accepts NULL values.
	Nullable() bool

	// TypeText returns the raw type string this node was parsed from,
	// including any parameters (e.g. "DECIMAL(10,2)").
	TypeText() string

	columnNode()
}

// ScalarNode is a non-nested column type: INT, STRING, DECIMAL(10,2), etc.
type ScalarNode struct {
	ColName string
	Type    string
	Null    bool
}

func (n *ScalarNode) Name() string     { return n.ColName }
func (n *ScalarNode) Nullable() bool   { return n.Null }
func (n *ScalarNode) TypeText() string { return n.Type }
func (n *ScalarNode) columnNode()      {}

// StructNode is a STRUCT column with named fields in declaration order.
// Field order is load-bearing: it must match the order a wildcard selection
// returns the fields in.
type StructNode struct {
	ColName string
	Type    string
	Null    bool
	Fields  []ColumnNode
}

func (n *StructNode) Name() string     { return n.ColName }
func (n *StructNode) Nullable() bool   { return n.Null }
func (n *StructNode) TypeText() string { return n.Type }
func (n *StructNode) columnNode()      {}

// ArrayNode is an ARRAY column. Element carries the element type under the
// fixed name "element".
type ArrayNode struct {
	ColName string
	Type    string
	Null    bool
	Element ColumnNode
}

func (n *ArrayNode) Name() string     { return n.ColName }
func (n *ArrayNode) Nullable() bool   { return n.Null }
func (n *ArrayNode) TypeText() string { return n.Type }
func (n *ArrayNode) columnNode()      {}

// MapNode is a MAP column. Key is never nullable, Value always is.
type MapNode struct {
	ColName string
	Type    string
	Null    bool
	Key     ColumnNode
	Value   ColumnNode
}

func (n *MapNode) Name() string     { return n.ColName }
func (n *MapNode) Nullable() bool   { return n.Null }
func (n *MapNode) TypeText() string { return n.Type }
func (n *MapNode) columnNode()      {}

// TableRef identifies a table as catalog.schema.table.
type TableRef struct {
	Catalog string
	Schema  string
	Table   string
}

// FullName returns the unquoted dotted table name.
func (r TableRef) FullName() string {
	return r.Catalog + "." + r.Schema + "." + r.Table
}

// ParseTableRef splits a "catalog.schema.table" name into a TableRef.
func ParseTableRef(name string) (TableRef, error) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return TableRef{}, ErrValidation("invalid table name %q: expected catalog.schema.table", name)
	}
	return TableRef{Catalog: parts[0], Schema: parts[1], Table: parts[2]}, nil
}

// TableSchema is the immutable schema tree for one table. Columns are in the
// table's declared column order. Built once per fetch, read-only afterwards.
type TableSchema struct {
	Ref     TableRef
	Columns []ColumnNode
}

// ColumnMeta is one raw column as returned by a schema fetcher, before the
// type text is parsed into a tree.
type ColumnMeta struct {
	Name     string
	TypeText string
	Nullable bool
}
