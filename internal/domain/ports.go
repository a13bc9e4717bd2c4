package domain

import "context"

// SchemaFetcher retrieves raw column metadata for a table from an external
// catalog. Implementations own all I/O; the core never fetches anything.
type SchemaFetcher interface {
	// TableColumns returns the table's columns in declared order.
	TableColumns(ctx context.Context, ref TableRef) ([]ColumnMeta, error)
}

// PlanExecutor runs EXPLAIN against a live engine and returns the plan text.
// Used by the equivalence validator; the core only produces SQL strings.
type PlanExecutor interface {
	Explain(ctx context.Context, query, catalog, schema string) (string, error)
}
