// Package schematree assembles whole-table schema trees from raw column metadata.
package schematree

import (
	"starspread/internal/domain"
	"starspread/internal/typeparse"
)

// Build parses every column's type text and assembles the table's schema
// tree. Columns keep their declared order. The function is pure: the same
// inputs always produce the same tree, and a parse failure on any column
// aborts the whole build with a BuildError, since a partially expanded projection
// list would be silently wrong.
func Build(ref domain.TableRef, columns []domain.ColumnMeta) (*domain.TableSchema, error) {
	nodes := make([]domain.ColumnNode, 0, len(columns))
	for _, col := range columns {
		node, err := typeparse.ParseColumn(col.Name, col.TypeText, col.Nullable)
		if err != nil {
			return nil, &domain.BuildError{Column: col.Name, Err: err}
		}
		nodes = append(nodes, node)
	}

	return &domain.TableSchema{Ref: ref, Columns: nodes}, nil
}
