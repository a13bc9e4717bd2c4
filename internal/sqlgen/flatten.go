package sqlgen

import (
	"fmt"
	"strings"

	"starspread/internal/domain"
)

// flattenColumn expands one column into flat projection entries. Structs
// recurse into one entry per leaf field; arrays and maps are referenced
// as-is (no element-wise expansion exists in this mode). Nested entries are
// aliased with the underscore-joined path so output names stay unique.
func flattenColumn(node domain.ColumnNode, parentPath []string) ([]string, error) {
	path := append(append([]string{}, parentPath...), node.Name())

	switch n := node.(type) {
	case *domain.StructNode:
		var entries []string
		for _, field := range n.Fields {
			sub, err := flattenColumn(field, path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, sub...)
		}
		return entries, nil

	case *domain.ScalarNode, *domain.ArrayNode, *domain.MapNode:
		return []string{flatRef(path)}, nil

	default:
		return nil, &domain.GenerationError{Message: fmt.Sprintf("unknown node kind %T", node)}
	}
}

// flatRef renders a quoted dotted path, aliased to the underscore-joined
// path when it is nested below the top level.
func flatRef(path []string) string {
	ref := quotePath(path)
	if len(path) == 1 {
		return ref
	}
	return ref + " AS " + QuoteIdentifier(strings.Join(path, "_"))
}
