package typeparse

import (
	"fmt"
	"strings"

	"starspread/internal/domain"
)

// Format serializes a schema tree node back to canonical type text: no
// whitespace, upper-case keywords, scalar tokens verbatim. Re-parsing the
// result yields a structurally identical tree.
func Format(node domain.ColumnNode) string {
	var b strings.Builder
	formatNode(&b, node)
	return b.String()
}

func formatNode(b *strings.Builder, node domain.ColumnNode) {
	switch n := node.(type) {
	case *domain.ScalarNode:
		b.WriteString(n.Type)
	case *domain.StructNode:
		b.WriteString("STRUCT<")
		for i, f := range n.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Name())
			b.WriteByte(':')
			formatNode(b, f)
		}
		b.WriteByte('>')
	case *domain.ArrayNode:
		b.WriteString("ARRAY<")
		formatNode(b, n.Element)
		b.WriteByte('>')
	case *domain.MapNode:
		b.WriteString("MAP<")
		formatNode(b, n.Key)
		b.WriteByte(',')
		formatNode(b, n.Value)
		b.WriteByte('>')
	default:
		// Unreachable for trees built by this package.
		b.WriteString(fmt.Sprintf("<unknown %T>", node))
	}
}
