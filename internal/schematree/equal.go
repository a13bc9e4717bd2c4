package schematree

import "starspread/internal/domain"

// Equal reports whether two schema tree nodes are structurally identical:
// same kind, name, nullability, child order, and (for scalars) the same type
// token. Composite nodes' raw type text is not compared, so a tree survives a
// canonical re-serialization round trip.
func Equal(a, b domain.ColumnNode) bool {
	if a.Name() != b.Name() || a.Nullable() != b.Nullable() {
		return false
	}

	switch an := a.(type) {
	case *domain.ScalarNode:
		bn, ok := b.(*domain.ScalarNode)
		return ok && an.Type == bn.Type
	case *domain.StructNode:
		bn, ok := b.(*domain.StructNode)
		if !ok || len(an.Fields) != len(bn.Fields) {
			return false
		}
		for i := range an.Fields {
			if !Equal(an.Fields[i], bn.Fields[i]) {
				return false
			}
		}
		return true
	case *domain.ArrayNode:
		bn, ok := b.(*domain.ArrayNode)
		return ok && Equal(an.Element, bn.Element)
	case *domain.MapNode:
		bn, ok := b.(*domain.MapNode)
		return ok && Equal(an.Key, bn.Key) && Equal(an.Value, bn.Value)
	default:
		return false
	}
}

// EqualSchemas reports whether two table schemas have the same reference and
// structurally identical columns in the same order.
func EqualSchemas(a, b *domain.TableSchema) bool {
	if a.Ref != b.Ref || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if !Equal(a.Columns[i], b.Columns[i]) {
			return false
		}
	}
	return true
}
