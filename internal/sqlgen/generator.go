package sqlgen

import (
	"fmt"
	"strings"

	"starspread/internal/domain"
)

// Mode selects the generation strategy for nested columns. Modes never mix
// within one call.
type Mode int

const (
	// ModeReconstruct rebuilds nested values field by field with STRUCT()
	// and TRANSFORM() so the output shape matches a wildcard selection
	// exactly. This is the canonical mode.
	ModeReconstruct Mode = iota

	// ModeFlatten expands struct fields into dotted references with
	// underscore aliases (`parent`.`child` AS `parent_child`). The output
	// shape differs from a wildcard selection; it exists as an explicit
	// opt-in for consumers that want one flat column per leaf field.
	ModeFlatten
)

func (m Mode) String() string {
	switch m {
	case ModeFlatten:
		return "flatten"
	default:
		return "reconstruct"
	}
}

// ParseMode parses a mode name. The empty string means ModeReconstruct.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "reconstruct":
		return ModeReconstruct, nil
	case "flatten":
		return ModeFlatten, nil
	default:
		return 0, domain.ErrValidation("unknown generation mode %q (want reconstruct or flatten)", s)
	}
}

// projectionSeparator keeps continuation lines aligned under "SELECT ".
const projectionSeparator = ",\n       "

// ProjectionList generates the explicit projection-list text for the schema:
// one expression per top-level column, in declared order, one per line. The
// output is deterministic: the same tree always yields byte-identical text.
func ProjectionList(schema *domain.TableSchema, mode Mode) (string, error) {
	exprs, err := ColumnExpressions(schema, mode)
	if err != nil {
		return "", err
	}
	return strings.Join(exprs, projectionSeparator), nil
}

// ColumnExpressions generates one SQL expression per top-level column, in
// declared order.
func ColumnExpressions(schema *domain.TableSchema, mode Mode) ([]string, error) {
	var exprs []string
	for _, col := range schema.Columns {
		switch mode {
		case ModeReconstruct:
			expr, err := reconstructColumn(col)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		case ModeFlatten:
			flat, err := flattenColumn(col, nil)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, flat...)
		default:
			return nil, &domain.GenerationError{Message: fmt.Sprintf("unknown mode %d", mode)}
		}
	}
	return exprs, nil
}

// SelectStatement generates a complete SELECT over the table, equivalent to
// SELECT * but with every column spelled out.
func SelectStatement(schema *domain.TableSchema, mode Mode) (string, error) {
	list, err := ProjectionList(schema, mode)
	if err != nil {
		return "", err
	}
	return "SELECT " + list + "\nFROM " + QualifiedTableName(schema.Ref), nil
}

// reconstructColumn generates the expression for one top-level column.
// Reconstructed expressions (STRUCT, TRANSFORM) are aliased back to the
// column name so the output column is named exactly as in the source table;
// pass-through references already carry the right name.
func reconstructColumn(col domain.ColumnNode) (string, error) {
	expr, err := reconstruct(col, nil, "", 0, false)
	if err != nil {
		return "", err
	}

	switch n := col.(type) {
	case *domain.StructNode:
		return expr + " AS " + QuoteIdentifier(col.Name()), nil
	case *domain.ArrayNode:
		if _, ok := n.Element.(*domain.StructNode); ok {
			return expr + " AS " + QuoteIdentifier(col.Name()), nil
		}
		return expr, nil
	default:
		return expr, nil
	}
}

// reconstruct emits the expression that rebuilds node's value so it matches a
// wildcard selection. parentPath is the dotted path from the current source
// (column root or lambda variable) down to node's parent; lambdaVar is the
// enclosing TRANSFORM variable, empty outside arrays; depth counts enclosing
// lambdas for variable naming. element is true only for the node an ArrayNode
// recurses into, so the positional sentinel never collides with a user field
// that happens to share its name.
func reconstruct(node domain.ColumnNode, parentPath []string, lambdaVar string, depth int, element bool) (string, error) {
	switch n := node.(type) {
	case *domain.ScalarNode:
		return sourceRef(n.Name(), parentPath, lambdaVar), nil

	case *domain.StructNode:
		// The array element struct binds directly to the lambda variable;
		// its sentinel name never appears in emitted paths.
		structPath := parentPath
		if !element {
			structPath = append(append([]string{}, parentPath...), n.Name())
		}

		fields := make([]string, 0, len(n.Fields))
		for _, field := range n.Fields {
			expr, err := reconstruct(field, structPath, lambdaVar, depth, false)
			if err != nil {
				return "", err
			}
			fields = append(fields, expr+" AS "+QuoteIdentifier(field.Name()))
		}
		return "STRUCT(" + strings.Join(fields, ", ") + ")", nil

	case *domain.ArrayNode:
		ref := sourceRef(n.Name(), parentPath, lambdaVar)

		// Only arrays of structs need per-element reconstruction; arrays of
		// scalars, arrays, and maps round-trip unchanged through a wildcard
		// selection.
		if _, ok := n.Element.(*domain.StructNode); !ok {
			return ref, nil
		}

		elemDepth := 0
		if lambdaVar != "" {
			elemDepth = depth + 1
		}
		elemVar := lambdaVarName(elemDepth)

		elemExpr, err := reconstruct(n.Element, nil, elemVar, elemDepth, true)
		if err != nil {
			return "", err
		}
		return "TRANSFORM(" + ref + ", " + elemVar + " -> " + elemExpr + ")", nil

	case *domain.MapNode:
		// Maps pass through unchanged: the dialect has no reconstruction
		// primitive that rebuilds a map entry by entry.
		return sourceRef(n.Name(), parentPath, lambdaVar), nil

	default:
		return "", &domain.GenerationError{Message: fmt.Sprintf("unknown node kind %T", node)}
	}
}

// sourceRef builds the reference for a value named name under parentPath.
// Inside a lambda the path is rooted at the (unquoted) lambda variable.
func sourceRef(name string, parentPath []string, lambdaVar string) string {
	path := append(append([]string{}, parentPath...), name)
	if lambdaVar != "" {
		return lambdaVar + "." + quotePath(path)
	}
	return quotePath(path)
}

// lambdaVarName returns the TRANSFORM variable for the given lambda nesting
// depth: item, item2, item3, ...
func lambdaVarName(depth int) string {
	if depth == 0 {
		return "item"
	}
	return fmt.Sprintf("item%d", depth+1)
}
