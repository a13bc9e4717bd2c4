// Package sqlgen generates explicit projection-list SQL from schema trees.
//
// The target dialect is Databricks SQL: backtick-quoted identifiers,
// STRUCT(...) reconstruction, and TRANSFORM(col, item -> expr) lambdas.
package sqlgen

import (
	"strings"

	"starspread/internal/domain"
)

// QuoteIdentifier wraps an identifier in backticks, escaping any embedded
// backtick by doubling it.
//
// Always quotes unconditionally, so reserved words and exotic names need
// no special cases.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quotePath quotes each component of a dotted path separately:
// "parent.child" becomes "`parent`.`child`".
func quotePath(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = QuoteIdentifier(p)
	}
	return strings.Join(quoted, ".")
}

// QualifiedTableName returns the backtick-quoted three-part table name.
func QualifiedTableName(ref domain.TableRef) string {
	return quotePath([]string{ref.Catalog, ref.Schema, ref.Table})
}
