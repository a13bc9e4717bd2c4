// Package validate checks that a generated explicit projection is equivalent
// to the wildcard selection it replaces by comparing EXPLAIN plans.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"starspread/internal/domain"
)

// Result is the outcome of one equivalence check.
type Result struct {
	Equivalent   bool     `json:"equivalent"`
	StarPlan     string   `json:"star_plan"`
	ExplicitPlan string   `json:"explicit_plan"`
	Differences  []string `json:"differences,omitempty"`
}

// Validator compares EXPLAIN plans via an injected executor. It never builds
// SQL itself; both queries arrive as opaque strings.
type Validator struct {
	executor domain.PlanExecutor
}

// New creates a Validator using the given plan executor.
func New(executor domain.PlanExecutor) *Validator {
	return &Validator{executor: executor}
}

// ValidateEquivalence explains both queries and compares the normalized
// logical plans. A difference in the plans means the explicit projection does
// not reproduce the wildcard selection.
func (v *Validator) ValidateEquivalence(ctx context.Context, starQuery, explicitQuery, catalog, schema string) (*Result, error) {
	starPlan, err := v.executor.Explain(ctx, starQuery, catalog, schema)
	if err != nil {
		return nil, fmt.Errorf("explain wildcard query: %w", err)
	}

	explicitPlan, err := v.executor.Explain(ctx, explicitQuery, catalog, schema)
	if err != nil {
		return nil, fmt.Errorf("explain explicit query: %w", err)
	}

	starLogical := extractLogicalPlan(starPlan)
	explicitLogical := extractLogicalPlan(explicitPlan)

	result := &Result{
		StarPlan:     starPlan,
		ExplicitPlan: explicitPlan,
	}

	if normalizePlan(starLogical) == normalizePlan(explicitLogical) {
		result.Equivalent = true
		return result, nil
	}

	result.Differences = diffPlans(starLogical, explicitLogical)
	return result, nil
}

var (
	logicalSectionRe = regexp.MustCompile(`(?is)== (?:Analyzed|Optimized) Logical Plan ==\s*\n(.*?)(?:\n== |$)`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	tempIDRe         = regexp.MustCompile(`_(?:tmp|gen)_\d+`)
	exprIDRe         = regexp.MustCompile(`#\d+`)
)

// extractLogicalPlan pulls the Analyzed or Optimized Logical Plan section out
// of an EXPLAIN output. Those sections are the most stable for comparison.
// When no section marker is present, the first contiguous non-header block is
// used instead.
func extractLogicalPlan(explainOutput string) string {
	normalized := strings.TrimSpace(explainOutput)

	if m := logicalSectionRe.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1])
	}

	var planLines []string
	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "==") {
			if len(planLines) > 0 {
				break
			}
			continue
		}
		planLines = append(planLines, line)
	}
	if len(planLines) == 0 {
		return normalized
	}
	return strings.Join(planLines, "\n")
}

// normalizePlan removes differences that do not affect logical equivalence:
// case, whitespace runs, generated temp names, and per-run expression IDs.
func normalizePlan(plan string) string {
	normalized := strings.ToLower(plan)
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	normalized = tempIDRe.ReplaceAllString(normalized, "_temp")
	normalized = exprIDRe.ReplaceAllString(normalized, "#id")
	return strings.TrimSpace(normalized)
}

// maxReportedDifferences caps the diff report so a wildly different plan does
// not flood the output.
const maxReportedDifferences = 10

// diffPlans produces a line-by-line description of how two plans differ.
func diffPlans(starPlan, explicitPlan string) []string {
	starLines := strings.Split(starPlan, "\n")
	explicitLines := strings.Split(explicitPlan, "\n")

	var differences []string
	if len(starLines) != len(explicitLines) {
		differences = append(differences,
			fmt.Sprintf("plan length differs: %d lines vs %d lines", len(starLines), len(explicitLines)))
	}

	maxLen := len(starLines)
	if len(explicitLines) > maxLen {
		maxLen = len(explicitLines)
	}

	for i := 0; i < maxLen; i++ {
		var star, explicit string
		if i < len(starLines) {
			star = starLines[i]
		}
		if i < len(explicitLines) {
			explicit = explicitLines[i]
		}

		if strings.TrimSpace(star) == strings.TrimSpace(explicit) {
			continue
		}

		// A differing line adds up to three entries; stop before the cap
		// can be exceeded.
		if len(differences)+3 > maxReportedDifferences {
			differences = append(differences, "... (additional differences omitted)")
			break
		}

		differences = append(differences, fmt.Sprintf("line %d differs:", i+1))
		if star != "" {
			differences = append(differences, "  wildcard: "+truncate(star, 100))
		}
		if explicit != "" {
			differences = append(differences, "  explicit: "+truncate(explicit, 100))
		}
	}

	if len(differences) == 0 {
		differences = append(differences, "plans differ in normalization or structure")
	}
	return differences
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
