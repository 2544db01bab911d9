// Package surface converts between the canonical storage form of a rule
// ("premise1\n...\n----\nconclusion\n") and the single-line form a human
// reads and types at the input/output boundary ("premise1 & premise2 =>
// conclusion", or just "conclusion" for a fact). Nothing outside
// internal/input and internal/output should need this conversion; every
// other package works in canonical form.
package surface

import (
	"fmt"
	"strings"

	"ddsearch/internal/rule"
	"ddsearch/internal/term"
)

const arrow = " => "
const conjunction = " & "

// Pretty renders r in the single-line surface form.
func Pretty(r rule.Rule) string {
	if r.IsFact() {
		return r.Conclusion.String()
	}
	parts := make([]string, len(r.Premises))
	for i, p := range r.Premises {
		parts[i] = p.String()
	}
	return strings.Join(parts, conjunction) + arrow + r.Conclusion.String()
}

// ParsePretty parses the single-line surface form into a Rule.
func ParsePretty(line string) (rule.Rule, error) {
	if idx := strings.Index(line, arrow); idx >= 0 {
		premiseText := line[:idx]
		conclText := line[idx+len(arrow):]

		premiseParts := strings.Split(premiseText, conjunction)
		premises := make([]term.Term, 0, len(premiseParts))
		for _, p := range premiseParts {
			t, err := term.Parse(p)
			if err != nil {
				return rule.Rule{}, fmt.Errorf("surface: parsing premise %q: %w", p, err)
			}
			premises = append(premises, t)
		}

		concl, err := term.Parse(conclText)
		if err != nil {
			return rule.Rule{}, fmt.Errorf("surface: parsing conclusion %q: %w", conclText, err)
		}
		return rule.Rule{Premises: premises, Conclusion: concl}, nil
	}

	concl, err := term.Parse(line)
	if err != nil {
		return rule.Rule{}, fmt.Errorf("surface: parsing %q: %w", line, err)
	}
	return rule.NewFact(concl), nil
}
