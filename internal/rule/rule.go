// Package rule implements the rule model: premises plus a conclusion,
// their canonical serialization, and the fact/equality/idea classifications
// the reasoning engines dispatch on.
package rule

import (
	"errors"
	"fmt"
	"strings"

	"ddsearch/internal/term"
)

// ErrParse wraps every error ParseRule returns, covering both this
// package's own structural checks and term.ErrParse failures bubbled up
// from parsing an individual premise or conclusion line.
var ErrParse = errors.New("rule: parse error")

// separator is the line that divides premises from the conclusion in the
// canonical serialized form.
const separator = "----"

// Rule is a set of premises entailing a conclusion. A Rule with no premises
// is a fact.
type Rule struct {
	Premises   []term.Term
	Conclusion term.Term
}

// NewFact builds a zero-premise rule.
func NewFact(conclusion term.Term) Rule {
	return Rule{Conclusion: conclusion}
}

// ParseRule parses the canonical serialized form:
//
//	premise1
//	premise2
//	...
//	----
//	conclusion
//
// A fact has no premise lines, just "----\nconclusion\n". The separator
// must appear on a line by itself, and a trailing newline after the
// conclusion is required.
func ParseRule(data string) (Rule, error) {
	if !strings.HasSuffix(data, "\n") {
		return Rule{}, fmt.Errorf("%w: missing trailing newline", ErrParse)
	}
	lines := strings.Split(strings.TrimSuffix(data, "\n"), "\n")

	sep := -1
	for i, l := range lines {
		if l == separator {
			sep = i
			break
		}
	}
	if sep == -1 {
		return Rule{}, fmt.Errorf("%w: missing %q separator line", ErrParse, separator)
	}
	if sep != len(lines)-2 {
		return Rule{}, fmt.Errorf("%w: exactly one conclusion line must follow %q", ErrParse, separator)
	}

	premises := make([]term.Term, 0, sep)
	for _, l := range lines[:sep] {
		t, err := term.Parse(l)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: parsing premise %q: %s", ErrParse, l, err)
		}
		premises = append(premises, t)
	}

	concl, err := term.Parse(lines[len(lines)-1])
	if err != nil {
		return Rule{}, fmt.Errorf("%w: parsing conclusion %q: %s", ErrParse, lines[len(lines)-1], err)
	}

	return Rule{Premises: premises, Conclusion: concl}, nil
}

// String renders the canonical serialized form, suitable for storage and
// for round-tripping through ParseRule.
func (r Rule) String() string {
	var b strings.Builder
	for _, p := range r.Premises {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	b.WriteString(separator)
	b.WriteByte('\n')
	b.WriteString(r.Conclusion.String())
	b.WriteByte('\n')
	return b.String()
}

// IsFact reports whether r has no premises.
func (r Rule) IsFact() bool { return len(r.Premises) == 0 }

// IsEquality reports whether r is a fact whose conclusion has the shape
// "(binary == lhs rhs)". This inspects the parsed term structure rather
// than sniffing the serialized string, so it cannot be fooled by an atom
// that happens to contain the substring "binary ==".
func (r Rule) IsEquality() bool {
	if !r.IsFact() {
		return false
	}
	return isEqualityTerm(r.Conclusion)
}

func isEqualityTerm(t term.Term) bool {
	if !t.IsList() || t.Arity() != 4 {
		return false
	}
	elems := t.Elements()
	if !elems[0].IsAtom() || elems[0].IsVar() || elems[0].Name() != "binary" {
		return false
	}
	return elems[1].IsAtom() && !elems[1].IsVar() && elems[1].Name() == "=="
}

// EqualitySides returns the lhs and rhs of an equality fact's conclusion.
// ok is false if r is not an equality rule.
func (r Rule) EqualitySides() (lhs, rhs term.Term, ok bool) {
	if !r.IsEquality() {
		return term.Term{}, term.Term{}, false
	}
	elems := r.Conclusion.Elements()
	return elems[2], elems[3], true
}

// Idea extracts the "idea" derived from r: a new zero-premise rule whose
// conclusion is r's first premise. A rule that is already a fact (zero
// premises) has no idea, and ok is false.
func (r Rule) Idea() (Rule, bool) {
	if r.IsFact() {
		return Rule{}, false
	}
	return NewFact(r.Premises[0]), true
}
