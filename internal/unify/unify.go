// Package unify implements first-order matching of a pattern term against a
// target term, and grounding of a pattern under a substitution with
// scope-qualified fresh variable renaming to avoid capture.
package unify

import (
	"errors"
	"fmt"
	"strings"

	"ddsearch/internal/term"
)

// ErrInvariant reports a malformed grounding: a variable that escaped
// Ground unqualified by any scope. The DS engine treats this as fatal rather
// than as a derivation to discard, since it means two independent
// resolution steps could silently alias variables that must stay distinct.
var ErrInvariant = errors.New("unify: invariant violation")

// Substitution maps pattern variable names to the terms they are bound to.
type Substitution map[string]term.Term

// Match attempts to unify pattern against target, where pattern may contain
// variables and target is expected to be ground (though Match does not
// require it). It returns the most general substitution and ok=true on
// success, or a nil substitution and ok=false on failure. A variable that
// occurs more than once in pattern must bind to structurally equal terms
// everywhere it occurs.
func Match(pattern, target term.Term) (Substitution, bool) {
	sub := Substitution{}
	if matchInto(pattern, target, sub) {
		return sub, true
	}
	return nil, false
}

func matchInto(pattern, target term.Term, sub Substitution) bool {
	if pattern.IsVar() {
		name := pattern.Name()
		if bound, ok := sub[name]; ok {
			return bound.Equal(target)
		}
		sub[name] = target
		return true
	}
	if pattern.IsAtom() {
		return target.IsAtom() && !target.IsVar() && pattern.Name() == target.Name()
	}
	if !target.IsList() {
		return false
	}
	pe, te := pattern.Elements(), target.Elements()
	if len(pe) != len(te) {
		return false
	}
	for i := range pe {
		if !matchInto(pe[i], te[i], sub) {
			return false
		}
	}
	return true
}

// Ground instantiates template under substitution sub, renaming any free
// (unbound) variable by qualifying its name with scope so that two separate
// grounding calls never collide on variable identity. A variable bound in
// sub is replaced by its binding; an unbound variable `x becomes `scope$x.
func Ground(template term.Term, sub Substitution, scope string) term.Term {
	if template.IsVar() {
		if bound, ok := sub[template.Name()]; ok {
			return bound
		}
		return term.NewVar(scope + "$" + template.Name())
	}
	if template.IsAtom() {
		return template
	}
	elems := template.Elements()
	out := make([]term.Term, len(elems))
	for i, e := range elems {
		out[i] = Ground(e, sub, scope)
	}
	return term.NewList(out...)
}

// CheckGrounded walks t and reports ErrInvariant if any variable appears
// unqualified by a "scope$" prefix, i.e. it did not pass through Ground (or
// passed through with an empty scope). Callers use this to assert that a
// freshly derived rule's terms are safe to pool alongside terms from other
// resolution steps without accidental variable capture.
func CheckGrounded(t term.Term) error {
	if t.IsVar() {
		if !strings.Contains(t.Name(), "$") {
			return fmt.Errorf("%w: unscoped variable `%s", ErrInvariant, t.Name())
		}
		return nil
	}
	if t.IsAtom() {
		return nil
	}
	for _, e := range t.Elements() {
		if err := CheckGrounded(e); err != nil {
			return err
		}
	}
	return nil
}
