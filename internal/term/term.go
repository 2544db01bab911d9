// Package term implements the s-expression term algebra: ground and
// variable-bearing atoms and lists, with structural equality and a
// canonical printed form used as a hash key.
package term

import "strings"

// Term is either an Atom or a List. The zero value is not a valid Term;
// construct terms with Parse, NewAtom, or NewList.
type Term struct {
	atom     string
	isAtom   bool
	isVar    bool
	elements []Term
}

// NewAtom builds an atom term. A name beginning with a backtick is a
// pattern variable; Name returns the name with the backtick stripped.
func NewAtom(name string) Term {
	if strings.HasPrefix(name, "`") {
		return Term{atom: name[1:], isAtom: true, isVar: true}
	}
	return Term{atom: name, isAtom: true}
}

// NewVar builds a pattern-variable atom from a bare identifier (no backtick).
func NewVar(name string) Term {
	return Term{atom: name, isAtom: true, isVar: true}
}

// NewList builds a list term from its elements.
func NewList(elems ...Term) Term {
	cp := make([]Term, len(elems))
	copy(cp, elems)
	return Term{elements: cp}
}

// IsAtom reports whether the term is an atom (as opposed to a list).
func (t Term) IsAtom() bool { return t.isAtom }

// IsVar reports whether the term is a pattern variable atom.
func (t Term) IsVar() bool { return t.isAtom && t.isVar }

// Name returns the atom's textual name (constant name, or variable name
// without the backtick). Name panics if t is a list; callers should check
// IsAtom first.
func (t Term) Name() string {
	if !t.isAtom {
		panic("term: Name called on a list term")
	}
	return t.atom
}

// Elements returns the list's sub-terms. Elements returns nil for an atom.
func (t Term) Elements() []Term {
	if t.isAtom {
		return nil
	}
	return t.elements
}

// Arity returns the number of sub-terms of a list, or 0 for an atom.
func (t Term) Arity() int { return len(t.elements) }

// Equal reports structural equality: same shape, same atom names/variable
// markers, recursively for lists.
func (t Term) Equal(o Term) bool {
	if t.isAtom != o.isAtom {
		return false
	}
	if t.isAtom {
		return t.isVar == o.isVar && t.atom == o.atom
	}
	if len(t.elements) != len(o.elements) {
		return false
	}
	for i := range t.elements {
		if !t.elements[i].Equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// String prints the canonical form: atoms as-is (variables with a leading
// backtick), lists as "(e1 e2 ...)" with single-space separators and no
// trailing whitespace.
func (t Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Term) write(b *strings.Builder) {
	if t.isAtom {
		if t.isVar {
			b.WriteByte('`')
		}
		b.WriteString(t.atom)
		return
	}
	b.WriteByte('(')
	for i, e := range t.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		e.write(b)
	}
	b.WriteByte(')')
}

// Hash returns the canonical string form, used as a map key by callers that
// need structural equality (e.g. the EGG engine's hash-consed e-nodes).
func (t Term) Hash() string { return t.String() }

// IsGround reports whether the term contains no pattern variables.
func (t Term) IsGround() bool {
	if t.isAtom {
		return !t.isVar
	}
	for _, e := range t.elements {
		if !e.IsGround() {
			return false
		}
	}
	return true
}

// IsList reports whether a term is a list (as opposed to an atom). Used,
// together with Arity and Elements, to recognize "(binary == lhs rhs)"-shaped
// terms.
func (t Term) IsList() bool { return !t.isAtom }

// HeadName returns the name of the first element if t is a non-empty list
// of atoms-headed form, and ok=true; otherwise ok=false.
func (t Term) HeadName() (string, bool) {
	if t.isAtom || len(t.elements) == 0 {
		return "", false
	}
	head := t.elements[0]
	if !head.isAtom {
		return "", false
	}
	return head.atom, true
}
