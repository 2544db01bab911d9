package term

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse wraps every error Parse returns, so callers can distinguish a
// malformed-input failure from other error classes with errors.Is.
var ErrParse = errors.New("term: parse error")

// reader is a minimal recursive-descent reader over the s-expression
// grammar: term := atom | "(" term+ ")". Atoms are maximal runs of bytes
// that are neither whitespace nor parens; a leading backtick marks a
// pattern variable.
type reader struct {
	src []byte
	pos int
}

// Parse parses exactly one term from s, ignoring surrounding whitespace.
// It is an error for s to contain anything other than whitespace after the
// term, or for s to be empty/whitespace-only. Every returned error wraps
// ErrParse.
func Parse(s string) (Term, error) {
	r := &reader{src: []byte(s)}
	r.skipSpace()
	if r.pos >= len(r.src) {
		return Term{}, fmt.Errorf("%w: empty input", ErrParse)
	}
	t, err := r.readTerm()
	if err != nil {
		return Term{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	r.skipSpace()
	if r.pos != len(r.src) {
		return Term{}, fmt.Errorf("%w: trailing input starting at byte %d: %q", ErrParse, r.pos, string(r.src[r.pos:]))
	}
	return t, nil
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) && isSpace(r.src[r.pos]) {
		r.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (r *reader) readTerm() (Term, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return Term{}, fmt.Errorf("term: unexpected end of input")
	}
	if r.src[r.pos] == ')' {
		return Term{}, fmt.Errorf("term: unexpected ')' at byte %d", r.pos)
	}
	if r.src[r.pos] == '(' {
		return r.readList()
	}
	return r.readAtom()
}

func (r *reader) readList() (Term, error) {
	start := r.pos
	r.pos++ // consume '('
	var elems []Term
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return Term{}, fmt.Errorf("term: unterminated list starting at byte %d", start)
		}
		if r.src[r.pos] == ')' {
			r.pos++
			break
		}
		e, err := r.readTerm()
		if err != nil {
			return Term{}, err
		}
		elems = append(elems, e)
	}
	if len(elems) == 0 {
		return Term{}, fmt.Errorf("term: empty list at byte %d", start)
	}
	return NewList(elems...), nil
}

func (r *reader) readAtom() (Term, error) {
	start := r.pos
	for r.pos < len(r.src) && !isSpace(r.src[r.pos]) && r.src[r.pos] != '(' && r.src[r.pos] != ')' {
		r.pos++
	}
	if r.pos == start {
		return Term{}, fmt.Errorf("term: unexpected character %q at byte %d", r.src[r.pos], r.pos)
	}
	name := string(r.src[start:r.pos])
	if name == "`" {
		return Term{}, fmt.Errorf("term: bare backtick is not a valid atom at byte %d", start)
	}
	return NewAtom(name), nil
}

// MustParse parses s and panics on error; intended for tests and
// well-known literal constants, never for untrusted input.
func MustParse(s string) Term {
	t, err := Parse(strings.TrimSpace(s))
	if err != nil {
		panic(err)
	}
	return t
}
