// Package egg implements the equality-saturation engine: a congruence
// closure over ground terms (built on Graph), plus the discharge step
// that tests whether a goal rule (an "idea") follows from the known facts
// and their synthesized equalities.
package egg

import (
	"sync"

	"github.com/google/uuid"

	"ddsearch/internal/rule"
	"ddsearch/internal/term"
	"ddsearch/internal/unify"
)

// Search is the EGG working set: every term it has seen (terms),
// every non-equality fact it has been given (facts), and the synthesized
// equality rule for every pair of terms the congruence closure has proven
// equal (pairs). Rebuild must be called after a batch of Add calls before
// Execute can see newly proven equalities.
type Search struct {
	mu sync.Mutex

	graph *Graph
	terms map[string]term.Term // canonical string -> term, every node ever added
	facts map[string]rule.Rule // canonical conclusion string -> non-equality fact
	pairs map[string]rule.Rule // canonical "(binary == a b)" string -> synthesized equality fact
}

// NewSearch returns an empty EGG working set.
func NewSearch() *Search {
	return &Search{
		graph: NewGraph(),
		terms: make(map[string]term.Term),
		facts: make(map[string]rule.Rule),
		pairs: make(map[string]rule.Rule),
	}
}

// Add ingests a fact rule r, which may carry pattern variables: if r is an
// equality fact its two sides are registered as terms and unioned in the
// congruence closure; otherwise r's conclusion is registered as both a term
// and a fact. Rules with premises are ignored.
func (s *Search) Add(r rule.Rule) {
	if !r.IsFact() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if lhs, rhs, ok := r.EqualitySides(); ok {
		s.registerLocked(lhs)
		s.registerLocked(rhs)
		s.graph.Union(lhs.Hash(), rhs.Hash())
		return
	}

	s.registerLocked(r.Conclusion)
	s.facts[r.Conclusion.Hash()] = r
}

func (s *Search) registerLocked(t term.Term) {
	id := t.Hash()
	s.terms[id] = t
	s.graph.addLocked(id)
}

// Rebuild restores congruence closure, then recomputes the pairs pool
// from the resulting classes: for every equivalence class with more than
// one member, every ordered pair of distinct members yields a synthesized
// "(binary == a b)" fact.
//
// Closure is restored by repeated canonicalization: any two registered
// terms that only differ in already-congruent subterms are unioned, and
// the pass repeats until no merges occur, so a merge of leaves propagates
// upward through every registered compound term that contains them.
func (s *Search) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.terms))
	for id := range s.terms {
		ids = append(ids, id)
	}
	for {
		merged := false
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				if s.graph.findLocked(a) == s.graph.findLocked(b) {
					continue
				}
				if s.congruentLocked(s.terms[a], s.terms[b]) {
					s.graph.Union(a, b)
					merged = true
				}
			}
		}
		if !merged {
			break
		}
	}

	classes := make(map[string][]string)
	for id := range s.terms {
		root := s.graph.findLocked(id)
		classes[root] = append(classes[root], id)
	}

	for _, members := range classes {
		if len(members) < 2 {
			continue
		}
		for _, a := range members {
			for _, b := range members {
				if a == b {
					continue
				}
				eq := equalityTerm(s.terms[a], s.terms[b])
				s.pairs[eq.Hash()] = rule.NewFact(eq)
			}
		}
	}
}

func equalityTerm(lhs, rhs term.Term) term.Term {
	return term.NewList(term.NewAtom("binary"), term.NewAtom("=="), lhs, rhs)
}

// Execute attempts to discharge goal, a zero-premise rule whose conclusion
// is either an equality term or a non-equality term, against the current
// terms/facts/pairs pools. It returns every witness rule the pools yield,
// and discharged=true when one of those witnesses is goal itself — the
// caller's cue to stop retrying the goal. A witness that differs from
// goal (a grounded instance of a still-variable-bearing goal) is a new
// fact in its own right, but leaves the goal outstanding: other
// instantiations may become provable as the e-graph grows.
//
// An equality goal whose two sides are congruent under the closure
// (covers symmetry, transitivity, and substitution of a known-equal
// subterm inside a compound term, e.g. f(x)=f(y) given x=y) is proved
// directly, goal itself the sole witness. Otherwise goal's conclusion is
// unified against the pairs pool, tried in both orientations since either
// the goal or the stored pair may be the side carrying a free pattern
// variable; whichever side played the pattern role is grounded under the
// resulting substitution, in a fresh scope, and that grounded rule is the
// witness — never the raw, still-variable-bearing pattern.
//
// A non-equality goal is discharged if some known fact is congruent to
// it. The goal itself (now known to hold) is the witness, so discharging
// it persists the new fact rather than redundantly reinserting the fact
// it was matched against.
func (s *Search) Execute(goal rule.Rule) (witnesses []rule.Rule, discharged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goalKey := goal.String()

	if lhs, rhs, ok := goal.EqualitySides(); ok {
		if s.congruentLocked(lhs, rhs) {
			return []rule.Rule{goal}, true
		}
		seen := make(map[string]struct{})
		yield := func(t term.Term) {
			w := rule.NewFact(t)
			key := w.String()
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			witnesses = append(witnesses, w)
			if key == goalKey {
				discharged = true
			}
		}
		for _, p := range s.pairs {
			// Whichever side carries a free pattern variable must play
			// the pattern role; try both orientations since either the
			// goal or a synthesized pair may be the one with variables.
			if sub, ok := unify.Match(goal.Conclusion, p.Conclusion); ok {
				yield(unify.Ground(goal.Conclusion, sub, uuid.New().String()))
			} else if sub, ok := unify.Match(p.Conclusion, goal.Conclusion); ok {
				yield(unify.Ground(p.Conclusion, sub, uuid.New().String()))
			}
		}
		return witnesses, discharged
	}

	for _, f := range s.facts {
		if s.congruentLocked(goal.Conclusion, f.Conclusion) {
			return []rule.Rule{goal}, true
		}
	}
	return nil, false
}

// congruentLocked reports whether a and b denote the same term under the
// current congruence closure: in the same union-find class as whole
// terms, or of identical arity with every pair of corresponding children
// congruent. Unlike a lookup in s.pairs (which only covers term pairs
// actually registered via Add), this also proves congruence for compound
// terms that only differ in an equal subterm, e.g. p(a) and p(b) once a
// and b are known equal.
func (s *Search) congruentLocked(a, b term.Term) bool {
	if a.Hash() == b.Hash() {
		return true
	}
	// Whole-term check first: Add unions whatever an equality fact's two
	// sides are, compound terms included, so an atom-vs-list shape
	// mismatch must not short-circuit a union the graph already holds.
	if s.graph.findLocked(a.Hash()) == s.graph.findLocked(b.Hash()) {
		return true
	}
	if a.IsAtom() || b.IsAtom() {
		return false
	}
	ae, be := a.Elements(), b.Elements()
	if len(ae) != len(be) {
		return false
	}
	for i := range ae {
		if !s.congruentLocked(ae[i], be[i]) {
			return false
		}
	}
	return true
}
