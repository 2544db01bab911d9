// Package ds implements the forward-chaining rule engine: given a pool of
// rules and a stream of facts, it resolves each non-fact rule's leading
// premise against known facts, producing new (shorter) rules one
// resolution step at a time.
package ds

import (
	"sync"

	"github.com/google/uuid"

	"ddsearch/internal/rule"
	"ddsearch/internal/term"
	"ddsearch/internal/unify"
)

// Search holds the working pool of known rules and de-duplicates the
// derivations Execute has already yielded, so re-running at a fixed
// point produces no new rows.
type Search struct {
	mu    sync.Mutex
	rules map[string]rule.Rule
	seen  map[string]struct{}
}

// NewSearch returns an empty rule pool.
func NewSearch() *Search {
	return &Search{
		rules: make(map[string]rule.Rule),
		seen:  make(map[string]struct{}),
	}
}

// Add inserts r into the pool if it is not already present, keyed by its
// canonical string form. It reports whether r was newly added.
func (s *Search) Add(r rule.Rule) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.String()
	if _, ok := s.rules[key]; ok {
		return false
	}
	s.rules[key] = r
	return true
}

// Execute performs one forward-chaining resolution pass over the current
// pool: for every non-fact rule A and every fact rule B, it attempts to
// unify A's first premise against B's conclusion. A successful match
// yields a new rule with that premise discharged, the remaining premises
// and conclusion grounded under a fresh scope (so that any variable left
// free by the partial match gets a name that cannot collide with any
// other derivation). Each newly derived rule not already seen is passed to
// handler; a nil return means the derivation was durably persisted and is
// recorded as seen, while a non-nil return aborts the pass immediately
// and is returned to the caller, with the derivation left unrecorded so a
// later pass yields it again. Execute returns the number of derivations
// recorded as seen. Execute itself also returns an error when resolve
// produces a malformed grounding (unify.ErrInvariant); callers treat
// either error as ending the tick.
func (s *Search) Execute(handler func(rule.Rule) error) (int, error) {
	s.mu.Lock()
	facts := make([]rule.Rule, 0)
	nonFacts := make([]rule.Rule, 0)
	for _, r := range s.rules {
		if r.IsFact() {
			facts = append(facts, r)
		} else {
			nonFacts = append(nonFacts, r)
		}
	}
	s.mu.Unlock()

	count := 0
	for _, a := range nonFacts {
		for _, b := range facts {
			derived, ok, err := resolve(a, b)
			if err != nil {
				return count, err
			}
			if !ok {
				continue
			}
			key := derived.String()

			s.mu.Lock()
			_, already := s.seen[key]
			s.mu.Unlock()
			if already {
				continue
			}

			if err := handler(derived); err != nil {
				return count, err
			}
			s.mu.Lock()
			s.seen[key] = struct{}{}
			s.mu.Unlock()
			count++
		}
	}
	return count, nil
}

// resolve attempts the single resolution step of A's first premise against
// B's conclusion. B must be a fact (zero premises); ok is false if B has
// premises, if A is already a fact, or if unification fails. err is
// non-nil only if grounding produced a term unify.CheckGrounded rejects,
// which would indicate a bug in scope generation rather than an ordinary
// failed match.
func resolve(a, b rule.Rule) (rule.Rule, bool, error) {
	if a.IsFact() || !b.IsFact() {
		return rule.Rule{}, false, nil
	}
	sub, ok := unify.Match(a.Premises[0], b.Conclusion)
	if !ok {
		return rule.Rule{}, false, nil
	}

	scope := uuid.New().String()
	newPremises := make([]term.Term, 0, len(a.Premises)-1)
	for _, p := range a.Premises[1:] {
		g := unify.Ground(p, sub, scope)
		if err := unify.CheckGrounded(g); err != nil {
			return rule.Rule{}, false, err
		}
		newPremises = append(newPremises, g)
	}
	concl := unify.Ground(a.Conclusion, sub, scope)
	if err := unify.CheckGrounded(concl); err != nil {
		return rule.Rule{}, false, err
	}

	return rule.Rule{Premises: newPremises, Conclusion: concl}, true, nil
}
