package egg

import "sync"

// Graph is a hash-consed union-find over canonical term strings: path
// compression on Find, union by size. It is the congruence-closure
// substrate the EGG engine builds its terms/facts/pairs pools on top of.
//
// This is hand-rolled rather than built on github.com/google/mangle's
// unionfind package: that package's UnifyTermsExtend is keyed to Mangle's
// own ast.BaseTerm/ast.Variable types, and adapting our independently
// typed term.Term into that shape at every call site would add a layer of
// translation for no benefit over a union-find keyed directly on the
// canonical string form we already compute.
type Graph struct {
	mu     sync.Mutex
	parent map[string]string
	size   map[string]int
}

// NewGraph returns an empty union-find.
func NewGraph() *Graph {
	return &Graph{
		parent: make(map[string]string),
		size:   make(map[string]int),
	}
}

// Add ensures id has a node of its own, if it does not already have one.
func (g *Graph) Add(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addLocked(id)
}

func (g *Graph) addLocked(id string) {
	if _, ok := g.parent[id]; !ok {
		g.parent[id] = id
		g.size[id] = 1
	}
}

// Find returns the representative of id's equivalence class, adding id if
// it is not yet present.
func (g *Graph) Find(id string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.findLocked(id)
}

func (g *Graph) findLocked(id string) string {
	g.addLocked(id)
	root := id
	for g.parent[root] != root {
		root = g.parent[root]
	}
	for g.parent[id] != root {
		next := g.parent[id]
		g.parent[id] = root
		id = next
	}
	return root
}

// Union merges a's and b's equivalence classes, smaller into larger.
func (g *Graph) Union(a, b string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ra, rb := g.findLocked(a), g.findLocked(b)
	if ra == rb {
		return
	}
	if g.size[ra] < g.size[rb] {
		ra, rb = rb, ra
	}
	g.parent[rb] = ra
	g.size[ra] += g.size[rb]
}

// Congruent reports whether a and b are in the same equivalence class.
func (g *Graph) Congruent(a, b string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.findLocked(a) == g.findLocked(b)
}

// Class returns every id known to be in the same equivalence class as id,
// id included.
func (g *Graph) Class(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	root := g.findLocked(id)
	var out []string
	for member := range g.parent {
		if g.findLocked(member) == root {
			out = append(out, member)
		}
	}
	return out
}
