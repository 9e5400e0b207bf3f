package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/mulderive/internal/ir"
)

// CycleWarning reports records whose field types refer back to themselves.
//
// Cycles are warnings, not errors: a record holding Box<Self> is legal, but
// the per-field bounds synthesized for it recurse into the record's own
// operator impl and may overflow trait resolution.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["Tree", "Node", "Tree"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles finds record cycles through field types.
//
// The algorithm:
//  1. Build record → record graph from the identifiers in each field type
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a potential cycle warning
//
// Nodes and edges are visited in declaration order so the warnings are
// deterministic.
func AnalyzeCycles(decls []*ir.TypeDecl) []CycleWarning {
	if len(decls) == 0 {
		return []CycleWarning{}
	}

	graph := buildFieldGraph(decls)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// fieldGraph maps record name → records named in its field types. order
// keeps declaration order for iteration.
type fieldGraph struct {
	order []string
	edges map[string][]string
}

func buildFieldGraph(decls []*ir.TypeDecl) fieldGraph {
	g := fieldGraph{edges: make(map[string][]string)}
	known := make(map[string]bool, len(decls))
	for _, d := range decls {
		if !known[d.Name] {
			known[d.Name] = true
			g.order = append(g.order, d.Name)
		}
	}

	for _, d := range decls {
		seen := make(map[string]bool)
		for _, name := range g.edges[d.Name] {
			seen[name] = true
		}
		for _, f := range d.Fields() {
			for _, ident := range f.Type.Idents() {
				if known[ident] && !seen[ident] {
					seen[ident] = true
					g.edges[d.Name] = append(g.edges[d.Name], ident)
				}
			}
		}
	}
	return g
}

func hasSelfLoop(node string, g fieldGraph) bool {
	for _, neighbor := range g.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(g fieldGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, orderSCC(scc, g.order))
		}
	}

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// orderSCC sorts SCC members by declaration order.
func orderSCC(scc []string, order []string) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	out := make([]string, 0, len(scc))
	for _, n := range order {
		if members[n] {
			out = append(out, n)
		}
	}
	return out
}

func cycleSCCToWarning(scc []string, g fieldGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("Self-referential record detected: %s → %s", name, name),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, g)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Potential record cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath walks SCC members from the first one until it gets
// back to the start.
func reconstructCyclePath(scc []string, g fieldGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range g.edges[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
