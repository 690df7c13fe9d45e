package ecs

import (
	"sort"
)

// graph is the dependency graph over registered systems, indexed by
// registration order.
type graph struct {
	entries []*systemEntry
	edges   [][]int  // successors, ascending
	preds   [][]int  // predecessors, ascending
	reach   []bitset // transitive successors
}

func newGraph(entries []*systemEntry) *graph {
	n := len(entries)
	return &graph{
		entries: entries,
		edges:   make([][]int, n),
		preds:   make([][]int, n),
		reach:   make([]bitset, n),
	}
}

func (g *graph) hasEdge(from, to int) bool {
	for _, v := range g.edges[from] {
		if v == to {
			return true
		}
	}
	return false
}

func (g *graph) addEdge(from, to int) {
	if g.hasEdge(from, to) {
		return
	}
	g.edges[from] = insertSorted(g.edges[from], to)
	g.preds[to] = insertSorted(g.preds[to], from)
}

func insertSorted(list []int, v int) []int {
	i := sort.SearchInts(list, v)
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

// addReachable adds from->to to the graph and updates the transitive closure.
// The caller guarantees the edge does not close a cycle.
func (g *graph) addReachable(from, to int) {
	g.addEdge(from, to)
	var gained bitset
	gained.set(to)
	gained.or(g.reach[to])
	for w := range g.entries {
		if w == from || g.reach[w].has(from) {
			g.reach[w].or(gained)
		}
	}
}

// explicitEdges resolves Before/After constraints to edges.
func (g *graph) explicitEdges() error {
	index := make(map[SystemId]int, len(g.entries))
	for i, entry := range g.entries {
		index[entry.id] = i
	}
	for i, entry := range g.entries {
		for _, id := range entry.config.before {
			j, ok := index[id]
			if !ok {
				return &UnknownSystemError{System: entry.id, Reference: id}
			}
			g.addEdge(i, j)
		}
		for _, id := range entry.config.after {
			j, ok := index[id]
			if !ok {
				return &UnknownSystemError{System: entry.id, Reference: id}
			}
			g.addEdge(j, i)
		}
	}
	return nil
}

// findCycle returns one cycle in the current edges, in edge order, or nil.
// Nodes and successors are visited in registration order so the reported
// cycle is stable.
func (g *graph) findCycle() []int {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(g.entries))
	var stack []int
	var cycle []int

	var visit func(u int) bool
	visit = func(u int) bool {
		color[u] = grey
		stack = append(stack, u)
		for _, v := range g.edges[u] {
			switch color[v] {
			case grey:
				for k := len(stack) - 1; k >= 0; k-- {
					if stack[k] == v {
						cycle = append([]int(nil), stack[k:]...)
						break
					}
				}
				return true
			case white:
				if visit(v) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[u] = black
		return false
	}

	for u := range g.entries {
		if color[u] == white && visit(u) {
			return cycle
		}
	}
	return nil
}

// closure computes reachability for the explicit edges of an acyclic graph.
func (g *graph) closure() {
	order := g.topoOrder()
	for k := len(order) - 1; k >= 0; k-- {
		u := order[k]
		for _, v := range g.edges[u] {
			g.reach[u].set(v)
			g.reach[u].or(g.reach[v])
		}
	}
}

// conflictEdges orders every conflicting pair that is not already ordered.
// The earlier registered system runs first unless an explicit path already
// puts the later one ahead.
func (g *graph) conflictEdges() {
	for i := range g.entries {
		for j := i + 1; j < len(g.entries); j++ {
			if !g.entries[i].access.ConflictsWith(g.entries[j].access) {
				continue
			}
			if g.reach[i].has(j) || g.reach[j].has(i) {
				continue
			}
			g.addReachable(i, j)
		}
	}
}

// topoOrder is Kahn's algorithm, always taking the lowest registration index
// that is ready.
func (g *graph) topoOrder() []int {
	n := len(g.entries)
	indegree := make([]int, n)
	for u := range g.entries {
		for _, v := range g.edges[u] {
			indegree[v]++
		}
	}
	var ready []int
	for u := 0; u < n; u++ {
		if indegree[u] == 0 {
			ready = append(ready, u)
		}
	}
	order := make([]int, 0, n)
	for len(ready) > 0 {
		u := ready[0]
		ready = ready[1:]
		order = append(order, u)
		for _, v := range g.edges[u] {
			indegree[v]--
			if indegree[v] == 0 {
				ready = insertSorted(ready, v)
			}
		}
	}
	return order
}

// stages assigns each system the stage one past its latest predecessor and
// groups them, members in registration order.
func (g *graph) stages() [][]int {
	stageOf := make([]int, len(g.entries))
	depth := 0
	for _, u := range g.topoOrder() {
		s := 0
		for _, p := range g.preds[u] {
			if stageOf[p]+1 > s {
				s = stageOf[p] + 1
			}
		}
		stageOf[u] = s
		if s+1 > depth {
			depth = s + 1
		}
	}

	stages := make([][]int, depth)
	for u := range g.entries {
		stages[stageOf[u]] = append(stages[stageOf[u]], u)
	}
	return stages
}

// buildGraph runs the full pipeline: explicit edges, cycle check, conflict
// edges, stage assignment.
func buildGraph(entries []*systemEntry) (*graph, [][]int, error) {
	g := newGraph(entries)
	if err := g.explicitEdges(); err != nil {
		return nil, nil, err
	}
	if cycle := g.findCycle(); cycle != nil {
		ids := make([]SystemId, len(cycle))
		for k, u := range cycle {
			ids[k] = entries[u].id
		}
		return nil, nil, &CycleError{Systems: ids}
	}
	g.closure()
	g.conflictEdges()
	return g, g.stages(), nil
}
