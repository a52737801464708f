// Package layout computes the hierarchical position assignment for a task
// graph: dependency order left to right by level, parents centered over
// their children, no overlap, disconnected nodes segregated below the
// connected structure.
//
// The result is deterministic and idempotent: the only influence the
// current positions have is the tie-break ranking captured once at the
// start, and placement itself is a pure function of levels, ranking and
// node heights. Running the engine on its own output reproduces it
// exactly.
package layout

import (
	"math"
	"sort"
)

// Compute returns a new position for every node. Empty input yields an
// empty map. Cycles terminate via the level-relaxation iteration cap and
// receive a best-effort placement.
func Compute(nodes []Node, edges []Edge) map[string]Point {
	out := make(map[string]Point, len(nodes))
	if len(nodes) == 0 {
		return out
	}

	e := newEngine(nodes, edges)

	offset := 0.0
	for _, comp := range e.components() {
		height := e.layoutComponent(comp, offset, out)
		offset += height + ComponentGap
	}

	active, finished := e.isolated()
	offset = placeGrid(active, offset, ActiveCols, ActiveCellWidth, ActiveCellHeight, out)
	if len(active) > 0 && len(finished) > 0 {
		offset += MinGap
	}
	placeGrid(finished, offset, FinishedCols, FinishedCellWidth, FinishedCellHeight, out)

	return out
}

type engine struct {
	nodes  []Node
	byID   map[string]*Node
	adj    map[string][]string // directed, deduped
	undAdj map[string][]string // undirected view
	rank   map[string]int      // tie-break ranking from pre-layout positions
}

func newEngine(nodes []Node, edges []Edge) *engine {
	e := &engine{
		nodes:  nodes,
		byID:   make(map[string]*Node, len(nodes)),
		adj:    make(map[string][]string),
		undAdj: make(map[string][]string),
		rank:   make(map[string]int, len(nodes)),
	}
	for i := range nodes {
		e.byID[nodes[i].ID] = &nodes[i]
	}

	seen := make(map[[2]string]bool)
	for _, edge := range edges {
		if e.byID[edge.Source] == nil || e.byID[edge.Target] == nil {
			continue
		}
		key := [2]string{edge.Source, edge.Target}
		if seen[key] || edge.Source == edge.Target {
			continue
		}
		seen[key] = true
		e.adj[edge.Source] = append(e.adj[edge.Source], edge.Target)
		e.undAdj[edge.Source] = append(e.undAdj[edge.Source], edge.Target)
		e.undAdj[edge.Target] = append(e.undAdj[edge.Target], edge.Source)
	}

	// The ranking is captured once, from the positions the nodes hold
	// right now, and never recomputed from the algorithm's own output.
	order := make([]string, len(nodes))
	for i, n := range nodes {
		order[i] = n.ID
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := e.byID[order[i]], e.byID[order[j]]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.ID < b.ID
	})
	for i, id := range order {
		e.rank[id] = i
	}
	return e
}

func (e *engine) height(id string) float64 {
	if n := e.byID[id]; n != nil && n.Height > 0 {
		return n.Height
	}
	return DefaultNodeHeight
}

// sortByRank orders ids by the captured tie-break ranking, in place.
func (e *engine) sortByRank(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return e.rank[ids[i]] < e.rank[ids[j]] })
}

// components partitions the connected nodes (at least one incident edge)
// via breadth-first traversal of the undirected view. Components come back
// ordered by descending size, ties broken by smallest member rank, so
// stacking is stable and content-derived.
func (e *engine) components() [][]string {
	visited := make(map[string]bool)
	var comps [][]string

	for _, n := range e.nodes {
		if visited[n.ID] || len(e.undAdj[n.ID]) == 0 {
			continue
		}
		var comp []string
		queue := []string{n.ID}
		visited[n.ID] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, next := range e.undAdj[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		comps = append(comps, comp)
	}

	sort.SliceStable(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return e.minRank(comps[i]) < e.minRank(comps[j])
	})
	return comps
}

func (e *engine) minRank(ids []string) int {
	min := math.MaxInt
	for _, id := range ids {
		if e.rank[id] < min {
			min = e.rank[id]
		}
	}
	return min
}

// isolated returns the edge-less nodes split into active and finished,
// each in tie-break order.
func (e *engine) isolated() (active, finished []string) {
	for _, n := range e.nodes {
		if len(e.undAdj[n.ID]) > 0 {
			continue
		}
		if n.Done {
			finished = append(finished, n.ID)
		} else {
			active = append(active, n.ID)
		}
	}
	e.sortByRank(active)
	e.sortByRank(finished)
	return active, finished
}

// levels assigns each component node an integer level by iterated
// relaxation. The pass cap guarantees termination on cycles; a cyclic
// subgraph gets some bounded level assignment, not a canonical one.
func (e *engine) levels(comp []string) map[string]int {
	inComp := make(map[string]bool, len(comp))
	for _, id := range comp {
		inComp[id] = true
	}

	lv := make(map[string]int, len(comp))
	for pass := 0; pass < len(comp); pass++ {
		changed := false
		for _, u := range comp {
			for _, v := range e.adj[u] {
				if !inComp[v] {
					continue
				}
				if lv[v] <= lv[u] {
					lv[v] = lv[u] + 1
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return lv
}

// layoutComponent places one component with its top at yOffset and returns
// the component's total height.
func (e *engine) layoutComponent(comp []string, yOffset float64, out map[string]Point) float64 {
	inComp := make(map[string]bool, len(comp))
	for _, id := range comp {
		inComp[id] = true
	}
	lv := e.levels(comp)

	// Roots: in-degree zero within the component, in tie-break order.
	inDeg := make(map[string]int, len(comp))
	for _, u := range comp {
		for _, v := range e.adj[u] {
			if inComp[v] {
				inDeg[v]++
			}
		}
	}
	var roots []string
	for _, id := range comp {
		if inDeg[id] == 0 {
			roots = append(roots, id)
		}
	}
	e.sortByRank(roots)

	ys := make(map[string]float64, len(comp))
	visited := make(map[string]bool, len(comp))

	// place assigns id's subtree the band starting at start and returns
	// the band height. A node is positioned exactly once, by its first
	// visiting parent in tie-break order; later parents only read it.
	var place func(id string, start float64) float64
	place = func(id string, start float64) float64 {
		visited[id] = true

		children := make([]string, 0, len(e.adj[id]))
		for _, c := range e.adj[id] {
			if inComp[c] {
				children = append(children, c)
			}
		}
		e.sortByRank(children)

		cur := start
		for _, c := range children {
			if visited[c] {
				continue // cross-edge or diamond: already placed
			}
			cur += place(c, cur)
		}

		// Center over every placed direct child, including ones placed
		// earlier by another parent.
		minY, maxBottom := math.Inf(1), math.Inf(-1)
		for _, c := range children {
			cy, ok := ys[c]
			if !ok {
				continue
			}
			if cy < minY {
				minY = cy
			}
			if bottom := cy + e.height(c); bottom > maxBottom {
				maxBottom = bottom
			}
		}
		if math.IsInf(minY, 1) {
			// No children to center over: inherit the band start.
			ys[id] = start
		} else {
			ys[id] = (minY+maxBottom)/2 - e.height(id)/2
		}

		band := cur - start
		if own := e.height(id) + MinGap; own > band {
			band = own
		}
		return band
	}

	cur := 0.0
	for _, root := range roots {
		if !visited[root] {
			cur += place(root, cur)
		}
	}
	// Pure cycles have no in-degree-zero entry; sweep leftovers in
	// tie-break order so every node is placed.
	leftovers := make([]string, 0)
	for _, id := range comp {
		if !visited[id] {
			leftovers = append(leftovers, id)
		}
	}
	e.sortByRank(leftovers)
	for _, id := range leftovers {
		if !visited[id] {
			cur += place(id, cur)
		}
	}

	e.fixOverlap(comp, lv, ys)

	// Normalize the component top to zero, then apply the stack offset.
	minY := math.Inf(1)
	for _, id := range comp {
		if ys[id] < minY {
			minY = ys[id]
		}
	}
	height := 0.0
	for _, id := range comp {
		y := ys[id] - minY
		out[id] = Point{X: float64(lv[id]) * ColWidth, Y: y + yOffset}
		if bottom := y + e.height(id); bottom > height {
			height = bottom
		}
	}
	return height
}

// fixOverlap walks each level's nodes by assigned vertical position and
// pushes any node downward whose top would overlap the previous node's
// bottom plus the minimum gap. Strictly one-directional: nothing moves up,
// so already-correct relative order is preserved.
func (e *engine) fixOverlap(comp []string, lv map[string]int, ys map[string]float64) {
	byLevel := make(map[int][]string)
	for _, id := range comp {
		byLevel[lv[id]] = append(byLevel[lv[id]], id)
	}
	for _, ids := range byLevel {
		sort.Slice(ids, func(i, j int) bool {
			if ys[ids[i]] != ys[ids[j]] {
				return ys[ids[i]] < ys[ids[j]]
			}
			return e.rank[ids[i]] < e.rank[ids[j]]
		})
		floor := math.Inf(-1)
		for _, id := range ids {
			if ys[id] < floor {
				ys[id] = floor
			}
			floor = ys[id] + e.height(id) + MinGap
		}
	}
}

// placeGrid lays ids out in a fixed-column grid starting at yOffset and
// returns the offset just below the grid.
func placeGrid(ids []string, yOffset float64, cols int, cellW, cellH float64, out map[string]Point) float64 {
	for i, id := range ids {
		out[id] = Point{
			X: float64(i%cols) * cellW,
			Y: yOffset + float64(i/cols)*cellH,
		}
	}
	if len(ids) == 0 {
		return yOffset
	}
	rows := (len(ids) + cols - 1) / cols
	return yOffset + float64(rows)*cellH
}
