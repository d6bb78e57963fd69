package drone

import (
	"container/heap"
	"math"

	"github.com/banshee-data/cave.report/internal/grid"
)

// plan runs A* over the drone's internal map between two cells. Free and
// Frontier cells are traversable; everything else is a wall. The search
// walks goal→start so the reconstructed sequence already reads start→goal;
// the returned path excludes the start cell and its front element is the
// next step toward the goal. When start equals goal the path is that single
// cell. An unreachable goal yields a nil path.
//
// Movement is 8-connected with Euclidean edge costs (1 for cardinals, √2
// for diagonals); a diagonal is admitted only when both orthogonal cells it
// cuts between are traversable. The heuristic is Manhattan distance, which
// over-estimates on 8-connected grids, so the result may be slightly
// suboptimal; callers must not depend on optimality.
func (d *Drone) plan(start, goal grid.Cell) []grid.Cell {
	m := d.internal

	if start == goal {
		return []grid.Cell{goal}
	}

	// Search from the goal toward the start: cameFrom then chains each cell
	// to its goal-side predecessor and reconstruction needs no reversal.
	org := m.PackCell(goal)
	dst := m.PackCell(start)

	open := &cellHeap{}
	heap.Init(open)
	heap.Push(open, cellEntry{index: org, f: manhattan(goal, start)})

	gScore := map[int]float64{org: 0}
	cameFrom := make(map[int]int)
	closed := make(map[int]bool)

	var neighbours [8]grid.Cell
	for open.Len() > 0 {
		cur := heap.Pop(open).(cellEntry)
		if closed[cur.index] {
			continue
		}
		if cur.index == dst {
			path := []grid.Cell{m.UnpackCell(dst)}
			for i := dst; ; {
				prev, ok := cameFrom[i]
				if !ok {
					break
				}
				path = append(path, m.UnpackCell(prev))
				i = prev
			}
			// path[0] is the start cell itself; callers want the next step
			// at the front.
			return path[1:]
		}
		closed[cur.index] = true

		c := m.UnpackCell(cur.index)
		for _, n := range d.traversableNeighbours(c, neighbours[:0]) {
			ni := m.PackCell(n)
			if closed[ni] {
				continue
			}
			tentative := gScore[cur.index] + euclidean(c, n)
			if best, seen := gScore[ni]; seen && tentative >= best {
				continue
			}
			cameFrom[ni] = cur.index
			gScore[ni] = tentative
			heap.Push(open, cellEntry{index: ni, f: tentative + manhattan(n, m.UnpackCell(dst))})
		}
	}
	return nil
}

// traversableNeighbours appends the Free/Frontier neighbours of c to dst,
// admitting a diagonal only when both orthogonal neighbours it cuts between
// are traversable.
func (d *Drone) traversableNeighbours(c grid.Cell, dst []grid.Cell) []grid.Cell {
	m := d.internal
	x, y := c.X, c.Y

	walkable := func(x, y int) bool {
		if !m.InBounds(x, y) {
			return false
		}
		s := m.At(x, y)
		return s == grid.Free || s == grid.Frontier
	}

	left := walkable(x-1, y)
	right := walkable(x+1, y)
	down := walkable(x, y-1)
	up := walkable(x, y+1)

	if left {
		dst = append(dst, grid.Cell{X: x - 1, Y: y})
	}
	if right {
		dst = append(dst, grid.Cell{X: x + 1, Y: y})
	}
	if down {
		dst = append(dst, grid.Cell{X: x, Y: y - 1})
	}
	if up {
		dst = append(dst, grid.Cell{X: x, Y: y + 1})
	}
	if down && left && walkable(x-1, y-1) {
		dst = append(dst, grid.Cell{X: x - 1, Y: y - 1})
	}
	if down && right && walkable(x+1, y-1) {
		dst = append(dst, grid.Cell{X: x + 1, Y: y - 1})
	}
	if up && left && walkable(x-1, y+1) {
		dst = append(dst, grid.Cell{X: x - 1, Y: y + 1})
	}
	if up && right && walkable(x+1, y+1) {
		dst = append(dst, grid.Cell{X: x + 1, Y: y + 1})
	}
	return dst
}

// closestCell snaps the drone's continuous pose to the nearest of the four
// integer cells in the surrounding 2×2 block, clamped to the grid (poses may
// sit exactly on the far boundary).
func (d *Drone) closestCell() grid.Cell {
	m := d.internal
	x0 := clampInt(int(math.Floor(d.pose.X)), 0, m.Width()-1)
	x1 := clampInt(int(math.Ceil(d.pose.X)), 0, m.Width()-1)
	y0 := clampInt(int(math.Floor(d.pose.Y)), 0, m.Height()-1)
	y1 := clampInt(int(math.Ceil(d.pose.Y)), 0, m.Height()-1)

	best := grid.Cell{X: x0, Y: y0}
	bestDist := math.MaxFloat64
	for i := x0; i <= x1; i++ {
		for j := y0; j <= y1; j++ {
			dist := d.pose.distTo(float64(i), float64(j))
			if dist < bestDist {
				bestDist = dist
				best = grid.Cell{X: i, Y: j}
			}
		}
	}
	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func manhattan(a, b grid.Cell) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}

func euclidean(a, b grid.Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}

// cellEntry is an open-set entry; stale entries are skipped via the closed
// set on pop. Ties on f break toward the lower packed index so the search
// is deterministic.
type cellEntry struct {
	index int
	f     float64
}

type cellHeap []cellEntry

func (h cellHeap) Len() int { return len(h) }

func (h cellHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].index < h[j].index
}

func (h cellHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cellHeap) Push(x any) { *h = append(*h, x.(cellEntry)) }

func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
