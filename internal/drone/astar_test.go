package drone

import (
	"math"
	"testing"

	"github.com/banshee-data/cave.report/internal/grid"
)

// planDrone returns a bare drone whose internal map is entirely Free.
func planDrone(t *testing.T, w, h int) *Drone {
	t.Helper()
	cfg := testConfig(t, w, h, 2, 1)
	d := bareDrone(t, cfg, 0)
	d.internal.Fill(grid.Free)
	return d
}

// pathLength sums the Euclidean step costs of start→path.
func pathLength(start grid.Cell, path []grid.Cell) float64 {
	total := 0.0
	prev := start
	for _, c := range path {
		total += euclidean(prev, c)
		prev = c
	}
	return total
}

// TestPlanDirection pins the corrected path contract: the front element is
// one step from the start, the last element is the goal, and consecutive
// elements are adjacent.
func TestPlanDirection(t *testing.T) {
	t.Parallel()

	d := planDrone(t, 12, 12)
	start := grid.Cell{X: 1, Y: 1}
	goal := grid.Cell{X: 9, Y: 4}

	path := d.plan(start, goal)
	if len(path) == 0 {
		t.Fatalf("no path on an open grid")
	}
	if path[len(path)-1] != goal {
		t.Errorf("path ends at %v, want goal %v", path[len(path)-1], goal)
	}
	prev := start
	for i, c := range path {
		dx := abs(c.X - prev.X)
		dy := abs(c.Y - prev.Y)
		if dx > 1 || dy > 1 || (dx == 0 && dy == 0) {
			t.Fatalf("step %d: %v -> %v is not a single move", i, prev, c)
		}
		prev = c
	}
}

// TestPlanOpenGridBounds: on an open grid the path length is at least the
// straight-line distance and at most √2 times the Manhattan distance. The
// planner's heuristic is inadmissible on 8-connected grids, so exact
// optimality is deliberately not asserted.
func TestPlanOpenGridBounds(t *testing.T) {
	t.Parallel()

	d := planDrone(t, 20, 20)
	cases := []struct{ sx, sy, gx, gy int }{
		{1, 1, 18, 18},
		{1, 10, 18, 10},
		{3, 15, 12, 2},
		{0, 0, 19, 7},
	}
	for _, tc := range cases {
		start := grid.Cell{X: tc.sx, Y: tc.sy}
		goal := grid.Cell{X: tc.gx, Y: tc.gy}
		path := d.plan(start, goal)
		if len(path) == 0 {
			t.Fatalf("no path %v -> %v on an open grid", start, goal)
		}
		length := pathLength(start, path)
		straight := euclidean(start, goal)
		manh := manhattan(start, goal)
		if length < straight-1e-9 {
			t.Errorf("%v -> %v: length %v below straight-line %v", start, goal, length, straight)
		}
		if length > math.Sqrt2*manh+1e-9 {
			t.Errorf("%v -> %v: length %v above √2·manhattan %v", start, goal, length, math.Sqrt2*manh)
		}
	}
}

// TestPlanNoCornerCutting: a diagonal squeezed between two walls is not
// traversable.
func TestPlanNoCornerCutting(t *testing.T) {
	t.Parallel()

	d := planDrone(t, 4, 4)
	// Wall off everything except the two diagonal cells and their pinch.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			d.internal.Set(x, y, grid.Occupied)
		}
	}
	d.internal.Set(0, 0, grid.Free)
	d.internal.Set(1, 1, grid.Free)

	if path := d.plan(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1}); len(path) != 0 {
		t.Errorf("diagonal between walls should be impassable, got %v", path)
	}

	// Opening one orthogonal neighbour still leaves the pinch: both must
	// be traversable.
	d.internal.Set(1, 0, grid.Free)
	if path := d.plan(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1}); len(path) == 0 {
		t.Errorf("path should exist once (1,0) opens")
	}
}

// TestPlanUnreachable: a walled-off goal yields an empty path.
func TestPlanUnreachable(t *testing.T) {
	t.Parallel()

	d := planDrone(t, 9, 9)
	// A closed box around the goal.
	for _, c := range [][2]int{{5, 5}, {6, 5}, {7, 5}, {5, 6}, {7, 6}, {5, 7}, {6, 7}, {7, 7}} {
		d.internal.Set(c[0], c[1], grid.Occupied)
	}
	if path := d.plan(grid.Cell{X: 1, Y: 1}, grid.Cell{X: 6, Y: 6}); path != nil {
		t.Errorf("boxed goal should be unreachable, got %v", path)
	}
}

// TestPlanStartEqualsGoal returns the goal itself.
func TestPlanStartEqualsGoal(t *testing.T) {
	t.Parallel()

	d := planDrone(t, 5, 5)
	path := d.plan(grid.Cell{X: 2, Y: 2}, grid.Cell{X: 2, Y: 2})
	if len(path) != 1 || path[0] != (grid.Cell{X: 2, Y: 2}) {
		t.Errorf("got %v, want the goal cell alone", path)
	}
}

// TestClosestCell snaps the continuous pose to the nearest integer cell.
func TestClosestCell(t *testing.T) {
	t.Parallel()

	d := planDrone(t, 10, 10)
	cases := []struct {
		x, y float64
		want grid.Cell
	}{
		{3.0, 3.0, grid.Cell{X: 3, Y: 3}},
		{3.2, 3.8, grid.Cell{X: 3, Y: 4}},
		{5.6, 2.1, grid.Cell{X: 6, Y: 2}},
	}
	for _, tc := range cases {
		d.pose = Pose{X: tc.x, Y: tc.y}
		if got := d.closestCell(); got != tc.want {
			t.Errorf("closestCell(%v,%v) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
