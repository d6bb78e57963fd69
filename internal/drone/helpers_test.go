package drone

import (
	"math"
	"math/rand"
	"testing"

	"github.com/banshee-data/cave.report/internal/grid"
)

// testConfig builds a Config over an all-free cave of the given size.
func testConfig(t *testing.T, w, h int, senseRadius float64, droneCount int) *Config {
	t.Helper()
	cave := openCave(t, w, h)
	return &Config{
		Cave:         cave,
		SenseRadius:  senseRadius,
		CommRadius:   DefaultCommRadius,
		CommCooldown: DefaultCommCooldown,
		DroneCount:   droneCount,
	}
}

// newTestDrone constructs a drone with a fixed random seed and muted logs.
func newTestDrone(t *testing.T, cfg *Config, id int, x, y float64) *Drone {
	t.Helper()
	d, err := NewWithRand(cfg, id, "test", x, y, rand.New(rand.NewSource(42+int64(id))))
	if err != nil {
		t.Fatalf("new drone: %v", err)
	}
	d.logf = func(string, ...interface{}) {}
	return d
}

// bareDrone builds a drone with an empty internal map and no initial sense,
// for tests that sculpt internal state directly.
func bareDrone(t *testing.T, cfg *Config, id int) *Drone {
	t.Helper()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	internal, err := grid.New(cfg.Cave.Width(), cfg.Cave.Height())
	if err != nil {
		t.Fatalf("internal map: %v", err)
	}
	return &Drone{
		cfg:       cfg,
		id:        id,
		name:      "bare",
		internal:  internal,
		frontiers: newFrontierIndex(),
		target:    noTarget,
		lastComm:  make([]int, cfg.DroneCount),
		rng:       rand.New(rand.NewSource(7)),
		logf:      func(string, ...interface{}) {},
	}
}

// checkInvariants asserts the structural invariants that must hold between
// any two calls into the engine.
func checkInvariants(t *testing.T, d *Drone) {
	t.Helper()
	m := d.internal

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			i := m.Pack(x, y)
			isFrontier := m.At(x, y) == grid.Frontier
			if isFrontier != d.frontiers.contains(i) {
				t.Fatalf("frontier index out of sync at (%d,%d): map=%v index=%v",
					x, y, m.At(x, y), d.frontiers.contains(i))
			}
			if isFrontier && !m.HasUnknownNeighbour4(x, y) {
				t.Fatalf("frontier (%d,%d) has no unknown neighbour", x, y)
			}
			if d.cfg.Cave.At(x, y) == grid.Occupied {
				if s := m.At(x, y); s == grid.Free || s == grid.Frontier {
					t.Fatalf("ground-truth wall (%d,%d) believed %v", x, y, s)
				}
			}
		}
	}

	// Odometer equals the summed step lengths of the pose history.
	var travelled float64
	for i := 1; i < len(d.history); i++ {
		a, b := d.history[i-1], d.history[i]
		travelled += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	if math.Abs(travelled-d.distTravelled) > 1e-9 {
		t.Fatalf("dist travelled %v != path history sum %v", d.distTravelled, travelled)
	}
}

// frontierCells returns the sorted packed indices currently in the index.
func frontierCells(d *Drone) []int {
	return d.frontiers.sortedIndices()
}
