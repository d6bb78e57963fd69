// Package sim drives an exploration run: it steps every drone once per
// tick, records which peers are within communication range, and mediates
// pairwise map merges between ticks. Drones never talk to each other
// directly; all coordination flows through the runner.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/cave.report/internal/drone"
	"github.com/banshee-data/cave.report/internal/grid"
	"github.com/banshee-data/cave.report/internal/monitoring"
)

// Runner owns the fleet for one exploration run.
type Runner struct {
	mu sync.Mutex

	runID  string
	cfg    *drone.Config
	drones []*drone.Drone
	tick   int
	done   bool

	// coverage[t][id] is the number of cells drone id had classified after
	// tick t. Fed to telemetry and the monitor's charts.
	coverage [][]int
}

// New builds a fleet of drones at the given start cells. Per-drone random
// sources derive from the single run seed, so a (seed, cave, starts) triple
// reproduces a run exactly.
func New(cfg *drone.Config, starts []grid.Cell, seed int64) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(starts) != cfg.DroneCount {
		return nil, fmt.Errorf("%d start cells for %d drones", len(starts), cfg.DroneCount)
	}

	r := &Runner{
		runID: uuid.NewString(),
		cfg:   cfg,
	}
	for id, c := range starts {
		name := fmt.Sprintf("scout-%d", id)
		d, err := drone.NewWithRand(cfg, id, name, float64(c.X), float64(c.Y),
			rand.New(rand.NewSource(seed+int64(id))))
		if err != nil {
			return nil, fmt.Errorf("drone %d: %w", id, err)
		}
		r.drones = append(r.drones, d)
	}
	return r, nil
}

// RunID returns the unique identifier of this run.
func (r *Runner) RunID() string { return r.runID }

// Drones exposes the fleet for telemetry export after a run.
func (r *Runner) Drones() []*drone.Drone { return r.drones }

// Tick advances the whole fleet one timestep and performs any due merges.
// It returns false once every drone has completed.
func (r *Runner) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return false
	}

	// Peer proximity is evaluated on pre-step poses so every drone's
	// selection sees the same fleet layout.
	poses := make([]drone.Pose, len(r.drones))
	for i, d := range r.drones {
		poses[i] = d.Pose()
	}
	for i := range r.drones {
		if r.drones[i].Complete() {
			continue
		}
		for j := range r.drones {
			if i == j {
				continue
			}
			if dist(poses[i], poses[j]) <= r.cfg.CommRadius {
				r.drones[i].RecordNearbyPeer(poses[j].X, poses[j].Y)
			}
		}
	}

	for _, d := range r.drones {
		d.Step()
	}

	// Rendezvous: merge maps pairwise for drones in range whose cooldowns
	// have elapsed. Both directions run back to back while neither drone
	// is mid-step.
	for i := 0; i < len(r.drones); i++ {
		for j := i + 1; j < len(r.drones); j++ {
			a, b := r.drones[i], r.drones[j]
			if a.Complete() || b.Complete() {
				continue
			}
			if dist(a.Pose(), b.Pose()) > r.cfg.CommRadius {
				continue
			}
			if !a.MayCommunicateWith(b.ID()) || !b.MayCommunicateWith(a.ID()) {
				continue
			}
			bMap, bFrontiers := b.ShareMap()
			if err := a.CombineWith(bMap, bFrontiers, b.ID()); err != nil {
				monitoring.Logf("merge %d<-%d failed: %v", a.ID(), b.ID(), err)
				continue
			}
			aMap, aFrontiers := a.ShareMap()
			if err := b.CombineWith(aMap, aFrontiers, a.ID()); err != nil {
				monitoring.Logf("merge %d<-%d failed: %v", b.ID(), a.ID(), err)
			}
		}
	}

	known := make([]int, len(r.drones))
	allDone := true
	for i, d := range r.drones {
		known[i] = d.KnownCells()
		if !d.Complete() {
			allDone = false
		}
	}
	r.coverage = append(r.coverage, known)
	r.tick++

	if allDone {
		r.done = true
		monitoring.Logf("run %s: fleet complete after %d ticks", r.runID, r.tick)
	}
	return !r.done
}

// Run ticks until the fleet completes or maxTicks elapse, returning the
// number of ticks executed.
func (r *Runner) Run(maxTicks int) int {
	for t := 0; t < maxTicks; t++ {
		if !r.Tick() {
			return t + 1
		}
	}
	monitoring.Logf("run %s: tick budget %d exhausted", r.runID, maxTicks)
	return maxTicks
}

// Done reports whether every drone has completed.
func (r *Runner) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Coverage returns a copy of the per-tick known-cell series.
func (r *Runner) Coverage() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]int, len(r.coverage))
	for i, row := range r.coverage {
		out[i] = append([]int(nil), row...)
	}
	return out
}

func dist(a, b drone.Pose) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
