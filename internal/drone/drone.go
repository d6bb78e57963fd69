package drone

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/banshee-data/cave.report/internal/grid"
	"github.com/banshee-data/cave.report/internal/monitoring"
)

// Drone is one member of the exploration fleet. All fields are owned
// exclusively by the drone and mutated only by Step or CombineWith; the
// driver serialises those calls.
type Drone struct {
	cfg  *Config
	id   int
	name string

	pose     Pose
	complete bool
	timestep int

	internal  *grid.Grid
	frontiers *frontierIndex

	target     Target
	targetPath []grid.Cell

	history      []PoseRecord
	lastComm     []int
	nearbyPeers  [][2]float64
	communicated bool

	distTravelled     float64
	freeCount         int
	occupiedCount     int
	commFreeCount     int
	commOccupiedCount int

	rng  *rand.Rand
	logf func(format string, v ...interface{})
}

// New constructs a drone at the continuous start position (x, y). The
// initial sense sweep, frontier discovery and target acquisition happen
// here, and the starting pose is recorded as the first pose-history entry.
func New(cfg *Config, id int, name string, x, y float64) (*Drone, error) {
	return NewWithRand(cfg, id, name, x, y, rand.New(rand.NewSource(time.Now().UnixNano()^int64(id)<<32)))
}

// NewWithRand is New with an injected random source, used by the driver to
// make whole runs reproducible from a single seed.
func NewWithRand(cfg *Config, id int, name string, x, y float64, rng *rand.Rand) (*Drone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id < 0 || id >= cfg.DroneCount {
		return nil, fmt.Errorf("drone id %d outside fleet [0,%d)", id, cfg.DroneCount)
	}
	if x < 0 || x > float64(cfg.Cave.Width()) || y < 0 || y > float64(cfg.Cave.Height()) {
		return nil, fmt.Errorf("start position (%v,%v) outside %dx%d cave", x, y, cfg.Cave.Width(), cfg.Cave.Height())
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}

	internal, err := grid.New(cfg.Cave.Width(), cfg.Cave.Height())
	if err != nil {
		return nil, err
	}

	d := &Drone{
		cfg:       cfg,
		id:        id,
		name:      name,
		pose:      Pose{X: x, Y: y},
		internal:  internal,
		frontiers: newFrontierIndex(),
		target:    noTarget,
		lastComm:  make([]int, cfg.DroneCount),
		rng:       rng,
		logf:      monitoring.Tagged(name),
	}

	free, occ := sense(d.pose, cfg.Cave, cfg.SenseRadius)
	d.integrate(free, occ)
	d.acquireTarget()
	d.recordPose()
	return d, nil
}

// Step advances the drone one timestep: stagger the launch, check for
// completion, validate or reacquire the target, advance one path cell,
// sense, integrate, and record the pose. Once complete it is a strict no-op.
func (d *Drone) Step() {
	if d.complete {
		return
	}

	// One idle launch tick per drone id spaces the fleet out.
	if d.timestep-1 <= d.id {
		d.recordPose()
		d.nearbyPeers = d.nearbyPeers[:0]
		return
	}

	if d.frontiers.empty() {
		d.finish()
		d.nearbyPeers = nil
		return
	}

	if !d.targetStillFrontier() || d.communicated {
		d.communicated = false
		if !d.acquireTarget() {
			d.finish()
			d.nearbyPeers = nil
			return
		}
	} else {
		next := d.targetPath[0]
		d.targetPath = d.targetPath[1:]
		d.setPosition(float64(next.X), float64(next.Y))
	}

	free, occ := sense(d.pose, d.cfg.Cave, d.cfg.SenseRadius)
	d.integrate(free, occ)
	d.recordPose()
	d.nearbyPeers = d.nearbyPeers[:0]
}

// targetStillFrontier reports whether the current target remains a frontier
// in the internal map. A merged-in or sensed-out target forces reselection.
func (d *Drone) targetStillFrontier() bool {
	if !d.target.valid() {
		return false
	}
	if len(d.targetPath) == 0 {
		return false
	}
	return d.internal.At(d.target.Cell.X, d.target.Cell.Y) == grid.Frontier
}

// setPosition moves the drone to (x, y), updating bearing and the odometer.
func (d *Drone) setPosition(x, y float64) {
	d.distTravelled += d.pose.distTo(x, y)
	d.pose.Bearing = math.Atan2(x-d.pose.X, y-d.pose.Y)
	d.pose.X = x
	d.pose.Y = y
}

// recordPose appends the current pose to the history and advances the
// timestep.
func (d *Drone) recordPose() {
	d.history = append(d.history, PoseRecord{
		Timestep: d.timestep,
		X:        d.pose.X,
		Y:        d.pose.Y,
		Bearing:  d.pose.Bearing,
	})
	d.timestep++
}

// finish marks exploration complete and logs the final statistics once.
func (d *Drone) finish() {
	d.complete = true
	d.target = noTarget
	d.targetPath = nil
	d.logf("search complete")
	d.logf("distance travelled: %.1f - timesteps: %d", d.distTravelled, d.timestep)
	d.logf("free cells: %d - occupied cells: %d", d.freeCount, d.occupiedCount)
}

// RecordNearbyPeer registers the position of a peer within communication
// range for the upcoming tick. The list resets when the tick ends.
func (d *Drone) RecordNearbyPeer(x, y float64) {
	d.nearbyPeers = append(d.nearbyPeers, [2]float64{x, y})
}

// MayCommunicateWith reports whether the per-pair cooldown has elapsed
// since this drone last merged with the given peer.
func (d *Drone) MayCommunicateWith(peerID int) bool {
	if peerID < 0 || peerID >= len(d.lastComm) {
		return false
	}
	return d.timestep >= d.lastComm[peerID]+d.cfg.CommCooldown
}

// ID returns the drone's fleet index.
func (d *Drone) ID() int { return d.id }

// Name returns the drone's label.
func (d *Drone) Name() string { return d.name }

// Pose returns the drone's current continuous pose.
func (d *Drone) Pose() Pose { return d.pose }

// Timestep returns the drone's current timestep.
func (d *Drone) Timestep() int { return d.timestep }

// Complete reports whether the drone has finished exploring.
func (d *Drone) Complete() bool { return d.complete }

// Stats returns the drone's exploration counters.
func (d *Drone) Stats() Stats {
	return Stats{
		DistTravelled:     d.distTravelled,
		FreeCount:         d.freeCount,
		OccupiedCount:     d.occupiedCount,
		CommFreeCount:     d.commFreeCount,
		CommOccupiedCount: d.commOccupiedCount,
		Complete:          d.complete,
	}
}

// PathHistory returns a copy of the recorded (timestep, pose) sequence.
func (d *Drone) PathHistory() []PoseRecord {
	out := make([]PoseRecord, len(d.history))
	copy(out, d.history)
	return out
}

// ShareMap exposes the internal map and a frontier-index snapshot for a
// merge. The returned grid is the live map; callers must treat it as
// read-only and only pass it to a peer's CombineWith.
func (d *Drone) ShareMap() (*grid.Grid, map[int]int) {
	return d.internal, d.frontiers.snapshot()
}

// MapSnapshot returns a copy of the internal map for rendering and
// monitoring.
func (d *Drone) MapSnapshot() *grid.Grid { return d.internal.Clone() }

// KnownCells returns how many cells the drone has classified, counting
// frontiers as free.
func (d *Drone) KnownCells() int { return d.freeCount + d.occupiedCount }

// CurrentTarget returns the active navigation target and whether one is
// set.
func (d *Drone) CurrentTarget() (Target, bool) {
	return d.target, d.target.valid()
}
