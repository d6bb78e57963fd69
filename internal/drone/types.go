// Package drone implements the cooperative cave-exploration engine: sensing
// with line-of-sight occlusion, incremental frontier maintenance, frontier
// selection weighted against nearby peers, A* planning over each drone's
// private map, and proximity-triggered map merging.
//
// A Drone owns all of its mutable state. The simulation driver steps each
// drone once per tick and mediates communication between ticks; the drones
// themselves only ever read the shared ground-truth cave.
package drone

import (
	"fmt"
	"math"

	"github.com/banshee-data/cave.report/internal/grid"
)

// Config carries the fleet-wide exploration parameters and the ground-truth
// cave. It is immutable after construction; every drone in a run holds the
// same Config.
type Config struct {
	// Cave is the ground-truth grid of Free/Occupied cells. Read-only to
	// drones; only the sensor consults it.
	Cave *grid.Grid

	// SenseRadius is the maximum Euclidean range of the sensor, in cells.
	SenseRadius float64

	// CommRadius is the maximum Euclidean range at which two drones may
	// merge maps, in cells.
	CommRadius float64

	// CommCooldown is the minimum number of timesteps between two merges
	// of the same drone pair.
	CommCooldown int

	// DroneCount is the number of drones in the fleet; drone IDs are
	// integers in [0, DroneCount).
	DroneCount int
}

// DefaultSenseRadius, DefaultCommRadius and DefaultCommCooldown are the
// stock exploration parameters.
const (
	DefaultSenseRadius  = 10.0
	DefaultCommRadius   = 10.0
	DefaultCommCooldown = 25
)

// Validate checks the configuration preconditions. Failures are loud and
// happen before any drone is constructed; nothing is clamped silently.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if c.Cave == nil {
		return fmt.Errorf("config has no ground-truth cave")
	}
	if c.SenseRadius <= 0 {
		return fmt.Errorf("sense radius must be positive, got %v", c.SenseRadius)
	}
	if c.CommRadius <= 0 {
		return fmt.Errorf("communication radius must be positive, got %v", c.CommRadius)
	}
	if c.CommCooldown < 0 {
		return fmt.Errorf("communication cooldown must be non-negative, got %d", c.CommCooldown)
	}
	if c.DroneCount <= 0 {
		return fmt.Errorf("drone count must be positive, got %d", c.DroneCount)
	}
	return nil
}

// Pose is a drone's continuous position and heading. Bearing is in radians
// with 0 = north and π/2 = east, i.e. atan2(Δx, Δy).
type Pose struct {
	X, Y    float64
	Bearing float64
}

// distTo returns the Euclidean distance from the pose to (x, y).
func (p Pose) distTo(x, y float64) float64 {
	return math.Hypot(x-p.X, y-p.Y)
}

// PoseRecord is one entry of a drone's pose history.
type PoseRecord struct {
	Timestep int
	X, Y     float64
	Bearing  float64
}

// Target is the frontier cell a drone is navigating to, together with the
// timestep at which that cell was classified as a frontier.
type Target struct {
	Cell     grid.Cell
	Timestep int
}

// noTarget is the sentinel for "no current target".
var noTarget = Target{Cell: grid.Cell{X: -1, Y: -1}, Timestep: -1}

// valid reports whether the target refers to a real cell.
func (t Target) valid() bool { return t.Cell.X >= 0 && t.Cell.Y >= 0 }

// Stats is the exploration summary a drone exposes to the driver.
type Stats struct {
	DistTravelled     float64
	FreeCount         int
	OccupiedCount     int
	CommFreeCount     int
	CommOccupiedCount int
	Complete          bool
}
