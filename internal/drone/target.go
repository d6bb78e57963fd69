package drone

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/cave.report/internal/grid"
)

// bearingSpread is the standard deviation of the Gaussian used to penalise
// frontier bearings already covered by a nearby peer. Together with the
// squared recency term it shapes how the fleet disperses; treat as pinned.
const bearingSpread = math.Pi / 8

var bearingPDF = distuv.Normal{Mu: 0, Sigma: bearingSpread}

// peerBearing is a nearby peer reduced to its bearing and distance from the
// selecting drone.
type peerBearing struct {
	theta float64
	dist  float64
}

// peerBearings converts the per-tick nearby peer list into bearing/distance
// pairs, skipping peers that share the drone's exact position.
func (d *Drone) peerBearings() []peerBearing {
	var out []peerBearing
	for _, p := range d.nearbyPeers {
		if p[0] == d.pose.X && p[1] == d.pose.Y {
			continue
		}
		out = append(out, peerBearing{
			theta: bearingTo(d.pose.X, d.pose.Y, p[0], p[1]),
			dist:  d.pose.distTo(p[0], p[1]),
		})
	}
	return out
}

// bearingTo returns the compass bearing from (x0, y0) to (x1, y1):
// atan2(Δx, Δy) normalised to [0, 2π), so 0 = north and π/2 = east.
func bearingTo(x0, y0, x1, y1 float64) float64 {
	theta := math.Atan2(x1-x0, y1-y0)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// selectFrontier picks the next navigation target from the frontier index.
// With no nearby peers the most recently classified frontier wins (nearest
// on ties). With peers present, frontiers are sampled with probability
// proportional to distWeight · tsWeight² · bearingWeight, which steers the
// drone toward close, fresh frontiers in directions no peer already covers.
// The second return is false when the index is empty.
func (d *Drone) selectFrontier() (Target, bool) {
	if d.frontiers.empty() {
		return noTarget, false
	}
	peers := d.peerBearings()
	if len(peers) == 0 {
		return d.latestFrontier()
	}

	indices := d.frontiers.sortedIndices()

	minTs, maxTs := math.MaxInt, math.MinInt
	minDist, maxDist := math.MaxFloat64, 0.0
	for _, i := range indices {
		ts, _ := d.frontiers.timestep(i)
		if ts < minTs {
			minTs = ts
		}
		if ts > maxTs {
			maxTs = ts
		}
		c := d.internal.UnpackCell(i)
		dist := d.pose.distTo(float64(c.X), float64(c.Y))
		if dist < minDist {
			minDist = dist
		}
		if dist > maxDist {
			maxDist = dist
		}
	}
	distRange := maxDist - minDist
	tsRange := float64(maxTs - minTs)

	type weighted struct {
		target     Target
		cumulative float64
	}
	entries := make([]weighted, 0, len(indices))
	total := 0.0
	for _, i := range indices {
		ts, _ := d.frontiers.timestep(i)
		c := d.internal.UnpackCell(i)
		dist := d.pose.distTo(float64(c.X), float64(c.Y))
		theta := bearingTo(d.pose.X, d.pose.Y, float64(c.X), float64(c.Y))

		bearingWeight := 1.0
		for _, p := range peers {
			diff := math.Abs(theta - p.theta)
			bearingWeight *= 1 - bearingPDF.Prob(diff)
		}
		if bearingWeight < 0 {
			bearingWeight = 0
		}

		distWeight := 1.0
		if distRange != 0 {
			distWeight = 1 - (dist-minDist)/distRange
		}
		tsWeight := 1.0
		if tsRange != 0 {
			tsWeight = float64(ts-minTs) / tsRange
		}

		w := distWeight * tsWeight * tsWeight * bearingWeight
		total += w
		entries = append(entries, weighted{
			target:     Target{Cell: c, Timestep: ts},
			cumulative: total,
		})
	}

	if total <= 0 {
		return d.latestFrontier()
	}

	pick := d.rng.Float64() * total
	for _, e := range entries {
		if pick <= e.cumulative {
			return e.target, true
		}
	}
	// Float round-off can leave pick a hair above the last cumulative sum.
	return entries[len(entries)-1].target, true
}

// latestFrontier returns the frontier with the largest recorded timestep,
// breaking ties toward the cell nearest the drone.
func (d *Drone) latestFrontier() (Target, bool) {
	if d.frontiers.empty() {
		return noTarget, false
	}
	maxTs := math.MinInt
	for _, i := range d.frontiers.sortedIndices() {
		ts, _ := d.frontiers.timestep(i)
		if ts > maxTs {
			maxTs = ts
		}
	}

	best := noTarget
	bestDist := math.MaxFloat64
	for _, i := range d.frontiers.sortedIndices() {
		ts, _ := d.frontiers.timestep(i)
		if ts != maxTs {
			continue
		}
		c := d.internal.UnpackCell(i)
		dist := d.pose.distTo(float64(c.X), float64(c.Y))
		if dist < bestDist {
			bestDist = dist
			best = Target{Cell: c, Timestep: ts}
		}
	}
	return best, true
}

// acquireTarget runs the select-then-plan loop. A frontier that cannot be
// reached through known terrain is pruned: dropped from the index and
// downgraded to plain Free in the map, after which selection re-runs. The
// return is false once the index drains, at which point exploration is done.
func (d *Drone) acquireTarget() bool {
	for {
		t, ok := d.selectFrontier()
		if !ok {
			d.target = noTarget
			d.targetPath = nil
			return false
		}
		path := d.plan(d.closestCell(), t.Cell)
		if len(path) == 0 {
			d.frontiers.remove(d.internal.PackCell(t.Cell))
			d.internal.Set(t.Cell.X, t.Cell.Y, grid.Free)
			continue
		}
		d.target = t
		d.targetPath = path
		return true
	}
}
