package drone

import (
	"fmt"

	"github.com/banshee-data/cave.report/internal/grid"
)

// CombineWith folds a peer's map into this drone's state. The driver
// enforces the rendezvous preconditions (within CommRadius, cooldown
// elapsed) and guarantees neither drone is mid-step.
//
// Self's classification dominates on conflict; in particular a cell self
// knows as Occupied is never downgraded by a peer's Free, preserving
// obstacle memory. Cells learned from the peer bump the comm counters only
// on the Unknown→known transition, so repeating a merge is a no-op.
//
// The peer's frontier timestamps are deliberately not copied: every
// frontier produced by the merge is stamped with timestep 0 so the recency
// term of target selection prefers locally discovered frontiers.
func (d *Drone) CombineWith(peerMap *grid.Grid, peerFrontiers map[int]int, peerID int) error {
	if peerID == d.id {
		return fmt.Errorf("drone %d cannot merge with itself", d.id)
	}
	if peerID < 0 || peerID >= len(d.lastComm) {
		return fmt.Errorf("peer id %d outside fleet [0,%d)", peerID, len(d.lastComm))
	}
	if peerMap.Width() != d.internal.Width() || peerMap.Height() != d.internal.Height() {
		return fmt.Errorf("peer map is %dx%d, want %dx%d",
			peerMap.Width(), peerMap.Height(), d.internal.Width(), d.internal.Height())
	}
	m := d.internal
	var recheck []grid.Cell
	var nbuf [4]grid.Cell

	enqueueFrontierNeighbours := func(x, y int) {
		for _, n := range m.Neighbours4(x, y, nbuf[:0]) {
			if m.At(n.X, n.Y) == grid.Frontier {
				recheck = append(recheck, n)
			}
		}
	}

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			switch peerMap.At(x, y) {
			case grid.Unknown:

			case grid.Occupied:
				if m.At(x, y) == grid.Unknown {
					m.Set(x, y, grid.Occupied)
					d.occupiedCount++
					d.commOccupiedCount++
					enqueueFrontierNeighbours(x, y)
				}

			case grid.Free:
				switch m.At(x, y) {
				case grid.Free:
				case grid.Unknown:
					m.Set(x, y, grid.Free)
					d.freeCount++
					d.commFreeCount++
					enqueueFrontierNeighbours(x, y)
				case grid.Frontier:
					// Already counted as free at sense time; only the
					// frontier status is retired.
					d.frontiers.remove(m.Pack(x, y))
					m.Set(x, y, grid.Free)
					enqueueFrontierNeighbours(x, y)
				}

			case grid.Frontier:
				if m.At(x, y) == grid.Unknown {
					m.Set(x, y, grid.Free)
					d.freeCount++
					d.commFreeCount++
					recheck = append(recheck, grid.Cell{X: x, Y: y})
				}
			}
		}
	}

	// Re-evaluate every queued cell. Survivors (still bordering Unknown)
	// are stamped with timestep 0; frontiers whose unknowns were all filled
	// in by the peer are retired to Free.
	for _, c := range recheck {
		i := m.PackCell(c)
		if m.HasUnknownNeighbour4(c.X, c.Y) {
			m.Set(c.X, c.Y, grid.Frontier)
			d.frontiers.insert(i, 0)
		} else if m.At(c.X, c.Y) == grid.Frontier {
			m.Set(c.X, c.Y, grid.Free)
			d.frontiers.remove(i)
		}
	}

	d.lastComm[peerID] = d.timestep
	d.communicated = true
	return nil
}
