package drone

import "github.com/banshee-data/cave.report/internal/grid"

// integrate folds one sensor sweep into the internal map and repairs the
// frontier set around the newly-known region.
//
// Order matters: state upgrades first, then the frontier recheck. The
// recheck set contains every sensed free cell plus every previously-Frontier
// 4-neighbour of any sensed cell; those neighbours are demoted to Free and
// dropped from the index before the recheck re-elevates whichever of them
// still border Unknown.
func (d *Drone) integrate(free, occupied []SenseCell) {
	m := d.internal

	for _, f := range free {
		if m.At(f.X, f.Y) == grid.Unknown {
			m.Set(f.X, f.Y, grid.Free)
			d.freeCount++
		}
	}
	for _, o := range occupied {
		if m.At(o.X, o.Y) == grid.Unknown {
			m.Set(o.X, o.Y, grid.Occupied)
			d.occupiedCount++
		}
	}

	var recheck []grid.Cell
	var nbuf [4]grid.Cell

	demoteNeighbours := func(x, y int) {
		for _, n := range m.Neighbours4(x, y, nbuf[:0]) {
			if m.At(n.X, n.Y) == grid.Frontier {
				m.Set(n.X, n.Y, grid.Free)
				d.frontiers.remove(m.PackCell(n))
				recheck = append(recheck, n)
			}
		}
	}

	for _, f := range free {
		if m.At(f.X, f.Y) == grid.Frontier {
			m.Set(f.X, f.Y, grid.Free)
			d.frontiers.remove(m.Pack(f.X, f.Y))
		}
		demoteNeighbours(f.X, f.Y)
		recheck = append(recheck, grid.Cell{X: f.X, Y: f.Y})
	}
	for _, o := range occupied {
		demoteNeighbours(o.X, o.Y)
	}

	for _, c := range recheck {
		if m.At(c.X, c.Y) == grid.Free && m.HasUnknownNeighbour4(c.X, c.Y) {
			m.Set(c.X, c.Y, grid.Frontier)
			d.frontiers.insert(m.PackCell(c), d.timestep)
		}
	}
}
