package drone

import (
	"math"
	"sort"

	"github.com/banshee-data/cave.report/internal/grid"
)

// SenseCell is one cell returned by the sensor: integer coordinates plus the
// Euclidean range from the sensing pose at the time of the sweep.
type SenseCell struct {
	X, Y  int
	Range float64
}

// sense performs one visibility sweep from pose over the ground-truth cave.
// It returns the free and occupied cells within radius that have an
// unobstructed line of sight from the pose.
//
// Candidates are walked near-to-far while a list of occupied shadow casters
// grows, so every potential occluder is known before any cell it could
// shadow is tested. Occluded occupied cells are never returned but still
// join the caster list; they shadow their own neighbours.
func sense(pose Pose, cave *grid.Grid, radius float64) (free, occupied []SenseCell) {
	x0 := int(math.Floor(pose.X - radius))
	x1 := int(math.Ceil(pose.X + radius))
	y0 := int(math.Floor(pose.Y - radius))
	y1 := int(math.Ceil(pose.Y + radius))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > cave.Width()-1 {
		x1 = cave.Width() - 1
	}
	if y1 > cave.Height()-1 {
		y1 = cave.Height() - 1
	}

	var candidates []SenseCell
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := pose.distTo(float64(x), float64(y))
			if r > radius {
				continue
			}
			candidates = append(candidates, SenseCell{X: x, Y: y, Range: r})
		}
	}

	// Near-to-far, with the packed index as a deterministic tie-break.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Range != candidates[j].Range {
			return candidates[i].Range < candidates[j].Range
		}
		return cave.Pack(candidates[i].X, candidates[i].Y) < cave.Pack(candidates[j].X, candidates[j].Y)
	})

	var casters []SenseCell
	for _, dest := range candidates {
		occ := cave.At(dest.X, dest.Y) == grid.Occupied

		// Point-blank cells cannot be shadowed.
		if dest.Range <= 1 {
			if occ {
				occupied = append(occupied, dest)
				casters = append(casters, dest)
			} else {
				free = append(free, dest)
			}
			continue
		}

		blocked := false
		for _, c := range casters {
			if segmentHitsCell(pose.X, pose.Y, float64(dest.X)-pose.X, float64(dest.Y)-pose.Y, c.X, c.Y) {
				blocked = true
				break
			}
		}

		if !blocked {
			if occ {
				occupied = append(occupied, dest)
			} else {
				free = append(free, dest)
			}
		}
		if occ {
			casters = append(casters, dest)
		}
	}
	return free, occupied
}

// segmentHitsCell reports whether the segment (px+t·dx, py+t·dy), t ∈ [0,1],
// passes through the unit square centred on cell (cx, cy). Each of the four
// edge planes is intersected and the complementary coordinate checked
// against the opposite half-width. The half-width comparison is strict: a
// sightline that only grazes a square's corner is not blocked by it.
// Axis-parallel segments produce ±Inf or NaN parameters, which fail the
// range checks and fall through to the perpendicular planes. A segment that
// runs along the square's diagonal meets the planes only at corners, so it
// is caught by checking the segment point nearest the square's centre.
func segmentHitsCell(px, py, dx, dy float64, cx, cy int) bool {
	fx, fy := float64(cx), float64(cy)

	for _, planeX := range [2]float64{fx - 0.5, fx + 0.5} {
		t := (planeX - px) / dx
		if t >= 0 && t <= 1 {
			y := py + t*dy
			if y > fy-0.5 && y < fy+0.5 {
				return true
			}
		}
	}
	for _, planeY := range [2]float64{fy - 0.5, fy + 0.5} {
		t := (planeY - py) / dy
		if t >= 0 && t <= 1 {
			x := px + t*dx
			if x > fx-0.5 && x < fx+0.5 {
				return true
			}
		}
	}
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t := ((fx-px)*dx + (fy-py)*dy) / l2
		if t >= 0 && t <= 1 && math.Abs(px+t*dx-fx) < 0.5 && math.Abs(py+t*dy-fy) < 0.5 {
			return true
		}
	}
	return false
}
