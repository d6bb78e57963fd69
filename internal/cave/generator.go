// Package cave generates ground-truth caves for exploration runs: simplex
// noise thresholded into rock, then smoothed with a few passes of cellular
// automata. The output grid contains only Free and Occupied cells and is
// read-only to drones.
package cave

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/banshee-data/cave.report/internal/grid"
)

// Params control generation. Zero values are replaced by the stock preset
// (fill 45%, noise scale 40, border 3, 20 smoothing passes) which produces
// connected winding caverns at the 250×180 reference size.
type Params struct {
	Width, Height int

	// FillPercent sets the noise threshold (FillPercent/50 − 1) at or below
	// which an interior cell starts free; the rest start as rock. Higher
	// values leave more open space, and 100 leaves no rock at all.
	FillPercent int

	// NoiseScale stretches the noise field; smaller values give larger
	// blobs.
	NoiseScale float64

	// Border is the width of the guaranteed-free margin on every edge.
	Border int

	// SmoothIters is the number of cellular-automata smoothing passes.
	SmoothIters int

	// Seed drives both the noise offsets and the stochastic birth/death
	// rules, making generation reproducible.
	Seed int64
}

// Smoothing rule set: a cell is born when more than birthThreshold of its
// 8 neighbours are rock, and dies when fewer than deathThreshold are —
// each subject to a percentage chance per pass.
const (
	birthThreshold = 4
	deathThreshold = 4
	birthChance    = 100
	deathChance    = 75
)

func (p *Params) withDefaults() Params {
	out := *p
	if out.FillPercent == 0 {
		out.FillPercent = 45
	}
	if out.NoiseScale == 0 {
		out.NoiseScale = 40
	}
	if out.Border == 0 {
		out.Border = 3
	}
	if out.SmoothIters == 0 {
		out.SmoothIters = 20
	}
	return out
}

func (p Params) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("cave dimensions must be positive, got %dx%d", p.Width, p.Height)
	}
	if p.FillPercent < 0 || p.FillPercent > 100 {
		return fmt.Errorf("fill percent must be in [0,100], got %d", p.FillPercent)
	}
	if p.Border < 0 || 2*p.Border >= p.Width || 2*p.Border >= p.Height {
		return fmt.Errorf("border %d leaves no interior in a %dx%d cave", p.Border, p.Width, p.Height)
	}
	if p.SmoothIters < 0 {
		return fmt.Errorf("smoothing iterations must be non-negative, got %d", p.SmoothIters)
	}
	return nil
}

// Generate produces a ground-truth cave from the given parameters.
func Generate(params Params) (*grid.Grid, error) {
	p := params.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	noise := opensimplex.New(p.Seed)
	offsetX := float64(rng.Intn(100000))
	offsetY := float64(rng.Intn(100000))

	g, err := grid.New(p.Width, p.Height)
	if err != nil {
		return nil, err
	}

	// Noise pass: interior cells whose noise value is at or below the
	// threshold start free, the rest start as rock. The border stays free.
	threshold := float64(p.FillPercent)/50 - 1
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if x < p.Border || x > p.Width-p.Border-1 || y < p.Border || y > p.Height-p.Border-1 {
				g.Set(x, y, grid.Free)
				continue
			}
			nx := float64(x) / float64(p.Width) * p.NoiseScale
			ny := float64(y) / float64(p.Height) * p.NoiseScale
			if noise.Eval2(nx+offsetX, ny+offsetY) <= threshold {
				g.Set(x, y, grid.Free)
			} else {
				g.Set(x, y, grid.Occupied)
			}
		}
	}

	for i := 0; i < p.SmoothIters; i++ {
		g = smooth(g, p.Border, rng)
	}
	return g, nil
}

// smooth applies one cellular-automata pass over the interior and returns
// the next generation.
func smooth(cur *grid.Grid, border int, rng *rand.Rand) *grid.Grid {
	next := cur.Clone()
	for y := border; y < cur.Height()-border; y++ {
		for x := border; x < cur.Width()-border; x++ {
			n := occupiedNeighbours8(cur, x, y)
			switch {
			case n > birthThreshold && chance(rng, birthChance):
				next.Set(x, y, grid.Occupied)
			case n < deathThreshold && chance(rng, deathChance):
				next.Set(x, y, grid.Free)
			}
		}
	}
	return next
}

func occupiedNeighbours8(g *grid.Grid, x, y int) int {
	count := 0
	for j := y - 1; j <= y+1; j++ {
		for i := x - 1; i <= x+1; i++ {
			if i == x && j == y {
				continue
			}
			if g.InBounds(i, j) && g.At(i, j) == grid.Occupied {
				count++
			}
		}
	}
	return count
}

func chance(rng *rand.Rand, percent int) bool {
	return rng.Intn(100) < percent
}

// FindFreeCell returns a free cell near the given fraction of the cave,
// scanning outward in rings of increasing Manhattan distance. It is how the driver places drones on
// traversable ground without peeking at exploration state.
func FindFreeCell(g *grid.Grid, fx, fy float64) (grid.Cell, error) {
	startX := int(fx * float64(g.Width()))
	startY := int(fy * float64(g.Height()))
	if startX >= g.Width() {
		startX = g.Width() - 1
	}
	if startY >= g.Height() {
		startY = g.Height() - 1
	}

	maxR := g.Width() + g.Height()
	for r := 0; r <= maxR; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx)+abs(dy) != r {
					continue
				}
				x, y := startX+dx, startY+dy
				if g.InBounds(x, y) && g.At(x, y) == grid.Free {
					return grid.Cell{X: x, Y: y}, nil
				}
			}
		}
	}
	return grid.Cell{}, fmt.Errorf("cave has no free cells")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
