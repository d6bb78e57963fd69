// Package render draws post-run PNGs: the cave with each drone's trajectory
// overlaid, and the fleet's coverage curves. Rendering is a collaborator of
// the engine, never a dependency of it.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cave.report/internal/drone"
	"github.com/banshee-data/cave.report/internal/grid"
)

// caveXYZ adapts a ground-truth grid to plotter.GridXYZ; occupied cells
// carry Z=1, free cells Z=0.
type caveXYZ struct {
	g *grid.Grid
}

func (c caveXYZ) Dims() (int, int) { return c.g.Width(), c.g.Height() }

func (c caveXYZ) Z(col, row int) float64 {
	if c.g.At(col, row) == grid.Occupied {
		return 1
	}
	return 0
}

func (c caveXYZ) X(col int) float64 { return float64(col) }

func (c caveXYZ) Y(row int) float64 { return float64(row) }

// rockPalette maps free space to white and rock to near-black.
type rockPalette struct{}

func (rockPalette) Colors() []color.Color {
	return []color.Color{
		color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		color.RGBA{R: 0x30, G: 0x28, B: 0x40, A: 0xff},
	}
}

// TrajectoryPlot writes a PNG of the cave with every drone's path history
// drawn over it.
func TrajectoryPlot(cave *grid.Grid, drones []*drone.Drone, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Cave exploration trajectories"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	p.Add(plotter.NewHeatMap(caveXYZ{g: cave}, rockPalette{}))

	colors := generateColors(len(drones))
	for i, d := range drones {
		history := d.PathHistory()
		pts := make(plotter.XYs, 0, len(history))
		for _, rec := range history {
			pts = append(pts, plotter.XY{X: rec.X, Y: rec.Y})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(d.Name(), line)
	}
	p.Legend.Top = true

	out := filepath.Join(outDir, "trajectories.png")
	if err := p.Save(12*vg.Inch, 12*vg.Inch*vg.Length(cave.Height())/vg.Length(cave.Width()), out); err != nil {
		return "", fmt.Errorf("save trajectory plot: %w", err)
	}
	return out, nil
}

// CoveragePlot writes a PNG of known-cell fraction per drone over ticks.
func CoveragePlot(coverage [][]int, names []string, totalCells int, outDir string) (string, error) {
	if len(coverage) == 0 {
		return "", fmt.Errorf("no coverage samples to plot")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Exploration coverage"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "known cells / total"
	p.Y.Max = 1

	colors := generateColors(len(names))
	for id, name := range names {
		pts := make(plotter.XYs, 0, len(coverage))
		for t := range coverage {
			pts = append(pts, plotter.XY{
				X: float64(t),
				Y: float64(coverage[t][id]) / float64(totalCells),
			})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", err
		}
		line.Color = colors[id]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	out := filepath.Join(outDir, "coverage.png")
	if err := p.Save(10*vg.Inch, 5*vg.Inch, out); err != nil {
		return "", fmt.Errorf("save coverage plot: %w", err)
	}
	return out, nil
}

// generateColors creates a palette of distinct colors, one per drone.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.8, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range).
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
