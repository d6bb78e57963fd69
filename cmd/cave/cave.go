// Command cave generates (or loads) a ground-truth cave, runs a cooperative
// drone exploration fleet over it, records telemetry to SQLite and renders
// post-run plots. An optional HTTP monitor exposes live state and charts.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/banshee-data/cave.report/internal/cave"
	"github.com/banshee-data/cave.report/internal/config"
	"github.com/banshee-data/cave.report/internal/drone"
	"github.com/banshee-data/cave.report/internal/grid"
	"github.com/banshee-data/cave.report/internal/monitor"
	"github.com/banshee-data/cave.report/internal/monitoring"
	"github.com/banshee-data/cave.report/internal/render"
	"github.com/banshee-data/cave.report/internal/sim"
	"github.com/banshee-data/cave.report/internal/telemetry"
	"github.com/banshee-data/cave.report/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the testable entry point.
func run(args []string) int {
	fs := flag.NewFlagSet("cave", flag.ContinueOnError)

	var (
		configPath = fs.String("config", "", "JSON run configuration file")
		width      = fs.Int("width", 0, "cave width in cells (overrides config)")
		height     = fs.Int("height", 0, "cave height in cells (overrides config)")
		droneCount = fs.Int("drones", 0, "number of drones (overrides config)")
		seed       = fs.Int64("seed", 0, "run seed (overrides config)")
		maxTicks   = fs.Int("ticks", 0, "tick budget (overrides config)")
		dbPath     = fs.String("db", "", "telemetry SQLite database path (empty = no telemetry)")
		plotDir    = fs.String("plots", "", "directory for post-run PNG plots (empty = no plots)")
		listenAddr = fs.String("listen", "", "serve the monitor on this address after the run")
		caveOut    = fs.String("cave-out", "", "write the generated cave to this raw file")
		caveIn     = fs.String("cave-in", "", "load the cave from this raw file instead of generating")
		quiet      = fs.Bool("quiet", false, "suppress diagnostic logging")
		showVer    = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVer {
		fmt.Printf("cave.report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return 0
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfg = loaded
	}
	applyFlagOverrides(cfg, *width, *height, *droneCount, *seed, *maxTicks, *caveIn)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ground, err := buildCave(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *caveOut != "" {
		if err := writeCave(ground, *caveOut); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		monitoring.Logf("cave written to %s", *caveOut)
	}

	droneCfg := &drone.Config{
		Cave:         ground,
		SenseRadius:  *cfg.Drones.SenseRadius,
		CommRadius:   *cfg.Drones.CommRadius,
		CommCooldown: *cfg.Drones.CommCooldown,
		DroneCount:   *cfg.Drones.Count,
	}

	starts, err := startCells(ground, *cfg.Drones.Count)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	runner, err := sim.New(droneCfg, starts, *cfg.Cave.Seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	started := time.Now()
	ticks := runner.Run(*cfg.Run.MaxTicks)
	monitoring.Logf("run %s: %d ticks in %v", runner.RunID(), ticks, time.Since(started).Round(time.Millisecond))

	if *dbPath != "" {
		if err := writeTelemetry(*dbPath, cfg, droneCfg, runner, started, ticks); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *plotDir != "" {
		if err := writePlots(ground, runner, *plotDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *listenAddr != "" {
		if err := monitor.NewWebServer(runner).Serve(*listenAddr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

func applyFlagOverrides(cfg *config.RunConfig, width, height, drones int, seed int64, ticks int, caveIn string) {
	if width > 0 {
		cfg.Cave.Width = &width
	}
	if height > 0 {
		cfg.Cave.Height = &height
	}
	if drones > 0 {
		cfg.Drones.Count = &drones
	}
	if seed != 0 {
		cfg.Cave.Seed = &seed
	}
	if ticks > 0 {
		cfg.Run.MaxTicks = &ticks
	}
	if caveIn != "" {
		cfg.Cave.File = &caveIn
	}
}

func buildCave(cfg *config.RunConfig) (*grid.Grid, error) {
	if cfg.Cave.File != nil && *cfg.Cave.File != "" {
		f, err := os.Open(*cfg.Cave.File)
		if err != nil {
			return nil, fmt.Errorf("open cave file: %w", err)
		}
		defer f.Close()
		return grid.ReadRaw(f, *cfg.Cave.Width, *cfg.Cave.Height)
	}

	params := cave.Params{
		Width:  *cfg.Cave.Width,
		Height: *cfg.Cave.Height,
		Seed:   *cfg.Cave.Seed,
	}
	if cfg.Cave.FillPercent != nil {
		params.FillPercent = *cfg.Cave.FillPercent
	}
	if cfg.Cave.NoiseScale != nil {
		params.NoiseScale = *cfg.Cave.NoiseScale
	}
	if cfg.Cave.Border != nil {
		params.Border = *cfg.Cave.Border
	}
	if cfg.Cave.SmoothIters != nil {
		params.SmoothIters = *cfg.Cave.SmoothIters
	}
	return cave.Generate(params)
}

func writeCave(g *grid.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cave file: %w", err)
	}
	defer f.Close()
	return g.WriteRaw(f)
}

// startCells places the fleet on free ground spread across the cave's
// diagonal, so rendezvous still has to be earned.
func startCells(g *grid.Grid, count int) ([]grid.Cell, error) {
	cells := make([]grid.Cell, count)
	for i := 0; i < count; i++ {
		frac := (float64(i) + 0.5) / float64(count)
		c, err := cave.FindFreeCell(g, frac, frac)
		if err != nil {
			return nil, err
		}
		cells[i] = c
	}
	return cells, nil
}

func writeTelemetry(path string, cfg *config.RunConfig, droneCfg *drone.Config, runner *sim.Runner, started time.Time, ticks int) error {
	store, err := telemetry.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	meta := telemetry.RunMeta{
		RunID:        runner.RunID(),
		Started:      started,
		CaveWidth:    droneCfg.Cave.Width(),
		CaveHeight:   droneCfg.Cave.Height(),
		DroneCount:   droneCfg.DroneCount,
		SenseRadius:  droneCfg.SenseRadius,
		CommRadius:   droneCfg.CommRadius,
		CommCooldown: droneCfg.CommCooldown,
		Seed:         *cfg.Cave.Seed,
	}
	if err := store.InsertRun(meta); err != nil {
		return err
	}
	for _, d := range runner.Drones() {
		if err := store.RecordDrone(runner.RunID(), d); err != nil {
			return err
		}
	}
	if err := store.RecordCoverage(runner.RunID(), runner.Coverage()); err != nil {
		return err
	}
	if err := store.FinishRun(runner.RunID(), ticks, runner.Done()); err != nil {
		return err
	}

	summary, err := store.Summarise(runner.RunID())
	if err != nil {
		return err
	}
	monitoring.Logf("telemetry: %d drones, mean distance %.1f (σ %.1f), %d free / %d occupied cells known",
		summary.DroneCount, summary.DistanceMean, summary.DistanceStd, summary.TotalFree, summary.TotalOcc)
	return nil
}

func writePlots(ground *grid.Grid, runner *sim.Runner, dir string) error {
	drones := runner.Drones()
	if _, err := render.TrajectoryPlot(ground, drones, dir); err != nil {
		return err
	}
	names := make([]string, len(drones))
	for i, d := range drones {
		names[i] = d.Name()
	}
	total := ground.Width() * ground.Height()
	if _, err := render.CoveragePlot(runner.Coverage(), names, total, dir); err != nil {
		return err
	}
	monitoring.Logf("plots written to %s", dir)
	return nil
}
