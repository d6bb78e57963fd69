package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/cave.report/internal/cave"
	"github.com/banshee-data/cave.report/internal/config"
	"github.com/banshee-data/cave.report/internal/grid"
)

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "run.db")
	caveFile := filepath.Join(dir, "cave.raw")

	code := run([]string{
		"-width", "32", "-height", "24",
		"-drones", "2",
		"-seed", "7",
		"-ticks", "3000",
		"-db", db,
		"-cave-out", caveFile,
		"-quiet",
	})
	if code != 0 {
		t.Fatalf("run exited %d", code)
	}

	if _, err := os.Stat(db); err != nil {
		t.Errorf("telemetry database missing: %v", err)
	}
	info, err := os.Stat(caveFile)
	if err != nil {
		t.Fatalf("cave file missing: %v", err)
	}
	if info.Size() != 32*24 {
		t.Errorf("cave file is %d bytes, want %d", info.Size(), 32*24)
	}

	// The written cave loads back as valid ground truth.
	f, err := os.Open(caveFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := grid.ReadRaw(f, 32, 24); err != nil {
		t.Errorf("written cave does not parse: %v", err)
	}
}

func TestRunLoadsCaveFile(t *testing.T) {
	dir := t.TempDir()
	caveFile := filepath.Join(dir, "cave.raw")

	g, err := cave.Generate(cave.Params{Width: 20, Height: 20, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(caveFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.WriteRaw(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	code := run([]string{
		"-width", "20", "-height", "20",
		"-drones", "1",
		"-ticks", "2000",
		"-cave-in", caveFile,
		"-quiet",
	})
	if code != 0 {
		t.Fatalf("run exited %d", code)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"drones": {"count": 0}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if code := run([]string{"-config", path, "-quiet"}); code == 0 {
		t.Errorf("invalid config should fail the run")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, 64, 48, 3, 11, 500, "x.raw")
	if *cfg.Cave.Width != 64 || *cfg.Cave.Height != 48 {
		t.Errorf("dims = %dx%d", *cfg.Cave.Width, *cfg.Cave.Height)
	}
	if *cfg.Drones.Count != 3 || *cfg.Cave.Seed != 11 || *cfg.Run.MaxTicks != 500 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Cave.File == nil || *cfg.Cave.File != "x.raw" {
		t.Errorf("cave file override not applied")
	}
}
