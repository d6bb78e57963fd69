package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if *cfg.Drones.SenseRadius != 10.0 || *cfg.Drones.CommRadius != 10.0 || *cfg.Drones.CommCooldown != 25 {
		t.Errorf("stock exploration parameters drifted: %+v", cfg.Drones)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{
		"cave": {"width": 64, "height": 48, "seed": 9},
		"drones": {"count": 2}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Cave.Width != 64 || *cfg.Cave.Height != 48 {
		t.Errorf("cave dims = %dx%d, want 64x48", *cfg.Cave.Width, *cfg.Cave.Height)
	}
	if *cfg.Drones.Count != 2 {
		t.Errorf("drone count = %d, want 2", *cfg.Drones.Count)
	}
	// Untouched fields keep defaults.
	if *cfg.Drones.CommCooldown != DefaultCommCooldown {
		t.Errorf("comm cooldown = %d, want default %d", *cfg.Drones.CommCooldown, DefaultCommCooldown)
	}
	if *cfg.Run.MaxTicks != DefaultMaxTicks {
		t.Errorf("max ticks = %d, want default %d", *cfg.Run.MaxTicks, DefaultMaxTicks)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"drones": {"cont": 3}}`)
	if _, err := Load(path); err == nil {
		t.Errorf("typoed field should be rejected")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"zero drones", `{"drones": {"count": 0}}`},
		{"negative sense radius", `{"drones": {"sense_radius": -2}}`},
		{"negative cooldown", `{"drones": {"comm_cooldown": -1}}`},
		{"zero width", `{"cave": {"width": 0}}`},
		{"fill out of range", `{"cave": {"fill_percent": 120}}`},
		{"zero ticks", `{"run": {"max_ticks": 0}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := Load(path); err == nil {
				t.Errorf("config %s should be rejected", tc.body)
			}
		})
	}
}

func TestLoadRequiresJSONExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), ".json") {
		t.Errorf("non-JSON extension should be rejected, got %v", err)
	}
}
