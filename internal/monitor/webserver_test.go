package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banshee-data/cave.report/internal/drone"
	"github.com/banshee-data/cave.report/internal/grid"
	"github.com/banshee-data/cave.report/internal/monitoring"
	"github.com/banshee-data/cave.report/internal/sim"
)

func init() {
	monitoring.SetLogger(nil)
}

func testRunner(t *testing.T, ticks int) *sim.Runner {
	t.Helper()
	cave, err := grid.New(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	cave.Fill(grid.Free)
	cfg := &drone.Config{
		Cave:         cave,
		SenseRadius:  3,
		CommRadius:   5,
		CommCooldown: 10,
		DroneCount:   2,
	}
	r, err := sim.New(cfg, []grid.Cell{{X: 3, Y: 3}, {X: 12, Y: 12}}, 1)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	for i := 0; i < ticks; i++ {
		r.Tick()
	}
	return r
}

func TestStateEndpoint(t *testing.T) {
	t.Parallel()

	ws := NewWebServer(testRunner(t, 5))
	srv := httptest.NewServer(ws)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var snap sim.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Tick != 5 || len(snap.Drones) != 2 {
		t.Errorf("snapshot = tick %d, %d drones; want tick 5, 2 drones", snap.Tick, len(snap.Drones))
	}
}

func TestCoverageChartRenders(t *testing.T) {
	t.Parallel()

	ws := NewWebServer(testRunner(t, 5))
	srv := httptest.NewServer(ws)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/charts/coverage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type %q, want html", ct)
	}
}

func TestCoverageChartWithoutSamples(t *testing.T) {
	t.Parallel()

	ws := NewWebServer(testRunner(t, 0))
	srv := httptest.NewServer(ws)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/charts/coverage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404 before any tick", resp.StatusCode)
	}
}

func TestIndexRoutes(t *testing.T) {
	t.Parallel()

	ws := NewWebServer(testRunner(t, 1))
	srv := httptest.NewServer(ws)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("index status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status %d, want 404", resp.StatusCode)
	}
}
