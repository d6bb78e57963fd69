// Package monitor serves a debugging view of a live exploration run: a JSON
// state snapshot for tooling and go-echarts coverage charts for eyeballs.
// It is unauthenticated and intended for localhost use only.
package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banshee-data/cave.report/internal/monitoring"
	"github.com/banshee-data/cave.report/internal/sim"
)

// WebServer exposes run state over HTTP.
type WebServer struct {
	runner *sim.Runner
	mux    *http.ServeMux
}

// NewWebServer wires the monitor routes for the given runner.
func NewWebServer(runner *sim.Runner) *WebServer {
	ws := &WebServer{
		runner: runner,
		mux:    http.NewServeMux(),
	}
	ws.mux.HandleFunc("/api/state", ws.handleState)
	ws.mux.HandleFunc("/charts/coverage", ws.handleCoverageChart)
	ws.mux.HandleFunc("/", ws.handleIndex)
	return ws
}

// ServeHTTP implements http.Handler.
func (ws *WebServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws.mux.ServeHTTP(w, r)
}

// Serve blocks listening on addr.
func (ws *WebServer) Serve(addr string) error {
	monitoring.Logf("monitor listening on http://%s", addr)
	return http.ListenAndServe(addr, ws)
}

func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><body>
<h3>cave.report monitor</h3>
<ul>
<li><a href="/api/state">/api/state</a> — fleet snapshot (JSON)</li>
<li><a href="/charts/coverage">/charts/coverage</a> — coverage over time</li>
</ul>
</body></html>`)
}

func (ws *WebServer) handleState(w http.ResponseWriter, r *http.Request) {
	snap := ws.runner.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
