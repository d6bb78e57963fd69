package monitor

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleCoverageChart renders a line chart of each drone's known-cell
// fraction over ticks. Quick visual check of dispersion: healthy fleets
// show the curves fanning apart early and converging as merges propagate.
func (ws *WebServer) handleCoverageChart(w http.ResponseWriter, r *http.Request) {
	snap := ws.runner.Snapshot()
	coverage := ws.runner.Coverage()
	if len(coverage) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no coverage samples yet")
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Exploration coverage",
			Subtitle: fmt.Sprintf("run %s — %d ticks", snap.RunID, snap.Tick),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "known cells / total"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tick"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	ticks := make([]string, len(coverage))
	for t := range coverage {
		ticks[t] = fmt.Sprintf("%d", t)
	}
	line.SetXAxis(ticks)

	total := float64(snap.TotalCells)
	for _, d := range snap.Drones {
		series := make([]opts.LineData, len(coverage))
		for t := range coverage {
			series[t] = opts.LineData{Value: float64(coverage[t][d.ID]) / total}
		}
		line.AddSeries(d.Name, series)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
