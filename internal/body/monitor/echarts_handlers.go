package monitor

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/httputil"
	"github.com/banshee-data/bodyslice/internal/units"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleChart renders the diameters held in History as a line chart, one
// series per kind. Invalid passes leave gaps.
func (ws *WebServer) handleChart(w http.ResponseWriter, r *http.Request) {
	sets := ws.history.Sets()
	if len(sets) == 0 {
		httputil.NotFound(w, "no measurements yet")
		return
	}
	unit := ws.requestUnits(r)

	line, err := diameterChart(sets, unit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(line)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func diameterChart(sets []l3measure.Set, unit string) (*charts.Line, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("no sets to chart")
	}
	first := sets[0].TimestampNanos
	x := make([]string, len(sets))
	for i := range sets {
		x[i] = fmt.Sprintf("%.3f", float64(sets[i].TimestampNanos-first)/1e9)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Body Measurements", Width: "100%", Height: "640px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Body Measurements", Subtitle: fmt.Sprintf("passes=%d units=%s", len(sets), unit)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("diameter (%s)", unit), NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(x)

	for _, k := range sets[len(sets)-1].Kinds() {
		data := make([]opts.LineData, len(sets))
		for i := range sets {
			if d, ok := sets[i].Diameter(k); ok {
				data[i] = opts.LineData{Value: units.ConvertLength(d, unit)}
			} else {
				data[i] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(k.String(), data)
	}
	return line, nil
}
