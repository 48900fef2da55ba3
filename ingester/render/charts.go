package render

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/yaron8/telemetry-dashboard/dashboard"
)

const (
	chartWidth  = 1024
	chartHeight = 400
)

// BarSurface draws the bandwidth projection as a PNG bar chart.
type BarSurface struct {
	store *FrameStore
}

func NewBarSurface(store *FrameStore) *BarSurface {
	return &BarSurface{store: store}
}

func (s *BarSurface) Draw(data dashboard.BarData) error {
	// go-chart refuses an empty bar chart; the filter may hide everything
	if len(data.Values) == 0 {
		s.store.Clear(BandwidthChart)
		return nil
	}

	bars := make([]chart.Value, len(data.Values))
	for i, v := range data.Values {
		bars[i] = chart.Value{
			Label: data.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   toDrawing(dashboard.BarColor),
				StrokeColor: drawing.Color{R: 41, G: 128, B: 185, A: 255},
				StrokeWidth: 1,
			},
		}
	}

	bc := chart.BarChart{
		Title:    data.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: barWidth(len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  "Mbps",
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(data.Values)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	s.store.Set(BandwidthChart, buf.Bytes())
	return nil
}

// LatencySurface draws the latency projection as a PNG line chart.
type LatencySurface struct {
	store *FrameStore
}

func NewLatencySurface(store *FrameStore) *LatencySurface {
	return &LatencySurface{store: store}
}

func (s *LatencySurface) Draw(data dashboard.LineData) error {
	// a line needs two axis points and at least one series
	if len(data.Labels) < 2 || len(data.Series) == 0 {
		s.store.Clear(LatencyChart)
		return nil
	}

	ticks := make([]chart.Tick, len(data.Labels))
	for i, label := range data.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	series := make([]chart.Series, 0, len(data.Series))
	var all []float64
	for _, ls := range data.Series {
		// samples are plotted by position on the shared axis
		xs := make([]float64, len(ls.Values))
		for i := range xs {
			xs[i] = float64(i)
		}
		color := toDrawing(dashboard.SeriesColor(ls.SwitchID))
		series = append(series, chart.ContinuousSeries{
			Name:    ls.Label,
			XValues: xs,
			YValues: ls.Values,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
		all = append(all, ls.Values...)
	}

	ch := chart.Chart{
		Title:  data.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Time",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(data.Labels) - 1)},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "ms",
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(all)},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("latency chart: %w", err)
	}
	s.store.Set(LatencyChart, buf.Bytes())
	return nil
}

func toDrawing(c dashboard.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// upperBound gives the y-axis some headroom; the axis always starts at zero.
func upperBound(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return 1
	}
	return max * 1.1
}

func barWidth(n int) int {
	w := chartWidth / (2 * n)
	switch {
	case w > 60:
		return 60
	case w < 4:
		return 4
	}
	return w
}
