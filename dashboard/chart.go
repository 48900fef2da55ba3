package dashboard

import "errors"

var ErrChartNotBuilt = errors.New("chart has no data yet")

// BarData is the bandwidth bar projection: one bar per visible measurement.
type BarData struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// LineSeries is the latency history of one switch.
type LineSeries struct {
	SwitchID int       `json:"switch_id"`
	Label    string    `json:"label"`
	Color    string    `json:"color"`
	Values   []float64 `json:"values"`
}

// LineData is the latency line projection plotted against the shared time axis.
type LineData struct {
	Title  string       `json:"title"`
	Labels []string     `json:"labels"`
	Series []LineSeries `json:"series"`
}

// Surface draws chart data. Implementations render images, push frames to
// clients, or record calls in tests.
type Surface[D any] interface {
	Draw(data D) error
}

// Chart is a widget built on its first update and updated in place afterwards.
// Update replaces the data; Render asks the surface to redraw it.
type Chart[D any] struct {
	surface Surface[D]
	data    D
	built   bool
	draws   int
}

func NewChart[D any](surface Surface[D]) *Chart[D] {
	return &Chart[D]{surface: surface}
}

// Update replaces the chart data. The first call builds the chart and returns true.
func (c *Chart[D]) Update(data D) bool {
	first := !c.built
	c.data = data
	c.built = true
	return first
}

// Render redraws the current data on the surface.
func (c *Chart[D]) Render() error {
	if !c.built {
		return ErrChartNotBuilt
	}
	c.draws++
	if c.surface == nil {
		return nil
	}
	return c.surface.Draw(c.data)
}

func (c *Chart[D]) Data() D { return c.data }

func (c *Chart[D]) Built() bool { return c.built }

// Draws returns how many redraws were requested.
func (c *Chart[D]) Draws() int { return c.draws }
