package dashboard

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

// TimeLabelLayout formats arrival times on the shared axis.
const TimeLabelLayout = "15:04:05"

const (
	barTitle     = "Total bandwidth (Mbps)"
	latencyTitle = "Latency per switch (ms)"
)

// Frame is what one snapshot produces for the bar chart and the table.
type Frame struct {
	Arrived  time.Time
	Readings []Reading
	Bar      BarData
	Table    Table
}

// Options configures a Session.
type Options struct {
	// WindowSize bounds the latency history and the time axis. Default: 20.
	WindowSize int
	// Clock stamps snapshot arrivals. Default: the real clock.
	Clock clockwork.Clock
	// BarSurface and LatencySurface receive redraws. Either may be nil.
	BarSurface     Surface[BarData]
	LatencySurface Surface[LineData]
}

// Session owns all dashboard state for one connection to the measurement source.
// It is not safe for concurrent use; see Dashboard.
type Session struct {
	clock     clockwork.Clock
	axis      *Window[string]
	latency   *SeriesBuffer
	filters   *FilterState
	bar       *Chart[BarData]
	line      *Chart[LineData]
	table     Table
	snapshots int
}

func NewSession(opts Options) *Session {
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &Session{
		clock:   opts.Clock,
		axis:    NewWindow[string](opts.WindowSize),
		latency: NewSeriesBuffer(opts.WindowSize),
		filters: NewFilterState(),
		bar:     NewChart[BarData](opts.BarSurface),
		line:    NewChart[LineData](opts.LatencySurface),
		table:   newTable(),
	}
}

// Ingest folds one message into the session. Messages that are not
// bandwidth_stats are ignored and Ingest returns false.
// Chart data is updated but not rendered; call Render for that.
func (s *Session) Ingest(msg telemetrics.Message) (Frame, bool) {
	if !msg.IsBandwidthStats() {
		return Frame{}, false
	}

	now := s.clock.Now()
	s.axis.Push(now.Format(TimeLabelLayout))
	s.snapshots++

	frame := Frame{
		Arrived: now,
		Bar:     BarData{Title: barTitle, Labels: []string{}, Values: []float64{}},
		Table:   newTable(),
	}

	for _, stat := range msg.Stats {
		s.filters.Observe(stat)

		// latency history is kept for every switch, visible or not
		if v, ok := stat.LatencyMs.Get(); ok {
			s.latency.Push(stat.DPID, v)
		}

		if !s.filters.Visible(stat) {
			continue
		}

		r := NewReading(stat)
		frame.Readings = append(frame.Readings, r)
		frame.Bar.Labels = append(frame.Bar.Labels, r.Label())
		frame.Bar.Values = append(frame.Bar.Values, r.Total)
		frame.Table.Rows = append(frame.Table.Rows, r.Row())
	}

	s.table = frame.Table
	s.bar.Update(frame.Bar)
	s.line.Update(s.LatencyData())

	return frame, true
}

// Render redraws both charts. It is a no-op before the first snapshot.
func (s *Session) Render() error {
	if !s.bar.Built() {
		return nil
	}
	if err := s.bar.Render(); err != nil {
		return fmt.Errorf("failed to render bandwidth chart: %w", err)
	}
	if err := s.line.Render(); err != nil {
		return fmt.Errorf("failed to render latency chart: %w", err)
	}
	return nil
}

// HandleMessage decodes a raw payload, ingests it and redraws the charts.
// Malformed payloads return an error and leave the session untouched.
func (s *Session) HandleMessage(raw []byte) (bool, error) {
	msg, err := telemetrics.Decode(raw)
	if err != nil {
		return false, err
	}

	if _, ok := s.Ingest(msg); !ok {
		return false, nil
	}

	return true, s.Render()
}

// LatencyData builds the latency projection from the current buffers.
// Every switch ever seen gets a series, ascending by id.
func (s *Session) LatencyData() LineData {
	keys := s.latency.Keys()
	data := LineData{
		Title:  latencyTitle,
		Labels: s.axis.Values(),
		Series: make([]LineSeries, 0, len(keys)),
	}
	for _, dpid := range keys {
		data.Series = append(data.Series, LineSeries{
			SwitchID: dpid,
			Label:    fmt.Sprintf("Switch %d", dpid),
			Color:    SeriesColor(dpid).CSS(),
			Values:   s.latency.Values(dpid),
		})
	}
	return data
}

func (s *Session) Filters() *FilterState { return s.filters }

func (s *Session) BarChart() *Chart[BarData] { return s.bar }

func (s *Session) LatencyChart() *Chart[LineData] { return s.line }

// Table returns the table of the last snapshot.
func (s *Session) Table() Table { return s.table }

// TimeAxis returns the shared time axis labels.
func (s *Session) TimeAxis() []string { return s.axis.Values() }

// Latency returns the latency history of one switch.
func (s *Session) Latency(dpid int) []float64 { return s.latency.Values(dpid) }

// Snapshots counts the bandwidth_stats messages ingested.
func (s *Session) Snapshots() int { return s.snapshots }
