package dashboard

import (
	"log/slog"
	"sync"

	"github.com/yaron8/telemetry-dashboard/logi"
)

// View is a consistent copy of everything the dashboard displays.
type View struct {
	Bar            BarData  `json:"bar"`
	Latency        LineData `json:"latency"`
	Table          Table    `json:"table"`
	SwitchOptions  []string `json:"switch_options"`
	PortOptions    []string `json:"port_options"`
	SelectedSwitch string   `json:"selected_switch"`
	SelectedPort   string   `json:"selected_port"`
	Snapshots      int      `json:"snapshots"`
}

// Dashboard serializes access to a Session. Messages are processed one at a
// time to completion; readers and filter changes never see half a snapshot.
type Dashboard struct {
	mu      sync.Mutex
	session *Session
	logger  *slog.Logger
}

func New(opts Options) *Dashboard {
	return &Dashboard{
		session: NewSession(opts),
		logger:  logi.GetLogger(),
	}
}

// HandleMessage processes one raw payload from the transport.
func (d *Dashboard) HandleMessage(raw []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	handled, err := d.session.HandleMessage(raw)
	if err != nil {
		return err
	}
	if handled {
		d.logger.Debug("snapshot processed",
			"snapshots", d.session.Snapshots(),
			"visible", len(d.session.Table().Rows))
	}
	return nil
}

// SelectSwitch changes the switch filter; it applies from the next snapshot.
func (d *Dashboard) SelectSwitch(value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Filters().Switch.Select(value)
}

// SelectPort changes the port filter; it applies from the next snapshot.
func (d *Dashboard) SelectPort(value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Filters().Port.Select(value)
}

// View returns a copy of the current projections.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.session
	filters := s.Filters()

	return View{
		Bar:            copyBar(s.BarChart().Data()),
		Latency:        s.LatencyData(),
		Table:          copyTable(s.Table()),
		SwitchOptions:  filters.Switch.Options(),
		PortOptions:    filters.Port.Options(),
		SelectedSwitch: filters.Switch.Selected(),
		SelectedPort:   filters.Port.Selected(),
		Snapshots:      s.Snapshots(),
	}
}

func copyBar(b BarData) BarData {
	out := BarData{
		Title:  b.Title,
		Labels: make([]string, len(b.Labels)),
		Values: make([]float64, len(b.Values)),
	}
	copy(out.Labels, b.Labels)
	copy(out.Values, b.Values)
	return out
}

func copyTable(t Table) Table {
	out := Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
