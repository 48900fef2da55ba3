package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_FilterAppliesFromNextSnapshot(t *testing.T) {
	d := New(Options{Clock: clockwork.NewFakeClockAt(sessionStart)})

	require.NoError(t, d.HandleMessage([]byte(`{"type":"bandwidth_stats","stats":[
		{"dpid":1,"port_no":1,"rx_mbps":1},{"dpid":2,"port_no":1,"rx_mbps":2}]}`)))

	require.NoError(t, d.SelectSwitch("2"))

	view := d.View()
	assert.Equal(t, "2", view.SelectedSwitch)
	assert.Equal(t, []string{"dp1-p1", "dp2-p1"}, view.Bar.Labels, "rendered output is not re-filtered")

	require.NoError(t, d.HandleMessage([]byte(`{"type":"bandwidth_stats","stats":[
		{"dpid":1,"port_no":1,"rx_mbps":1},{"dpid":2,"port_no":1,"rx_mbps":2}]}`)))

	view = d.View()
	assert.Equal(t, []string{"dp2-p1"}, view.Bar.Labels)
	assert.Equal(t, [][]string{{"2", "1", "2.00", "0.00", "2.00", "-"}}, view.Table.Rows)
	assert.Equal(t, 2, view.Snapshots)
}

func TestDashboard_UnknownSelection(t *testing.T) {
	d := New(Options{})

	assert.True(t, errors.Is(d.SelectSwitch("4"), ErrUnknownOption))
	assert.True(t, errors.Is(d.SelectPort("4"), ErrUnknownOption))
	assert.NoError(t, d.SelectPort(Wildcard))
}

func TestDashboard_ViewIsDetached(t *testing.T) {
	d := New(Options{Clock: clockwork.NewFakeClockAt(sessionStart)})
	require.NoError(t, d.HandleMessage([]byte(`{"type":"bandwidth_stats","stats":[{"dpid":1,"port_no":1,"rx_mbps":1,"latency_ms":2}]}`)))

	view := d.View()
	view.Bar.Labels[0] = "changed"
	view.Table.Rows[0][0] = "changed"
	view.Latency.Series[0].Values[0] = -1

	fresh := d.View()
	assert.Equal(t, "dp1-p1", fresh.Bar.Labels[0])
	assert.Equal(t, "1", fresh.Table.Rows[0][0])
	assert.Equal(t, 2.0, fresh.Latency.Series[0].Values[0])
}

func TestDashboard_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	d := New(Options{Clock: clockwork.NewFakeClockAt(sessionStart)})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			raw := fmt.Sprintf(`{"type":"bandwidth_stats","stats":[
				{"dpid":1,"port_no":1,"rx_mbps":%d},{"dpid":2,"port_no":1,"rx_mbps":%d}]}`, i, i)
			if err := d.HandleMessage([]byte(raw)); err != nil {
				t.Errorf("HandleMessage: %v", err)
				return
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				view := d.View()
				if len(view.Bar.Labels) != len(view.Table.Rows) {
					t.Errorf("bar and table out of step: %d vs %d", len(view.Bar.Labels), len(view.Table.Rows))
					return
				}
				if len(view.Bar.Values) == 2 && view.Bar.Values[0] != view.Bar.Values[1] {
					t.Errorf("view mixes two snapshots: %v", view.Bar.Values)
					return
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 200, d.View().Snapshots)
}
