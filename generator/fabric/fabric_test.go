package fabric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaron8/telemetry-dashboard/generator/portstats"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestPoll_ReportsUserPortsOnly(t *testing.T) {
	f := New(Options{Switches: 3, Ports: 2, Seed: 1})
	tr := portstats.NewTracker()

	f.Poll(tr, t0)
	msg := tr.Snapshot()

	require.Len(t, msg.Stats, 6)
	for _, s := range msg.Stats {
		assert.False(t, portstats.Reserved(s.PortNo), "reserved port %d leaked", s.PortNo)
	}
	assert.Equal(t, []int{1, 2, 3}, f.Switches())
}

func TestPoll_FirstPollHasNoTraffic(t *testing.T) {
	f := New(Options{Switches: 2, Ports: 2, Seed: 1})
	tr := portstats.NewTracker()

	f.Poll(tr, t0)

	for _, s := range tr.Snapshot().Stats {
		assert.Equal(t, 0.0, s.BandwidthMbps.OrDefault(-1))
	}
}

func TestPoll_TrafficStaysWithinProfile(t *testing.T) {
	f := New(Options{Switches: 2, Ports: 3, Seed: 42})
	tr := portstats.NewTracker()

	f.Poll(tr, t0)
	f.Poll(tr, t0.Add(time.Second))

	for _, s := range tr.Snapshot().Stats {
		rx := s.RxMbps.OrDefault(-1)
		tx := s.TxMbps.OrDefault(-1)
		assert.GreaterOrEqual(t, rx, 0.0)
		assert.LessOrEqual(t, rx, maxPortMbps*1.5+1e-6)
		assert.GreaterOrEqual(t, tx, 0.0)
		assert.LessOrEqual(t, tx, maxPortMbps*1.5+1e-6)
		assert.InDelta(t, rx+tx, s.BandwidthMbps.OrDefault(-1), 1e-9)
	}
}

func TestPoll_EchoLatency(t *testing.T) {
	f := New(Options{Switches: 4, Ports: 1, Seed: 7})
	tr := portstats.NewTracker()

	f.Poll(tr, t0)

	for _, dpid := range f.Switches() {
		v, ok := tr.Latency(dpid)
		require.True(t, ok, "switch %d", dpid)
		assert.GreaterOrEqual(t, v, minLatencyMs-1e-6)
		assert.LessOrEqual(t, v, maxLatencyMs)
	}
}

func TestPoll_LostEchoes(t *testing.T) {
	f := New(Options{Switches: 3, Ports: 1, EchoLoss: 1, Seed: 7})
	tr := portstats.NewTracker()

	f.Poll(tr, t0)

	for _, s := range tr.Snapshot().Stats {
		assert.False(t, s.LatencyMs.Valid, "switch %d answered", s.DPID)
	}
}

func TestNew_SeedIsDeterministic(t *testing.T) {
	run := func() []float64 {
		f := New(Options{Switches: 2, Ports: 2, EchoLoss: 0.5, Seed: 99})
		tr := portstats.NewTracker()
		f.Poll(tr, t0)
		f.Poll(tr, t0.Add(time.Second))
		var out []float64
		for _, s := range tr.Snapshot().Stats {
			out = append(out, s.BandwidthMbps.OrDefault(-1), s.LatencyMs.OrDefault(-1))
		}
		return out
	}

	assert.Equal(t, run(), run())
}
