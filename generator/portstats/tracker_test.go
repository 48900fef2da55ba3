package portstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestObservePort_FirstSampleIsZero(t *testing.T) {
	tr := NewTracker()
	tr.ObservePort(Counters{DPID: 1, PortNo: 1, RxBytes: 5_000_000, TxBytes: 9_000_000}, t0)

	msg := tr.Snapshot()

	require.Len(t, msg.Stats, 1)
	assert.Equal(t, telemetrics.Some(0), msg.Stats[0].RxMbps)
	assert.Equal(t, telemetrics.Some(0), msg.Stats[0].TxMbps)
	assert.Equal(t, telemetrics.Some(0), msg.Stats[0].BandwidthMbps)
}

func TestObservePort_Rates(t *testing.T) {
	tr := NewTracker()
	tr.ObservePort(Counters{DPID: 1, PortNo: 2, RxBytes: 1_000_000, TxBytes: 0}, t0)
	// 2.5 MB rx and 0.5 MB tx over two seconds
	tr.ObservePort(Counters{DPID: 1, PortNo: 2, RxBytes: 3_500_000, TxBytes: 500_000}, t0.Add(2*time.Second))

	stat := tr.Snapshot().Stats[0]

	assert.InDelta(t, 10.0, stat.RxMbps.OrDefault(-1), 1e-9)
	assert.InDelta(t, 2.0, stat.TxMbps.OrDefault(-1), 1e-9)
	assert.InDelta(t, 12.0, stat.BandwidthMbps.OrDefault(-1), 1e-9)
}

func TestObservePort_CounterResetYieldsZero(t *testing.T) {
	tr := NewTracker()
	tr.ObservePort(Counters{DPID: 1, PortNo: 1, RxBytes: 900, TxBytes: 900}, t0)
	tr.ObservePort(Counters{DPID: 1, PortNo: 1, RxBytes: 100, TxBytes: 1000}, t0.Add(time.Second))

	stat := tr.Snapshot().Stats[0]

	assert.Equal(t, 0.0, stat.RxMbps.OrDefault(-1))
	assert.Equal(t, 0.0, stat.TxMbps.OrDefault(-1))
}

func TestObservePort_SkipsReservedPorts(t *testing.T) {
	tr := NewTracker()
	for _, portNo := range []int{0, 65535, 70000, -1} {
		tr.ObservePort(Counters{DPID: 1, PortNo: portNo, RxBytes: 1}, t0)
	}
	tr.ObservePort(Counters{DPID: 1, PortNo: MaxPortNo}, t0)

	msg := tr.Snapshot()

	require.Len(t, msg.Stats, 1)
	assert.Equal(t, MaxPortNo, msg.Stats[0].PortNo)
}

func TestSnapshot_OrderOfFirstAppearance(t *testing.T) {
	tr := NewTracker()
	tr.ObservePort(Counters{DPID: 3, PortNo: 1}, t0)
	tr.ObservePort(Counters{DPID: 1, PortNo: 2}, t0)
	tr.ObservePort(Counters{DPID: 1, PortNo: 1}, t0)
	tr.ObservePort(Counters{DPID: 3, PortNo: 1}, t0.Add(time.Second))

	var got [][2]int
	for _, s := range tr.Snapshot().Stats {
		got = append(got, [2]int{s.DPID, s.PortNo})
	}

	assert.Equal(t, [][2]int{{3, 1}, {1, 2}, {1, 1}}, got)
}

func TestEcho_Latency(t *testing.T) {
	tr := NewTracker()
	tr.ObservePort(Counters{DPID: 1, PortNo: 1}, t0)
	tr.ObservePort(Counters{DPID: 2, PortNo: 1}, t0)

	tr.EchoSent(1, t0)
	tr.EchoReply(1, t0.Add(1500*time.Microsecond))
	tr.EchoSent(2, t0)

	msg := tr.Snapshot()

	assert.Equal(t, telemetrics.Some(1.5), msg.Stats[0].LatencyMs)
	assert.Equal(t, telemetrics.None(), msg.Stats[1].LatencyMs, "no reply yet")
}

func TestEcho_LostReplyKeepsLastRoundTrip(t *testing.T) {
	tr := NewTracker()
	tr.EchoSent(1, t0)
	tr.EchoReply(1, t0.Add(2*time.Millisecond))
	tr.EchoSent(1, t0.Add(time.Second))

	v, ok := tr.Latency(1)

	assert.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestEcho_ReplyWithoutRequest(t *testing.T) {
	tr := NewTracker()
	tr.EchoReply(7, t0)

	_, ok := tr.Latency(7)

	assert.False(t, ok)
}

func TestSnapshot_Empty(t *testing.T) {
	msg := NewTracker().Snapshot()

	assert.True(t, msg.IsBandwidthStats())
	assert.NotNil(t, msg.Stats)
	assert.Empty(t, msg.Stats)
}
