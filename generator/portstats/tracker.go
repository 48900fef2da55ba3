// Package portstats turns cumulative switch counters into the rates and
// latencies carried by a bandwidth_stats message.
package portstats

import (
	"sync"
	"time"

	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

// Reserved port numbers (OFPP_LOCAL, OFPP_CONTROLLER...) sit above MaxPortNo.
const (
	MinPortNo = 1
	MaxPortNo = 65534
)

// Counters is one port statistics reply: bytes seen since the port came up.
type Counters struct {
	DPID    int
	PortNo  int
	RxBytes uint64
	TxBytes uint64
}

type portKey struct {
	dpid   int
	portNo int
}

type sample struct {
	rx, tx uint64
	at     time.Time
}

type rate struct {
	rx, tx float64
}

// Tracker keeps the previous counters of every port and the last echo
// round trip of every switch. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	order    []portKey
	prev     map[portKey]sample
	rates    map[portKey]rate
	echoSent map[int]time.Time
	latency  map[int]float64
}

func NewTracker() *Tracker {
	return &Tracker{
		prev:     make(map[portKey]sample),
		rates:    make(map[portKey]rate),
		echoSent: make(map[int]time.Time),
		latency:  make(map[int]float64),
	}
}

// Reserved reports whether a port number is not a user port.
func Reserved(portNo int) bool {
	return portNo < MinPortNo || portNo > MaxPortNo
}

// ObservePort records counters read at the given time and updates the port
// rates. The first sample of a port, and a sample whose counters went
// backwards, yields 0 Mbps.
func (t *Tracker) ObservePort(c Counters, at time.Time) {
	if Reserved(c.PortNo) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := portKey{dpid: c.DPID, portNo: c.PortNo}
	prev, seen := t.prev[key]
	if !seen {
		t.order = append(t.order, key)
	}

	var r rate
	if seen {
		dt := at.Sub(prev.at).Seconds()
		if dt > 0 && c.RxBytes >= prev.rx && c.TxBytes >= prev.tx {
			r.rx = mbps(c.RxBytes-prev.rx, dt)
			r.tx = mbps(c.TxBytes-prev.tx, dt)
		}
	}

	t.rates[key] = r
	t.prev[key] = sample{rx: c.RxBytes, tx: c.TxBytes, at: at}
}

func mbps(bytes uint64, seconds float64) float64 {
	return float64(bytes) * 8 / seconds / 1_000_000
}

// EchoSent records when an echo request left for a switch.
func (t *Tracker) EchoSent(dpid int, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.echoSent[dpid] = at
}

// EchoReply records the round trip of the last echo sent to a switch.
// A reply without a request is ignored.
func (t *Tracker) EchoReply(dpid int, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sent, ok := t.echoSent[dpid]
	if !ok {
		return
	}
	t.latency[dpid] = float64(at.Sub(sent)) / float64(time.Millisecond)
}

// Latency returns the last round trip of a switch in milliseconds.
func (t *Tracker) Latency(dpid int) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.latency[dpid]
	return v, ok
}

// Snapshot builds a bandwidth_stats message with one entry per known port,
// in the order ports were first seen. Switches without a round trip yet
// carry a null latency.
func (t *Tracker) Snapshot() telemetrics.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make([]telemetrics.PortStat, 0, len(t.order))
	for _, key := range t.order {
		r := t.rates[key]
		latency := telemetrics.None()
		if v, ok := t.latency[key.dpid]; ok {
			latency = telemetrics.Some(v)
		}
		stats = append(stats, telemetrics.PortStat{
			DPID:          key.dpid,
			PortNo:        key.portNo,
			RxMbps:        telemetrics.Some(r.rx),
			TxMbps:        telemetrics.Some(r.tx),
			BandwidthMbps: telemetrics.Some(r.rx + r.tx),
			LatencyMs:     latency,
		})
	}
	return telemetrics.NewBandwidthStats(stats)
}
