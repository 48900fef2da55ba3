// Package fabric simulates a small switch fabric: port counters that grow
// with random traffic and echo requests that are answered after a random
// delay, or not at all.
package fabric

import (
	"math/rand"
	"time"

	"github.com/yaron8/telemetry-dashboard/generator/portstats"
)

// LocalPort is the OpenFlow LOCAL port. Every switch reports it; the tracker
// drops it.
const LocalPort = 0xfffffffe

const (
	maxPortMbps   = 100.0
	minLatencyMs  = 0.2
	maxLatencyMs  = 5.0
	bytesPerMbits = 1_000_000 / 8
)

type Options struct {
	Switches int
	Ports    int
	EchoLoss float64
	Seed     int64
}

type port struct {
	counters portstats.Counters
	rxMbps   float64 // traffic profile of the port
	txMbps   float64
}

type Fabric struct {
	rng      *rand.Rand
	echoLoss float64
	switches []int
	ports    map[int][]*port
	lastPoll time.Time
}

func New(opts Options) *Fabric {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	f := &Fabric{
		rng:      rng,
		echoLoss: opts.EchoLoss,
		ports:    make(map[int][]*port),
	}

	for dpid := 1; dpid <= opts.Switches; dpid++ {
		f.switches = append(f.switches, dpid)
		for portNo := 1; portNo <= opts.Ports; portNo++ {
			f.ports[dpid] = append(f.ports[dpid], &port{
				counters: portstats.Counters{DPID: dpid, PortNo: portNo},
				rxMbps:   rng.Float64() * maxPortMbps,
				txMbps:   rng.Float64() * maxPortMbps,
			})
		}
		f.ports[dpid] = append(f.ports[dpid], &port{
			counters: portstats.Counters{DPID: dpid, PortNo: LocalPort},
		})
	}

	return f
}

// Switches returns the datapath ids of the fabric.
func (f *Fabric) Switches() []int {
	return append([]int(nil), f.switches...)
}

// Poll advances the fabric to now and reports every port and echo round
// trip to the tracker, the way a controller would after a stats request.
// Not safe for concurrent use.
func (f *Fabric) Poll(t *portstats.Tracker, now time.Time) {
	elapsed := 0.0
	if !f.lastPoll.IsZero() {
		elapsed = now.Sub(f.lastPoll).Seconds()
	}
	f.lastPoll = now

	for _, dpid := range f.switches {
		t.EchoSent(dpid, now)

		for _, p := range f.ports[dpid] {
			if elapsed > 0 {
				p.counters.RxBytes += f.traffic(p.rxMbps, elapsed)
				p.counters.TxBytes += f.traffic(p.txMbps, elapsed)
			}
			t.ObservePort(p.counters, now)
		}

		if f.rng.Float64() < f.echoLoss {
			continue
		}
		delay := minLatencyMs + f.rng.Float64()*(maxLatencyMs-minLatencyMs)
		t.EchoReply(dpid, now.Add(time.Duration(delay*float64(time.Millisecond))))
	}
}

// traffic jitters the port profile by up to 50% either way.
func (f *Fabric) traffic(profileMbps, seconds float64) uint64 {
	mbps := profileMbps * (0.5 + f.rng.Float64())
	return uint64(mbps * bytesPerMbits * seconds)
}
