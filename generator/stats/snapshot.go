package stats

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

// CSVHeader is the column order of EncodeCSV.
var CSVHeader = []string{"dpid", "port_no", "rx_mbps", "tx_mbps", "bandwidth_mbps", "latency_ms"}

// Snapshot is one encoded bandwidth_stats message.
type Snapshot struct {
	Message telemetrics.Message
	JSON    []byte
	BuiltAt time.Time
}

// BuildFunc produces the message to cache.
type BuildFunc func() telemetrics.Message

// SnapshotCache keeps the last encoded message for ttl so every reader in
// that period gets identical bytes.
type SnapshotCache struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	ttl      time.Duration
	clock    clockwork.Clock
	build    BuildFunc
}

func NewSnapshotCache(ttl time.Duration, clock clockwork.Clock, build BuildFunc) *SnapshotCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SnapshotCache{
		ttl:   ttl,
		clock: clock,
		build: build,
	}
}

// Get returns the cached snapshot, building a new one when it expired.
func (c *SnapshotCache) Get() (*Snapshot, error) {
	// Check if cache is valid
	c.mu.RLock()
	if c.fresh() {
		snapshot := c.snapshot
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine might have updated it)
	if c.fresh() {
		return c.snapshot, nil
	}

	return c.rebuild()
}

// Refresh builds a new snapshot regardless of its age.
func (c *SnapshotCache) Refresh() (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuild()
}

func (c *SnapshotCache) fresh() bool {
	return c.snapshot != nil && c.clock.Since(c.snapshot.BuiltAt) < c.ttl
}

func (c *SnapshotCache) rebuild() (*Snapshot, error) {
	msg := c.build()
	data, err := telemetrics.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}

	c.snapshot = &Snapshot{
		Message: msg,
		JSON:    data,
		BuiltAt: c.clock.Now(),
	}
	return c.snapshot, nil
}

// EncodeCSV renders a message as CSV, one row per port. Missing values are
// left empty.
func EncodeCSV(msg telemetrics.Message) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("error writing header: %w", err)
	}

	for _, s := range msg.Stats {
		row := []string{
			strconv.Itoa(s.DPID),
			strconv.Itoa(s.PortNo),
			csvFloat(s.RxMbps),
			csvFloat(s.TxMbps),
			csvFloat(s.BandwidthMbps),
			csvFloat(s.LatencyMs),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("error writing row: %w", err)
		}
	}

	// Flush the writer to ensure all data is written to the buffer
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing writer: %w", err)
	}

	return buf.String(), nil
}

func csvFloat(v telemetrics.OptionalFloat) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
