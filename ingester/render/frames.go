package render

import (
	"errors"
	"sync"
)

// ErrNoFrame is returned for a chart that has nothing drawable yet.
var ErrNoFrame = errors.New("no frame rendered")

const (
	BandwidthChart = "bandwidth"
	LatencyChart   = "latency"
)

// FrameStore keeps the last rendered image of each chart.
type FrameStore struct {
	mu     sync.RWMutex
	frames map[string][]byte
}

func NewFrameStore() *FrameStore {
	return &FrameStore{frames: make(map[string][]byte)}
}

func (fs *FrameStore) Set(name string, frame []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.frames[name] = frame
}

// Clear drops the frame of name, e.g. when the data cannot be drawn.
func (fs *FrameStore) Clear(name string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.frames, name)
}

// Get returns the last frame of name. The slice must not be modified.
func (fs *FrameStore) Get(name string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	frame, ok := fs.frames[name]
	if !ok {
		return nil, ErrNoFrame
	}
	return frame, nil
}

// Known reports whether name is one of the dashboard charts.
func Known(name string) bool {
	return name == BandwidthChart || name == LatencyChart
}
