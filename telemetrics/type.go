package telemetrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TypeBandwidthStats is the only message type the dashboard consumes.
const TypeBandwidthStats = "bandwidth_stats"

// ErrMalformed is returned when a payload does not have the expected structure.
var ErrMalformed = errors.New("malformed telemetry message")

// PortStat is one reading for a (switch, port) pair.
type PortStat struct {
	DPID          int           `json:"dpid"`
	PortNo        int           `json:"port_no"`
	RxMbps        OptionalFloat `json:"rx_mbps"`
	TxMbps        OptionalFloat `json:"tx_mbps"`
	BandwidthMbps OptionalFloat `json:"bandwidth_mbps"`
	LatencyMs     OptionalFloat `json:"latency_ms"`
}

// UnmarshalJSON rejects null entries and entries without dpid or port_no.
func (p *PortStat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("%w: null stats entry", ErrMalformed)
	}

	type plain PortStat
	var raw struct {
		plain
		DPID   *int `json:"dpid"`
		PortNo *int `json:"port_no"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.DPID == nil || raw.PortNo == nil {
		return fmt.Errorf("%w: stats entry without dpid or port_no", ErrMalformed)
	}

	*p = PortStat(raw.plain)
	p.DPID = *raw.DPID
	p.PortNo = *raw.PortNo
	return nil
}

// Message is the envelope pushed by the measurement source.
type Message struct {
	Type  string     `json:"type"`
	Stats []PortStat `json:"stats"`
}

// NewBandwidthStats builds a bandwidth_stats message.
func NewBandwidthStats(stats []PortStat) Message {
	if stats == nil {
		stats = []PortStat{}
	}
	return Message{Type: TypeBandwidthStats, Stats: stats}
}

// IsBandwidthStats reports whether the message carries port statistics.
func (m Message) IsBandwidthStats() bool {
	return m.Type == TypeBandwidthStats
}

// Decode parses a raw payload. A bandwidth_stats message must carry a stats
// array; other types are returned as-is for the caller to ignore.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if msg.IsBandwidthStats() && msg.Stats == nil {
		return Message{}, fmt.Errorf("%w: missing stats", ErrMalformed)
	}

	return msg, nil
}

// Encode serializes a message for the wire.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}
