package dashboard

import (
	"strconv"

	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

// LatencyPlaceholder is shown when a port reported no latency.
const LatencyPlaceholder = "-"

// TableHeader names the table columns.
var TableHeader = []string{"DPID", "Port", "RX Mbps", "TX Mbps", "Total Mbps", "Latency ms"}

// Table is the per-snapshot table: a header and one row per visible measurement.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

func newTable() Table {
	header := make([]string, len(TableHeader))
	copy(header, TableHeader)
	return Table{Header: header, Rows: [][]string{}}
}

// Reading is a visible measurement with its derived values.
type Reading struct {
	Stat    telemetrics.PortStat
	Rx      float64
	Tx      float64
	Total   float64
	Latency string
}

// NewReading defaults missing throughput to zero, rounds to two decimals and
// formats the latency for display.
func NewReading(stat telemetrics.PortStat) Reading {
	rx := Round2(stat.RxMbps.OrDefault(0))
	tx := Round2(stat.TxMbps.OrDefault(0))

	latency := LatencyPlaceholder
	if v, ok := stat.LatencyMs.Get(); ok {
		latency = Format2(v)
	}

	return Reading{
		Stat:    stat,
		Rx:      rx,
		Tx:      tx,
		Total:   Round2(rx + tx),
		Latency: latency,
	}
}

// Label is the bar label of the reading.
func (r Reading) Label() string {
	return "dp" + strconv.Itoa(r.Stat.DPID) + "-p" + strconv.Itoa(r.Stat.PortNo)
}

// Row is the table row of the reading.
func (r Reading) Row() []string {
	return []string{
		strconv.Itoa(r.Stat.DPID),
		strconv.Itoa(r.Stat.PortNo),
		Format2(r.Rx),
		Format2(r.Tx),
		Format2(r.Total),
		r.Latency,
	}
}

// Format2 formats v with two decimals.
func Format2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Round2 rounds v to two decimals the way it is displayed.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(Format2(v), 64)
	if err != nil {
		return v
	}
	return r
}
