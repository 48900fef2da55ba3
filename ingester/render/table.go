package render

import (
	"bytes"

	"github.com/olekukonko/tablewriter"

	"github.com/yaron8/telemetry-dashboard/dashboard"
)

// TableText renders the table as aligned plain text.
func TableText(t dashboard.Table) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(t.Header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(t.Rows)
	table.Render()

	return buf.String()
}
