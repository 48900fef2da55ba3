package service

import (
	"bytes"
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("dashboard").Parse(pageHTML))

// PageHandler serves the dashboard page. It refreshes itself; charts are
// fetched as images rendered on every snapshot.
func (api *APIServer) PageHandler(w http.ResponseWriter, r *http.Request) {
	view := api.dashboard.View()

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		api.logger.Error("Error rendering page", "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		api.logger.Error("Error writing page", "error", err)
	}
}

const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta http-equiv="refresh" content="2">
    <title>Switch telemetry</title>
    <style>
        body { font-family: sans-serif; margin: 20px; background: #f5f6fa; }
        table { border-collapse: collapse; margin-top: 16px; }
        th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
        th { background: #2c3e50; color: #fff; }
        .charts img { display: block; margin: 12px 0; max-width: 100%; }
    </style>
</head>
<body>
    <h1>Switch telemetry</h1>
    <form method="post" action="/filters">
        <label>DPID
            <select name="switch">
                {{- range .SwitchOptions}}
                <option value="{{.}}"{{if eq . $.SelectedSwitch}} selected{{end}}>{{.}}</option>
                {{- end}}
            </select>
        </label>
        <label>Port
            <select name="port">
                {{- range .PortOptions}}
                <option value="{{.}}"{{if eq . $.SelectedPort}} selected{{end}}>{{.}}</option>
                {{- end}}
            </select>
        </label>
        <button type="submit">Apply</button>
    </form>
    <p>Snapshots received: {{.Snapshots}}</p>
    <div class="charts">
        <img src="/charts/bandwidth.png" alt="{{.Bar.Title}}">
        <img src="/charts/latency.png" alt="{{.Latency.Title}}">
    </div>
    <table id="port-stats">
        <tr>{{range .Table.Header}}<th>{{.}}</th>{{end}}</tr>
        {{- range .Table.Rows}}
        <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
        {{- end}}
    </table>
</body>
</html>
`
