package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/thermostat-panel/internal/pins"
	"github.com/sweeney/thermostat-panel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"celsius": func(c float64) string {
		return fmt.Sprintf("%.2f °C", c)
	},
	"lower": func(s string) string {
		switch s {
		case "PRESSED":
			return "pressed"
		case "RELEASED":
			return "released"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Thermostat Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Thermostat Panel</h1>

<h2>State</h2>
<table>
<tr><th>Setpoint</th><td id="setpoint">{{.Setpoint}} °C</td></tr>
<tr><th>Temperature</th><td id="temperature">{{if .HasTemperature}}{{celsius .Temperature}}{{else}}<span class="unknown">no reading</span>{{end}}</td></tr>
</table>

<h2>Keys</h2>
<table>
{{range .Keys}}<tr><th>{{.Name}}</th><td class="{{lower .State}}">{{.State}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>UP</th><td>{{.Counts.Up}}</td></tr>
<tr><th>DOWN</th><td>{{.Counts.Down}}</td></tr>
<tr><th>LEFT</th><td>{{.Counts.Left}}</td></tr>
<tr><th>RIGHT</th><td>{{.Counts.Right}}</td></tr>
<tr><th>CLICK</th><td>{{.Counts.Click}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms{{if .Config.LegacyDebounce}} (legacy){{end}}</td></tr>
<tr><th>Display</th><td>{{if .Config.LCDPort}}{{.Config.LCDPort}}, refresh {{.Config.RefreshMs}}ms{{else}}disabled{{end}}</td></tr>
<tr><th>Upload</th><td>{{if .Config.UploadPort}}{{.Config.UploadPort}}, {{if .Config.UploadMs}}every {{.Config.UploadMs}}ms{{else}}on request{{end}}{{else}}disabled{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type keyRow struct {
	Name  string
	State string
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	keys := make([]keyRow, 0, len(pins.Directions))
	for _, d := range pins.Directions {
		keys = append(keys, keyRow{Name: string(d), State: status.KeyState(snap, d)})
	}
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Keys   []keyRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Keys:     keys,
	}
	indexTmpl.Execute(w, data)
}
