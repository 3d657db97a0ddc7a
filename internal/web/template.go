package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/msf-clock/internal/status"
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
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>MSF Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.synced { color: green; font-weight: bold; }
.seeking { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.clock { font-size: 1.6em; margin: 0.5em 0; }
</style>
</head>
<body>
<h1>MSF Clock</h1>

{{if .TimeValid}}
<div class="clock">{{.Time.String}}{{if .Time.DST}} (DST){{end}}</div>
{{else}}
<div class="clock seeking">no decode yet</div>
{{end}}

<table>
<tr><th>Sync</th><td class="{{if .Synced}}synced{{else}}seeking{{end}}">{{.State}}</td></tr>
{{if .TimeValid}}<tr><th>Decoded at</th><td>{{rfc3339 .DecodedAt}}</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
</table>

<table>
<tr><th>Edges</th><td>{{.Counts.Edges}}</td></tr>
<tr><th>Dropped edges</th><td>{{.DroppedEdges}}</td></tr>
<tr><th>Sync acquired</th><td>{{.Counts.SyncAcquired}}</td></tr>
<tr><th>Sync lost</th><td>{{.Counts.SyncLost}}</td></tr>
<tr><th>Frames decoded</th><td>{{.Counts.FramesDecoded}}</td></tr>
<tr><th>Frames rejected</th><td>{{.Counts.FramesRejected}}</td></tr>
</table>

<table>
<tr><th>GPIO</th><td>{{.Config.Chip}} data={{.Config.DataPin}} enable={{.Config.EnablePin}} led={{.Config.LEDPin}}</td></tr>
<tr><th>Trace</th><td>{{.Config.Trace}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render template: %v", err)
	}
}
