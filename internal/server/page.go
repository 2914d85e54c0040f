package server

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/podscope/internal/downward"
	"github.com/HerbHall/podscope/internal/version"
)

const footerTimeLayout = "2006-01-02 15:04:05 MST"

// dashboardData is everything the dashboard template reads. Values are
// escaped by html/template at execution time.
type dashboardData struct {
	Runtime     downward.RuntimeContext
	LabelsOK    bool
	Labels      []downward.Label
	LabelsError string
	Complete    bool
	GeneratedAt string
	Resource    string
	Version     string
}

func newDashboardData(snap downward.Snapshot) dashboardData {
	d := dashboardData{
		Runtime:     snap.Runtime,
		LabelsOK:    snap.Labels.OK(),
		Labels:      snap.Labels.Labels,
		Complete:    snap.Complete(),
		GeneratedAt: snap.CollectedAt.Format(footerTimeLayout),
		Resource:    downward.NotAvailable,
		Version:     version.Short(),
	}
	if !d.LabelsOK {
		d.LabelsError = snap.Labels.Err.Error()
	}
	if f, ok := snap.Runtime.Get(downward.FactPodName); ok {
		d.Resource = f.Value
	}
	return d
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// handleDashboard renders the HTML introspection page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, newDashboardData(s.collect(r))); err != nil {
		s.logger.Error("failed to render dashboard", zap.Error(err))
		InternalError(w, "failed to render dashboard", r.URL.Path)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	_, _ = w.Write(buf.Bytes())
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Pod Introspection Dashboard</title>
    <style>
        :root {
            --bg: #0f172a;
            --card: #1e293b;
            --text: #f8fafc;
            --muted: #94a3b8;
            --success: #22c55e;
            --success-bg: rgba(34, 197, 94, 0.15);
            --warning: #f59e0b;
            --warning-bg: rgba(245, 158, 11, 0.15);
            --critical: #ef4444;
            --critical-bg: rgba(239, 68, 68, 0.15);
        }
        body { margin: 0; background: var(--bg); color: var(--text); font-family: system-ui, sans-serif; }
        .container { max-width: 880px; margin: 0 auto; padding: 2rem 1rem; }
        header h1 { margin: 0 0 .25rem; }
        .subtitle { color: var(--muted); margin: 0 0 1.5rem; }
        .card { background: var(--card); border-radius: 12px; padding: 1.25rem; margin-bottom: 1.25rem; }
        .metadata-table { width: 100%; border-collapse: collapse; }
        .metadata-table th, .metadata-table td { text-align: left; padding: .5rem; border-bottom: 1px solid rgba(255,255,255,.08); }
        .key { color: var(--muted); }
        .badge { padding: .15rem .5rem; border-radius: 999px; font-size: .9rem; }
        .badge-success { color: var(--success); background: var(--success-bg); }
        .badge-warn { color: var(--warning); background: var(--warning-bg); }
        .alert-error { color: var(--critical); background: var(--critical-bg); padding: .75rem; border-radius: 8px; }
        .status-partial { color: var(--warning); }
        .status-complete { color: var(--success); }
        footer { color: var(--muted); font-size: .85rem; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Pod Introspection Dashboard</h1>
            <p class="subtitle">Live Kubernetes metadata via the Downward API
                {{if .Complete}}<span class="status-complete">(all sources OK)</span>{{else}}<span class="status-partial">(partial)</span>{{end}}
            </p>
        </header>

        <main>
            <section class="card">
                <h2>Runtime Context</h2>
                <table class="metadata-table">
                    <thead>
                        <tr><th>Property</th><th>Value</th></tr>
                    </thead>
                    <tbody>
                        {{range .Runtime}}
                        <tr>
                            <td class="key">{{.Name}}</td>
                            <td class="value"><span class="badge {{if .Present}}badge-success{{else}}badge-warn{{end}}">{{.Value}}</span></td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </section>

            <section class="card">
                <h2>Pod Labels</h2>
                {{if .LabelsOK}}
                <table class="metadata-table">
                    <thead>
                        <tr><th>Label Key</th><th>Value</th></tr>
                    </thead>
                    <tbody>
                        {{range .Labels}}
                        <tr>
                            <td class="key">{{.Key}}</td>
                            <td class="value"><code>{{.Value}}</code></td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
                {{else}}
                <div class="alert alert-error">
                    <strong>Missing Downward API Volume:</strong> {{.LabelsError}}
                </div>
                {{end}}
            </section>
        </main>

        <footer>
            <p>Generated at: {{.GeneratedAt}} | Resource: {{.Resource}} | podscope {{.Version}}</p>
        </footer>
    </div>
</body>
</html>
`
