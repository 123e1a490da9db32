package output

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

// htmlReportData is the template model for the standalone HTML report.
type htmlReportData struct {
	GeneratedAt string
	Doc         Document
	Totals      htmlTotals
}

type htmlTotals struct {
	Hosts    int
	Requests int
	Success  int
	Failed   int
	Errors   int
	Other    int
}

// GenerateHTMLReport renders doc as a self-contained HTML page with one row
// per host, the host failures and any threshold results.
func GenerateHTMLReport(w io.Writer, doc Document) error {
	data := htmlReportData{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Doc:         doc,
		Totals:      totalsOf(doc),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatMs": func(v float64) string {
			return fmt.Sprintf("%.1f ms", v)
		},
		"formatOptionalMs": func(v *float64) string {
			if v == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.1f ms", *v)
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(part, total int) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func totalsOf(doc Document) htmlTotals {
	t := htmlTotals{Hosts: len(doc.Hosts) + len(doc.Failures)}
	for _, h := range doc.Hosts {
		t.Requests += h.Total
		t.Success += h.Success
		t.Failed += h.Failed
		t.Errors += h.Errors
		t.Other += h.Other
	}
	return t
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Hostbench Report</title>
    <style>
        :root { --ink: #1f2933; --muted: #616e7c; --line: #e4e7eb; --ok: #2f8132; --warn: #b7791f; --bad: #c53030; }
        body { margin: 0; padding: 24px; font: 15px/1.5 system-ui, sans-serif; color: var(--ink); background: #f0f2f5; }
        main { max-width: 1200px; margin: 0 auto; background: #fff; border: 1px solid var(--line); border-radius: 6px; }
        header { padding: 24px 32px; border-bottom: 3px solid #3e4c59; }
        header h1 { margin: 0 0 4px; font-size: 1.6rem; }
        header p, footer { margin: 0; color: var(--muted); font-size: 0.85rem; }
        section { padding: 16px 32px; }
        h2 { font-size: 1.2rem; border-bottom: 1px solid var(--line); padding-bottom: 6px; }
        .tiles { display: flex; flex-wrap: wrap; gap: 12px; }
        .tile { flex: 1 1 160px; padding: 12px 16px; border: 1px solid var(--line); border-top: 4px solid #3e4c59; }
        .tile.ok { border-top-color: var(--ok); }
        .tile.warn { border-top-color: var(--warn); }
        .tile.bad { border-top-color: var(--bad); }
        .tile b { display: block; font-size: 1.8rem; }
        .tile small { color: var(--muted); }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 8px 10px; text-align: left; border-bottom: 1px solid var(--line); }
        th { font-size: 0.8rem; text-transform: uppercase; color: var(--muted); }
        td.num { font-variant-numeric: tabular-nums; }
        .pass { color: var(--ok); font-weight: 600; }
        .fail { color: var(--bad); font-weight: 600; }
        footer { padding: 16px 32px; border-top: 1px solid var(--line); text-align: center; }
    </style>
</head>
<body>
<main>
    <header>
        <h1>Hostbench Report</h1>
        <p>Batch {{.Doc.BatchID}} &middot; {{.Doc.Mode}} &middot; {{formatMs .Doc.DurationMs}} &middot; generated {{.GeneratedAt}}</p>
    </header>
    <section class="tiles">
        <div class="tile"><small>Hosts</small><b>{{.Totals.Hosts}}</b><small>{{len .Doc.Failures}} could not be tested</small></div>
        <div class="tile"><small>Requests</small><b>{{.Totals.Requests}}</b></div>
        <div class="tile ok"><small>Success</small><b>{{.Totals.Success}}</b><small>{{formatPercent .Totals.Success .Totals.Requests}}%</small></div>
        <div class="tile warn"><small>Failed</small><b>{{.Totals.Failed}}</b><small>{{formatPercent .Totals.Failed .Totals.Requests}}%</small></div>
        <div class="tile bad"><small>Errors</small><b>{{.Totals.Errors}}</b><small>{{formatPercent .Totals.Errors .Totals.Requests}}%</small></div>
    </section>
    <section>
        <h2>Hosts</h2>
        <table>
            <tr><th>Host</th><th>Success</th><th>Failed</th><th>Errors</th><th>Other</th><th>Min</th><th>Avg</th><th>Max</th><th>P99</th></tr>
            {{range .Doc.Hosts}}
            <tr>
                <td>{{.Host}}</td>
                <td class="num">{{.Success}}</td><td class="num">{{.Failed}}</td><td class="num">{{.Errors}}</td><td class="num">{{.Other}}</td>
                <td class="num">{{formatOptionalMs .MinLatencyMs}}</td>
                <td class="num">{{formatMs .AvgLatencyMs}}</td>
                <td class="num">{{formatOptionalMs .MaxLatencyMs}}</td>
                <td class="num">{{formatMs .P99LatencyMs}}</td>
            </tr>
            {{end}}
        </table>
    </section>
    {{with .Doc.Failures}}
    <section>
        <h2>Untested Hosts</h2>
        <table>
            <tr><th>Host</th><th>Error</th></tr>
            {{range .}}<tr><td>{{.Host}}</td><td class="fail">{{.Error}}</td></tr>{{end}}
        </table>
    </section>
    {{end}}
    {{with .Doc.Thresholds}}
    <section>
        <h2>Thresholds ({{.Passed}}/{{.Total}} passed)</h2>
        <table>
            <tr><th>Host</th><th>Threshold</th><th>Actual</th><th>Status</th></tr>
            {{range .Results}}
            <tr>
                <td>{{.Host}}</td><td>{{.Threshold}}</td><td class="num">{{formatFloat .Actual}}</td>
                <td>{{if .Pass}}<span class="pass">PASS</span>{{else}}<span class="fail">FAIL</span>{{end}}</td>
            </tr>
            {{end}}
        </table>
    </section>
    {{end}}
    <footer>Generated by hostbench</footer>
</main>
</body>
</html>
`
