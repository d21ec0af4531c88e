package reporters

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/reaandrew/lintdetector/core"
)

// HtmlReport renders a standalone page with the metrics and the issues per file.
type HtmlReport struct{}

func (HtmlReport) ID() string { return "html" }

var htmlReportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Tool}} report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
tr.suppressed { color: #999; }
.error { color: #b00020; } .warning { color: #b26a00; } .info { color: #0050b3; }
</style>
</head>
<body>
<h1>{{.Tool}} report</h1>
<p>Version {{.Version}}{{if .RunID}}, run {{.RunID}}{{end}}</p>
<h2>Metrics</h2>
<ul>
<li>issues: {{.ActiveCount}}</li>
<li>suppressed: {{.SuppressedCount}}</li>
{{- range .Metrics}}
<li>{{.Type}}: {{.Value}}</li>
{{- end}}
</ul>
<h2>Issues</h2>
{{- if not .Files}}
<p>No issues found.</p>
{{- end}}
{{- range .Files}}
<h3>{{.Path}}</h3>
<table>
<tr><th>Location</th><th>Rule</th><th>Severity</th><th>Message</th><th>Suppressed</th></tr>
{{- range .Issues}}
<tr{{if .Suppressed}} class="suppressed"{{end}}><td>{{.Entity.Location.Start.Line}}:{{.Entity.Location.Start.Column}}</td><td>{{.RuleInstance.Key}}</td><td class="{{.Severity}}">{{.Severity}}</td><td>{{.Message}}</td><td>{{join .SuppressReasons ", "}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- if .Notifications}}
<h2>Notifications</h2>
<ul>
{{- range .Notifications}}
<li class="{{.Level}}">{{.Message}}</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

type htmlFile struct {
	Path   string
	Issues []core.Issue
}

type htmlReportData struct {
	Tool            string
	Version         string
	RunID           string
	ActiveCount     int
	SuppressedCount int
	Metrics         []core.Metric
	Files           []htmlFile
	Notifications   []core.Notification
}

func (HtmlReport) Render(result *core.AnalysisResult) ([]byte, error) {
	active := len(result.ActiveIssues())
	data := htmlReportData{
		Tool:            core.ToolName,
		Version:         core.Version,
		RunID:           result.RunID(),
		ActiveCount:     active,
		SuppressedCount: len(result.Issues) - active,
		Metrics:         result.Metrics,
		Notifications:   result.Notifications,
	}
	paths, grouped := issuesByFile(result.Issues)
	for _, path := range paths {
		data.Files = append(data.Files, htmlFile{Path: path, Issues: grouped[path]})
	}

	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.Bytes(), nil
}
