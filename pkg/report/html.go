package report

import (
	"html/template"
	"io"
	"time"
)

type HTMLReporter struct {
	Writer io.Writer
	Title  string
}

type htmlRow struct {
	Name      string
	Group     bool
	Successes int
	Total     int
	Rate      string
	Interval  string
}

type htmlGroup struct {
	Name string
	Rows []htmlRow
}

func (r HTMLReporter) Report(report Report) error {
	title := r.Title
	if title == "" {
		title = "Agent Eval Report"
	}

	data := struct {
		Title      string
		StartedAt  string
		FinishedAt string
		Groups     []htmlGroup
	}{
		Title:      title,
		StartedAt:  report.StartedAt.Format(time.RFC3339),
		FinishedAt: report.FinishedAt.Format(time.RFC3339),
	}

	for _, group := range report.Groups {
		rate, interval := formatRow(group.Successes, group.Total, false)
		hg := htmlGroup{Name: group.Name}
		hg.Rows = append(hg.Rows, htmlRow{
			Name:      group.Name,
			Group:     true,
			Successes: group.Successes,
			Total:     group.Total,
			Rate:      rate,
			Interval:  interval,
		})
		for _, test := range group.Tests {
			rate, interval := formatRow(test.Successes, test.Total, false)
			hg.Rows = append(hg.Rows, htmlRow{
				Name:      test.Name,
				Successes: test.Successes,
				Total:     test.Total,
				Rate:      rate,
				Interval:  interval,
			})
		}
		data.Groups = append(data.Groups, hg)
	}

	tpl := template.Must(template.New("report").Parse(htmlTemplate))
	return tpl.Execute(r.Writer, data)
}

const htmlTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 24px; }
    table { border-collapse: collapse; width: 100%; margin-top: 16px; }
    th, td { border: 1px solid #ddd; padding: 8px; }
    th { background: #f5f5f5; text-align: left; }
    tr.group td { font-weight: bold; background: #fafafa; }
    td.test { padding-left: 24px; }
    .meta { margin-bottom: 12px; color: #555; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
  <div class="meta">
    <div><strong>Started:</strong> {{ .StartedAt }}</div>
    <div><strong>Finished:</strong> {{ .FinishedAt }}</div>
  </div>
  {{ range .Groups }}
  <h2>{{ .Name }}</h2>
  <table>
    <tr><th>Eval</th><th>Successes</th><th>Total</th><th>Success %</th><th>95% CI</th></tr>
    {{ range .Rows }}
    <tr{{ if .Group }} class="group"{{ end }}>
      <td{{ if not .Group }} class="test"{{ end }}>{{ .Name }}</td>
      <td>{{ .Successes }}</td>
      <td>{{ .Total }}</td>
      <td>{{ .Rate }}</td>
      <td>{{ .Interval }}</td>
    </tr>
    {{ end }}
  </table>
  {{ end }}
</body>
</html>
`
