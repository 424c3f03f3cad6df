package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"agenteval/pkg/core"
	"agenteval/pkg/report"

	"github.com/stretchr/testify/require"
)

func foldSample(a *report.Aggregator) {
	a.Add("Tool Calling Self-Correction", "github__list_issues", core.Counts{Runs: 9, YObserved: 2, XGivenY: 1})
	a.Add("Tool Calling Self-Correction", "github_list_issues", core.Counts{Runs: 12, YObserved: 5, XGivenY: 4})
	a.Add("Unreproduced", "github.list_issues", core.Counts{Runs: 10})
}

func TestAggregatorFoldsGroupTotals(t *testing.T) {
	var a report.Aggregator
	foldSample(&a)

	r := a.Report()
	require.Len(t, r.Groups, 2)

	group := r.Groups[0]
	require.Equal(t, "Tool Calling Self-Correction", group.Name)
	require.Equal(t, 5, group.Successes)
	require.Equal(t, 7, group.Total)
	require.Len(t, group.Tests, 2)
	require.Equal(t, "github__list_issues", group.Tests[0].Name)
	require.Equal(t, 9, group.Tests[0].Runs)
	require.Equal(t, "github_list_issues", group.Tests[1].Name)

	empty := r.Groups[1]
	require.Equal(t, 0, empty.Total)
	require.Equal(t, 10, empty.Tests[0].Runs)
}

func TestAggregatorFoldIsRepeatable(t *testing.T) {
	var a, b report.Aggregator
	foldSample(&a)
	foldSample(&b)

	require.Equal(t, a.Report().Groups, b.Report().Groups)
}

func TestTableReporter(t *testing.T) {
	var a report.Aggregator
	foldSample(&a)

	var buf bytes.Buffer
	require.NoError(t, report.TableReporter{Writer: &buf}.Report(a.Report()))

	out := buf.String()
	require.Contains(t, out, "Tool Calling Self-Correction")
	require.Contains(t, out, "github__list_issues")
	// 5/7 group rate and the unreproduced group's N/A cells.
	require.Contains(t, out, "71.43%")
	require.Contains(t, out, "N/A")
	// Plain writer, so no ANSI styling.
	require.NotContains(t, out, "\x1b[")
}

func TestMarkdownReporter(t *testing.T) {
	var a report.Aggregator
	a.Add("Group|One", "test|a", core.Counts{Runs: 3, YObserved: 3, XGivenY: 2})

	var buf bytes.Buffer
	require.NoError(t, report.MarkdownReporter{Writer: &buf}.Report(a.Report()))

	out := buf.String()
	require.Contains(t, out, "# Eval Results")
	require.Contains(t, out, `**Group\|One**`)
	require.Contains(t, out, `| test\|a | 2 | 3 | 66.67% |`)
}

func TestJSONReporter(t *testing.T) {
	var a report.Aggregator
	foldSample(&a)

	var buf bytes.Buffer
	require.NoError(t, report.JSONReporter{Writer: &buf, Pretty: true}.Report(a.Report()))

	var decoded struct {
		Groups []struct {
			Name     string `json:"name"`
			Estimate *struct {
				Rate  float64 `json:"rate"`
				Lower float64 `json:"lower"`
				Upper float64 `json:"upper"`
			} `json:"estimate"`
			Tests []struct {
				Name string `json:"name"`
				Runs int    `json:"runs"`
			} `json:"tests"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Groups, 2)
	require.NotNil(t, decoded.Groups[0].Estimate)
	require.InDelta(t, 5.0/7.0, decoded.Groups[0].Estimate.Rate, 1e-9)
	require.Greater(t, decoded.Groups[0].Estimate.Upper, decoded.Groups[0].Estimate.Lower)
	require.Nil(t, decoded.Groups[1].Estimate)
	require.Equal(t, 9, decoded.Groups[0].Tests[0].Runs)
}

func TestCSVReporter(t *testing.T) {
	var a report.Aggregator
	foldSample(&a)

	var buf bytes.Buffer
	require.NoError(t, report.CSVReporter{Writer: &buf}.Report(a.Report()))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, []string{"group", "test", "successes", "total", "runs", "rate", "ci_lower", "ci_upper"}, records[0])
	require.Equal(t, "Tool Calling Self-Correction", records[1][0])
	require.Equal(t, "github__list_issues", records[1][1])
	require.Equal(t, "0.5000", records[1][5])
	// Zero-total rows leave the rate columns empty.
	require.Equal(t, "", records[3][5])
	require.Equal(t, "10", records[3][4])
}

func TestHTMLReporter(t *testing.T) {
	var a report.Aggregator
	foldSample(&a)

	var buf bytes.Buffer
	require.NoError(t, report.HTMLReporter{Writer: &buf}.Report(a.Report()))

	out := buf.String()
	require.Contains(t, out, "<h1>Agent Eval Report</h1>")
	require.Contains(t, out, "<h2>Tool Calling Self-Correction</h2>")
	require.Contains(t, out, `<tr class="group">`)
	require.Contains(t, out, "71.43%")
	require.Contains(t, out, "N/A")
}
