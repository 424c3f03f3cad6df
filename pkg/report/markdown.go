package report

import (
	"fmt"
	"io"
)

// MarkdownReporter writes one table per group, the group totals in a bold
// leading row.
type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(report Report) error {
	if _, err := fmt.Fprintf(r.Writer, "# Eval Results\n\n"); err != nil {
		return err
	}
	for _, group := range report.Groups {
		if _, err := fmt.Fprintf(r.Writer, "## %s\n\n", escapePipe(group.Name)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.Writer, "| Eval | Successes | Total | Success %% | 95%% CI |\n|---|---|---|---|---|\n"); err != nil {
			return err
		}
		rate, interval := formatRow(group.Successes, group.Total, false)
		if _, err := fmt.Fprintf(
			r.Writer,
			"| **%s** | %d | %d | %s | %s |\n",
			escapePipe(group.Name),
			group.Successes,
			group.Total,
			rate,
			interval,
		); err != nil {
			return err
		}
		for _, test := range group.Tests {
			rate, interval := formatRow(test.Successes, test.Total, false)
			if _, err := fmt.Fprintf(
				r.Writer,
				"| %s | %d | %d | %s | %s |\n",
				escapePipe(test.Name),
				test.Successes,
				test.Total,
				rate,
				interval,
			); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(r.Writer); err != nil {
			return err
		}
	}
	return nil
}

func escapePipe(input string) string {
	if input == "" {
		return ""
	}
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if r == '|' {
			out = append(out, '\\', r)
		} else if r == '\n' || r == '\r' {
			out = append(out, ' ')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
