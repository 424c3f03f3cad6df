package report

import (
	"fmt"
	"io"
	"os"

	"agenteval/pkg/stats"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

// TableReporter renders the group-to-test tree as a console table: a bold
// group row with its totals, per-test rows indented underneath, and a
// blank separator row between groups.
type TableReporter struct {
	Writer io.Writer
	Color  bool // force styling; otherwise only applied on a TTY
}

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (r TableReporter) Report(report Report) error {
	colored := r.Color || isTTY(r.Writer)

	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Eval", "Successes", "Total", "Success %", "95% CI"})

	for i, group := range report.Groups {
		if i > 0 {
			table.Append([]string{"", "", "", "", ""})
		}
		name := group.Name
		if colored {
			name = boldStyle.Render(name)
		}
		rate, interval := formatRow(group.Successes, group.Total, colored)
		table.Append([]string{
			name,
			fmt.Sprintf("%d", group.Successes),
			fmt.Sprintf("%d", group.Total),
			rate,
			interval,
		})

		for _, test := range group.Tests {
			rate, interval := formatRow(test.Successes, test.Total, colored)
			table.Append([]string{
				" " + test.Name,
				fmt.Sprintf("%d", test.Successes),
				fmt.Sprintf("%d", test.Total),
				rate,
				interval,
			})
		}
	}
	table.Render()
	return nil
}

// formatRow renders the rate and interval cells. A row whose precondition
// was never observed shows N/A rather than a rate over zero trials.
func formatRow(successes, total int, colored bool) (string, string) {
	p, ok := stats.Wilson(successes, total)
	if !ok {
		return "N/A", "N/A"
	}
	rate := fmt.Sprintf("%.2f%%", p.Rate*100)
	if colored {
		switch {
		case p.Rate > 0.8:
			rate = greenStyle.Render(rate)
		case p.Rate > 0.5:
			rate = yellowStyle.Render(rate)
		default:
			rate = redStyle.Render(rate)
		}
	}
	return rate, fmt.Sprintf("%.1f%% - %.1f%%", p.Lower*100, p.Upper*100)
}

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
