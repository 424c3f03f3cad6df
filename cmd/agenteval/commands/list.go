package commands

import (
	"fmt"
	"io"

	"agenteval/pkg/report"
	"agenteval/pkg/summary"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported agents, output formats, and summary schemas",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			writeList(out, "Agents", []string{agentCLI, agentSim})
			writeList(out, "Formats", []string{
				report.FormatTable,
				report.FormatJSON,
				report.FormatMarkdown,
				report.FormatCSV,
				report.FormatHTML,
			})
			writeList(out, "Schemas", []string{
				string(summary.SchemaSessionMetrics),
				string(summary.SchemaStats),
			})
		},
	}
}

func writeList(writer io.Writer, title string, items []string) {
	fmt.Fprintf(writer, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(writer, "  %s\n", item)
	}
	fmt.Fprintln(writer)
}
