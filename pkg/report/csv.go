package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"agenteval/pkg/stats"
)

// CSVReporter writes one flat row per test. Rows whose precondition was
// never observed leave the rate columns empty.
type CSVReporter struct {
	Writer io.Writer
}

func (r CSVReporter) Report(report Report) error {
	writer := csv.NewWriter(r.Writer)
	header := []string{"group", "test", "successes", "total", "runs", "rate", "ci_lower", "ci_upper"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, group := range report.Groups {
		for _, test := range group.Tests {
			record := []string{
				group.Name,
				test.Name,
				strconv.Itoa(test.Successes),
				strconv.Itoa(test.Total),
				strconv.Itoa(test.Runs),
			}
			if p, ok := stats.Wilson(test.Successes, test.Total); ok {
				record = append(record,
					strconv.FormatFloat(p.Rate, 'f', 4, 64),
					strconv.FormatFloat(p.Lower, 'f', 4, 64),
					strconv.FormatFloat(p.Upper, 'f', 4, 64),
				)
			} else {
				record = append(record, "", "", "")
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
