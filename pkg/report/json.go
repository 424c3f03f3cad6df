package report

import (
	"encoding/json"
	"io"
	"time"

	"agenteval/pkg/stats"
)

// JSONReporter encodes the report with per-row rate and interval, so
// downstream tooling never re-derives the statistics.
type JSONReporter struct {
	Writer io.Writer
	Pretty bool
}

type jsonTest struct {
	TestResult
	Estimate *stats.Proportion `json:"estimate,omitempty"`
}

type jsonGroup struct {
	Name      string            `json:"name"`
	Successes int               `json:"successes"`
	Total     int               `json:"total"`
	Estimate  *stats.Proportion `json:"estimate,omitempty"`
	Tests     []jsonTest        `json:"tests"`
}

type jsonReport struct {
	Groups     []jsonGroup `json:"groups"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

func (r JSONReporter) Report(report Report) error {
	out := jsonReport{StartedAt: report.StartedAt, FinishedAt: report.FinishedAt}
	for _, group := range report.Groups {
		jg := jsonGroup{
			Name:      group.Name,
			Successes: group.Successes,
			Total:     group.Total,
			Estimate:  estimate(group.Successes, group.Total),
			Tests:     make([]jsonTest, 0, len(group.Tests)),
		}
		for _, test := range group.Tests {
			jg.Tests = append(jg.Tests, jsonTest{
				TestResult: test,
				Estimate:   estimate(test.Successes, test.Total),
			})
		}
		out.Groups = append(out.Groups, jg)
	}

	encoder := json.NewEncoder(r.Writer)
	if r.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}

// estimate returns nil when the interval is not applicable (zero trials).
func estimate(successes, total int) *stats.Proportion {
	p, ok := stats.Wilson(successes, total)
	if !ok {
		return nil
	}
	return &p
}
