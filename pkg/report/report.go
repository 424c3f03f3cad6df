package report

import (
	"time"

	"agenteval/pkg/core"
)

// Reporter writes an aggregated report.
type Reporter interface {
	Report(r Report) error
}

const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatHTML     = "html"
)

// TestResult is one test's counts inside a group. Successes are the
// X-given-Y observations, Total the Y observations, Runs every trial
// consumed including failures.
type TestResult struct {
	Name      string `json:"name" yaml:"name"`
	Successes int    `json:"successes" yaml:"successes"`
	Total     int    `json:"total" yaml:"total"`
	Runs      int    `json:"runs" yaml:"runs"`
}

// GroupResult sums its tests and keeps per-test detail in insertion order.
type GroupResult struct {
	Name      string       `json:"name" yaml:"name"`
	Successes int          `json:"successes" yaml:"successes"`
	Total     int          `json:"total" yaml:"total"`
	Tests     []TestResult `json:"tests" yaml:"tests"`
}

// Report is the frozen group-to-test result tree.
type Report struct {
	Groups     []GroupResult `json:"groups" yaml:"groups"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
}

// Aggregator folds per-test counts into group results. The zero value is
// ready to use. It is not safe for concurrent use; callers fold from the
// goroutine driving the estimates.
type Aggregator struct {
	order   []string
	groups  map[string]*GroupResult
	started time.Time
}

// Add folds one test's counts into the named group. Group totals are
// strictly additive; per-test entries keep their insertion order.
func (a *Aggregator) Add(group, test string, c core.Counts) {
	if a.groups == nil {
		a.groups = make(map[string]*GroupResult)
		a.started = time.Now()
	}
	g, ok := a.groups[group]
	if !ok {
		g = &GroupResult{Name: group}
		a.groups[group] = g
		a.order = append(a.order, group)
	}
	g.Successes += c.XGivenY
	g.Total += c.YObserved
	g.Tests = append(g.Tests, TestResult{
		Name:      test,
		Successes: c.XGivenY,
		Total:     c.YObserved,
		Runs:      c.Runs,
	})
}

// Report freezes the accumulated results, groups in insertion order.
func (a *Aggregator) Report() Report {
	r := Report{
		Groups:     make([]GroupResult, 0, len(a.order)),
		StartedAt:  a.started,
		FinishedAt: time.Now(),
	}
	for _, name := range a.order {
		g := *a.groups[name]
		g.Tests = append([]TestResult(nil), g.Tests...)
		r.Groups = append(r.Groups, g)
	}
	return r
}
