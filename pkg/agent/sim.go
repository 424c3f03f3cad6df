package agent

import (
	"context"
	"math/rand"
	"sync"

	"agenteval/pkg/summary"
)

// SimRunner fabricates session summaries without spawning a process:
// the conditioning event fires with probability YRate and, given it,
// the recovery succeeds with probability XRate. Useful for dry runs of
// a suite and for exercising the pipeline in tests.
type SimRunner struct {
	YRate     float64
	XRate     float64
	Schema    summary.Schema
	Tool      string // recovery tool; defaults to list_issues
	WrongTool string // conditioning tool; defaults to github__list_issues
	Seed      int64

	mu  sync.Mutex
	rng *rand.Rand
}

func (s *SimRunner) Name() string { return "sim" }

func (s *SimRunner) Run(ctx context.Context, _ string) (*summary.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema := s.Schema
	if !schema.Valid() {
		schema = summary.SchemaSessionMetrics
	}
	tool := s.Tool
	if tool == "" {
		tool = "list_issues"
	}
	wrong := s.WrongTool
	if wrong == "" {
		wrong = "github__list_issues"
	}

	s.mu.Lock()
	if s.rng == nil {
		seed := s.Seed
		if seed == 0 {
			seed = 1
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	yHit := s.rng.Float64() < s.YRate
	xHit := yHit && s.rng.Float64() < s.XRate
	s.mu.Unlock()

	counters := map[string]summary.ToolCounters{
		wrong: {},
		tool:  {},
	}
	switch {
	case yHit && xHit:
		counters[wrong] = summary.ToolCounters{Count: 1}
		counters[tool] = summary.ToolCounters{Count: 1, Success: 1}
	case yHit:
		counters[wrong] = summary.ToolCounters{Count: 1}
	default:
		// No wrong turn at all; the agent went straight to the tool.
		counters[tool] = summary.ToolCounters{Count: 1, Success: 1}
	}
	return schema.ToolDocument(counters), nil
}
