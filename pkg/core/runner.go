package core

import (
	"context"

	"agenteval/pkg/summary"
)

// Runner executes one agent trial for a rendered prompt.
type Runner interface {
	Name() string
	Run(ctx context.Context, prompt string) (*summary.Document, error)
}
