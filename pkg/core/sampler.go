package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agenteval/pkg/summary"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default trial budgets for an estimate.
const (
	DefaultTargetY   = 30
	DefaultMaxTrials = 100
)

// NoncePlaceholder marks where the per-trial nonce is substituted into a
// prompt. Prompts without it get the nonce prefixed instead, so no two
// trials can ever be served an identical cached response.
const NoncePlaceholder = "{{nonce}}"

// Sampler estimates P(X | Y) for one test by dispatching trials to a
// bounded worker pool and classifying completions as they arrive.
//
// Counts are mutated only by the goroutine consuming completions, never
// by the workers. Early stop fires the moment YObserved reaches TargetY;
// trials still in flight are cancelled and their results discarded.
type Sampler struct {
	Runner      Runner
	TargetY     int           // early-stop target; 0 runs every trial
	MaxTrials   int
	MaxParallel int
	Timeout     time.Duration // per trial; 0 means no per-trial deadline
	RateLimiter RateLimiter
	Logger      *zap.Logger
	Progress    func(completed, total int)
}

type trialOutcome struct {
	doc *summary.Document
	err error
}

// Estimate runs up to MaxTrials trials of spec and returns the counts.
// Trial failures are logged and counted as runs without classification.
// On external cancellation the counts collected so far are returned
// alongside the context error.
func (s *Sampler) Estimate(ctx context.Context, spec TestSpec) (Counts, error) {
	if s.Runner == nil {
		return Counts{}, errors.New("sampler: runner is required")
	}
	if s.MaxTrials <= 0 {
		return Counts{}, errors.New("sampler: max trials must be > 0")
	}
	xPath, err := summary.ParsePath(spec.XPath)
	if err != nil {
		return Counts{}, fmt.Errorf("sampler: x path: %w", err)
	}
	yPath, err := summary.ParsePath(spec.YPath)
	if err != nil {
		return Counts{}, fmt.Errorf("sampler: y path: %w", err)
	}

	workers := s.MaxParallel
	if workers <= 0 {
		workers = 1
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prompts := make(chan string, s.MaxTrials)
	for i := 0; i < s.MaxTrials; i++ {
		prompts <- renderPrompt(spec.Prompt)
	}
	close(prompts)

	outcomes := make(chan trialOutcome, workers)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for prompt := range prompts {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if s.RateLimiter != nil {
				if err := s.RateLimiter.Wait(ctx); err != nil {
					return
				}
			}

			doc, err := s.runTrial(ctx, prompt)
			select {
			case outcomes <- trialOutcome{doc: doc, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var counts Counts
	for {
		select {
		case <-ctx.Done():
			return counts, ctx.Err()
		case out, ok := <-outcomes:
			if !ok {
				// Workers drained. ctx.Err() is nil unless the caller
				// cancelled while completions were still in flight.
				return counts, ctx.Err()
			}
			counts.Runs++
			if out.err != nil {
				logger.Warn("trial failed",
					zap.String("test", spec.Name),
					zap.String("runner", s.Runner.Name()),
					zap.Error(out.err))
			} else if summary.Number(out.doc, yPath, 0) > 0 {
				counts.YObserved++
				if summary.Number(out.doc, xPath, 0) > 0 {
					counts.XGivenY++
				}
			}
			if s.Progress != nil {
				s.Progress(counts.Runs, s.MaxTrials)
			}
			if s.TargetY > 0 && counts.YObserved >= s.TargetY {
				cancel()
				return counts, nil
			}
		}
	}
}

func (s *Sampler) runTrial(ctx context.Context, prompt string) (*summary.Document, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Runner.Run(ctx, prompt)
}

func renderPrompt(prompt string) string {
	nonce := uuid.NewString()
	if strings.Contains(prompt, NoncePlaceholder) {
		return strings.ReplaceAll(prompt, NoncePlaceholder, nonce)
	}
	return nonce + ". " + prompt
}
