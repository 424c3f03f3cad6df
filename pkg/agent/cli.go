package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"agenteval/pkg/summary"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Failure kinds for one trial. The sampler treats every one of them as
// "no usable sample"; callers that care can match with errors.Is.
var (
	ErrExit        = errors.New("agent exited with a non-zero status")
	ErrTimeout     = errors.New("agent timed out")
	ErrNoArtifact  = errors.New("agent wrote no session summary")
	ErrBadArtifact = errors.New("session summary is not valid JSON")
)

// Placeholders recognized inside CLIRunner.Args.
const (
	PromptPlaceholder   = "{{prompt}}"
	ArtifactPlaceholder = "{{artifact}}"
)

// CLIRunner spawns one agent CLI process per trial. Every invocation
// points the agent at a fresh summary file under ArtifactDir; the file
// stays on disk afterward as the trial's artifact.
type CLIRunner struct {
	Command     string
	Args        []string // may reference {{prompt}} and {{artifact}}
	ArtifactDir string
	Logger      *zap.Logger
}

func (r *CLIRunner) Name() string {
	if r.Command == "" {
		return "cli"
	}
	return filepath.Base(r.Command)
}

func (r *CLIRunner) Run(ctx context.Context, prompt string) (*summary.Document, error) {
	if r.Command == "" {
		return nil, errors.New("agent: command is required")
	}
	if r.ArtifactDir == "" {
		return nil, errors.New("agent: artifact dir is required")
	}
	if err := os.MkdirAll(r.ArtifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("agent: create artifact dir: %w", err)
	}
	artifact := filepath.Join(r.ArtifactDir, fmt.Sprintf("summary_%s.json", uuid.NewString()))

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, r.Command, buildArgs(r.Args, prompt, artifact)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("agent process failed",
			zap.String("command", r.Command),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExit, err)
	}

	data, err := os.ReadFile(artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifact, artifact)
	}
	doc, err := summary.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	return doc, nil
}

// buildArgs renders the argument template. Args without placeholders
// keep the historical harness convention: --prompt and --session-summary
// are appended.
func buildArgs(template []string, prompt, artifact string) []string {
	args := make([]string, 0, len(template)+4)
	havePrompt := false
	haveArtifact := false
	for _, arg := range template {
		if strings.Contains(arg, PromptPlaceholder) {
			havePrompt = true
		}
		if strings.Contains(arg, ArtifactPlaceholder) {
			haveArtifact = true
		}
		arg = strings.ReplaceAll(arg, PromptPlaceholder, prompt)
		arg = strings.ReplaceAll(arg, ArtifactPlaceholder, artifact)
		args = append(args, arg)
	}
	if !havePrompt {
		args = append(args, "--prompt", prompt)
	}
	if !haveArtifact {
		args = append(args, "--session-summary", artifact)
	}
	return args
}
