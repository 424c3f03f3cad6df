package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"agenteval/pkg/summary"

	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script into dir. Scripts receive
// the default argument convention: $2 is the prompt, $4 the artifact path.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(dir, "fake-agent.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCLIRunnerParsesArtifact(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `cat > "$4" <<'EOF'
{"sessionMetrics":{"tools":{"byName":{"github__list_issues":{"count":1},"list_issues":{"count":1,"success":1}}}}}
EOF
`)
	runner := &CLIRunner{Command: script, ArtifactDir: filepath.Join(dir, "artifacts")}

	doc, err := runner.Run(context.Background(), "list the issues")
	require.NoError(t, err)

	countPath, err := summary.ParsePath(summary.SchemaSessionMetrics.ToolCount("github__list_issues"))
	require.NoError(t, err)
	require.Equal(t, 1.0, summary.Number(doc, countPath, 0))

	// The artifact stays behind as the trial's handle.
	entries, err := os.ReadDir(filepath.Join(dir, "artifacts"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCLIRunnerNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "exit 3\n")
	runner := &CLIRunner{Command: script, ArtifactDir: dir}

	_, err := runner.Run(context.Background(), "p")
	require.ErrorIs(t, err, ErrExit)
}

func TestCLIRunnerMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "exit 0\n")
	runner := &CLIRunner{Command: script, ArtifactDir: dir}

	_, err := runner.Run(context.Background(), "p")
	require.ErrorIs(t, err, ErrNoArtifact)
}

func TestCLIRunnerGarbageArtifact(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `echo "not json" > "$4"`+"\n")
	runner := &CLIRunner{Command: script, ArtifactDir: dir}

	_, err := runner.Run(context.Background(), "p")
	require.ErrorIs(t, err, ErrBadArtifact)
}

func TestCLIRunnerTimeout(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sleep 5\n")
	runner := &CLIRunner{Command: script, ArtifactDir: dir}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, "p")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestCLIRunnerPlaceholders(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `printf '{"prompt":"%s","argc":%d}' "$2" $# > "$1"`+"\n")
	runner := &CLIRunner{
		Command:     script,
		Args:        []string{"{{artifact}}", "{{prompt}}"},
		ArtifactDir: dir,
	}

	doc, err := runner.Run(context.Background(), "hello")
	require.NoError(t, err)

	promptPath, err := summary.ParsePath("prompt")
	require.NoError(t, err)
	require.Equal(t, "hello", summary.Extract(doc, promptPath, ""))

	// Both placeholders were satisfied, so nothing extra was appended.
	argcPath, err := summary.ParsePath("argc")
	require.NoError(t, err)
	require.Equal(t, 2.0, summary.Number(doc, argcPath, 0))
}

func TestCLIRunnerRequiresCommand(t *testing.T) {
	runner := &CLIRunner{ArtifactDir: t.TempDir()}
	_, err := runner.Run(context.Background(), "p")
	require.Error(t, err)

	require.Equal(t, "cli", runner.Name())
	require.Equal(t, "agent.sh", (&CLIRunner{Command: "/opt/bin/agent.sh"}).Name())
}

func TestCLIRunnerNoUsableSampleTaxonomy(t *testing.T) {
	// Every failure kind is distinct, none matches another.
	kinds := []error{ErrExit, ErrTimeout, ErrNoArtifact, ErrBadArtifact}
	for i, kind := range kinds {
		for j, other := range kinds {
			if i == j {
				continue
			}
			require.False(t, errors.Is(kind, other))
		}
	}
}
