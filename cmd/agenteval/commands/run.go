package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"agenteval/pkg/agent"
	"agenteval/pkg/core"
	"agenteval/pkg/report"
	"agenteval/pkg/stats"
	"agenteval/pkg/suite"
	"agenteval/pkg/summary"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	agentCLI = "cli"
	agentSim = "sim"
)

func newRunCommand() *cobra.Command {
	var (
		summaryDir     string
		suitePath      string
		workers        int
		targetY        int
		maxTrials      int
		timeout        time.Duration
		rateLimitRPS   float64
		rateLimitBurst int
		format         string
		outputPath     string
		agentKind      string
		agentCommand   string
		agentArgs      []string
		simYRate       float64
		simXRate       float64
		simSeed        int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an eval suite against an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaryRoot := resolveString(summaryDir, appConfig.SummaryDir)
			if summaryRoot == "" {
				return errors.New("summary dir is required")
			}

			var (
				def *suite.Suite
				err error
			)
			if path := resolveString(suitePath, appConfig.Suite); path != "" {
				def, err = suite.Load(path)
				if err != nil {
					return err
				}
			} else {
				def = suite.Default()
			}

			schema := def.Defaults.Schema
			targetResolved := resolveInt(targetY, def.Defaults.TargetY, core.DefaultTargetY)
			trialsResolved := resolveInt(maxTrials, def.Defaults.MaxTrials, core.DefaultMaxTrials)
			if targetResolved > trialsResolved {
				return fmt.Errorf("target %d exceeds max trials %d", targetResolved, trialsResolved)
			}
			timeoutResolved := timeout
			if timeoutResolved <= 0 {
				timeoutResolved = time.Duration(def.Defaults.Timeout)
			}
			workerCount := resolveInt(workers, appConfig.Workers, defaultWorkers())

			formatResolved := resolveString(format, appConfig.Format)
			if formatResolved == "" {
				formatResolved = report.FormatTable
			}
			outputResolved := resolveString(outputPath, appConfig.Output)

			commandResolved := resolveString(agentCommand, appConfig.Agent.Command)
			argsResolved := agentArgs
			if len(argsResolved) == 0 {
				argsResolved = appConfig.Agent.Args
			}
			if agentKind == agentCLI && commandResolved == "" {
				return errors.New("agent command is required (or use --agent sim)")
			}

			sim := simSettings{
				yRate: resolveFloat(simYRate, appConfig.Sim.YRate, 0.5),
				xRate: resolveFloat(simXRate, appConfig.Sim.XRate, 0.66),
				seed:  simSeed,
			}
			if sim.seed == 0 {
				sim.seed = appConfig.Sim.Seed
			}
			if sim.seed == 0 {
				sim.seed = 1
			}

			var rateLimiter core.RateLimiter
			if rateLimitRPS > 0 {
				limiter, err := core.NewRateLimiter(rateLimitRPS, rateLimitBurst)
				if err != nil {
					return err
				}
				rateLimiter = limiter
				defer limiter.Stop()
			}

			var agg report.Aggregator
			testIndex := 0
			for _, g := range def.Groups {
				for _, t := range g.Tests {
					spec, err := t.Spec(schema)
					if err != nil {
						return err
					}

					runner, err := buildRunner(agentKind, t, schema, runnerSettings{
						command:     commandResolved,
						args:        argsResolved,
						artifactDir: filepath.Join(summaryRoot, spec.Name),
						sim:         sim,
						simOffset:   int64(testIndex),
					})
					if err != nil {
						return err
					}

					logger.Info("running eval",
						zap.String("group", g.Name),
						zap.String("test", spec.Name),
						zap.String("x_path", spec.XPath),
						zap.String("y_path", spec.YPath),
						zap.Int("workers", workerCount))

					bar := newProgressBar(progressWriter(cmd), trialsResolved)
					bar.Update(0)

					sampler := core.Sampler{
						Runner:      runner,
						TargetY:     targetResolved,
						MaxTrials:   trialsResolved,
						MaxParallel: workerCount,
						Timeout:     timeoutResolved,
						RateLimiter: rateLimiter,
						Logger:      logger,
						Progress: func(completed, total int) {
							bar.Update(completed)
						},
					}

					counts, err := sampler.Estimate(cmd.Context(), spec)
					if err != nil {
						return err
					}
					bar.Finish()

					logger.Info("finished eval",
						zap.String("test", spec.Name),
						zap.Int("runs", counts.Runs),
						zap.Int("y_observed", counts.YObserved),
						zap.Int("x_given_y", counts.XGivenY),
						zap.Float64("y_rate", stats.Rate(counts.YObserved, counts.Runs)),
						zap.Float64("x_given_y_rate", stats.Rate(counts.XGivenY, counts.YObserved)))

					agg.Add(g.Name, spec.Name, counts)
					testIndex++
				}
			}

			writer := os.Stdout
			if outputResolved != "" {
				file, err := os.Create(outputResolved)
				if err != nil {
					return err
				}
				defer file.Close()
				writer = file
			}

			rep, err := buildReporter(formatResolved, writer)
			if err != nil {
				return err
			}
			return rep.Report(agg.Report())
		},
	}

	cmd.Flags().StringVar(&summaryDir, "summary-dir", "", "root directory for per-test session summaries (required)")
	cmd.Flags().StringVar(&suitePath, "suite", "", "suite file (defaults to the built-in self-correction suite)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel trials (default: half the CPUs, max 10)")
	cmd.Flags().IntVar(&targetY, "target-y", 0, "stop a test once this many Y observations are collected")
	cmd.Flags().IntVar(&maxTrials, "max-trials", 0, "hard cap on trials per test")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-trial timeout")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit-rps", 0, "max trial starts per second (0 = unlimited)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 1, "rate limit burst size")
	cmd.Flags().StringVar(&format, "format", "", "output format (table, json, markdown, csv, html)")
	cmd.Flags().StringVar(&outputPath, "output", "", "output file path")
	cmd.Flags().StringVar(&agentKind, "agent", agentCLI, "agent to drive (cli, sim)")
	cmd.Flags().StringVar(&agentCommand, "agent-command", "", "agent executable")
	cmd.Flags().StringArrayVar(&agentArgs, "agent-arg", nil, "agent argument; repeatable, may use {{prompt}} and {{artifact}}")
	cmd.Flags().Float64Var(&simYRate, "sim-y-rate", 0, "sim agent: probability of the bad state (default 0.5)")
	cmd.Flags().Float64Var(&simXRate, "sim-x-rate", 0, "sim agent: probability of recovery given the bad state (default 0.66)")
	cmd.Flags().Int64Var(&simSeed, "sim-seed", 0, "sim agent: random seed")

	return cmd
}

type simSettings struct {
	yRate float64
	xRate float64
	seed  int64
}

type runnerSettings struct {
	command     string
	args        []string
	artifactDir string
	sim         simSettings
	simOffset   int64
}

func buildRunner(kind string, t suite.Test, schema summary.Schema, settings runnerSettings) (core.Runner, error) {
	switch kind {
	case agentCLI:
		return &agent.CLIRunner{
			Command:     settings.command,
			Args:        settings.args,
			ArtifactDir: settings.artifactDir,
			Logger:      logger,
		}, nil
	case agentSim:
		return &agent.SimRunner{
			YRate:     settings.sim.yRate,
			XRate:     settings.sim.xRate,
			Schema:    schema,
			Tool:      t.Tool,
			WrongTool: t.WrongTool,
			Seed:      settings.sim.seed + settings.simOffset,
		}, nil
	default:
		return nil, fmt.Errorf("unknown agent: %s", kind)
	}
}

func buildReporter(format string, writer io.Writer) (report.Reporter, error) {
	switch format {
	case report.FormatJSON:
		return report.JSONReporter{Writer: writer, Pretty: true}, nil
	case report.FormatTable:
		return report.TableReporter{Writer: writer}, nil
	case report.FormatMarkdown:
		return report.MarkdownReporter{Writer: writer}, nil
	case report.FormatCSV:
		return report.CSVReporter{Writer: writer}, nil
	case report.FormatHTML:
		return report.HTMLReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func defaultWorkers() int {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	if workers > 10 {
		workers = 10
	}
	return workers
}

type progressBar struct {
	writer io.Writer
	total  int
	start  time.Time
	isTTY  bool
}

func newProgressBar(writer io.Writer, total int) *progressBar {
	return &progressBar{
		writer: writer,
		total:  total,
		start:  time.Now(),
		isTTY:  isTerminal(writer),
	}
}

func (p *progressBar) Update(completed int) {
	width := 30
	if p.total <= 0 {
		elapsed := time.Since(p.start).Truncate(time.Second)
		if p.isTTY {
			fmt.Fprintf(p.writer, "\rProcessed %d trials (%s)", completed, elapsed)
		} else {
			fmt.Fprintf(p.writer, "Processed %d trials (%s)\n", completed, elapsed)
		}
		return
	}

	ratio := float64(completed) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))

	bar := strings.Repeat("=", filled) + strings.Repeat(".", width-filled)
	percent := int(ratio * 100)
	elapsed := time.Since(p.start).Truncate(time.Second)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	line := fmt.Sprintf("[%s] %3d%% (%d/%d) %s", barStyle.Render(bar), percent, completed, p.total, elapsed)
	if p.isTTY {
		fmt.Fprintf(p.writer, "\r%s", line)
	} else {
		fmt.Fprintf(p.writer, "%s\n", line)
	}
}

// Finish fills the bar; an early-stopped estimate still ends at 100%.
func (p *progressBar) Finish() {
	p.Update(p.total)
	if p.isTTY {
		fmt.Fprintln(p.writer)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func progressWriter(cmd *cobra.Command) io.Writer {
	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if isTerminal(stderr) {
		return stderr
	}
	if isTerminal(stdout) {
		return stdout
	}
	return stderr
}

func resolveString(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func resolveInt(value int, fallback int, defaultValue int) int {
	if value > 0 {
		return value
	}
	if fallback > 0 {
		return fallback
	}
	return defaultValue
}

func resolveFloat(value float64, fallback float64, defaultValue float64) float64 {
	if value > 0 {
		return value
	}
	if fallback > 0 {
		return fallback
	}
	return defaultValue
}
