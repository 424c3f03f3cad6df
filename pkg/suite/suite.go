package suite

import (
	"errors"
	"fmt"
	"time"

	"agenteval/pkg/core"
	"agenteval/pkg/summary"

	"gopkg.in/yaml.v3"
)

// Duration accepts a Go duration string ("90s") or a bare number,
// read as seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var seconds int
	if err := value.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return errors.New("suite: timeout must be a duration or seconds")
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("suite: bad duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Defaults are the trial budgets applied to every test in a suite.
type Defaults struct {
	TargetY   int            `yaml:"target_y"`
	MaxTrials int            `yaml:"max_trials"`
	Timeout   Duration       `yaml:"timeout"`
	Schema    summary.Schema `yaml:"schema"`
}

// Test is one suite entry: either the tool/wrong_tool shorthand or an
// explicit name, paths, and prompt. Explicit fields win over expansion.
type Test struct {
	Name      string `yaml:"name,omitempty"`
	Tool      string `yaml:"tool,omitempty"`
	WrongTool string `yaml:"wrong_tool,omitempty"`
	XPath     string `yaml:"x_path,omitempty"`
	YPath     string `yaml:"y_path,omitempty"`
	Prompt    string `yaml:"prompt,omitempty"`
}

// Group is a named set of tests aggregated together in the report.
type Group struct {
	Name  string `yaml:"name"`
	Tests []Test `yaml:"tests"`
}

// Suite is a parsed suite file.
type Suite struct {
	Defaults Defaults `yaml:"defaults"`
	Groups   []Group  `yaml:"groups"`
}

// GroupSpecs is one group expanded into runnable specs.
type GroupSpecs struct {
	Name  string
	Specs []core.TestSpec
}

// Spec expands the entry into a runnable TestSpec. Shorthand entries are
// named after the wrong tool; their X path is the tool's success counter,
// their Y path the wrong tool's invocation counter, and their prompt asks
// for the wrong tool by name.
func (t Test) Spec(schema summary.Schema) (core.TestSpec, error) {
	spec := core.TestSpec{Name: t.Name, XPath: t.XPath, YPath: t.YPath, Prompt: t.Prompt}

	if (t.Tool == "") != (t.WrongTool == "") {
		return core.TestSpec{}, fmt.Errorf("suite: test %q: tool and wrong_tool must be set together", t.label())
	}
	if t.Tool != "" {
		if spec.Name == "" {
			spec.Name = t.WrongTool
		}
		if spec.XPath == "" {
			spec.XPath = schema.ToolSuccess(t.Tool)
		}
		if spec.YPath == "" {
			spec.YPath = schema.ToolCount(t.WrongTool)
		}
		if spec.Prompt == "" {
			spec.Prompt = fmt.Sprintf("Call %s to list the oldest issues in this repo (google-gemini/gemini-cli)", t.WrongTool)
		}
	}

	switch {
	case spec.Name == "":
		return core.TestSpec{}, errors.New("suite: test without tool shorthand needs a name")
	case spec.XPath == "":
		return core.TestSpec{}, fmt.Errorf("suite: test %q: x_path is required", spec.Name)
	case spec.YPath == "":
		return core.TestSpec{}, fmt.Errorf("suite: test %q: y_path is required", spec.Name)
	case spec.Prompt == "":
		return core.TestSpec{}, fmt.Errorf("suite: test %q: prompt is required", spec.Name)
	}
	if _, err := summary.ParsePath(spec.XPath); err != nil {
		return core.TestSpec{}, fmt.Errorf("suite: test %q: x_path: %w", spec.Name, err)
	}
	if _, err := summary.ParsePath(spec.YPath); err != nil {
		return core.TestSpec{}, fmt.Errorf("suite: test %q: y_path: %w", spec.Name, err)
	}
	return spec, nil
}

func (t Test) label() string {
	if t.Name != "" {
		return t.Name
	}
	if t.WrongTool != "" {
		return t.WrongTool
	}
	return t.Tool
}

// Specs expands every test, preserving file order.
func (s *Suite) Specs() ([]GroupSpecs, error) {
	groups := make([]GroupSpecs, 0, len(s.Groups))
	for _, g := range s.Groups {
		gs := GroupSpecs{Name: g.Name, Specs: make([]core.TestSpec, 0, len(g.Tests))}
		for _, t := range g.Tests {
			spec, err := t.Spec(s.Defaults.Schema)
			if err != nil {
				return nil, err
			}
			gs.Specs = append(gs.Specs, spec)
		}
		groups = append(groups, gs)
	}
	return groups, nil
}
