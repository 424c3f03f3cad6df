package suite

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"agenteval/pkg/core"
	"agenteval/pkg/summary"

	"gopkg.in/yaml.v3"
)

// Load reads, decodes, and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("suite: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("suite: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a suite document, fills in default budgets, and rejects
// anything that would only fail after sampling had already started.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the built-in suite: tool-calling self-correction for
// the wrong-name shapes agents actually produce (double underscore,
// single underscore, dotted).
func Default() *Suite {
	s := &Suite{
		Groups: []Group{{
			Name: "Tool Calling Self-Correction",
			Tests: []Test{
				{Tool: "list_issues", WrongTool: "github__list_issues"},
				{Tool: "list_issues", WrongTool: "github_list_issues"},
				{Tool: "list_issues", WrongTool: "github.list_issues"},
				{Tool: "search_issues", WrongTool: "github__search_issues"},
				{Tool: "search_issues", WrongTool: "github_search_issues"},
				{Tool: "search_issues", WrongTool: "github.search_issues"},
			},
		}},
	}
	s.applyDefaults()
	return s
}

func (s *Suite) applyDefaults() {
	if s.Defaults.TargetY == 0 {
		s.Defaults.TargetY = core.DefaultTargetY
	}
	if s.Defaults.MaxTrials == 0 {
		s.Defaults.MaxTrials = core.DefaultMaxTrials
	}
	if s.Defaults.Timeout == 0 {
		s.Defaults.Timeout = Duration(60 * time.Second)
	}
	if s.Defaults.Schema == "" {
		s.Defaults.Schema = summary.SchemaSessionMetrics
	}
}

func (s *Suite) validate() error {
	if len(s.Groups) == 0 {
		return errors.New("no groups defined")
	}
	d := s.Defaults
	if d.TargetY < 0 {
		return errors.New("target_y must be > 0")
	}
	if d.MaxTrials < 0 {
		return errors.New("max_trials must be > 0")
	}
	if d.TargetY > d.MaxTrials {
		return fmt.Errorf("target_y %d exceeds max_trials %d", d.TargetY, d.MaxTrials)
	}
	if d.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if !d.Schema.Valid() {
		return fmt.Errorf("unknown schema %q", d.Schema)
	}

	groups, err := s.Specs()
	if err != nil {
		return err
	}
	groupNames := make(map[string]struct{}, len(groups))
	testNames := make(map[string]struct{})
	for _, g := range groups {
		if g.Name == "" {
			return errors.New("group without a name")
		}
		if _, dup := groupNames[g.Name]; dup {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		groupNames[g.Name] = struct{}{}
		if len(g.Specs) == 0 {
			return fmt.Errorf("group %q has no tests", g.Name)
		}
		for _, spec := range g.Specs {
			if _, dup := testNames[spec.Name]; dup {
				return fmt.Errorf("duplicate test %q", spec.Name)
			}
			testNames[spec.Name] = struct{}{}
		}
	}
	return nil
}
