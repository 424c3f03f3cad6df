package core

// TestSpec describes one conditional estimate: among trials where the
// indicator at YPath is positive, how often the indicator at XPath is
// positive as well.
type TestSpec struct {
	Name   string `json:"name" yaml:"name"`
	XPath  string `json:"x_path" yaml:"x_path"`
	YPath  string `json:"y_path" yaml:"y_path"`
	Prompt string `json:"prompt" yaml:"prompt"`
}
