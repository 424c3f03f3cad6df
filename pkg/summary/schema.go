package summary

import "fmt"

// Schema names the layout an agent writes its session summary in. Current
// agent builds emit tool counters under `sessionMetrics`; builds with
// structured output emit the same counters under `stats`. Keeping the layout
// knowledge here means samplers only ever see compiled paths.
type Schema string

const (
	SchemaSessionMetrics Schema = "sessionMetrics"
	SchemaStats          Schema = "stats"
)

// Valid reports whether the schema is one of the known layouts.
func (s Schema) Valid() bool {
	return s == SchemaSessionMetrics || s == SchemaStats
}

// ToolCount returns the path of the invocation counter for a tool name.
// Tool names are bracket-quoted because they may contain dots.
func (s Schema) ToolCount(tool string) string {
	return fmt.Sprintf("%s.tools.byName.['%s'].count", s, tool)
}

// ToolSuccess returns the path of the successful-call counter for a tool name.
func (s Schema) ToolSuccess(tool string) string {
	return fmt.Sprintf("%s.tools.byName.['%s'].success", s, tool)
}

// ToolCounters holds one tool's invocation counters inside a summary.
type ToolCounters struct {
	Count   float64
	Success float64
}

// ToolDocument builds a summary in this schema's layout from per-tool
// counters, the write-side counterpart of ToolCount and ToolSuccess.
func (s Schema) ToolDocument(counters map[string]ToolCounters) *Document {
	byName := make(map[string]any, len(counters))
	for name, c := range counters {
		byName[name] = map[string]any{
			"count":   c.Count,
			"success": c.Success,
		}
	}
	return FromValue(map[string]any{
		string(s): map[string]any{
			"tools": map[string]any{
				"byName": byName,
			},
		},
	})
}
