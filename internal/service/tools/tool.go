package tools

import "context"

// Definition describes a callable tool to the AI layer.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Tool executes a named capability against loosely typed arguments as
// they arrive from JSON.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// SourceTracker is implemented by tools that cite course material, so
// the manager can surface and reset the sources behind the last answer.
type SourceTracker interface {
	LastSources() []string
	ResetSources()
}

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg reads an optional integer argument, tolerating the float64
// that JSON decoding produces.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
