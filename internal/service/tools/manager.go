package tools

import (
	"context"
	"fmt"
)

// Manager registers tools, dispatches execution by name, and exposes
// the sources cited by the most recent tool run.
type Manager struct {
	order []string
	tools map[string]Tool
}

// NewManager returns a manager preloaded with the given tools.
func NewManager(ts ...Tool) *Manager {
	m := &Manager{tools: make(map[string]Tool)}
	for _, t := range ts {
		m.Register(t)
	}
	return m
}

// Register adds a tool, replacing any previous tool with the same name.
func (m *Manager) Register(t Tool) {
	name := t.Definition().Name
	if _, exists := m.tools[name]; !exists {
		m.order = append(m.order, name)
	}
	m.tools[name] = t
}

// Definitions lists tool definitions in registration order, in the
// shape the AI layer advertises to the model.
func (m *Manager) Definitions() []Definition {
	defs := make([]Definition, 0, len(m.tools))
	for _, name := range m.order {
		defs = append(defs, m.tools[name].Definition())
	}
	return defs
}

// Execute dispatches to the named tool.
func (m *Manager) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := m.tools[name]
	if !ok {
		return "", fmt.Errorf("tool %q not found", name)
	}
	return t.Execute(ctx, args)
}

// LastSources aggregates sources recorded by source-tracking tools
// since the last reset. Tracked sources are shared manager state, so
// callers must finish an Execute/LastSources/ResetSources sequence
// before starting the next request against the same manager.
func (m *Manager) LastSources() []string {
	var sources []string
	for _, name := range m.order {
		if tracker, ok := m.tools[name].(SourceTracker); ok {
			sources = append(sources, tracker.LastSources()...)
		}
	}
	return sources
}

// ResetSources clears recorded sources on every source-tracking tool.
func (m *Manager) ResetSources() {
	for _, t := range m.tools {
		if tracker, ok := t.(SourceTracker); ok {
			tracker.ResetSources()
		}
	}
}
