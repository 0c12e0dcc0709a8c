package service

import (
	"context"

	"llex-backend/models"
)

// EmitFunc delivers one chunk downstream. It returns a non-nil error when the
// receiver is gone (client disconnect or superseded request); the producer
// must stop emitting and return promptly.
type EmitFunc func(models.StreamChunk) error

// Tool is a unit of work that produces an ordered chunk sequence for one
// question. Implementations convert internal failures into a terminal error
// chunk; Run's return value only reports emit/context failures, so a
// completed stream ending in an error chunk still returns nil.
type Tool interface {
	Name() string
	Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error
}

// Registry maps tool identifiers to implementations. The set is closed: the
// router only ever selects one of the registered names.
type Registry struct {
	tools    map[string]Tool
	fallback Tool
}

// NewRegistry creates a registry. fallback handles plans whose tool name is
// unknown, so the orchestrator always has something runnable.
func NewRegistry(fallback Tool, tools ...Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool, len(tools)+1),
		fallback: fallback,
	}
	r.tools[fallback.Name()] = fallback
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Resolve returns the tool for a plan, falling back to the default for
// unknown names.
func (r *Registry) Resolve(plan models.ToolPlan) Tool {
	if t, ok := r.tools[plan.Tool]; ok {
		return t
	}
	return r.fallback
}
