// Package registry holds the extension tables the editor dispatches through:
// pointer handlers keyed by (phase, tool), and render and commit handlers keyed
// by shape kind. Kind packages populate a Registry once at startup; it is
// read-only afterwards and needs no locking.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"PDFMarkup/internal/shape"
)

// ErrDuplicateHandler is returned when a kind registers a second render or commit handler.
var ErrDuplicateHandler = errors.New("handler already registered")

// Phase is a pointer-event stage.
type Phase int

const (
	Down Phase = iota
	Move
	Up
)

func (p Phase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(s) {
	case "down":
		return Down, nil
	case "move":
		return Move, nil
	case "up":
		return Up, nil
	}
	return 0, fmt.Errorf("unknown pointer phase %q", s)
}

// ToolID names the active drawing tool.
type ToolID string

const (
	// NoTool is the state with no tool selected.
	NoTool ToolID = ""
	// AnyTool entries match every active tool, NoTool included.
	AnyTool ToolID = "*"
)

type (
	PointerHandler func(ctx *EventContext)
	CommitHandler  func(ctx *CommitContext)
	RenderHandler  func(ctx *RenderContext) Output
)

type pointerEntry struct {
	phase Phase
	tool  ToolID
	fn    PointerHandler
}

type Registry struct {
	pointer []pointerEntry
	render  map[shape.Kind]RenderHandler
	commit  map[shape.Kind]CommitHandler
}

func New() *Registry {
	return &Registry{
		render: make(map[shape.Kind]RenderHandler),
		commit: make(map[shape.Kind]CommitHandler),
	}
}

// RegisterPointer appends a handler for (phase, tool). Several handlers may
// share a key; all of them run.
func (r *Registry) RegisterPointer(phase Phase, tool ToolID, fn PointerHandler) {
	r.pointer = append(r.pointer, pointerEntry{phase: phase, tool: tool, fn: fn})
}

// RegisterRender installs the render handler for kind.
func (r *Registry) RegisterRender(kind shape.Kind, fn RenderHandler) error {
	if _, ok := r.render[kind]; ok {
		return fmt.Errorf("render %q: %w", kind, ErrDuplicateHandler)
	}
	r.render[kind] = fn
	return nil
}

// RegisterCommit installs the content-commit handler for kind.
func (r *Registry) RegisterCommit(kind shape.Kind, fn CommitHandler) error {
	if _, ok := r.commit[kind]; ok {
		return fmt.Errorf("commit %q: %w", kind, ErrDuplicateHandler)
	}
	r.commit[kind] = fn
	return nil
}

// PointerHandlers returns the handlers matching (phase, tool): AnyTool entries
// first, then entries for tool, each group in registration order.
func (r *Registry) PointerHandlers(phase Phase, tool ToolID) []PointerHandler {
	var wild, exact []PointerHandler
	for _, e := range r.pointer {
		if e.phase != phase {
			continue
		}
		switch e.tool {
		case AnyTool:
			wild = append(wild, e.fn)
		case tool:
			exact = append(exact, e.fn)
		}
	}
	return append(wild, exact...)
}

// Render invokes the render handler for ctx.Shape's kind. A kind without a
// handler renders nothing and reports false.
func (r *Registry) Render(ctx *RenderContext) (Output, bool) {
	fn, ok := r.render[shape.KindOf(ctx.Shape)]
	if !ok {
		return Output{}, false
	}
	return fn(ctx), true
}

// Commit returns the commit handler for kind, if any.
func (r *Registry) Commit(kind shape.Kind) (CommitHandler, bool) {
	fn, ok := r.commit[kind]
	return fn, ok
}

// Kinds returns the kinds with a render handler.
func (r *Registry) Kinds() []shape.Kind {
	kinds := make([]shape.Kind, 0, len(r.render))
	for k := range r.render {
		kinds = append(kinds, k)
	}
	return kinds
}
