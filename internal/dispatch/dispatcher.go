// Package dispatch routes pointer events and content commits into the
// handlers registered for the active tool and shape kind.
package dispatch

import (
	"log/slog"

	"PDFMarkup/internal/logging"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

// Store owns the current collection. Dispatcher methods call it while the
// caller holds whatever lock serializes updates.
type Store interface {
	Snapshot() shape.Collection
	Install(shape.Collection)
}

// Dispatcher carries per-session gesture state (the drag anchor). Use one per session.
type Dispatcher struct {
	reg    *registry.Registry
	anchor shape.Position
	log    *slog.Logger
}

func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{reg: reg, log: logging.For("dispatch")}
}

// sink adapts a Store to registry.Sink and records whether anything was installed.
type sink struct {
	d       *Dispatcher
	store   Store
	changed bool
}

func (s *sink) Install(c shape.Collection) {
	s.store.Install(c)
	s.changed = true
}

func (s *sink) SetAnchor(p shape.Position) { s.d.anchor = p }

// Dispatch runs every handler registered for (phase, in.Tool) and reports
// whether the collection changed. Events with no matching handler are no-ops.
func (d *Dispatcher) Dispatch(store Store, phase registry.Phase, in registry.Input) bool {
	handlers := d.reg.PointerHandlers(phase, in.Tool)
	if len(handlers) == 0 {
		return false
	}
	sk := &sink{d: d, store: store}
	ctx := registry.NewEventContext(phase, in, store.Snapshot(), d.anchor, sk)
	for _, fn := range handlers {
		fn(ctx)
		if ctx.Stopped() {
			break
		}
	}
	if sk.changed {
		d.log.Debug("pointer event applied", "phase", phase, "tool", in.Tool, "shapes", len(ctx.Shapes))
	}
	return sk.changed
}

// Commit submits edited content for the shape with the given id.
func (d *Dispatcher) Commit(store Store, id, value string) bool {
	shapes := store.Snapshot()
	i := shapes.Index(id)
	if i < 0 {
		return false
	}
	fn, ok := d.reg.Commit(shape.KindOf(shapes[i]))
	if !ok {
		return false
	}
	changed := false
	fn(registry.NewCommitContext(id, value, shapes, func(c shape.Collection) {
		store.Install(c)
		changed = true
	}))
	return changed
}

// Cancel aborts the gesture in flight: shapes still being drawn are dropped,
// shapes being edited go back to Normal, and the anchor is reset.
func (d *Dispatcher) Cancel(store Store) bool {
	d.anchor = shape.Position{}
	shapes := store.Snapshot()
	if !shapes.HasState(shape.New) && !shapes.HasState(shape.Edit) {
		return false
	}
	next := make(shape.Collection, 0, len(shapes))
	for _, s := range shapes {
		switch s.Meta().State {
		case shape.New:
			continue
		case shape.Edit:
			s = shape.WithState(s, shape.Normal)
		}
		next = append(next, s)
	}
	store.Install(next)
	d.log.Debug("gesture cancelled", "dropped", len(shapes)-len(next))
	return true
}
