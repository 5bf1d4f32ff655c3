// Package state owns the editing session: the loaded document, the shape
// collection and the tool, color and page the user has selected. Every update
// from the UI, the bridge or the loader goes through one mutex.
package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"PDFMarkup/internal/colorutil"
	"PDFMarkup/internal/dispatch"
	"PDFMarkup/internal/export"
	"PDFMarkup/internal/logging"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

var (
	// ErrNotLoaded is returned by operations that need a document before one has loaded.
	ErrNotLoaded = errors.New("no document loaded")
	// ErrSuperseded is returned by a Load that finished after a newer Load started.
	ErrSuperseded = errors.New("load superseded")
)

// PageSize is a page's extent in points.
type PageSize struct {
	Width, Height float64
}

// View is a consistent copy of the session's observable state.
type View struct {
	Loaded    bool
	Page      int
	PageCount int
	Tool      registry.ToolID
	Color     string
	Revision  uint64
	Shapes    shape.Collection
}

type cachedExport struct {
	revision uint64
	data     []byte
}

type Session struct {
	reg      *registry.Registry
	opener   export.Opener
	exporter *export.Exporter
	log      *slog.Logger

	mu      sync.Mutex
	disp    *dispatch.Dispatcher
	shapes  shape.Collection
	clock   Clock
	tool    registry.ToolID
	color   string
	page    int
	src     []byte
	pages   []PageSize
	loaded  bool
	loading bool
	gen     uint64
	cache   *cachedExport

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

// NewSession returns an unloaded session. color is the initial drawing color.
func NewSession(reg *registry.Registry, opener export.Opener, exporter *export.Exporter, color string) *Session {
	if _, err := colorutil.ParseHex(color); err != nil {
		color = colorutil.DefaultHex
	}
	return &Session{
		reg:      reg,
		opener:   opener,
		exporter: exporter,
		log:      logging.For("state"),
		disp:     dispatch.New(reg),
		color:    color,
		page:     1,
		subs:     make(map[int]func()),
	}
}

// store exposes the collection to the dispatcher. Callers hold s.mu.
type store struct{ s *Session }

func (st store) Snapshot() shape.Collection { return st.s.shapes }

func (st store) Install(c shape.Collection) {
	st.s.shapes = c
	st.s.clock.Tick()
}

// Subscribe registers fn to run after every change. fn runs outside the
// session lock on the goroutine that made the change.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type loadResult struct {
	pages []PageSize
	err   error
}

func readPages(opener export.Opener, src []byte) loadResult {
	doc, err := opener.Open(src)
	if err != nil {
		return loadResult{err: err}
	}
	pages := make([]PageSize, doc.PageCount())
	for i := range pages {
		w, h, err := doc.PageSize(i)
		if err != nil {
			return loadResult{err: err}
		}
		pages[i] = PageSize{Width: w, Height: h}
	}
	return loadResult{pages: pages}
}

// Load parses src off the calling goroutine and, on success, replaces the
// document and clears every shape. A failed load keeps whatever was loaded
// before. When a newer Load starts first, this one returns ErrSuperseded.
func (s *Session) Load(ctx context.Context, src []byte) error {
	src = bytes.Clone(src)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.mu.Unlock()

	ch := make(chan loadResult, 1)
	go func() { ch <- readPages(s.opener, src) }()

	var res loadResult
	select {
	case <-ctx.Done():
		res.err = ctx.Err()
	case res = <-ch:
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("discarding superseded load", "generation", gen)
		return ErrSuperseded
	}
	s.loading = false
	if res.err != nil {
		s.mu.Unlock()
		s.log.Error("failed to load editor", "err", res.err)
		return fmt.Errorf("load document: %w", res.err)
	}
	s.src = src
	s.pages = res.pages
	s.loaded = true
	s.page = 1
	s.disp = dispatch.New(s.reg)
	s.cache = nil
	store{s}.Install(nil)
	s.mu.Unlock()

	s.log.Info("document loaded", "pages", len(res.pages), "bytes", len(src))
	s.notify()
	return nil
}

func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Loading reports whether a Load is in progress.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// PageSize returns the size of the 1-based page pageNo.
func (s *Session) PageSize(pageNo int) (PageSize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageNo < 1 || pageNo > len(s.pages) {
		return PageSize{}, fmt.Errorf("%w: page %d of %d", export.ErrPageRange, pageNo, len(s.pages))
	}
	return s.pages[pageNo-1], nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Loaded:    s.loaded,
		Page:      s.page,
		PageCount: len(s.pages),
		Tool:      s.tool,
		Color:     s.color,
		Revision:  s.clock.Now(),
		Shapes:    s.shapes,
	}
}

// Shapes returns the current snapshot. It is never mutated.
func (s *Session) Shapes() shape.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shapes
}

func (s *Session) Revision() uint64 { return s.clock.Now() }

func (s *Session) Tool() registry.ToolID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetTool selects tool and cancels any gesture in flight.
func (s *Session) SetTool(tool registry.ToolID) {
	s.mu.Lock()
	if s.tool == tool {
		s.mu.Unlock()
		return
	}
	s.tool = tool
	s.disp.Cancel(store{s})
	s.mu.Unlock()
	s.notify()
}

// ToggleTool selects tool, or deselects it when it is already active. It
// returns the tool now active.
func (s *Session) ToggleTool(tool registry.ToolID) registry.ToolID {
	s.mu.Lock()
	next := tool
	if s.tool == tool {
		next = registry.NoTool
	}
	s.mu.Unlock()
	s.SetTool(next)
	return next
}

func (s *Session) Color() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// SetColor sets the color used for shapes created from now on.
func (s *Session) SetColor(hex string) error {
	if _, err := colorutil.ParseHex(hex); err != nil {
		return err
	}
	s.mu.Lock()
	s.color = hex
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage shows the 1-based page pageNo and cancels any gesture in flight.
func (s *Session) SetPage(pageNo int) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if pageNo < 1 || pageNo > len(s.pages) {
		n := len(s.pages)
		s.mu.Unlock()
		return fmt.Errorf("%w: page %d of %d", export.ErrPageRange, pageNo, n)
	}
	if pageNo == s.page {
		s.mu.Unlock()
		return nil
	}
	s.page = pageNo
	s.disp.Cancel(store{s})
	s.mu.Unlock()
	s.notify()
	return nil
}

// Pointer feeds a pointer event at pos on the current page. It is ignored
// until a document has loaded. It reports whether the collection changed.
func (s *Session) Pointer(phase registry.Phase, pos shape.Position) bool {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return false
	}
	in := registry.Input{Pos: pos, Tool: s.tool, Color: s.color, PageNo: s.page}
	changed := s.disp.Dispatch(store{s}, phase, in)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// Commit submits edited content for the shape id.
func (s *Session) Commit(id, value string) bool {
	s.mu.Lock()
	changed := s.disp.Commit(store{s}, id, value)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// Cancel aborts the gesture in flight.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	changed := s.disp.Cancel(store{s})
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// ExportBytes returns the source document with every shape drawn on it.
// Repeated calls at the same revision return the same bytes without drawing again.
func (s *Session) ExportBytes(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	rev := s.clock.Now()
	if c := s.cache; c != nil && c.revision == rev {
		s.mu.Unlock()
		return bytes.Clone(c.data), nil
	}
	src, shapes := s.src, s.shapes
	s.mu.Unlock()

	data, err := s.exporter.Export(ctx, src, shapes)
	if err != nil {
		s.log.Error("export failed", "revision", rev, "err", err)
		return nil, err
	}

	s.mu.Lock()
	if s.clock.Now() == rev {
		s.cache = &cachedExport{revision: rev, data: data}
	}
	s.mu.Unlock()
	s.log.Info("exported document", "revision", rev, "bytes", len(data))
	return bytes.Clone(data), nil
}

// ExportBase64 is ExportBytes encoded as base64, optionally as a data URI.
func (s *Session) ExportBase64(ctx context.Context, dataURI bool) (string, error) {
	b, err := s.ExportBytes(ctx)
	if err != nil {
		return "", err
	}
	return export.EncodeBase64(b, dataURI), nil
}
