// Package exporttest provides an in-memory export.Document that records drawing calls.
package exporttest

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"PDFMarkup/internal/export"
)

// Size is a page size in points.
type Size struct {
	Width, Height float64
}

// Op is one recorded drawing call. At and To are the coordinates passed in;
// Origin is the sum of translations active on the page when the call was made.
type Op struct {
	Page   int
	Kind   string // "text", "rect" or "line"
	Text   string
	At, To export.Point
	Width  float64
	Height float64
	Size   float64
	Origin export.Point
	Font   export.Font
}

// Recorder implements export.Document.
type Recorder struct {
	Pages []Size
	Ops   []Op
	Fonts [][]byte
	Saves int

	stacks map[int][]export.Point
}

var _ export.Document = (*Recorder)(nil)

func NewRecorder(pages ...Size) *Recorder {
	return &Recorder{Pages: pages, stacks: make(map[int][]export.Point)}
}

func (r *Recorder) check(index int) error {
	if index < 0 || index >= len(r.Pages) {
		return fmt.Errorf("%w: %d", export.ErrPageRange, index)
	}
	return nil
}

func (r *Recorder) origin(index int) export.Point {
	var o export.Point
	for _, p := range r.stacks[index] {
		o.X += p.X
		o.Y += p.Y
	}
	return o
}

func (r *Recorder) PageCount() int { return len(r.Pages) }

func (r *Recorder) PageSize(index int) (float64, float64, error) {
	if err := r.check(index); err != nil {
		return 0, 0, err
	}
	return r.Pages[index].Width, r.Pages[index].Height, nil
}

func (r *Recorder) PushTranslate(index int, dx, dy float64) error {
	if err := r.check(index); err != nil {
		return err
	}
	r.stacks[index] = append(r.stacks[index], export.Point{X: dx, Y: dy})
	return nil
}

func (r *Recorder) PopTransform(index int) error {
	if err := r.check(index); err != nil {
		return err
	}
	s := r.stacks[index]
	if len(s) == 0 {
		return errors.New("transform stack empty")
	}
	r.stacks[index] = s[:len(s)-1]
	return nil
}

func (r *Recorder) DrawText(index int, op export.TextOp) error {
	if err := r.check(index); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Page: index, Kind: "text", Text: op.Text, At: op.At, Size: op.Size, Origin: r.origin(index), Font: op.Font})
	return nil
}

func (r *Recorder) DrawRectangle(index int, op export.RectOp) error {
	if err := r.check(index); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Page: index, Kind: "rect", At: op.At, Width: op.Width, Height: op.Height, Origin: r.origin(index)})
	return nil
}

func (r *Recorder) DrawLine(index int, op export.LineOp) error {
	if err := r.check(index); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Page: index, Kind: "line", At: op.From, To: op.To, Origin: r.origin(index)})
	return nil
}

func (r *Recorder) EmbedFont(data []byte) (export.Font, error) {
	r.Fonts = append(r.Fonts, data)
	return export.Font(fmt.Sprintf("F%d", len(r.Fonts))), nil
}

// Save writes a deterministic text dump of the recorded operations.
func (r *Recorder) Save(w io.Writer) error {
	r.Saves++
	if _, err := fmt.Fprintf(w, "%%FAKEPDF pages=%d fonts=%d\n", len(r.Pages), len(r.Fonts)); err != nil {
		return err
	}
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "%+v\n", op); err != nil {
			return err
		}
	}
	return nil
}

// Opener hands out Recorders for every Open call.
type Opener struct {
	Pages []Size
	Err   error

	mu     sync.Mutex
	Opened []*Recorder
}

func (o *Opener) Open([]byte) (export.Document, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	r := NewRecorder(o.Pages...)
	o.mu.Lock()
	o.Opened = append(o.Opened, r)
	o.mu.Unlock()
	return r, nil
}

// Last returns the most recently opened Recorder, or nil.
func (o *Opener) Last() *Recorder {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.Opened) == 0 {
		return nil
	}
	return o.Opened[len(o.Opened)-1]
}

// Count returns the number of documents opened so far.
func (o *Opener) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Opened)
}
