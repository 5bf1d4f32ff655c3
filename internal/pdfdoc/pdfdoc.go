// Package pdfdoc implements export.Document on top of gofpdf. Source pages are
// imported as templates with gofpdi and the recorded annotation operations are
// replayed over them when the document is saved.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"PDFMarkup/internal/export"
)

// ErrMalformed is returned when the source bytes cannot be parsed as a PDF.
var ErrMalformed = errors.New("malformed pdf")

const box = "/MediaBox"

// creationDate is stamped on every produced document. Output is still not
// byte-stable: gofpdi emits imported objects in varying order between runs.
var creationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type Opener struct{}

var _ export.Opener = Opener{}

func (Opener) Open(src []byte) (export.Document, error) {
	sizes, err := pageSizes(src)
	if err != nil {
		return nil, err
	}
	d := &Document{
		src:    src,
		pages:  sizes,
		stacks: make([][]export.Point, len(sizes)),
		ops:    make([][]op, len(sizes)),
	}
	return d, nil
}

type size struct{ w, h float64 }

func pageSizes(src []byte) (sizes []size, err error) {
	defer func() {
		if r := recover(); r != nil {
			sizes, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	probe := gofpdf.New("P", "pt", "A4", "")
	probe.AddPage()
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))
	imp.ImportPageFromStream(probe, &rs, 1, box)
	if err := probe.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	all := imp.GetPageSizes()
	for n := 1; n <= len(all); n++ {
		b, ok := all[n][box]
		if !ok {
			return nil, fmt.Errorf("%w: page %d has no media box", ErrMalformed, n)
		}
		sizes = append(sizes, size{w: b["w"], h: b["h"]})
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrMalformed)
	}
	return sizes, nil
}

// op is a drawing call with coordinates resolved to absolute PDF space.
type op struct {
	text       *export.TextOp
	rect       *export.RectOp
	line       *export.LineOp
	dx, dy     float64
	fontFamily string
}

// Document is a PDF opened from bytes. It is not safe for concurrent use.
type Document struct {
	src    []byte
	pages  []size
	stacks [][]export.Point
	ops    [][]op
	fonts  [][]byte
}

var _ export.Document = (*Document)(nil)

func (d *Document) check(index int) error {
	if index < 0 || index >= len(d.pages) {
		return fmt.Errorf("%w: %d of %d", export.ErrPageRange, index, len(d.pages))
	}
	return nil
}

func (d *Document) origin(index int) (dx, dy float64) {
	for _, p := range d.stacks[index] {
		dx += p.X
		dy += p.Y
	}
	return dx, dy
}

func (d *Document) PageCount() int { return len(d.pages) }

func (d *Document) PageSize(index int) (float64, float64, error) {
	if err := d.check(index); err != nil {
		return 0, 0, err
	}
	return d.pages[index].w, d.pages[index].h, nil
}

func (d *Document) PushTranslate(index int, dx, dy float64) error {
	if err := d.check(index); err != nil {
		return err
	}
	d.stacks[index] = append(d.stacks[index], export.Point{X: dx, Y: dy})
	return nil
}

func (d *Document) PopTransform(index int) error {
	if err := d.check(index); err != nil {
		return err
	}
	if len(d.stacks[index]) == 0 {
		return fmt.Errorf("page %d: transform stack is empty", index)
	}
	d.stacks[index] = d.stacks[index][:len(d.stacks[index])-1]
	return nil
}

func (d *Document) record(index int, o op) error {
	if err := d.check(index); err != nil {
		return err
	}
	o.dx, o.dy = d.origin(index)
	d.ops[index] = append(d.ops[index], o)
	return nil
}

func (d *Document) DrawText(index int, t export.TextOp) error {
	if t.Font == "" {
		return fmt.Errorf("%w: text drawn without an embedded font", export.ErrFontUnavailable)
	}
	return d.record(index, op{text: &t, fontFamily: string(t.Font)})
}

func (d *Document) DrawRectangle(index int, r export.RectOp) error {
	return d.record(index, op{rect: &r})
}

func (d *Document) DrawLine(index int, l export.LineOp) error {
	return d.record(index, op{line: &l})
}

func (d *Document) EmbedFont(data []byte) (export.Font, error) {
	if len(data) == 0 {
		return "", errors.New("empty font data")
	}
	d.fonts = append(d.fonts, data)
	return export.Font(fmt.Sprintf("annot%d", len(d.fonts))), nil
}

// Save writes the source pages with every recorded operation drawn on top.
func (d *Document) Save(w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(creationDate)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	for i, data := range d.fonts {
		pdf.AddUTF8FontFromBytes(fmt.Sprintf("annot%d", i+1), "", data)
	}

	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(d.src))
	for i, p := range d.pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: p.w, Ht: p.h})
		tpl := imp.ImportPageFromStream(pdf, &rs, i+1, box)
		imp.UseImportedTemplate(pdf, tpl, 0, 0, p.w, p.h)
		for _, o := range d.ops[i] {
			replay(pdf, p.h, o)
		}
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// replay draws o onto the current page. gofpdf measures y downward from the
// top edge, so absolute PDF y values are flipped against the page height.
func replay(pdf *gofpdf.Fpdf, height float64, o op) {
	switch {
	case o.text != nil:
		t := o.text
		r, g, b := t.Color.Bytes()
		pdf.SetTextColor(r, g, b)
		pdf.SetFont(o.fontFamily, "", t.Size)
		pdf.Text(o.dx+t.At.X, height-(o.dy+t.At.Y), t.Text)
	case o.rect != nil:
		rc := o.rect
		r, g, b := rc.Color.Bytes()
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(rc.StrokeWidth)
		top := height - (o.dy + rc.At.Y + rc.Height)
		pdf.Rect(o.dx+rc.At.X, top, rc.Width, rc.Height, "D")
	case o.line != nil:
		l := o.line
		r, g, b := l.Color.Bytes()
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(l.StrokeWidth)
		pdf.Line(o.dx+l.From.X, height-(o.dy+l.From.Y), o.dx+l.To.X, height-(o.dy+l.To.Y))
	}
}
