package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"PDFMarkup/internal/shape"
)

// DataURIPrefix precedes base64 output when a data URI is requested.
const DataURIPrefix = "data:application/pdf;base64,"

// Exporter produces annotated PDF bytes from source bytes and shapes.
type Exporter struct {
	opener Opener
	tr     *Transformer
}

func NewExporter(opener Opener, tr *Transformer) *Exporter {
	return &Exporter{opener: opener, tr: tr}
}

// Export opens a fresh document from src, draws shapes onto it and serializes
// it. src and shapes are not modified.
func (e *Exporter) Export(ctx context.Context, src []byte, shapes shape.Collection) ([]byte, error) {
	doc, err := e.opener.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if err := e.tr.Apply(ctx, doc, shapes); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 encodes PDF bytes, optionally as a data URI.
func EncodeBase64(b []byte, dataURI bool) string {
	s := base64.StdEncoding.EncodeToString(b)
	if dataURI {
		return DataURIPrefix + s
	}
	return s
}
