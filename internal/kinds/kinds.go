// Package kinds wires every built-in shape kind into a registry.
package kinds

import (
	"fmt"

	"PDFMarkup/internal/kinds/rectangle"
	"PDFMarkup/internal/kinds/strikeline"
	"PDFMarkup/internal/kinds/text"
	"PDFMarkup/internal/registry"
)

// Options tunes the built-in kinds.
type Options struct {
	TextSize float64
}

// Tools lists the tool IDs of the built-in kinds, in toolbar order.
var Tools = []registry.ToolID{text.Tool, rectangle.Tool, strikeline.Tool}

// RegisterAll runs each kind's registration in a fixed order.
func RegisterAll(reg *registry.Registry, opts Options) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"text", func() error { return text.Register(reg, opts.TextSize) }},
		{"rectangle", func() error { return rectangle.Register(reg) }},
		{"strikeline", func() error { return strikeline.Register(reg) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("register %s: %w", s.name, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry(opts Options) (*registry.Registry, error) {
	reg := registry.New()
	if err := RegisterAll(reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}
