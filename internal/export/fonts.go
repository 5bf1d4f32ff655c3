package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/singleflight"
)

// FontSource fetches TrueType font bytes.
type FontSource interface {
	FetchFont(ctx context.Context) ([]byte, error)
}

// FontSourceFunc adapts a function to FontSource.
type FontSourceFunc func(ctx context.Context) ([]byte, error)

func (f FontSourceFunc) FetchFont(ctx context.Context) ([]byte, error) { return f(ctx) }

// BuiltinFont serves the Go Regular font compiled into the binary.
func BuiltinFont() FontSource {
	return FontSourceFunc(func(context.Context) ([]byte, error) {
		return goregular.TTF, nil
	})
}

// FileFont reads the font at path.
func FileFont(path string) FontSource {
	return FontSourceFunc(func(context.Context) ([]byte, error) {
		return os.ReadFile(path)
	})
}

// HTTPFont downloads the font at url. A nil client uses http.DefaultClient.
func HTTPFont(url string, client *http.Client) FontSource {
	if client == nil {
		client = http.DefaultClient
	}
	return FontSourceFunc(func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
		}
		return io.ReadAll(resp.Body)
	})
}

// SourceFor picks the configured font source: url, then path, then the built-in font.
func SourceFor(url, path string) FontSource {
	switch {
	case url != "":
		return HTTPFont(url, nil)
	case path != "":
		return FileFont(path)
	}
	return BuiltinFont()
}

// FontCache fetches the font once per session and keeps it forever. Failed
// fetches are not cached; the next caller retries.
type FontCache struct {
	src   FontSource
	group singleflight.Group

	mu   sync.Mutex
	data []byte
}

func NewFontCache(src FontSource) *FontCache {
	return &FontCache{src: src}
}

// Bytes returns the cached font, fetching it on first use. Concurrent first
// callers share one fetch.
func (c *FontCache) Bytes(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	data := c.data
	c.mu.Unlock()
	if data != nil {
		return data, nil
	}

	ch := c.group.DoChan("font", func() (any, error) {
		b, err := c.src.FetchFont(ctx)
		if err != nil {
			return nil, err
		}
		if len(b) == 0 {
			return nil, errors.New("empty font data")
		}
		c.mu.Lock()
		c.data = b
		c.mu.Unlock()
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, res.Err)
		}
		return res.Val.([]byte), nil
	}
}
