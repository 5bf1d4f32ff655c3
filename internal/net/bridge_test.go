package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PDFMarkup/internal/export"
	"PDFMarkup/internal/export/exporttest"
	"PDFMarkup/internal/kinds"
	"PDFMarkup/internal/shape"
	"PDFMarkup/internal/state"
)

func newBridge(t *testing.T) (*state.Session, *httptest.Server) {
	t.Helper()
	reg, err := kinds.NewRegistry(kinds.Options{TextSize: 18})
	require.NoError(t, err)
	opener := &exporttest.Opener{Pages: []exporttest.Size{{Width: 100, Height: 100}}}
	ex := export.NewExporter(opener, export.NewTransformer(export.NewFontCache(export.BuiltinFont())))
	s := state.NewSession(reg, opener, ex, "#000")
	require.NoError(t, s.Load(context.Background(), []byte("%PDF")))

	b := NewBridge(s)
	srv := httptest.NewServer(b)
	t.Cleanup(func() {
		srv.Close()
		b.Close()
	})
	return s, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads replies until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Reply) bool) Reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var r Reply
		require.NoError(t, conn.ReadJSON(&r))
		if match(r) {
			return r
		}
	}
}

func TestBridgeDrivesSession(t *testing.T) {
	s, srv := newBridge(t)
	conn := dial(t, srv)

	first := readUntil(t, conn, func(r Reply) bool { return r.Type == "snapshot" })
	assert.True(t, first.Loaded)
	assert.Equal(t, 1, first.PageCount)

	for _, m := range []Message{
		{Type: "tool", Tool: "rectangle"},
		{Type: "color", Color: "#f00"},
		{Type: "pointer", Phase: "down", X: 10, Y: 20},
		{Type: "pointer", Phase: "move", X: 40, Y: 35},
		{Type: "pointer", Phase: "up", X: 40, Y: 35},
	} {
		require.NoError(t, conn.WriteJSON(m))
	}

	done := readUntil(t, conn, func(r Reply) bool {
		return r.Type == "snapshot" && len(r.Shapes) == 1 && r.Shapes[0].State == shape.Normal.String()
	})
	assert.Equal(t, "#f00", done.Shapes[0].Color)
	require.NotNil(t, done.Shapes[0].Width)
	assert.Equal(t, 30.0, *done.Shapes[0].Width)
	assert.Len(t, s.Shapes(), 1)

	require.NoError(t, conn.WriteJSON(Message{Type: "export", DataURI: true}))
	exp := readUntil(t, conn, func(r Reply) bool { return r.Type == "export" })
	assert.True(t, strings.HasPrefix(exp.Data, export.DataURIPrefix))
}

func TestBridgeReportsErrors(t *testing.T) {
	_, srv := newBridge(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(Message{Type: "page", Page: 7}))
	r := readUntil(t, conn, func(r Reply) bool { return r.Type == "error" })
	assert.Contains(t, r.Error, "out of range")

	require.NoError(t, conn.WriteJSON(Message{Type: "bogus"}))
	r = readUntil(t, conn, func(r Reply) bool { return r.Type == "error" })
	assert.Contains(t, r.Error, "unknown message type")

	require.NoError(t, conn.WriteJSON(Message{Type: "pointer", Phase: "hover"}))
	readUntil(t, conn, func(r Reply) bool { return r.Type == "error" })
}

func TestNewClientReplacesOld(t *testing.T) {
	_, srv := newBridge(t)
	old := dial(t, srv)
	readUntil(t, old, func(r Reply) bool { return r.Type == "snapshot" })

	fresh := dial(t, srv)
	readUntil(t, fresh, func(r Reply) bool { return r.Type == "snapshot" })

	require.NoError(t, old.SetReadDeadline(time.Now().Add(5*time.Second)))
	var err error
	for err == nil {
		_, _, err = old.ReadMessage()
	}
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}
