package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"PDFMarkup/internal/logging"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
	"PDFMarkup/internal/state"
)

const writeWait = 5 * time.Second

// Message is an inbound request from the remote front-end.
type Message struct {
	Type    string  `json:"type"`
	Phase   string  `json:"phase,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Tool    string  `json:"tool,omitempty"`
	Color   string  `json:"color,omitempty"`
	Page    int     `json:"page,omitempty"`
	ID      string  `json:"id,omitempty"`
	Text    string  `json:"text,omitempty"`
	DataURI bool    `json:"dataUri,omitempty"`
}

// Reply is sent to the remote front-end. Type is "snapshot", "export" or "error".
type Reply struct {
	Type      string       `json:"type"`
	Loaded    bool         `json:"loaded,omitempty"`
	Page      int          `json:"page,omitempty"`
	PageCount int          `json:"pageCount,omitempty"`
	Revision  uint64       `json:"revision,omitempty"`
	Tool      string       `json:"tool,omitempty"`
	Color     string       `json:"color,omitempty"`
	Shapes    []shape.Wire `json:"shapes,omitempty"`
	Data      string       `json:"data,omitempty"`
	Error     string       `json:"error,omitempty"`
}

var errUnknownMessage = errors.New("unknown message type")

// Bridge lets one websocket client drive a session. A new connection
// replaces the one before it.
type Bridge struct {
	session     *state.Session
	upgrader    websocket.Upgrader
	log         *slog.Logger
	unsubscribe func()

	mu   sync.Mutex
	conn *websocket.Conn

	writeMu sync.Mutex
}

func NewBridge(s *state.Session) *Bridge {
	b := &Bridge{
		session: s,
		log:     logging.For("bridge"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	b.unsubscribe = s.Subscribe(b.pushSnapshot)
	return b
}

// Close drops the active client and stops following the session.
func (b *Bridge) Close() {
	b.unsubscribe()
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (b *Bridge) current() *websocket.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	b.mu.Lock()
	old := b.conn
	b.conn = conn
	b.mu.Unlock()
	if old != nil {
		b.writeMu.Lock()
		old.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "replaced by a newer client"),
			time.Now().Add(writeWait))
		b.writeMu.Unlock()
		old.Close()
		b.log.Info("client replaced", "remote", old.RemoteAddr().String())
	}
	b.log.Info("client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		b.mu.Lock()
		if b.conn == conn {
			b.conn = nil
		}
		b.mu.Unlock()
		conn.Close()
	}()

	b.send(conn, b.snapshot())
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.ClosePolicyViolation) {
				b.log.Warn("client read failed", "remote", conn.RemoteAddr().String(), "err", err)
			}
			return
		}
		if err := b.handle(r.Context(), conn, msg); err != nil {
			b.log.Debug("request rejected", "type", msg.Type, "err", err)
			b.send(conn, Reply{Type: "error", Error: err.Error()})
		}
	}
}

func (b *Bridge) handle(ctx context.Context, conn *websocket.Conn, msg Message) error {
	s := b.session
	switch msg.Type {
	case "pointer":
		phase, err := registry.ParsePhase(msg.Phase)
		if err != nil {
			return err
		}
		s.Pointer(phase, shape.Pos(msg.X, msg.Y))
	case "tool":
		s.SetTool(registry.ToolID(msg.Tool))
	case "color":
		return s.SetColor(msg.Color)
	case "page":
		return s.SetPage(msg.Page)
	case "commit":
		s.Commit(msg.ID, msg.Text)
	case "cancel":
		s.Cancel()
	case "snapshot":
		b.send(conn, b.snapshot())
	case "export":
		data, err := s.ExportBase64(ctx, msg.DataURI)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		b.send(conn, Reply{Type: "export", Data: data})
	default:
		return fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}
	return nil
}

func (b *Bridge) snapshot() Reply {
	v := b.session.View()
	return Reply{
		Type:      "snapshot",
		Loaded:    v.Loaded,
		Page:      v.Page,
		PageCount: v.PageCount,
		Revision:  v.Revision,
		Tool:      string(v.Tool),
		Color:     v.Color,
		Shapes:    shape.EncodeAll(v.Shapes),
	}
}

func (b *Bridge) pushSnapshot() {
	if conn := b.current(); conn != nil {
		b.send(conn, b.snapshot())
	}
}

func (b *Bridge) send(conn *websocket.Conn, r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		b.log.Error("encode reply", "type", r.Type, "err", err)
		return
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		b.log.Debug("write failed", "type", r.Type, "err", err)
	}
}
