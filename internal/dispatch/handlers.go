package dispatch

import (
	"fmt"
	"io"
	"sync"

	"github.com/muurk/danmaku/internal/logging"
	"go.uber.org/zap"
)

// MultiHandler fans every event out to each handler in order
type MultiHandler []Handler

// HandleEvent implements Handler
func (m MultiHandler) HandleEvent(ev Event) {
	for _, h := range m {
		if h != nil {
			h.HandleEvent(ev)
		}
	}
}

// LogHandler writes events through the structured logger
type LogHandler struct {
	RoomID int64
}

// HandleEvent implements Handler
func (h *LogHandler) HandleEvent(ev Event) {
	room := zap.Int64("room_id", h.RoomID)

	switch e := ev.(type) {
	case *JoinEvent:
		logging.Info("🚪 Joined room", room)
	case *PopularityEvent:
		logging.Info("👀 Popularity", room, zap.Uint32("count", e.Count))
	case *DanmakuEvent:
		logging.Info("💬 "+e.Username+": "+e.Text,
			room,
			zap.Int64("uid", e.UserID),
		)
	case *GiftEvent:
		logging.Info("🎁 Gift",
			room,
			zap.String("user", e.Username),
			zap.String("action", e.Action),
			zap.String("gift", e.GiftName),
			zap.Int("count", e.Count),
		)
	case *WelcomeEvent:
		logging.Info("👋 Welcome", room, zap.String("user", e.Username))
	default:
		logging.Debug("Unhandled event", room, zap.Stringer("kind", ev.Kind()))
	}
}

// PrintHandler writes one line per event to an io.Writer
type PrintHandler struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrintHandler creates a handler printing to out
func NewPrintHandler(out io.Writer) *PrintHandler {
	return &PrintHandler{out: out}
}

// HandleEvent implements Handler
func (h *PrintHandler) HandleEvent(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = fmt.Fprintf(h.out, "[%s] %s\n", ev.Kind(), ev)
}
