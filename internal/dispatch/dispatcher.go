package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/protocol"
	"go.uber.org/zap"
)

// ErrUnknownCommand is returned by ParseFragment for commands the client
// does not handle. Callers normally ignore it.
var ErrUnknownCommand = errors.New("dispatch: unknown command")

// Handler receives decoded events. Implementations are called from the
// transport's read goroutine and must not block for long.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(Event)

// HandleEvent calls f(ev)
func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }

// Dispatcher turns decoded packets into events and hands them to a Handler
type Dispatcher struct {
	handler Handler
}

// New creates a dispatcher. A nil handler discards every event.
func New(handler Handler) *Dispatcher {
	if handler == nil {
		handler = HandlerFunc(func(Event) {})
	}
	return &Dispatcher{handler: handler}
}

// Dispatch delivers every event carried by pkt and returns how many were
// delivered. Fragments that fail to parse are logged and skipped; the rest
// of the packet is still dispatched.
func (d *Dispatcher) Dispatch(pkt *protocol.Packet) int {
	switch pkt.Operation {
	case protocol.OpJoinAck:
		d.handler.HandleEvent(&JoinEvent{})
		return 1

	case protocol.OpPopularity, protocol.OpMessage:
		delivered := 0
		for _, fragment := range pkt.Body {
			ev, err := d.parse(pkt.Operation, fragment)
			if err != nil {
				if errors.Is(err, ErrUnknownCommand) {
					logging.Debug("Ignoring command", zap.Error(err))
				} else {
					logging.Warn("Failed to parse fragment",
						zap.String("operation", pkt.Operation.String()),
						zap.String("fragment", truncate(fragment, 256)),
						zap.Error(err),
					)
				}
				continue
			}
			d.handler.HandleEvent(ev)
			delivered++
		}
		return delivered

	default:
		logging.Debug("Packet carries no events",
			zap.String("operation", pkt.Operation.String()),
		)
		return 0
	}
}

func (d *Dispatcher) parse(op protocol.Operation, fragment string) (Event, error) {
	if op == protocol.OpPopularity {
		return ParsePopularity(fragment)
	}
	return ParseFragment(fragment)
}

// envelope is the common shape of every batch fragment
type envelope struct {
	Cmd  string            `json:"cmd"`
	Info []json.RawMessage `json:"info"`
	Data json.RawMessage   `json:"data"`
}

// ParsePopularity parses the synthesized {"count": N} fragment
func ParsePopularity(fragment string) (*PopularityEvent, error) {
	var body struct {
		Count *uint32 `json:"count"`
	}
	if err := json.Unmarshal([]byte(fragment), &body); err != nil {
		return nil, fmt.Errorf("invalid popularity fragment: %w", err)
	}
	if body.Count == nil {
		return nil, fmt.Errorf("popularity fragment has no count field")
	}
	return &PopularityEvent{Count: *body.Count}, nil
}

// ParseFragment parses one batch fragment and maps its "cmd" to an event.
//
// Some servers append option suffixes to the command (DANMU_MSG:4:0:2:2:2:0);
// only the part before the first colon is matched.
func ParseFragment(fragment string) (Event, error) {
	var env envelope
	if err := json.Unmarshal([]byte(fragment), &env); err != nil {
		return nil, fmt.Errorf("invalid JSON fragment: %w", err)
	}
	if env.Cmd == "" {
		return nil, fmt.Errorf("fragment has no cmd field")
	}

	cmd, _, _ := strings.Cut(env.Cmd, ":")
	switch cmd {
	case CmdDanmaku:
		return parseDanmaku(env.Info)
	case CmdGift:
		return parseGift(env.Data)
	case CmdWelcome:
		return parseWelcome(env.Data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, env.Cmd)
	}
}

// parseDanmaku decodes the positional "info" array:
//
//	info[1]     message text
//	info[2][0]  sender uid
//	info[2][1]  sender name
func parseDanmaku(info []json.RawMessage) (*DanmakuEvent, error) {
	if len(info) < 3 {
		return nil, fmt.Errorf("%s info too short: %d elements (minimum 3)", CmdDanmaku, len(info))
	}

	ev := &DanmakuEvent{}
	if err := json.Unmarshal(info[1], &ev.Text); err != nil {
		return nil, fmt.Errorf("%s text: %w", CmdDanmaku, err)
	}

	var sender []json.RawMessage
	if err := json.Unmarshal(info[2], &sender); err != nil {
		return nil, fmt.Errorf("%s sender: %w", CmdDanmaku, err)
	}
	if len(sender) < 2 {
		return nil, fmt.Errorf("%s sender too short: %d elements (minimum 2)", CmdDanmaku, len(sender))
	}
	if err := json.Unmarshal(sender[1], &ev.Username); err != nil {
		return nil, fmt.Errorf("%s sender name: %w", CmdDanmaku, err)
	}
	ev.Text = stripControl(ev.Text)
	ev.Username = stripControl(ev.Username)
	// The uid is informational; a non-numeric value leaves it zero
	_ = json.Unmarshal(sender[0], &ev.UserID)

	return ev, nil
}

func parseGift(data json.RawMessage) (*GiftEvent, error) {
	var body struct {
		Uname    string `json:"uname"`
		Action   string `json:"action"`
		GiftName string `json:"giftName"`
		Num      int    `json:"num"`
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s has no data field", CmdGift)
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%s data: %w", CmdGift, err)
	}
	return &GiftEvent{
		Username: stripControl(body.Uname),
		Action:   stripControl(body.Action),
		GiftName: stripControl(body.GiftName),
		Count:    body.Num,
	}, nil
}

func parseWelcome(data json.RawMessage) (*WelcomeEvent, error) {
	var body struct {
		Uname string `json:"uname"`
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s has no data field", CmdWelcome)
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%s data: %w", CmdWelcome, err)
	}
	return &WelcomeEvent{Username: stripControl(body.Uname)}, nil
}

// stripControl drops C0 and C1 control characters. JSON escapes such as
// \u001b decode to real control bytes, which would otherwise reach the
// terminal as escape sequences.
func stripControl(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncate shortens s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
