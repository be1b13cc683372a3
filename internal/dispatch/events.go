package dispatch

import "fmt"

// Commands carried in the "cmd" field of batch fragments
const (
	CmdDanmaku = "DANMU_MSG"
	CmdGift    = "SEND_GIFT"
	CmdWelcome = "WELCOME"
)

// Kind identifies the type of a decoded event
type Kind int

const (
	KindJoin Kind = iota
	KindPopularity
	KindDanmaku
	KindGift
	KindWelcome
)

// String returns the metric/log label for a kind
func (k Kind) String() string {
	switch k {
	case KindJoin:
		return "join"
	case KindPopularity:
		return "popularity"
	case KindDanmaku:
		return "danmaku"
	case KindGift:
		return "gift"
	case KindWelcome:
		return "welcome"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one chat-level occurrence decoded from a packet
type Event interface {
	Kind() Kind
	String() string
}

// JoinEvent - the server acknowledged the room-join handshake
type JoinEvent struct{}

func (e *JoinEvent) Kind() Kind { return KindJoin }

func (e *JoinEvent) String() string { return "Joined room" }

// PopularityEvent - periodic viewer count
type PopularityEvent struct {
	Count uint32
}

func (e *PopularityEvent) Kind() Kind { return KindPopularity }

func (e *PopularityEvent) String() string {
	return fmt.Sprintf("Popularity: %d", e.Count)
}

// DanmakuEvent - a scrolling chat message
type DanmakuEvent struct {
	UserID   int64
	Username string
	Text     string
}

func (e *DanmakuEvent) Kind() Kind { return KindDanmaku }

func (e *DanmakuEvent) String() string {
	return fmt.Sprintf("%s: %s", e.Username, e.Text)
}

// GiftEvent - a viewer sent a gift
type GiftEvent struct {
	Username string
	Action   string // Verb shown by the platform, e.g. "投喂"
	GiftName string
	Count    int
}

func (e *GiftEvent) Kind() Kind { return KindGift }

func (e *GiftEvent) String() string {
	return fmt.Sprintf("%s %s %d x %s", e.Username, e.Action, e.Count, e.GiftName)
}

// WelcomeEvent - a privileged viewer entered the room
type WelcomeEvent struct {
	Username string
}

func (e *WelcomeEvent) Kind() Kind { return KindWelcome }

func (e *WelcomeEvent) String() string {
	return fmt.Sprintf("Welcome %s", e.Username)
}
