package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/danmaku/internal/dispatch"
)

func update(t *testing.T, m ChatModel, msg tea.Msg) (ChatModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	chat, ok := updated.(ChatModel)
	if !ok {
		t.Fatalf("Update() returned %T, want ChatModel", updated)
	}
	return chat, cmd
}

func TestChatModelEvents(t *testing.T) {
	m := NewChatModel(3470615, "ws://localhost/sub")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	m, _ = update(t, m, EventMsg{Event: &dispatch.JoinEvent{}})
	m, _ = update(t, m, EventMsg{Event: &dispatch.PopularityEvent{Count: 9999}})
	m, _ = update(t, m, EventMsg{Event: &dispatch.DanmakuEvent{Username: "alice", Text: "hello"}})
	m, _ = update(t, m, EventMsg{Event: &dispatch.GiftEvent{Username: "bob", Action: "gives", GiftName: "rose", Count: 2}})

	if !m.Joined {
		t.Error("Joined should be true after a JoinEvent")
	}
	if m.Popularity != 9999 {
		t.Errorf("Popularity = %d, want 9999", m.Popularity)
	}

	// Popularity goes to the header, not the scrollback
	lines := m.Lines()
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), lines)
	}
	if !strings.Contains(lines[1], "alice:") || !strings.Contains(lines[1], "hello") {
		t.Errorf("danmaku line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "bob gives 2 x rose") {
		t.Errorf("gift line = %q", lines[2])
	}

	view := m.View()
	for _, want := range []string{"ROOM 3470615", "9999", "hello"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestChatModelMaxLines(t *testing.T) {
	m := NewChatModel(1, "")
	m.MaxLines = 2

	for _, text := range []string{"one", "two", "three"} {
		m, _ = update(t, m, EventMsg{Event: &dispatch.DanmakuEvent{Username: "u", Text: text}})
	}

	lines := m.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "two") || !strings.Contains(lines[1], "three") {
		t.Errorf("lines = %q, want the two newest", lines)
	}
}

func TestChatModelStatus(t *testing.T) {
	m := NewChatModel(1, "")
	m, _ = update(t, m, StatusMsg{Text: "disconnected"})

	if m.Status != "disconnected" {
		t.Errorf("Status = %q, want disconnected", m.Status)
	}
	if !strings.Contains(m.View(), "disconnected") {
		t.Error("View() should show the status")
	}
}

func TestChatModelQuit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := update(t, NewChatModel(1, ""), tt.msg)
			if cmd == nil {
				t.Fatal("expected a quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
			}
		})
	}
}

func TestChatModelOtherKeysKeepRunning(t *testing.T) {
	_, cmd := update(t, NewChatModel(1, ""), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("'x' should not quit")
		}
	}
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestHandler(t *testing.T) {
	s := &fakeSender{}
	h := Handler(s)

	ev := &dispatch.WelcomeEvent{Username: "carol"}
	h.HandleEvent(ev)

	if len(s.msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.msgs))
	}
	msg, ok := s.msgs[0].(EventMsg)
	if !ok || msg.Event != ev {
		t.Errorf("sent %#v, want EventMsg wrapping the event", s.msgs[0])
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		ev   dispatch.Event
		want string
	}{
		{&dispatch.DanmakuEvent{Username: "a", Text: "b"}, "a: b"},
		{&dispatch.WelcomeEvent{Username: "c"}, "Welcome c"},
		{&dispatch.JoinEvent{}, "Joined room"},
	}

	for _, tt := range tests {
		if got := FormatEvent(tt.ev); !strings.Contains(got, tt.want) {
			t.Errorf("FormatEvent(%v) = %q, want it to contain %q", tt.ev, got, tt.want)
		}
	}
}

func TestResultRender(t *testing.T) {
	ok := NewSuccessResult("Room saved", Param{Key: "Name", Value: "lofi"}).SetWidth(80).Render()
	for _, want := range []string{"SUCCESS", "Room saved", "Name:", "lofi"} {
		if !strings.Contains(ok, want) {
			t.Errorf("success box missing %q:\n%s", want, ok)
		}
	}

	failed := NewFailureResult("Connection failed", errors.New("refused"), []string{"Check the URL"}).
		SetWidth(80).Render()
	for _, want := range []string{"FAILED", "refused", "Troubleshooting:", "Check the URL"} {
		if !strings.Contains(failed, want) {
			t.Errorf("failure box missing %q:\n%s", want, failed)
		}
	}
}

func TestHeaderRender(t *testing.T) {
	h := NewHeader("room 7", "ws://x", Param{Key: "A", Value: "1"}, Param{Key: "B", Value: "2"}).
		SetWidth(70).Render()

	if !strings.Contains(h, "ROOM 7") {
		t.Errorf("header missing title:\n%s", h)
	}
	if strings.Index(h, "A:") > strings.Index(h, "B:") {
		t.Errorf("params out of order:\n%s", h)
	}
}
