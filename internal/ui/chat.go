package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/danmaku/internal/dispatch"
)

// DefaultMaxLines caps the chat scrollback
const DefaultMaxLines = 1000

// EventMsg carries a dispatched event into the program
type EventMsg struct {
	Event dispatch.Event
}

// StatusMsg updates the connection status line
type StatusMsg struct {
	Text string
}

// chatKeyMap defines key bindings for the chat screen
type chatKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Quit},
	}
}

// ChatModel is a scrolling view of a room's chat
type ChatModel struct {
	RoomID     int64
	Server     string
	Popularity uint32
	Joined     bool
	Status     string
	MaxLines   int

	lines    []string
	viewport viewport.Model
	help     help.Model
	keys     chatKeyMap

	width  int
	height int
}

// NewChatModel creates a chat view for roomID on server
func NewChatModel(roomID int64, server string) ChatModel {
	width, height := GetTerminalSize()

	m := ChatModel{
		RoomID:   roomID,
		Server:   server,
		Status:   "connecting...",
		MaxLines: DefaultMaxLines,
		help:     help.New(),
		keys: chatKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "scroll up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "scroll down"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		width:  width,
		height: height,
	}
	m.viewport = viewport.New(width, m.viewportHeight())
	return m
}

// Init implements tea.Model
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = m.viewportHeight()
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case EventMsg:
		m.apply(msg.Event)
		return m, nil

	case StatusMsg:
		m.Status = msg.Text
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// apply folds an event into the model state
func (m *ChatModel) apply(ev dispatch.Event) {
	switch e := ev.(type) {
	case *dispatch.JoinEvent:
		m.Joined = true
		m.Status = "joined"
	case *dispatch.PopularityEvent:
		// Popularity only updates the header
		m.Popularity = e.Count
		return
	}

	follow := m.viewport.AtBottom()
	m.lines = append(m.lines, FormatEvent(ev))
	if m.MaxLines > 0 && len(m.lines) > m.MaxLines {
		m.lines = m.lines[len(m.lines)-m.MaxLines:]
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if follow {
		m.viewport.GotoBottom()
	}
}

// Lines returns the rendered chat lines currently held
func (m ChatModel) Lines() []string {
	return m.lines
}

// View implements tea.Model
func (m ChatModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		StatusStyle.Render(m.Status+"  "+m.help.View(m.keys)),
	)
}

func (m ChatModel) header() string {
	return NewHeader(
		fmt.Sprintf("Room %d", m.RoomID),
		m.Server,
		Param{Key: "Popularity", Value: strconv.FormatUint(uint64(m.Popularity), 10)},
	).SetWidth(m.width).Render()
}

// viewportHeight is the space left for chat lines below the header and
// above the status line
func (m ChatModel) viewportHeight() int {
	h := m.height - lipgloss.Height(m.header()) - 1
	if h < 1 {
		return 1
	}
	return h
}

// FormatEvent renders one event as a styled chat line
func FormatEvent(ev dispatch.Event) string {
	switch e := ev.(type) {
	case *dispatch.DanmakuEvent:
		return UsernameStyle.Render(e.Username+":") + " " + DanmakuTextStyle.Render(e.Text)
	case *dispatch.GiftEvent:
		return GiftStyle.Render("🎁 " + e.String())
	case *dispatch.WelcomeEvent:
		return WelcomeStyle.Render("👋 " + e.String())
	default:
		return SystemStyle.Render("· " + ev.String())
	}
}
