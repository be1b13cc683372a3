package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/danmaku/internal/dispatch"
)

// Sender is implemented by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// Handler forwards dispatched events to a running program as EventMsg
func Handler(p Sender) dispatch.Handler {
	return dispatch.HandlerFunc(func(ev dispatch.Event) {
		p.Send(EventMsg{Event: ev})
	})
}
