// Package ui provides terminal UI components for the danmaku CLI.
//
// ChatModel is a Bubble Tea model that shows a room's chat in a scrolling
// viewport under a header with the room id and current popularity. Events
// reach it through Handler, which adapts a *tea.Program into a
// dispatch.Handler:
//
//	model := ui.NewChatModel(roomID, serverURL)
//	p := tea.NewProgram(model, tea.WithAltScreen())
//	c, _ := client.New(cfg, ui.Handler(p))
//	go c.Run(ctx)
//	_, err := p.Run()
//
// Printer, Header and Result render one-shot styled output for the
// non-interactive commands.
//
// # Logging Integration
//
// zap logging is silent unless DANMAKU_LOG_LEVEL or --log-level is set, so
// the chat view is not interleaved with log lines. Use --log-file to keep
// logs while the TUI is running.
package ui
