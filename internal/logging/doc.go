// Package logging provides structured logging for the danmaku client.
//
// This package wraps a package-global zap logger with convenience functions
// used throughout the client: general level functions plus helpers for
// connection events and raw WebSocket traffic.
//
// # Log Levels
//
//   - Debug: hex dumps of every frame, heartbeat ticks, ignored commands
//   - Info: connection events, decoded chat events
//   - Warn: skipped sub-frames, unparseable fragments, truncated frames
//   - Error: socket failures
//
// # Configuration
//
// Console output (default for the watch command):
//
//	if err := logging.Initialize("info"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// File output with size-based rotation, used while the terminal chat view
// is running:
//
//	err := logging.InitializeFile("debug", "/tmp/danmaku.log")
//
// When no level is given and DANMAKU_LOG_LEVEL is unset, the logger is a
// no-op.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and
// SetLogger are meant to be called once at startup.
package logging
