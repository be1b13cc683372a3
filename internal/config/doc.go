// Package config provides user configuration management for the danmaku client.
//
// This package manages a YAML-based configuration file that stores saved
// rooms (name to room id) and client preferences such as the chat server URL
// and heartbeat interval. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/danmaku/config.yaml or $HOME/.config/danmaku/config.yaml
//   - macOS: $HOME/.config/danmaku/config.yaml
//   - Windows: %LOCALAPPDATA%\danmaku\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.AddRoom("lofi", 3470615, "late night radio"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save changes atomically
//	if err := config.SaveRegistry(registry); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config
