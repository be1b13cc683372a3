// Danmaku is a terminal client for live-room chat ("danmaku").
//
// It connects to the chat server over a websocket, joins a room and prints
// chat messages, gifts and welcomes as they arrive, either as plain lines or
// in an interactive chat view. Captured traffic can be decoded offline.
//
// Usage:
//
//	danmaku [command] [flags]
//
// See 'danmaku --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/danmaku/internal/config"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "danmaku",
	Short: "Live-room chat client",
	Long: `A terminal client for live-room chat.

Joins a room on the chat server, keeps the session alive with heartbeats and
shows chat messages, gifts and welcomes as they arrive. Rooms can be saved
under a name, and captured sessions can be decoded offline.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to DANMAKU_LOG_LEVEL, then log_level in the config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON logs to this rotating file instead of the terminal")

	rootCmd.AddCommand(versionCmd)
}

// setupLogging initializes the global logger. The level comes from
// --log-level, then DANMAKU_LOG_LEVEL, then preferences.log_level in the
// config file.
func setupLogging(cmd *cobra.Command, args []string) error {
	level := resolveLogLevel(logLevel)
	if logFile != "" {
		return logging.InitializeFile(level, logFile)
	}
	return logging.Initialize(level)
}

func resolveLogLevel(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(logging.LogLevelEnvVar); env != "" {
		return env
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		// Commands that read the config report the error themselves
		return ""
	}
	return registry.Preferences.LogLevel
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "danmaku %s\n", version.Full())
	},
}
