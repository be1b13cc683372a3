package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/danmaku/internal/client"
	"github.com/muurk/danmaku/internal/config"
	"github.com/muurk/danmaku/internal/dispatch"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/metrics"
	"github.com/muurk/danmaku/internal/ui"
	"github.com/muurk/danmaku/internal/urls"
)

// Watch command flags
var (
	serverURL   string
	heartbeat   time.Duration
	captureDir  string
	metricsAddr string
	useTUI      bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <room>",
	Short: "Join a room and show its chat",
	Long: `Join a live room and show chat messages, gifts and welcomes as they arrive.

<room> is either a numeric room id or the name of a room saved with
'danmaku room add'. Server, heartbeat interval and capture directory default
to the values in the config file.

With --tui the chat is shown in a scrolling full-screen view; use --log-file
to keep logs while it runs.`,
	Example: `  # Watch a room by id
  danmaku watch 3470615

  # Watch a saved room in the chat view
  danmaku watch lofi --tui --log-file danmaku.log

  # Capture every frame for later decoding
  danmaku watch 3470615 --capture-dir ./captures

  # Expose Prometheus metrics
  danmaku watch 3470615 --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&serverURL, "server", "", "Chat server websocket URL (default from config)")
	watchCmd.Flags().DurationVar(&heartbeat, "heartbeat", 0, "Heartbeat interval (default from config, 30s)")
	watchCmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory to write JSONL frame captures (disabled if not specified)")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (disabled if not specified)")
	watchCmd.Flags().BoolVar(&useTUI, "tui", false, "Show the chat in an interactive full-screen view")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	roomID, err := registry.ResolveRoom(args[0])
	if err != nil {
		return err
	}

	prefs := registry.Preferences
	cfg := client.Config{
		URL:               firstNonEmpty(serverURL, prefs.ServerURL),
		RoomID:            roomID,
		HeartbeatInterval: heartbeat,
		CaptureDir:        firstNonEmpty(captureDir, prefs.CaptureDir),
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = prefs.HeartbeatInterval()
	}

	if useTUI && logFile == "" {
		// Console logs would corrupt the chat view
		logging.SetLogger(zap.NewNop())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.New()
	handlers := dispatch.MultiHandler{
		&dispatch.LogHandler{RoomID: roomID},
		joinRecorder(registry, roomID),
	}

	g, gctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		g.Go(func() error {
			return collector.Serve(gctx, metricsAddr)
		})
	}

	logging.Info("Watching room",
		zap.Int64("room_id", roomID),
		zap.String("page", urls.RoomPage(roomID)),
		zap.String("server", cfg.URL),
	)

	if useTUI {
		err = watchTUI(gctx, g, stop, cfg, handlers, collector)
	} else {
		err = watchPlain(gctx, g, cmd, cfg, handlers, collector)
	}
	if err != nil {
		ui.NewPrinter(cmd.ErrOrStderr()).PrintFailure("Watch failed", err, []string{
			"Check the room id with " + urls.RoomPage(roomID),
			"Check --server or preferences.server_url in the config file",
			"Run with --log-level debug to see every frame",
		})
	}
	return err
}

func watchPlain(ctx context.Context, g *errgroup.Group, cmd *cobra.Command, cfg client.Config,
	handlers dispatch.MultiHandler, collector *metrics.Collector) error {
	handlers = append(handlers, dispatch.NewPrintHandler(cmd.OutOrStdout()))

	c, err := client.New(cfg, handlers, client.WithMetrics(collector))
	if err != nil {
		return err
	}

	g.Go(func() error {
		return c.Run(ctx)
	})
	return g.Wait()
}

func watchTUI(ctx context.Context, g *errgroup.Group, stop context.CancelFunc, cfg client.Config,
	handlers dispatch.MultiHandler, collector *metrics.Collector) error {
	p := tea.NewProgram(ui.NewChatModel(cfg.RoomID, cfg.URL), tea.WithAltScreen(), tea.WithContext(ctx))
	handlers = append(handlers, ui.Handler(p))

	c, err := client.New(cfg, handlers, client.WithMetrics(collector))
	if err != nil {
		return err
	}

	g.Go(func() error {
		err := c.Run(ctx)
		if err != nil {
			p.Send(ui.StatusMsg{Text: "disconnected: " + err.Error()})
		}
		return err
	})
	g.Go(func() error {
		_, err := p.Run()
		// Leaving the chat view ends the session
		stop()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// joinRecorder stamps the room's last_joined time once the server
// acknowledges the join
func joinRecorder(registry *config.Registry, roomID int64) dispatch.Handler {
	var once sync.Once
	return dispatch.HandlerFunc(func(ev dispatch.Event) {
		if ev.Kind() != dispatch.KindJoin {
			return
		}
		once.Do(func() {
			if !registry.MarkJoined(roomID) {
				return
			}
			if err := config.SaveRegistry(registry); err != nil {
				logging.Warn("Failed to save config", zap.Error(err))
			}
		})
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
