package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/muurk/danmaku/internal/dispatch"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "danmaku"

// Collector holds the client's counters on a private registry, so several
// clients (or tests) never collide on the default one.
type Collector struct {
	registry *prometheus.Registry

	packets      *prometheus.CounterVec
	fragments    prometheus.Counter
	skipped      prometheus.Counter
	decodeErrors prometheus.Counter
	events       *prometheus.CounterVec
	heartbeats   prometheus.Counter
	popularity   prometheus.Gauge
	bytes        prometheus.Counter
}

// New creates a collector with every metric registered
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		packets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "packets_total",
				Help:      "Packets received, by operation.",
			},
			[]string{"operation"},
		),
		fragments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_total",
			Help:      "Body fragments extracted from received packets.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_subframes_total",
			Help:      "Batch sub-frames dropped because they failed to inflate.",
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Packets whose framing was out of bounds.",
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Chat events dispatched, by kind.",
			},
			[]string{"kind"},
		),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Heartbeat frames sent.",
		}),
		popularity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "popularity",
			Help:      "Last popularity count reported by the server.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Raw websocket payload bytes received.",
		}),
	}

	c.registry.MustRegister(
		c.packets,
		c.fragments,
		c.skipped,
		c.decodeErrors,
		c.events,
		c.heartbeats,
		c.popularity,
		c.bytes,
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObservePacket records one received message of size bytes and, when
// decoding produced a packet, its operation, fragments and skipped sub-frames.
func (c *Collector) ObservePacket(pkt *protocol.Packet, size int) {
	c.bytes.Add(float64(size))
	if pkt == nil {
		return
	}
	c.packets.WithLabelValues(pkt.Operation.String()).Inc()
	c.fragments.Add(float64(len(pkt.Body)))
	c.skipped.Add(float64(pkt.Skipped))
}

// ObserveDecodeError records a packet that failed bounds checks
func (c *Collector) ObserveDecodeError() {
	c.decodeErrors.Inc()
}

// ObserveHeartbeat records a heartbeat sent to the server
func (c *Collector) ObserveHeartbeat() {
	c.heartbeats.Inc()
}

// HandleEvent implements dispatch.Handler
func (c *Collector) HandleEvent(ev dispatch.Event) {
	c.events.WithLabelValues(ev.Kind().String()).Inc()
	if p, ok := ev.(*dispatch.PopularityEvent); ok {
		c.popularity.Set(float64(p.Count))
	}
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	logging.Info("Metrics endpoint listening", zap.String("addr", addr))

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown", zap.Error(err))
		}
		return nil
	}
}
