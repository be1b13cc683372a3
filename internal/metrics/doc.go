// Package metrics exposes client counters to Prometheus.
//
// A Collector is both a dispatch.Handler (counting events and tracking the
// popularity gauge) and a sink the transport reports packets, decode errors
// and heartbeats to. Serve publishes the registry on /metrics.
package metrics
