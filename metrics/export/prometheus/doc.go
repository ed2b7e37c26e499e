// Package prometheus provides Prometheus collectors for kioskAuth metrics.
//
// [NewPrometheusExporter] accepts a [kioskAuth.Engine] and exposes an [http.Handler]
// that renders all kioskAuth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed kioskauth_*_total; the single histogram is
// kioskauth_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
