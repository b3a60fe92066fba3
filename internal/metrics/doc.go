// Package metrics exposes Prometheus instruments for pipeline runs and the
// HTTP API. Each Metrics value owns its registry; a nil *Metrics is a valid
// no-op recorder.
package metrics
