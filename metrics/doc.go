// Package metrics provides Prometheus instrumentation for the bridge.
// The Recorder is injected, never global, and a nil Recorder is a no-op
// so library users opt in explicitly.
package metrics
