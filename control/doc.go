// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime accounting, configuration and debug introspection for raw memory
// streams.
//
// Provides concurrent-safe state handling primitives including:
//   - Live stream tracking and leak counting (Tracker)
//   - Snapshot config reads with reload listeners (ConfigStore)
//   - Metrics telemetry registry (MetricsRegistry)
//   - Debug probe registration and state export (DebugProbes)
package control
