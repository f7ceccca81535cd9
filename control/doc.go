// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for the canvas bridge.
//
// Provides concurrent-safe observation primitives including:
//   - Prometheus collectors for frames, keystrokes, handshakes and teardowns
//   - Named debug probes with JSON export
//   - An admin HTTP router serving both
//
// Everything here may be read from goroutines other than the poll loop.
package control
