// File: internal/session/doc.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One established client connection and everything scoped to it: the
// keystroke queue, the ready flag gating outbound frames, and the diff cache
// mirroring the client's display. A Session is replaced wholesale on
// reconnect, never reset field by field.
//
// Sessions are driven from a single poll goroutine and do no locking.

package session
