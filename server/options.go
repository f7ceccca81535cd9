// File: server/options.go
// Package server defines functional options for the Bridge.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log/slog"
	"net"
	"time"

	"github.com/momentics/hioload-canvas/api"
	"github.com/momentics/hioload-canvas/control"
)

// Option customizes bridge initialization.
type Option func(*Bridge)

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		b.log = l
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *control.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithPage overrides the HTML body served on GET / and /index.html.
func WithPage(page []byte) Option {
	return func(b *Bridge) {
		b.page = page
	}
}

// WithEncoder replaces the image encoder used for binary frames.
func WithEncoder(enc api.ImageEncoder) Option {
	return func(b *Bridge) {
		b.enc = enc
	}
}

// WithClock sets the time source for HTTP Date headers.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		b.now = now
	}
}

// WithListener supplies an already bound listener; ListenAddr is ignored.
func WithListener(ln net.Listener) Option {
	return func(b *Bridge) {
		b.ln = ln
	}
}
