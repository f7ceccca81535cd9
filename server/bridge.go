// File: server/bridge.go
// Package server implements the single-client acceptor and the host-facing
// polling API of the canvas bridge.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Bridge owns the listening socket and at most one Session. Host calls
// run on one goroutine; Close may be called from any goroutine.

package server

import (
	"bufio"
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-canvas/api"
	"github.com/momentics/hioload-canvas/canvas"
	"github.com/momentics/hioload-canvas/control"
	"github.com/momentics/hioload-canvas/internal/session"
	"github.com/momentics/hioload-canvas/internal/transport"
	"github.com/momentics/hioload-canvas/pool"
	"github.com/momentics/hioload-canvas/protocol"
	"github.com/momentics/hioload-canvas/web"
)

// Bridge accepts one websocket client at a time and relays snapshots and
// keystrokes over it.
type Bridge struct {
	cfg     *Config
	log     *slog.Logger
	metrics *control.Metrics
	page    []byte
	enc     api.ImageEncoder
	now     func() time.Time
	ln      net.Listener
	bufs    *pool.SyncPool[*bytes.Buffer]

	ctx    context.Context
	cancel context.CancelFunc

	state  atomic.Int32
	closed atomic.Bool

	mu          sync.Mutex
	sess        *session.Session
	handshaking net.Conn
}

// New binds the listener and prepares the bridge. No client is accepted
// until Accept or the first recovery.
func New(cfg *Config, opts ...Option) (*Bridge, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !crypto.SHA1.Available() {
		return nil, api.ErrHashUnavailable
	}

	b := &Bridge{
		cfg:  cfg,
		log:  slog.Default(),
		now:  time.Now,
		bufs: pool.NewBufferPool(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.enc == nil {
		b.enc = canvas.NewPNGEncoder(png.BestSpeed)
	}
	if b.page == nil {
		if cfg.PagePath != "" {
			page, err := os.ReadFile(cfg.PagePath)
			if err != nil {
				return nil, fmt.Errorf("read page: %w", err)
			}
			b.page = page
		} else {
			b.page = web.Page()
		}
	}
	if b.ln == nil {
		ln, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
		}
		b.ln = ln
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.setState(api.StateListening)
	b.log.Info("bridge listening", "addr", b.ln.Addr().String())
	return b, nil
}

// Addr returns the bound websocket address.
func (b *Bridge) Addr() net.Addr {
	return b.ln.Addr()
}

// State returns the acceptor state; safe from any goroutine.
func (b *Bridge) State() api.State {
	return api.State(b.state.Load())
}

func (b *Bridge) setState(s api.State) {
	if b.closed.Load() {
		s = api.StateClosed
	}
	b.state.Store(int32(s))
	b.metrics.SetState(s)
}

func (b *Bridge) current() *session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sess
}

// Accept blocks until a client completes the websocket handshake. Page and
// unknown requests are answered and their sockets closed. It returns nil
// immediately if a client is already established.
func (b *Bridge) Accept(ctx context.Context) error {
	if b.closed.Load() {
		return api.ErrTransportClosed
	}
	if b.current() != nil {
		return nil
	}
	b.clearDeadline()
	stop := context.AfterFunc(ctx, b.interrupt)
	defer stop()

	var retry time.Duration
	for {
		b.setState(api.StateListening)
		c, err := b.ln.Accept()
		if err != nil {
			if b.closed.Load() {
				return api.ErrTransportClosed
			}
			if ctx.Err() != nil {
				b.clearDeadline()
				return ctx.Err()
			}
			retry = nextRetry(retry)
			b.log.Warn("accept failed, retrying", "err", err, "delay", retry)
			select {
			case <-time.After(retry):
			case <-ctx.Done():
				b.clearDeadline()
				return ctx.Err()
			}
			continue
		}
		retry = 0

		b.setState(api.StateHandshaking)
		s, err := b.handshake(c)
		if err != nil {
			c.Close()
			if ctx.Err() != nil {
				b.clearDeadline()
				return ctx.Err()
			}
			continue
		}
		if s == nil {
			c.Close()
			continue
		}

		b.mu.Lock()
		if b.closed.Load() {
			b.mu.Unlock()
			s.Close()
			return api.ErrTransportClosed
		}
		b.sess = s
		b.mu.Unlock()
		b.setState(api.StateEstablished)
		b.metrics.SessionStarted()
		b.log.Info("client connected", "session", s.ID(), "remote", c.RemoteAddr().String())
		return nil
	}
}

// nextRetry doubles the accept retry delay from 5ms up to one second.
func nextRetry(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	return min(2*d, time.Second)
}

// handshake answers the first request on c. A nil session with a nil error
// means the request was served but did not upgrade.
func (b *Bridge) handshake(c net.Conn) (*session.Session, error) {
	b.mu.Lock()
	b.handshaking = c
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.handshaking = nil
		b.mu.Unlock()
	}()

	br := bufio.NewReader(c)
	req, err := protocol.Negotiate(br, c, b.page, b.now(), b.cfg.MaxHandshakeBytes)
	if err != nil {
		b.metrics.Handshake("error")
		b.log.Warn("handshake failed", "remote", c.RemoteAddr().String(), "err", err)
		return nil, err
	}
	b.metrics.Handshake(req.Kind.String())
	switch req.Kind {
	case protocol.RequestUpgrade:
		// The socket now belongs to the session: a late interrupt must not
		// leave a deadline on it.
		b.mu.Lock()
		b.handshaking = nil
		b.mu.Unlock()
		if err := c.SetDeadline(time.Time{}); err != nil {
			return nil, err
		}
		return session.New(transport.NewConn(c, br), session.Options{
			Encoder: b.enc,
			Metrics: b.metrics,
			Buffers: b.bufs,
		}), nil
	case protocol.RequestPage:
		b.log.Debug("served page", "remote", c.RemoteAddr().String())
	default:
		b.log.Info("unknown request", "line", req.Line, "remote", c.RemoteAddr().String())
	}
	return nil, nil
}

// interrupt unblocks a pending Accept or handshake read.
func (b *Bridge) interrupt() {
	if d, ok := b.ln.(interface{ SetDeadline(time.Time) error }); ok {
		_ = d.SetDeadline(time.Now())
	}
	b.mu.Lock()
	if b.handshaking != nil {
		_ = b.handshaking.SetDeadline(time.Now())
	}
	b.mu.Unlock()
}

func (b *Bridge) clearDeadline() {
	if d, ok := b.ln.(interface{ SetDeadline(time.Time) error }); ok {
		_ = d.SetDeadline(time.Time{})
	}
}

// teardown discards s and blocks until the next client is established or
// the bridge is closed.
func (b *Bridge) teardown(s *session.Session, err error) {
	reason := api.Classify(err)
	b.log.Warn("session torn down", "reason", reason.String(), "session", s.ID(), "err", err)
	b.metrics.Teardown(reason)

	b.mu.Lock()
	if b.sess == s {
		b.sess = nil
	}
	b.mu.Unlock()
	_ = s.Close()

	if b.closed.Load() {
		return
	}
	if err := b.Accept(b.ctx); err != nil && !errors.Is(err, api.ErrTransportClosed) && !errors.Is(err, context.Canceled) {
		b.log.Error("re-accept failed", "err", err)
	}
}

// poll drains inbound frames and sends the queued snapshot if permitted.
// It returns nil when no client is established after the step.
func (b *Bridge) poll() *session.Session {
	s := b.current()
	if s == nil {
		return nil
	}
	if err := s.Drain(); err != nil {
		b.teardown(s, err)
		return nil
	}
	if _, err := s.Flush(); err != nil {
		b.teardown(s, err)
		return nil
	}
	return s
}

// HasKeyTyped reports whether a keystroke is waiting.
func (b *Bridge) HasKeyTyped() bool {
	s := b.poll()
	return s != nil && s.HasKey()
}

// NextKeyTyped consumes the oldest keystroke. It returns api.ErrNoKeyTyped
// when the queue is empty and api.ErrNotEstablished without a client.
func (b *Bridge) NextKeyTyped() (rune, error) {
	s := b.poll()
	if s == nil {
		return 0, api.ErrNotEstablished
	}
	return s.NextKey()
}

// PublishSnapshot queues img for the client, replacing any unsent snapshot,
// and sends it if the client has acknowledged the previous frame. It is a
// no-op while no client is established or when img has no pixels.
func (b *Bridge) PublishSnapshot(img image.Image) {
	b.SendCanvas(api.SnapshotFunc(func() (image.Image, error) {
		return img, nil
	}))
}

// SendCanvas captures a snapshot from src and publishes it. A capture
// failure tears down the session.
func (b *Bridge) SendCanvas(src api.SnapshotSource) {
	s := b.current()
	if s == nil {
		return
	}
	if b.cfg.MaxWidth > 0 || b.cfg.MaxHeight > 0 {
		src = canvas.ScaledSource{Source: src, MaxWidth: b.cfg.MaxWidth, MaxHeight: b.cfg.MaxHeight}
	}
	img, err := src.Snapshot()
	if err != nil {
		b.teardown(s, fmt.Errorf("capture canvas: %w", err))
		return
	}
	if img.Bounds().Empty() {
		b.log.Debug("empty snapshot ignored", "session", s.ID())
		return
	}
	s.Queue(canvas.NewSnapshot(img))
	b.poll()
}

// SessionID returns the established session's identifier, or "".
func (b *Bridge) SessionID() string {
	if s := b.current(); s != nil {
		return s.ID()
	}
	return ""
}

// RegisterProbes exposes bridge state on the admin debug endpoint.
func (b *Bridge) RegisterProbes(dp *control.DebugProbes) {
	dp.RegisterProbe("bridge.state", func() any {
		return b.State().String()
	})
	dp.RegisterProbe("bridge.addr", func() any {
		return b.Addr().String()
	})
	dp.RegisterProbe("bridge.session", func() any {
		s := b.current()
		if s == nil {
			return nil
		}
		return map[string]any{
			"id":          s.ID(),
			"age_seconds": s.Age().Seconds(),
		}
	})
}

// Close stops the bridge: the listener and any session socket are closed
// and later host calls do nothing. Idempotent.
func (b *Bridge) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.cancel()
	err := b.ln.Close()

	b.mu.Lock()
	s := b.sess
	b.sess = nil
	if b.handshaking != nil {
		_ = b.handshaking.Close()
	}
	b.mu.Unlock()
	if s != nil {
		_ = s.Close()
	}
	b.setState(api.StateClosed)
	b.log.Info("bridge closed")
	return err
}
