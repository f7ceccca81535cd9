// File: internal/session/session.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session state machine for one websocket client: inbound drain, token
// dispatch and the single-frame-in-flight outbound discipline.

package session

import (
	"bytes"
	"image/png"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/momentics/hioload-canvas/api"
	"github.com/momentics/hioload-canvas/canvas"
	"github.com/momentics/hioload-canvas/control"
	"github.com/momentics/hioload-canvas/internal/transport"
	"github.com/momentics/hioload-canvas/pool"
	"github.com/momentics/hioload-canvas/protocol"
)

// Options carries the collaborators a Session needs.
type Options struct {
	Encoder api.ImageEncoder // nil selects a fast PNG encoder
	Metrics *control.Metrics // may be nil
	Buffers *pool.SyncPool[*bytes.Buffer]
}

// Session holds per-connection state for one established client.
type Session struct {
	id        string
	conn      *transport.Conn
	createdAt time.Time

	inputs  *InputQueue
	ready   bool
	pending *canvas.Snapshot
	cache   canvas.DiffCache

	enc     api.ImageEncoder
	bufs    *pool.SyncPool[*bytes.Buffer]
	metrics *control.Metrics

	once sync.Once
}

// New creates a session over an upgraded connection. A fresh session is
// ready to send and has an empty diff cache.
func New(conn *transport.Conn, opts Options) *Session {
	if opts.Encoder == nil {
		opts.Encoder = canvas.NewPNGEncoder(png.BestSpeed)
	}
	if opts.Buffers == nil {
		opts.Buffers = pool.NewBufferPool()
	}
	return &Session{
		id:        uuid.NewString(),
		conn:      conn,
		createdAt: time.Now(),
		inputs:    NewInputQueue(),
		ready:     true,
		enc:       opts.Encoder,
		bufs:      opts.Buffers,
		metrics:   opts.Metrics,
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Age returns how long the session has been established.
func (s *Session) Age() time.Duration {
	return time.Since(s.createdAt)
}

// Ready reports whether the client has acknowledged the last frame.
func (s *Session) Ready() bool {
	return s.ready
}

// Pending reports whether a snapshot waits to be sent.
func (s *Session) Pending() bool {
	return s.pending != nil
}

// Cache exposes the diff cache for inspection.
func (s *Session) Cache() *canvas.DiffCache {
	return &s.cache
}

// HasKey reports whether a keystroke is queued.
func (s *Session) HasKey() bool {
	return s.inputs.Len() > 0
}

// NextKey consumes the oldest keystroke. Callers check HasKey first.
func (s *Session) NextKey() (rune, error) {
	return s.inputs.Pop()
}

// Drain decodes every frame already available on the socket without
// blocking for new ones. Partially received frames are read to completion.
func (s *Session) Drain() error {
	for {
		n, err := s.conn.Available()
		if err != nil {
			return api.WrapError(api.ErrCodeIO, "probe socket", err)
		}
		if n == 0 {
			return nil
		}
		text, err := protocol.ReadClientText(s.conn.Reader())
		if err != nil {
			return err
		}
		if err := s.dispatch(text); err != nil {
			return err
		}
	}
}

func (s *Session) dispatch(text string) error {
	msg, err := protocol.ParseMessage(text)
	if err != nil {
		return err
	}
	switch msg.Kind {
	case protocol.MessageKey:
		s.inputs.Push(msg.Key)
		s.metrics.KeyReceived()
	case protocol.MessageReady:
		s.ready = true
	case protocol.MessageExit:
		return api.ErrClientExit
	}
	return nil
}

// Queue makes snap the next snapshot to send, replacing any unsent one.
func (s *Session) Queue(snap *canvas.Snapshot) {
	s.pending = snap
}

// Flush sends the queued snapshot if the client is ready for it. The ready
// flag and the queued snapshot are cleared before any I/O, so a failed write
// is never retried on this session.
func (s *Session) Flush() (sent bool, err error) {
	if !s.ready || s.pending == nil {
		return false, nil
	}
	snap := s.pending
	s.ready = false
	s.pending = nil

	d := s.cache.Delta(snap)
	buf := s.bufs.Get()
	defer s.bufs.Put(buf)
	if err := s.enc.Encode(buf, d.Image.Image()); err != nil {
		return false, api.WrapError(api.ErrCodeInternal, "encode frame", err)
	}
	s.cache.Commit(snap)

	if err := protocol.WriteFrame(s.conn, protocol.OpcodeBinary, buf.Bytes()); err != nil {
		return false, api.WrapError(api.ErrCodeIO, "write frame", err)
	}
	s.metrics.FrameSent(buf.Len(), d.Full, d.Changed, snap.Len())
	return true, nil
}

// Close shuts the socket; idempotent.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		err = s.conn.Close()
	})
	return err
}
