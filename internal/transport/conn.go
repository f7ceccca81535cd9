// File: internal/transport/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffered socket with a non-blocking probe for pending inbound bytes.

package transport

import (
	"bufio"
	"errors"
	"net"
	"os"
	"time"
)

// ProbeWait bounds how long Available waits on an idle socket to tell an
// idle peer from a closed one.
var ProbeWait = time.Millisecond

// Conn pairs a socket with the buffered reader that consumed its handshake,
// so frame bytes that arrived with the request head are not lost.
type Conn struct {
	net.Conn
	br *bufio.Reader
}

// NewConn wraps c. br must read from c; nil allocates a fresh reader.
func NewConn(c net.Conn, br *bufio.Reader) *Conn {
	if br == nil {
		br = bufio.NewReader(c)
	}
	return &Conn{Conn: c, br: br}
}

// Reader returns the buffered reader frames must be decoded from.
func (c *Conn) Reader() *bufio.Reader {
	return c.br
}

// Available returns how many inbound bytes can be read without blocking.
// Zero means the peer is idle. A peer that closed the socket yields io.EOF.
func (c *Conn) Available() (int, error) {
	if n := c.br.Buffered(); n > 0 {
		return n, nil
	}
	if n, ok, err := pendingBytes(c.Conn); ok {
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return n, nil
		}
	}
	return c.peek()
}

// peek waits at most ProbeWait for one byte to arrive.
func (c *Conn) peek() (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(ProbeWait)); err != nil {
		return 0, err
	}
	_, err := c.br.Peek(1)
	if rerr := c.Conn.SetReadDeadline(time.Time{}); err == nil {
		err = rerr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.br.Buffered(), nil
}
