// File: protocol/handshake.go
// Package protocol implements the bridge's HTTP upgrade negotiation.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The first block of bytes on a fresh socket is either a WebSocket upgrade,
// a plain GET for the page, or something else. Each gets its own response.

package protocol

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/momentics/hioload-canvas/api"
)

// Constants used for handshake processing.
const (
	WebSocketGUID           = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	HeaderSecWebSocketKey   = "Sec-WebSocket-Key"
	MaxHandshakeHeadersSize = 8192
)

// RequestKind classifies the first request seen on a socket.
type RequestKind int

const (
	RequestUnknown RequestKind = iota
	RequestUpgrade
	RequestPage
)

func (k RequestKind) String() string {
	switch k {
	case RequestUpgrade:
		return "upgrade"
	case RequestPage:
		return "page"
	default:
		return "unknown"
	}
}

// Request is the parsed request head.
type Request struct {
	Kind   RequestKind
	Method string
	Path   string
	Key    string // Sec-WebSocket-Key, trimmed
	Line   string // request line without CRLF
}

// ComputeAcceptKey computes the Sec-WebSocket-Accept value from the client's key.
func ComputeAcceptKey(clientKey string) string {
	hash := sha1.Sum([]byte(clientKey + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// ReadRequestHead reads from br up to and including the blank line that ends
// the request head. limit caps the head size; zero means MaxHandshakeHeadersSize.
func ReadRequestHead(br *bufio.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = MaxHandshakeHeadersSize
	}
	var head []byte
	lineStart := 0
	for {
		chunk, err := br.ReadSlice('\n')
		head = append(head, chunk...)
		if len(head) > limit {
			return nil, api.NewError(api.ErrCodeHandshake, "handshake headers too large").
				WithContext("limit", limit)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("handshake read request: %w", err)
		}
		line := string(head[lineStart:])
		if lineStart > 0 && (line == "\r\n" || line == "\n") {
			return head, nil
		}
		lineStart = len(head)
	}
}

// ParseRequest classifies a request head.
func ParseRequest(head []byte) Request {
	lines := strings.Split(string(head), "\n")
	var req Request
	req.Line = strings.TrimRight(lines[0], "\r")
	if parts := strings.Fields(req.Line); len(parts) >= 2 {
		req.Method, req.Path = parts[0], parts[1]
	}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), HeaderSecWebSocketKey) {
			req.Key = strings.TrimSpace(value)
			break
		}
	}

	switch {
	case req.Method == "GET" && req.Key != "":
		req.Kind = RequestUpgrade
	case req.Method == "GET" && (req.Path == "/" || req.Path == "/index.html"):
		req.Kind = RequestPage
	default:
		req.Kind = RequestUnknown
	}
	return req
}

// Negotiate reads the request head from br and writes the matching response
// to w. Only a RequestUpgrade result leaves the socket usable for frames.
func Negotiate(br *bufio.Reader, w io.Writer, page []byte, now time.Time, limit int) (Request, error) {
	head, err := ReadRequestHead(br, limit)
	if err != nil {
		return Request{}, err
	}
	req := ParseRequest(head)
	switch req.Kind {
	case RequestUpgrade:
		err = WriteUpgradeResponse(w, ComputeAcceptKey(req.Key))
	case RequestPage:
		err = WritePageResponse(w, page, now)
	default:
		err = WriteNotFoundResponse(w, now)
	}
	if err != nil {
		return req, fmt.Errorf("handshake write response: %w", err)
	}
	return req, nil
}
