// File: protocol/handshake_serializer.go
// Package protocol
// Helper functions for serializing handshake and fallback HTTP responses.
package protocol

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServerName is sent in the Server header of plain HTTP responses.
const ServerName = "hioload-canvas"

// NotFoundBody is the body of every 404 response.
const NotFoundBody = "Not found :("

// WriteUpgradeResponse writes the 101 Switching Protocols response.
func WriteUpgradeResponse(w io.Writer, accept string) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 101 Switching Protocols\r\n"+
		"Connection: Upgrade\r\n"+
		"Upgrade: websocket\r\n"+
		"Sec-WebSocket-Accept: %s\r\n\r\n", accept)
	return err
}

// WritePageResponse writes a 200 response carrying the HTML page.
func WritePageResponse(w io.Writer, page []byte, now time.Time) error {
	return writeResponse(w, "200 OK", "text/html", page, now,
		"Server: "+ServerName)
}

// WriteNotFoundResponse writes the 404 response.
func WriteNotFoundResponse(w io.Writer, now time.Time) error {
	return writeResponse(w, "404 Not Found", "text/plain", []byte(NotFoundBody), now)
}

func writeResponse(w io.Writer, status, contentType string, body []byte, now time.Time, extra ...string) error {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %s\r\n", status); err != nil {
		return err
	}
	for _, h := range extra {
		if _, err := fmt.Fprintf(w, "%s\r\n", h); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Connection: close\r\n"+
		"Content-Type: %s\r\n"+
		"Date: %s\r\n"+
		"Content-Length: %d\r\n\r\n",
		contentType, now.UTC().Format(http.TimeFormat), len(body)); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
