package protocol_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/momentics/hioload-canvas/protocol"
)

func TestComputeAcceptKey(t *testing.T) {
	cases := map[string]string{
		"dGhlIHNhbXBsZSBub25jZQ==": "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=",
		"x3JJHMbDL1EzLkh9GBhXDw==": "HSmrc0sMlYUkAGmm5OPpG2HaGWk=",
	}
	for key, want := range cases {
		if got := protocol.ComputeAcceptKey(key); got != want {
			t.Errorf("ComputeAcceptKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestParseRequest(t *testing.T) {
	cases := []struct {
		name string
		head string
		kind protocol.RequestKind
		key  string
	}{
		{
			name: "upgrade",
			head: "GET /chat HTTP/1.1\r\nHost: x\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n",
			kind: protocol.RequestUpgrade,
			key:  "dGhlIHNhbXBsZSBub25jZQ==",
		},
		{
			name: "lowercase s",
			head: "GET / HTTP/1.1\r\nSec-Websocket-Key:  abc== \r\n\r\n",
			kind: protocol.RequestUpgrade,
			key:  "abc==",
		},
		{
			name: "all lowercase",
			head: "GET / HTTP/1.1\r\nsec-websocket-key: abc==\r\n\r\n",
			kind: protocol.RequestUpgrade,
			key:  "abc==",
		},
		{name: "root", head: "GET / HTTP/1.1\r\nHost: x\r\n\r\n", kind: protocol.RequestPage},
		{name: "index", head: "GET /index.html HTTP/1.1\r\n\r\n", kind: protocol.RequestPage},
		{name: "favicon", head: "GET /favicon.ico HTTP/1.1\r\n\r\n", kind: protocol.RequestUnknown},
		{name: "post with key", head: "POST / HTTP/1.1\r\nSec-WebSocket-Key: abc==\r\n\r\n", kind: protocol.RequestUnknown},
		{name: "garbage", head: "\x16\x03\x01\r\n\r\n", kind: protocol.RequestUnknown},
	}
	for _, c := range cases {
		req := protocol.ParseRequest([]byte(c.head))
		if req.Kind != c.kind {
			t.Errorf("%s: kind %v, want %v", c.name, req.Kind, c.kind)
		}
		if req.Key != c.key {
			t.Errorf("%s: key %q, want %q", c.name, req.Key, c.key)
		}
	}
}

func TestReadRequestHeadKeepsTrailingBytes(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("GET / HTTP/1.1\r\nA: b\r\n\r\n\x81\x85"))
	head, err := protocol.ReadRequestHead(br, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(head) != "GET / HTTP/1.1\r\nA: b\r\n\r\n" {
		t.Errorf("head = %q", head)
	}
	if b, _ := br.ReadByte(); b != 0x81 {
		t.Errorf("next byte 0x%02x, want first frame byte", b)
	}
}

func TestReadRequestHeadLimit(t *testing.T) {
	long := "GET / HTTP/1.1\r\nX-Pad: " + strings.Repeat("a", 200) + "\r\n\r\n"
	if _, err := protocol.ReadRequestHead(bufio.NewReader(strings.NewReader(long)), 64); err == nil {
		t.Error("oversized head accepted")
	}
}

func TestNegotiateUpgrade(t *testing.T) {
	in := "GET / HTTP/1.1\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"
	var out bytes.Buffer
	req, err := protocol.Negotiate(bufio.NewReader(strings.NewReader(in)), &out, nil, time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if req.Kind != protocol.RequestUpgrade {
		t.Fatalf("kind %v", req.Kind)
	}
	want := "HTTP/1.1 101 Switching Protocols\r\nConnection: Upgrade\r\nUpgrade: websocket\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n\r\n"
	if out.String() != want {
		t.Errorf("response:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestNegotiatePage(t *testing.T) {
	page := []byte("<html>canvas</html>")
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("X", 3600))
	var out bytes.Buffer
	req, err := protocol.Negotiate(bufio.NewReader(strings.NewReader("GET / HTTP/1.1\r\n\r\n")), &out, page, now, 0)
	if err != nil {
		t.Fatal(err)
	}
	if req.Kind != protocol.RequestPage {
		t.Fatalf("kind %v", req.Kind)
	}
	resp := out.String()
	for _, want := range []string{
		"HTTP/1.1 200 OK\r\n",
		"Content-Type: text/html\r\n",
		"Date: Tue, 05 Mar 2024 13:07:09 GMT\r\n",
		"Content-Length: 19\r\n",
		"\r\n\r\n<html>canvas</html>",
	} {
		if !strings.Contains(resp, want) {
			t.Errorf("response missing %q:\n%s", want, resp)
		}
	}
	if !strings.HasSuffix(resp, "</html>") {
		t.Error("body must end the response")
	}
}

func TestNegotiateNotFound(t *testing.T) {
	var out bytes.Buffer
	req, err := protocol.Negotiate(bufio.NewReader(strings.NewReader("GET /nope HTTP/1.1\r\n\r\n")), &out, nil, time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if req.Kind != protocol.RequestUnknown || req.Line != "GET /nope HTTP/1.1" {
		t.Fatalf("req = %+v", req)
	}
	resp := out.String()
	if !strings.HasPrefix(resp, "HTTP/1.1 404 Not Found\r\n") {
		t.Errorf("status line: %q", resp)
	}
	if !strings.Contains(resp, "Content-Length: 12\r\n") || !strings.HasSuffix(resp, "\r\n\r\nNot found :(") {
		t.Errorf("body framing: %q", resp)
	}
}
