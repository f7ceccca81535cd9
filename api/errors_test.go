package api_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/momentics/hioload-canvas/api"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want api.Result
	}{
		{"nil", nil, api.Ok},
		{"exit", fmt.Errorf("drain: %w", api.ErrClientExit), api.ExitResult},
		{"protocol sentinel", fmt.Errorf("frame: %w", api.ErrProtocolViolation), api.ProtocolErrorResult},
		{"protocol error", api.ProtocolError("opcode 0x%x", 2), api.ProtocolErrorResult},
		{"coded without sentinel", api.NewError(api.ErrCodeProtocol, "bad"), api.ProtocolErrorResult},
		{"eof", io.EOF, api.IOErrorResult},
		{"handshake", api.NewError(api.ErrCodeHandshake, "too large"), api.IOErrorResult},
		{"io coded", api.WrapError(api.ErrCodeIO, "write frame", io.ErrClosedPipe), api.IOErrorResult},
		{"internal coded", api.WrapError(api.ErrCodeInternal, "encode frame", errors.New("invalid image size")), api.IOErrorResult},
		{"other", errors.New("broken pipe"), api.IOErrorResult},
	}
	for _, c := range cases {
		if got := api.Classify(c.err); got != c.want {
			t.Errorf("%s: Classify = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	err := api.ProtocolError("length %d", 126).WithContext("limit", 125)
	if !errors.Is(err, api.ErrProtocolViolation) {
		t.Error("ProtocolError must wrap ErrProtocolViolation")
	}
	msg := err.Error()
	for _, want := range []string{"length 126", "protocol violation", "limit:125"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestWrapError(t *testing.T) {
	err := api.WrapError(api.ErrCodeIO, "probe socket", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("WrapError must keep the cause reachable")
	}
	if err.Code != api.ErrCodeIO {
		t.Errorf("Code = %d, want %d", err.Code, api.ErrCodeIO)
	}
	if got := err.Error(); got != "probe socket: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
	if api.ErrCodeProtocol == 0 {
		t.Error("the zero ErrorCode must not name a condition")
	}
}

func TestStringers(t *testing.T) {
	if api.ExitResult.String() != "client_exit" || api.IOErrorResult.String() != "io_error" {
		t.Error("unexpected Result names")
	}
	if api.StateEstablished.String() != "established" || api.State(9).String() != "unknown" {
		t.Error("unexpected State names")
	}
}
