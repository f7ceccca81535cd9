// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Application tokens carried in client text frames.

package protocol

import (
	"unicode/utf8"

	"github.com/momentics/hioload-canvas/api"
)

// Tokens sent by the browser page.
const (
	TokenReady = "READY"
	TokenExit  = "EXIT"
	TokenQuit  = "QUIT"
)

// MessageKind classifies a decoded client text payload.
type MessageKind int

const (
	MessageKey MessageKind = iota
	MessageReady
	MessageExit
)

// Message is a classified client payload. Key is set for MessageKey only.
type Message struct {
	Kind MessageKind
	Key  rune
}

// ParseMessage classifies text: one code point is a keystroke, READY
// acknowledges the last frame, EXIT and QUIT end the session.
func ParseMessage(text string) (Message, error) {
	if utf8.RuneCountInString(text) == 1 {
		r, _ := utf8.DecodeRuneInString(text)
		if r != utf8.RuneError {
			return Message{Kind: MessageKey, Key: r}, nil
		}
	}
	switch text {
	case TokenReady:
		return Message{Kind: MessageReady}, nil
	case TokenExit, TokenQuit:
		return Message{Kind: MessageExit}, nil
	}
	return Message{}, api.ProtocolError("unexpected message from websocket: %q", text)
}
