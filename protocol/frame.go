// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket frame model, length classes and masking.

package protocol

import "math"

// MaxFramePayload bounds what ReadFrame will allocate for a single payload.
const MaxFramePayload = math.MaxUint32

// Frame represents a decoded WebSocket frame.
type Frame struct {
	Opcode  byte // Operation code
	Masked  bool // Whether the frame was masked
	MaskKey [4]byte
	Payload []byte // Unmasked payload
	Class   LengthClass
}

// LengthClass is the header encoding used for the payload length.
type LengthClass int

const (
	LengthShort LengthClass = iota
	LengthExtended16
	LengthExtended64
)

func (c LengthClass) String() string {
	switch c {
	case LengthShort:
		return "short"
	case LengthExtended16:
		return "extended16"
	case LengthExtended64:
		return "extended64"
	default:
		return "unknown"
	}
}

// ClassOf returns the length class used for a payload of n bytes.
func ClassOf(n int) LengthClass {
	switch {
	case n <= MaxShortPayload:
		return LengthShort
	case n <= math.MaxUint16:
		return LengthExtended16
	default:
		return LengthExtended64
	}
}

// MaskBytes XORs buf in place with key. Applying it twice restores buf.
func MaskBytes(buf []byte, key [4]byte) {
	for i := range buf {
		buf[i] ^= key[i&3]
	}
}
