// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants

package protocol

const (
	OpcodeText   = 0x1
	OpcodeBinary = 0x2
	OpcodeClose  = 0x8

	// Bit masks
	FinBit  = 0x80
	MaskBit = 0x80

	// First header byte of the only frame shapes this bridge exchanges.
	HeaderText   = FinBit | OpcodeText   // 0x81
	HeaderBinary = FinBit | OpcodeBinary // 0x82

	// Length-class markers carried in the 7-bit length field.
	MaxShortPayload = 125
	Extended16Mark  = 126
	Extended64Mark  = 127

	// Client messages are keystrokes and control tokens; extended lengths are refused.
	MaxClientPayload = MaxShortPayload

	MaxFrameHeaderLen = 14 // extended 64-bit length with masking
	MaskKeyLen        = 4
)
