// File: protocol/frame_codec.go
// Package protocol implements the frame codec used by the bridge.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server frames are always written unmasked with FIN set. Client frames are
// read with the mask key mandatory, and the strict reader only accepts short
// text frames.

package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/momentics/hioload-canvas/api"
)

// appendHeader writes FIN|opcode and the length field. maskBit is OR-ed into byte 1.
func appendHeader(dst []byte, opcode byte, n int, maskBit byte) ([]byte, error) {
	if uint64(n) > MaxFramePayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds 32-bit length range", n)
	}
	dst = append(dst, FinBit|opcode&0x0F)
	switch ClassOf(n) {
	case LengthShort:
		dst = append(dst, byte(n)|maskBit)
	case LengthExtended16:
		dst = append(dst, Extended16Mark|maskBit)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		// Upper four bytes stay zero; lengths never exceed 32 bits here.
		dst = append(dst, Extended64Mark|maskBit, 0, 0, 0, 0)
		dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	}
	return dst, nil
}

// AppendFrame appends an unmasked server frame carrying payload to dst.
func AppendFrame(dst []byte, opcode byte, payload []byte) ([]byte, error) {
	dst, err := appendHeader(dst, opcode, len(payload), 0)
	if err != nil {
		return nil, err
	}
	return append(dst, payload...), nil
}

// WriteFrame writes an unmasked server frame to w. Payload bytes are written unmodified.
func WriteFrame(w io.Writer, opcode byte, payload []byte) error {
	var buf [MaxFrameHeaderLen]byte
	hdr, err := appendHeader(buf[:0], opcode, len(payload), 0)
	if err != nil {
		return err
	}
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err = w.Write(payload)
	return err
}

// AppendMaskedFrame appends a client-style frame masked with key to dst.
// payload itself is left untouched.
func AppendMaskedFrame(dst []byte, opcode byte, payload []byte, key [4]byte) ([]byte, error) {
	dst, err := appendHeader(dst, opcode, len(payload), MaskBit)
	if err != nil {
		return nil, err
	}
	dst = append(dst, key[:]...)
	start := len(dst)
	dst = append(dst, payload...)
	MaskBytes(dst[start:], key)
	return dst, nil
}

// ReadFrame decodes one complete frame of any length class from r.
// Fragmented frames and opcodes other than text and binary are refused.
func ReadFrame(r io.Reader) (*Frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0]&FinBit == 0 {
		return nil, api.ProtocolError("fragmented frame 0x%02x", hdr[0])
	}
	f := &Frame{
		Opcode: hdr[0] & 0x0F,
		Masked: hdr[1]&MaskBit != 0,
	}
	if f.Opcode != OpcodeText && f.Opcode != OpcodeBinary {
		return nil, api.ProtocolError("unsupported opcode 0x%x", f.Opcode)
	}

	length := uint64(hdr[1] & 0x7F)
	switch length {
	case Extended16Mark:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
		f.Class = LengthExtended16
	case Extended64Mark:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		length = binary.BigEndian.Uint64(ext[:])
		f.Class = LengthExtended64
	}
	if length > MaxFramePayload {
		return nil, api.ProtocolError("frame payload of %d bytes exceeds maximum", length)
	}

	if f.Masked {
		if _, err := io.ReadFull(r, f.MaskKey[:]); err != nil {
			return nil, err
		}
	}
	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, err
	}
	if f.Masked {
		MaskBytes(f.Payload, f.MaskKey)
	}
	return f, nil
}

// ReadClientText reads one inbound client frame and returns its text.
// The frame must be FIN+text, masked, and at most 125 bytes long.
func ReadClientText(r io.Reader) (string, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", err
	}
	if b[0] != HeaderText {
		return "", api.ProtocolError("unexpected opcode byte %d", b[0])
	}
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", err
	}
	if b[0]&MaskBit == 0 {
		return "", api.ProtocolError("unmasked client frame")
	}
	n := int(b[0] & 0x7F)
	if n > MaxClientPayload {
		return "", api.ProtocolError("long payload marker %d", n).WithContext("limit", MaxClientPayload)
	}

	var key [4]byte
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return "", err
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", err
	}
	MaskBytes(payload, key)
	if !utf8.Valid(payload) {
		return "", api.ProtocolError("client text is not valid UTF-8")
	}
	return string(payload), nil
}
