// Package canvas
// Author: momentics <momentics@gmail.com>
//
// PNG payload encoding for delta frames.

package canvas

import (
	"image"
	"image/png"
	"io"

	"github.com/momentics/hioload-canvas/pool"
)

// PNGEncoder encodes frame images as PNG, reusing encoder state between frames.
type PNGEncoder struct {
	enc png.Encoder
}

// NewPNGEncoder returns an encoder using the given compression level.
func NewPNGEncoder(level png.CompressionLevel) *PNGEncoder {
	return &PNGEncoder{enc: png.Encoder{
		CompressionLevel: level,
		BufferPool:       pool.NewSyncPool(func() *png.EncoderBuffer { return new(png.EncoderBuffer) }),
	}}
}

// Encode implements api.ImageEncoder.
func (e *PNGEncoder) Encode(w io.Writer, img image.Image) error {
	return e.enc.Encode(w, img)
}
