// Package canvas holds canvas snapshots and the pixel-difference transport
// that turns successive snapshots into delta images.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package canvas

import (
	"image"
	"image/color"
)

// Transparent is the sentinel color of an unchanged pixel in a delta.
const Transparent uint32 = 0

// Snapshot is an immutable width x height grid of packed non-premultiplied
// ARGB colors, row-major.
type Snapshot struct {
	width, height int
	colors        []uint32
}

// NewSnapshot captures img into a new Snapshot.
func NewSnapshot(img image.Image) *Snapshot {
	b := img.Bounds()
	s := &Snapshot{
		width:  b.Dx(),
		height: b.Dy(),
		colors: make([]uint32, b.Dx()*b.Dy()),
	}
	if src, ok := img.(*image.NRGBA); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for x := 0; x < s.width; x++ {
				p := row[x*4 : x*4+4]
				s.colors[i] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
				i++
			}
		}
		return s
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s.colors[i] = Pack(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
			i++
		}
	}
	return s
}

// FromColors builds a Snapshot from packed ARGB colors. colors is copied.
func FromColors(width, height int, colors []uint32) *Snapshot {
	if len(colors) != width*height {
		panic("canvas: color count does not match dimensions")
	}
	return &Snapshot{width: width, height: height, colors: append([]uint32(nil), colors...)}
}

// Pack converts c to the packed ARGB form used by Snapshot.
func Pack(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (s *Snapshot) Width() int  { return s.width }
func (s *Snapshot) Height() int { return s.height }

// Len returns the number of pixels.
func (s *Snapshot) Len() int { return len(s.colors) }

// At returns the packed color of pixel i in row-major order.
func (s *Snapshot) At(i int) uint32 { return s.colors[i] }

// Colors returns a copy of the flat color array.
func (s *Snapshot) Colors() []uint32 {
	return append([]uint32(nil), s.colors...)
}

// SameSize reports whether o has the same dimensions. A nil o never matches.
func (s *Snapshot) SameSize(o *Snapshot) bool {
	return o != nil && s.width == o.width && s.height == o.height
}

// Image renders the snapshot as an NRGBA image anchored at the origin.
func (s *Snapshot) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	for i, v := range s.colors {
		p := img.Pix[i*4 : i*4+4]
		p[0], p[1], p[2], p[3] = uint8(v>>16), uint8(v>>8), uint8(v), uint8(v>>24)
	}
	return img
}
