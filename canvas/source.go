// Package canvas
// Author: momentics <momentics@gmail.com>
//
// Snapshot providers: an image file re-read on every capture, and a wrapper
// that bounds snapshot dimensions before they reach the diff transport.

package canvas

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder

	"github.com/momentics/hioload-canvas/api"
)

// FileSource reads the canvas from an image file each time a snapshot is taken.
type FileSource struct {
	Path string
}

// Snapshot implements api.SnapshotSource.
func (s FileSource) Snapshot() (image.Image, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode canvas %s: %w", s.Path, err)
	}
	return img, nil
}

// ScaledSource downscales snapshots larger than MaxWidth x MaxHeight,
// preserving aspect ratio. Zero disables the bound on that axis.
type ScaledSource struct {
	Source    api.SnapshotSource
	MaxWidth  int
	MaxHeight int
}

// Snapshot implements api.SnapshotSource.
func (s ScaledSource) Snapshot() (image.Image, error) {
	img, err := s.Source.Snapshot()
	if err != nil {
		return nil, err
	}
	return Fit(img, s.MaxWidth, s.MaxHeight), nil
}

// Fit returns img unchanged when it already fits or is empty, else a
// scaled copy.
func Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if b.Empty() {
		return img
	}
	w, h := targetDimensions(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func targetDimensions(w, h, maxWidth, maxHeight int) (int, int) {
	if maxWidth > 0 && w > maxWidth {
		h = int(float64(h) * float64(maxWidth) / float64(w))
		w = maxWidth
	}
	if maxHeight > 0 && h > maxHeight {
		w = int(float64(w) * float64(maxHeight) / float64(h))
		h = maxHeight
	}
	return max(w, 1), max(h, 1)
}
