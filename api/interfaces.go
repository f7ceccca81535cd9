// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package api

import (
	"image"
	"io"
)

// SnapshotSource produces the current canvas contents on demand.
type SnapshotSource interface {
	Snapshot() (image.Image, error)
}

// SnapshotFunc adapts a plain function to SnapshotSource.
type SnapshotFunc func() (image.Image, error)

// Snapshot calls f.
func (f SnapshotFunc) Snapshot() (image.Image, error) {
	return f()
}

// ImageEncoder serializes a delta image into the binary frame payload.
type ImageEncoder interface {
	Encode(w io.Writer, img image.Image) error
}
