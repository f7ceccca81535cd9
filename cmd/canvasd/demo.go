// File: cmd/canvasd/demo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"image"
	"image/color"
	"sync"
)

const (
	demoCols = 32
	demoRows = 8
	demoCell = 12
)

// keySink receives keystrokes echoed into a canvas.
type keySink interface {
	Type(r rune)
}

// keyboardCanvas is the canvas shown when no snapshot file is configured:
// every typed key lights one cell, colored by its code point.
type keyboardCanvas struct {
	mu    sync.Mutex
	typed []rune
}

func newKeyboardCanvas() *keyboardCanvas {
	return &keyboardCanvas{}
}

func (k *keyboardCanvas) Type(r rune) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if r == '\b' && len(k.typed) > 0 {
		k.typed = k.typed[:len(k.typed)-1]
		return
	}
	if len(k.typed) == demoCols*demoRows {
		k.typed = k.typed[:0]
	}
	k.typed = append(k.typed, r)
}

// Snapshot implements api.SnapshotSource.
func (k *keyboardCanvas) Snapshot() (image.Image, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	img := image.NewNRGBA(image.Rect(0, 0, demoCols*demoCell, demoRows*demoCell))
	bg := color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	for i, r := range k.typed {
		c := color.NRGBA{R: uint8(r * 37), G: uint8(r * 91), B: uint8(r * 13), A: 0xff}
		x0, y0 := (i%demoCols)*demoCell, (i/demoCols)*demoCell
		for y := y0 + 1; y < y0+demoCell-1; y++ {
			for x := x0 + 1; x < x0+demoCell-1; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img, nil
}
