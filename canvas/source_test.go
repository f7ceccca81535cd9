package canvas_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/momentics/hioload-canvas/api"
	"github.com/momentics/hioload-canvas/canvas"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestFileSourceFormats(t *testing.T) {
	dir := t.TempDir()
	img := checker(4, 3)
	encoders := map[string]func(*os.File) error{
		"canvas.png": func(f *os.File) error { return png.Encode(f, img) },
		"canvas.bmp": func(f *os.File) error { return bmp.Encode(f, img) },
	}
	for name, encode := range encoders {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := encode(f); err != nil {
			t.Fatal(err)
		}
		f.Close()

		got, err := canvas.FileSource{Path: path}.Snapshot()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !equal(canvas.NewSnapshot(got), canvas.NewSnapshot(img)) {
			t.Errorf("%s: decoded pixels differ", name)
		}
	}
}

func TestFileSourceMissing(t *testing.T) {
	if _, err := (canvas.FileSource{Path: filepath.Join(t.TempDir(), "nope.png")}).Snapshot(); err == nil {
		t.Error("expected an error for a missing canvas file")
	}
}

func TestScaledSource(t *testing.T) {
	src := canvas.ScaledSource{
		Source:   api.SnapshotFunc(func() (image.Image, error) { return checker(400, 200), nil }),
		MaxWidth: 100,
	}
	img, err := src.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("scaled to %v, want 100x50", b)
	}

	small := checker(10, 10)
	if got := canvas.Fit(small, 100, 100); got != image.Image(small) {
		t.Error("image within bounds should be returned unchanged")
	}
	if b := canvas.Fit(checker(50, 400), 0, 100).Bounds(); b.Dx() != 12 || b.Dy() != 100 {
		t.Errorf("height bound: got %v", b)
	}
	if b := canvas.Fit(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 10, 10).Bounds(); !b.Empty() {
		t.Errorf("empty image grew to %v", b)
	}
}
