package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLoadJPEGPassesBytesThrough(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(40, 30, color.White), nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "face.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Format != "jpeg" {
		t.Errorf("Format = %q, want jpeg", img.Format)
	}
	if !bytes.Equal(img.JPEG, buf.Bytes()) {
		t.Error("JPEG input should be handed to the engine unchanged")
	}
	if b := img.RGBA.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("bounds = %v, want 40x30", b)
	}
}

func TestLoadPNGReencodes(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(16, 16, color.RGBA{255, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "face.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Format != "png" {
		t.Errorf("Format = %q, want png", img.Format)
	}
	if _, format, err := image.Decode(bytes.NewReader(img.JPEG)); err != nil || format != "jpeg" {
		t.Errorf("engine bytes should be JPEG, got format %q err %v", format, err)
	}
	if got := img.RGBA.RGBAAt(3, 3); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, want red", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.jpg")); !os.IsNotExist(err) {
		t.Errorf("Load() on missing file = %v, want not-exist", err)
	}

	bad := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bad, []byte("definitely not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrDecode) {
		t.Errorf("Load() on text file = %v, want ErrDecode", err)
	}
}

func TestToRGBAAnchorsAtOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 20, 20))
	src.Set(10, 10, color.RGBA{0, 0, 255, 255})

	dst := ToRGBA(src)
	if dst.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("pixel at origin = %v, want blue", got)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(path, createTestImage(5, 5, color.Black)); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of saved png error = %v", err)
	}
	if img.Format != "png" {
		t.Errorf("Format = %q, want png", img.Format)
	}
}
