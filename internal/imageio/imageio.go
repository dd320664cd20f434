// Package imageio loads images from disk for detection and annotation.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when a file is not a decodable image.
var ErrDecode = errors.New("failed to decode image")

// Image is a decoded picture plus the JPEG bytes handed to the face engine.
type Image struct {
	Path   string
	Format string
	RGBA   *image.RGBA
	JPEG   []byte
}

// Load reads and decodes path. JPEG files are passed to the engine unchanged;
// every other format is re-encoded as JPEG so detection sees the same pixels.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Decode builds an Image from raw file bytes. path is only used in errors.
func Decode(path string, data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}

	img := &Image{Path: path, Format: format, RGBA: ToRGBA(src)}
	if format == "jpeg" {
		img.JPEG = data
		return img, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img.RGBA, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	img.JPEG = buf.Bytes()
	return img, nil
}

// ToRGBA copies src into a new RGBA image anchored at (0, 0).
func ToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}
