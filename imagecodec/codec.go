// Package imagecodec converts between uploaded image bytes, in-memory pixel
// buffers, PNG output and the base64 text carried in API responses and
// history rows. It also provides the tensor packing used by the style network.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Codec errors
var (
	ErrEmptyImage        = errors.New("imagecodec: empty image data")
	ErrInvalidImage      = errors.New("imagecodec: invalid image data")
	ErrInvalidDimensions = errors.New("imagecodec: invalid dimensions")
	ErrInvalidBase64     = errors.New("imagecodec: invalid base64 data")
)

// SquareSize is the canvas the model-backed styles work on.
const SquareSize = 512

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Decode decodes PNG, JPEG, GIF, BMP or WebP data.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Dx(), b.Dy())
	}
	return img, nil
}

// ResizeExact scales img to exactly size x size without preserving aspect
// ratio, and returns an opaque RGB buffer anchored at the origin.
func ResizeExact(img image.Image, size int) *image.RGBA {
	return Resize(img, size, size)
}

// Resize scales img to width x height without preserving aspect ratio.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	opaque(dst)
	return dst
}

// ToRGBA converts any image to an opaque RGBA buffer anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && isOpaque(rgba) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	opaque(dst)
	return dst
}

// PrepareSquare decodes data into an RGB buffer at SquareSize x SquareSize,
// the input representation of the generative and network backends.
func PrepareSquare(data []byte) (*image.RGBA, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ResizeExact(img, SquareSize), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngMagic)
}

// EncodeBase64 returns the standard base64 encoding of data.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return data, nil
}

func opaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

func isOpaque(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}
