package filters

import (
	"fmt"
	"image"
	"math"

	"github.com/KK-2k06/DreamInk/imagecodec"
)

// Sketch parameters.
const (
	SketchKernel = 21
	SketchScale  = 256.0
)

// Sketch produces a pencil-sketch rendering: the grayscale image divided by
// the blurred inverse of itself. Output is a grayscale PNG.
func Sketch(raw []byte) ([]byte, error) {
	img, err := imagecodec.Decode(raw)
	if err != nil {
		return nil, err
	}

	out := PencilSketch(imagecodec.ToRGBA(img), SketchKernel, SketchScale)

	data, err := imagecodec.EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("sketch: %w", err)
	}
	return data, nil
}

// PencilSketch computes gray*scale/invert(blur(invert(gray))) per pixel,
// saturated to [0, 255]. A zero denominator yields 0.
func PencilSketch(src *image.RGBA, ksize int, scale float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	gray := image.NewGray(image.Rect(0, 0, w, h))
	inv := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			g := luma(src.Pix[p], src.Pix[p+1], src.Pix[p+2])
			gray.Pix[y*gray.Stride+x] = g
			inv[y*w+x] = 255 - g
		}
	}

	blurred := gaussianBlur(inv, w, h, ksize, 0)

	for i := range blurred {
		den := 255 - int(blurred[i])
		y, x := i/w, i%w
		off := y*gray.Stride + x
		if den == 0 {
			gray.Pix[off] = 0
			continue
		}
		v := math.RoundToEven(float64(gray.Pix[off]) * scale / float64(den))
		if v > 255 {
			v = 255
		}
		gray.Pix[off] = uint8(v)
	}
	return gray
}
