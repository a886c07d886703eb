package imagecodec

import (
	"fmt"
	"image"
)

// NormalizeCentered packs the RGB channels of img into an NHWC float32 slice
// scaled to [-1, 1] (x/127.5 - 1). Alpha is discarded.
// Output layout: height*width*3 values, row-major, R,G,B interleaved.
func NormalizeCentered(img *image.RGBA) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float32, 0, w*h*3)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			out = append(out,
				float32(row[x])/127.5-1,
				float32(row[x+1])/127.5-1,
				float32(row[x+2])/127.5-1,
			)
		}
	}
	return out
}

// DenormalizeCentered is the inverse of NormalizeCentered: (x+1)*127.5,
// clamped to [0, 255]. data must hold exactly width*height*3 values.
func DenormalizeCentered(data []float32, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(data) != width*height*3 {
		return nil, fmt.Errorf("%w: have %d values, want %d", ErrInvalidDimensions, len(data), width*height*3)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, p := 0, 0; i < len(data); i, p = i+3, p+4 {
		img.Pix[p] = clampByte((data[i] + 1) * 127.5)
		img.Pix[p+1] = clampByte((data[i+1] + 1) * 127.5)
		img.Pix[p+2] = clampByte((data[i+2] + 1) * 127.5)
		img.Pix[p+3] = 0xff
	}
	return img, nil
}

func clampByte(v float32) uint8 {
	switch {
	case v != v: // NaN
		return 0
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
