package filters

import (
	"fmt"
	"image"

	"github.com/KK-2k06/DreamInk/imagecodec"
)

// Oil painting parameters.
const (
	OilSize     = 2 // window radius; the neighbourhood is (2*Size+1) pixels square
	OilDynRatio = 1 // luminance quantization divisor
)

// Oil applies an oil-painting effect: each output pixel takes the mean colour
// of the most common quantized luminance level in its neighbourhood.
func Oil(raw []byte) ([]byte, error) {
	img, err := imagecodec.Decode(raw)
	if err != nil {
		return nil, err
	}

	out := OilPainting(imagecodec.ToRGBA(img), OilSize, OilDynRatio)

	data, err := imagecodec.EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("oil: %w", err)
	}
	return data, nil
}

// OilPainting runs the oil-painting filter on src. size is the window radius
// (at least 1, so the window is 2*size+1 square) and dynRatio divides luminance into
// 256/dynRatio levels. Windows are clipped at the image border.
func OilPainting(src *image.RGBA, size, dynRatio int) *image.RGBA {
	if dynRatio < 1 {
		dynRatio = 1
	}
	half := size
	if half < 1 {
		half = 1
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	lum := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			lum[y*w+x] = luma(src.Pix[p], src.Pix[p+1], src.Pix[p+2]) / uint8(dynRatio)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	var (
		count   [256]int
		sum     [256][3]int
		touched = make([]uint8, 0, (2*half+1)*(2*half+1))
	)

	for y := 0; y < h; y++ {
		top, bottom := max(0, y-half), min(h-1, y+half)
		for x := 0; x < w; x++ {
			left, right := max(0, x-half), min(w-1, x+half)

			touched = touched[:0]
			for yy := top; yy <= bottom; yy++ {
				for xx := left; xx <= right; xx++ {
					l := lum[yy*w+xx]
					if count[l] == 0 {
						touched = append(touched, l)
					}
					count[l]++
					p := src.PixOffset(b.Min.X+xx, b.Min.Y+yy)
					sum[l][0] += int(src.Pix[p])
					sum[l][1] += int(src.Pix[p+1])
					sum[l][2] += int(src.Pix[p+2])
				}
			}

			// Ties go to the lowest level.
			best := touched[0]
			for _, l := range touched[1:] {
				if count[l] > count[best] || (count[l] == count[best] && l < best) {
					best = l
				}
			}

			n := count[best]
			q := dst.PixOffset(x, y)
			dst.Pix[q] = uint8(sum[best][0] / n)
			dst.Pix[q+1] = uint8(sum[best][1] / n)
			dst.Pix[q+2] = uint8(sum[best][2] / n)
			dst.Pix[q+3] = 0xff

			for _, l := range touched {
				count[l] = 0
				sum[l] = [3]int{}
			}
		}
	}
	return dst
}

// luma is the Rec. 601 luminance rounded to the nearest integer.
func luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000)
}
