package filters

import "math"

// gaussianKernel returns a normalized 1-D kernel of odd size ksize. A
// non-positive sigma is derived from the kernel size.
func gaussianKernel(ksize int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(ksize-1)*0.5-1) + 0.8
	}
	k := make([]float64, ksize)
	c := float64(ksize-1) / 2
	var sum float64
	for i := range k {
		d := float64(i) - c
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// reflect101 maps an out-of-range index into [0, n) by mirroring without
// repeating the edge sample (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}

// gaussianBlur applies a separable Gaussian blur to a w*h single-channel
// plane and rounds back to 8 bits.
func gaussianBlur(src []uint8, w, h, ksize int, sigma float64) []uint8 {
	k := gaussianKernel(ksize, sigma)
	r := ksize / 2

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * float64(row[reflect101(x+i-r, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * tmp[reflect101(y+i-r, h)*w+x]
			}
			v := math.Round(acc)
			switch {
			case v < 0:
				v = 0
			case v > 255:
				v = 255
			}
			out[y*w+x] = uint8(v)
		}
	}
	return out
}
