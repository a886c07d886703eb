package filters

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/KK-2k06/DreamInk/imagecodec"
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{240, 240, 240, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{20, 60, 120, 255})
			}
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSketch_UniformGrayIsNearUniform(t *testing.T) {
	for _, g := range []uint8{1, 64, 128, 200, 255} {
		out := PencilSketch(uniform(32, 24, color.RGBA{g, g, g, 255}), SketchKernel, SketchScale)

		lo, hi := uint8(255), uint8(0)
		for _, v := range out.Pix {
			lo, hi = min(lo, v), max(hi, v)
		}
		if hi-lo > 1 {
			t.Errorf("gray %d: output spans [%d,%d], want near-uniform", g, lo, hi)
		}
	}
}

func TestSketch_BlackIsZero(t *testing.T) {
	out := PencilSketch(uniform(8, 8, color.RGBA{0, 0, 0, 255}), SketchKernel, SketchScale)
	for i, v := range out.Pix {
		if v != 0 {
			t.Fatalf("pixel %d = %d, want 0 for zero denominator", i, v)
		}
	}
}

func TestSketch_EncodesGrayscalePNG(t *testing.T) {
	data, err := Sketch(pngBytes(t, checker(40, 30)))
	if err != nil {
		t.Fatalf("Sketch() error = %v", err)
	}
	if !imagecodec.IsPNG(data) {
		t.Fatal("Sketch() did not return PNG")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("decoded type = %T, want *image.Gray", img)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("bounds = %v, want source resolution", img.Bounds())
	}
}

func TestSketch_Deterministic(t *testing.T) {
	in := pngBytes(t, checker(16, 16))
	a, err := Sketch(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sketch(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Sketch() output differs between runs")
	}
}

func TestOil_UniformStaysUniform(t *testing.T) {
	c := color.RGBA{90, 140, 200, 255}
	out := OilPainting(uniform(10, 10, c), OilSize, OilDynRatio)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := out.RGBAAt(x, y); got != c {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, c)
			}
		}
	}
}

func TestOil_MajorityWins(t *testing.T) {
	// A single bright pixel in a dark 3x3 neighbourhood is painted over.
	img := uniform(5, 5, color.RGBA{10, 10, 10, 255})
	img.SetRGBA(2, 2, color.RGBA{250, 250, 250, 255})

	out := OilPainting(img, OilSize, OilDynRatio)

	if got := out.RGBAAt(2, 2); got != (color.RGBA{10, 10, 10, 255}) {
		t.Errorf("center = %v, want dark", got)
	}
}

func TestOil_WindowRadius(t *testing.T) {
	// 3x3 dark core inside a bright ring: the core wins a 3x3 window at the
	// centre but the ring wins the 5x5 window (16 against 9).
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	img := uniform(5, 5, white)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			img.SetRGBA(x, y, black)
		}
	}

	tests := []struct {
		size int
		want color.RGBA
	}{
		{size: 1, want: black},
		{size: OilSize, want: white},
	}
	for _, tt := range tests {
		out := OilPainting(img, tt.size, OilDynRatio)
		if got := out.RGBAAt(2, 2); got != tt.want {
			t.Errorf("size %d: center = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestOil_EncodesPNGAtSourceResolution(t *testing.T) {
	data, err := Oil(pngBytes(t, checker(24, 18)))
	if err != nil {
		t.Fatalf("Oil() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 18 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestFilters_RejectBadInput(t *testing.T) {
	for name, fn := range map[string]func([]byte) ([]byte, error){"oil": Oil, "sketch": Sketch} {
		if _, err := fn(nil); !errors.Is(err, imagecodec.ErrEmptyImage) {
			t.Errorf("%s(nil) error = %v, want ErrEmptyImage", name, err)
		}
		if _, err := fn([]byte("not an image")); !errors.Is(err, imagecodec.ErrInvalidImage) {
			t.Errorf("%s(garbage) error = %v, want ErrInvalidImage", name, err)
		}
	}
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(21, 0)

	var sum float64
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("kernel sum = %f, want 1", sum)
	}
	for i := 0; i < len(k)/2; i++ {
		if math.Abs(k[i]-k[len(k)-1-i]) > 1e-12 {
			t.Fatalf("kernel not symmetric at %d", i)
		}
	}
	if k[10] <= k[9] {
		t.Error("kernel peak is not at the center")
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 3},
		{6, 5, 2},
		{-12, 5, 4},
		{3, 1, 0},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
