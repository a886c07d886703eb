package stylenet

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestTransform_ResizesToNetworkInput(t *testing.T) {
	s := &fakeSession{provider: ProviderCPU, w: 16, h: 8}

	out, err := Transform(context.Background(), s, solid(40, 30, color.RGBA{200, 100, 50, 255}))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if b := out.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("output size = %dx%d, want 16x8", b.Dx(), b.Dy())
	}

	// Identity network: colours survive the normalize round trip within 2.
	r, g, b, _ := out.At(3, 3).RGBA()
	got := [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
	want := [3]int{200, 100, 50}
	for i := range got {
		if d := got[i] - want[i]; d < -2 || d > 2 {
			t.Errorf("channel %d = %d, want ~%d", i, got[i], want[i])
		}
	}
}

func TestTransform_ClampsOutOfRangeOutput(t *testing.T) {
	s := &fakeSession{provider: ProviderCPU, w: 4, h: 4, offset: 5}

	out, err := Transform(context.Background(), s, solid(4, 4, color.RGBA{10, 10, 10, 255}))
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := out.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Errorf("red = %d, want clamped 255", r>>8)
	}
}

func TestTransform_Errors(t *testing.T) {
	boom := errors.New("boom")
	s := &fakeSession{provider: ProviderCPU, w: 4, h: 4, err: boom}

	_, err := Transform(context.Background(), s, solid(4, 4, color.RGBA{A: 255}))
	if !errors.Is(err, ErrInferenceFailed) || !errors.Is(err, boom) {
		t.Errorf("error = %v, want ErrInferenceFailed wrapping cause", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Transform(ctx, &fakeSession{w: 4, h: 4}, solid(4, 4, color.RGBA{})); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}
