package router

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/KK-2k06/DreamInk/core"
	"github.com/KK-2k06/DreamInk/imagecodec"
	"github.com/KK-2k06/DreamInk/modelcache"
	"github.com/KK-2k06/DreamInk/sdruntime"
	"github.com/KK-2k06/DreamInk/stylenet"
	"github.com/KK-2k06/DreamInk/styles"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGenerator struct {
	mu   sync.Mutex
	last sdruntime.Img2ImgParams
}

func (g *fakeGenerator) Img2Img(_ context.Context, p sdruntime.Img2ImgParams) (image.Image, error) {
	g.mu.Lock()
	g.last = p
	g.mu.Unlock()
	return p.InitImage, nil
}

func (g *fakeGenerator) Close() error { return nil }

type fakeNetwork struct{}

func (fakeNetwork) InputName() string           { return "in" }
func (fakeNetwork) OutputName() string          { return "out" }
func (fakeNetwork) Provider() stylenet.Provider { return stylenet.ProviderCPU }
func (fakeNetwork) InputSize() (int, int)       { return 32, 32 }
func (fakeNetwork) Run(in []float32, _, _ int) ([]float32, error) {
	return in, nil
}
func (fakeNetwork) Close() error { return nil }

type countingCache struct {
	mu    sync.Mutex
	calls map[styles.Style]int
	gen   *fakeGenerator
	err   error
}

func newCountingCache() *countingCache {
	return &countingCache{calls: map[styles.Style]int{}, gen: &fakeGenerator{}}
}

func (c *countingCache) Acquire(st styles.Style) (modelcache.Handle, error) {
	c.mu.Lock()
	c.calls[st]++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if st.Family() == styles.FamilyNetwork {
		return fakeNetwork{}, nil
	}
	return c.gen, nil
}

func (c *countingCache) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDispatch_AllStylesProducePNG(t *testing.T) {
	cache := newCountingCache()
	r := New(cache, nil, nil)
	raw := testPNG(t, 40, 30)

	for _, st := range styles.All() {
		t.Run(string(st), func(t *testing.T) {
			out, err := r.Dispatch(context.Background(), string(st), raw)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(out) == 0 || !imagecodec.IsPNG(out) {
				t.Fatal("output is not PNG")
			}
			img, err := png.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatal(err)
			}

			b := img.Bounds()
			switch st.Family() {
			case styles.FamilyGenerative:
				if b.Dx() != imagecodec.SquareSize || b.Dy() != imagecodec.SquareSize {
					t.Errorf("size = %v, want 512x512", b.Size())
				}
			case styles.FamilyNetwork:
				if b.Dx() != 32 || b.Dy() != 32 {
					t.Errorf("size = %v, want network input 32x32", b.Size())
				}
			case styles.FamilyClassical:
				if b.Dx() != 40 || b.Dy() != 30 {
					t.Errorf("size = %v, want source 40x30", b.Size())
				}
			}
		})
	}

	if cache.calls[styles.Oil] != 0 || cache.calls[styles.Sketch] != 0 {
		t.Error("classical styles should not touch the cache")
	}
}

func TestDispatch_GenerativeUsesPreset(t *testing.T) {
	cache := newCountingCache()
	zcore, logs := observer.New(zap.DebugLevel)
	r := New(cache, nil, zap.New(zcore))

	if _, err := r.Dispatch(context.Background(), "Comic", testPNG(t, 16, 16)); err != nil {
		t.Fatal(err)
	}

	want, _ := styles.DefaultCatalog().Preset(styles.Comic)
	got := cache.gen.last
	if got.Prompt != want.Prompt || got.Strength != want.Strength ||
		got.Steps != want.Steps || got.CFGScale != want.GuidanceScale {
		t.Errorf("params = %+v, want preset %+v", got, want)
	}
	if got.Seed != -1 {
		t.Errorf("seed = %d, want random (-1)", got.Seed)
	}

	runs := logs.FilterMessage("running img2img").All()
	if len(runs) != 1 {
		t.Fatalf("got %d img2img log entries, want 1", len(runs))
	}
	wantSteps := int64(sdruntime.EffectiveSteps(want.Steps, want.Strength))
	if eff := runs[0].ContextMap()["effective_steps"]; eff != wantSteps {
		t.Errorf("effective_steps = %v, want %d", eff, wantSteps)
	}
}

func TestDispatch_InputErrors(t *testing.T) {
	cache := newCountingCache()
	r := New(cache, nil, nil)

	tests := []struct {
		name  string
		style string
		image []byte
		want  error
	}{
		{"unknown style", "watercolor", testPNG(t, 8, 8), ErrUnknownStyle},
		{"empty style", "", testPNG(t, 8, 8), ErrUnknownStyle},
		{"empty image", "ghibli", nil, imagecodec.ErrEmptyImage},
		{"garbage generative", "pixar", []byte("not an image"), imagecodec.ErrInvalidImage},
		{"garbage network", "ghibli", []byte("not an image"), imagecodec.ErrInvalidImage},
		{"garbage classical", "oil", []byte("not an image"), imagecodec.ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), tt.style, tt.image)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !IsInputError(err) {
				t.Errorf("IsInputError(%v) = false", err)
			}
		})
	}

	if n := cache.total(); n != 0 {
		t.Errorf("cache acquired %d times, want 0", n)
	}
}

func TestDispatch_BackendError(t *testing.T) {
	cache := newCountingCache()
	cache.err = sdruntime.ErrModelNotFound
	r := New(cache, nil, nil)

	_, err := r.Dispatch(context.Background(), "cartoon", testPNG(t, 8, 8))
	if !errors.Is(err, sdruntime.ErrModelNotFound) {
		t.Fatalf("error = %v, want ErrModelNotFound", err)
	}
	if IsInputError(err) {
		t.Error("backend error classified as input error")
	}
}

type wrongHandle struct{}

func (wrongHandle) Close() error { return nil }

type wrongCache struct{}

func (wrongCache) Acquire(styles.Style) (modelcache.Handle, error) { return wrongHandle{}, nil }

func TestDispatch_HandleMismatch(t *testing.T) {
	r := New(wrongCache{}, nil, nil)
	for _, st := range []string{"pixar", "ghibli"} {
		if _, err := r.Dispatch(context.Background(), st, testPNG(t, 8, 8)); !errors.Is(err, ErrHandleMismatch) {
			t.Errorf("%s error = %v, want ErrHandleMismatch", st, err)
		}
	}
}

func TestPreload(t *testing.T) {
	cache := newCountingCache()
	r := New(cache, nil, nil)

	r.Preload(context.Background(), styles.Pixar, styles.Oil, styles.Ghibli)

	if cache.calls[styles.Pixar] != 1 || cache.calls[styles.Ghibli] != 1 {
		t.Errorf("calls = %v, want pixar and ghibli once", cache.calls)
	}
	if cache.calls[styles.Oil] != 0 {
		t.Error("classical style should not be preloaded")
	}

	failing := newCountingCache()
	failing.err = errors.New("no weights")
	New(failing, nil, nil).Preload(context.Background(), styles.Comic)
	if failing.calls[styles.Comic] != 1 {
		t.Error("failed preload should still have been attempted once")
	}
}

func TestNewLoader(t *testing.T) {
	cfg := &core.Config{ModelDir: t.TempDir(), SDDevice: "cpu", SDMaxConcurrent: 1}
	load := NewLoader(cfg, nil)

	if _, err := load(styles.Sketch); !errors.Is(err, ErrNoModel) {
		t.Errorf("sketch error = %v, want ErrNoModel", err)
	}
	if _, err := load(styles.Pixar); !errors.Is(err, sdruntime.ErrModelNotFound) {
		t.Errorf("missing pixar weights error = %v, want ErrModelNotFound", err)
	}
	if _, err := load(styles.Ghibli); err == nil {
		t.Error("missing ghibli model should fail")
	}
}

func TestNewLoader_Checksum(t *testing.T) {
	dir := t.TempDir()
	weights := filepath.Join(dir, "pixar.safetensors")
	if err := os.WriteFile(weights, []byte("diffusion weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	good, err := sdruntime.CalculateChecksum(weights)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		sum     string
		wantErr error
	}{
		{"no checksum", "", nil},
		{"matching checksum", good, nil},
		{"mismatched checksum", strings.Repeat("0", 64), sdruntime.ErrModelCorrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &core.Config{
				ModelDir:         dir,
				PixarModelPath:   weights,
				PixarModelSHA256: tt.sum,
				SDDevice:         "cpu",
				SDMaxConcurrent:  1,
			}
			zcore, logs := observer.New(zap.InfoLevel)
			h, err := NewLoader(cfg, zap.New(zcore))(styles.Pixar)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("load error = %v, want %v", err, tt.wantErr)
				}
				failed := logs.FilterMessage("diffusion pipeline failed to load").All()
				if len(failed) != 1 || failed[0].ContextMap()["corrupted"] != true {
					t.Errorf("failure log = %v, want one entry with corrupted=true", failed)
				}
				return
			}
			if err != nil {
				t.Fatalf("load error = %v", err)
			}
			defer h.Close()

			loading := logs.FilterMessage("loading diffusion pipeline").All()
			if len(loading) != 1 {
				t.Fatalf("got %d loading entries, want 1", len(loading))
			}
			fields := loading[0].ContextMap()
			if fields["backend"] != sdruntime.GetBackendInfo() {
				t.Errorf("backend = %v, want %q", fields["backend"], sdruntime.GetBackendInfo())
			}
			if fields["verify_checksum"] != (tt.sum != "") {
				t.Errorf("verify_checksum = %v, want %v", fields["verify_checksum"], tt.sum != "")
			}
			if logs.FilterMessage("diffusion pipeline ready").Len() != 1 {
				t.Error("missing ready log entry")
			}
		})
	}
}
