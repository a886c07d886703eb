//go:build !sd || stub

package sdruntime

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func fakeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classic_anim_diffusion.safetensors")
	if err := os.WriteFile(path, []byte("fake model data"), 0644); err != nil {
		t.Fatalf("failed to create fake model file: %v", err)
	}
	return path
}

func TestStubLoadModel(t *testing.T) {
	if _, err := LoadModel("/nonexistent/model.safetensors", ContextOptions{Device: DeviceCPU}); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("missing model error = %v, want ErrModelNotFound", err)
	}

	path := fakeModel(t)
	if _, err := LoadModel(path, ContextOptions{Device: DeviceCUDA}); !errors.Is(err, ErrCUDANotAvailable) {
		t.Errorf("cuda error = %v, want ErrCUDANotAvailable", err)
	}

	ctx, err := LoadModel(path, ContextOptions{Device: DeviceCPU})
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if !ctx.IsValid() || ctx.device != DeviceCPU {
		t.Errorf("context = %+v", ctx)
	}

	FreeContext(ctx)
	if ctx.IsValid() {
		t.Error("context still valid after FreeContext")
	}
	FreeContext(ctx)
	FreeContext(nil)
}

func TestStubImg2ImgFails(t *testing.T) {
	ctx, err := LoadModel(fakeModel(t), ContextOptions{Device: DeviceCPU})
	if err != nil {
		t.Fatal(err)
	}
	defer FreeContext(ctx)

	_, err = Img2Img(ctx, Img2ImgParams{InitImage: image.NewRGBA(image.Rect(0, 0, 8, 8))})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("Img2Img() error = %v, want ErrGenerationFailed", err)
	}
	if CUDAAvailable() {
		t.Error("stub build should not report CUDA")
	}
	if GetBackendInfo() != StubBackendInfo {
		t.Errorf("GetBackendInfo() = %q", GetBackendInfo())
	}
}
