//go:build !sd || stub

package sdruntime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoadPipeline_AutoFallsBackToCPU(t *testing.T) {
	p, err := LoadPipeline(fakeModel(t), PipelineOptions{Device: DeviceAuto})
	if err != nil {
		t.Fatalf("LoadPipeline() error = %v", err)
	}
	defer p.Close()

	if p.Device() != DeviceCPU || p.Precision() != Float32 {
		t.Errorf("device/precision = %s/%s, want cpu/float32", p.Device(), p.Precision())
	}
	if p.Slots() != 1 {
		t.Errorf("Slots() = %d, want 1 eagerly created", p.Slots())
	}
}

func TestLoadPipeline_Errors(t *testing.T) {
	if _, err := LoadPipeline("/nonexistent/model.safetensors", PipelineOptions{}); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("missing model error = %v, want ErrModelNotFound", err)
	}

	_, err := LoadPipeline(fakeModel(t), PipelineOptions{Device: DeviceCUDA})
	if !errors.Is(err, ErrModelLoadFailed) || !errors.Is(err, ErrCUDANotAvailable) {
		t.Errorf("forced cuda error = %v, want ErrModelLoadFailed wrapping ErrCUDANotAvailable", err)
	}

	_, err = LoadPipeline(fakeModel(t), PipelineOptions{Checksum: "deadbeef"})
	if !errors.Is(err, ErrModelCorrupted) {
		t.Errorf("checksum error = %v, want ErrModelCorrupted", err)
	}
}

func TestPipeline_Img2ImgValidatesFirst(t *testing.T) {
	p, err := LoadPipeline(fakeModel(t), PipelineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	params := validParams()
	params.Strength = 0
	if _, err := p.Img2Img(context.Background(), params); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("error = %v, want ErrInvalidParams", err)
	}

	if _, err := p.Img2Img(context.Background(), validParams()); !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("stub error = %v, want ErrGenerationFailed", err)
	}
}

func TestPipeline_SlotWaitHonorsContext(t *testing.T) {
	p, err := LoadPipeline(fakeModel(t), PipelineOptions{MaxConcurrent: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	held, err := p.pool.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Img2Img(ctx, validParams()); !errors.Is(err, ErrAcquireTimeout) {
		t.Errorf("error = %v, want ErrAcquireTimeout", err)
	}

	p.pool.release(held)
	if _, err := p.Img2Img(context.Background(), validParams()); errors.Is(err, ErrAcquireTimeout) {
		t.Error("slot should be free after release")
	}
}

func TestPipeline_CloseRejectsNewWork(t *testing.T) {
	p, err := LoadPipeline(fakeModel(t), PipelineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := p.Img2Img(context.Background(), validParams()); !errors.Is(err, ErrPipelineClosed) {
		t.Errorf("error = %v, want ErrPipelineClosed", err)
	}
}

func TestContextPool_CreatesUpToMax(t *testing.T) {
	var loads atomic.Int32
	pool, err := newContextPool(2, func() (*SDContext, error) {
		loads.Add(1)
		return &SDContext{valid: true}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer pool.close()

	a, _ := pool.acquire(context.Background())
	b, _ := pool.acquire(context.Background())
	pool.release(a)
	c, _ := pool.acquire(context.Background())
	pool.release(b)
	pool.release(c)

	if loads.Load() != 2 {
		t.Errorf("loads = %d, want 2", loads.Load())
	}
	if pool.size() != 2 {
		t.Errorf("size = %d, want 2", pool.size())
	}

	if _, err := newContextPool(0, nil); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("zero size error = %v, want ErrInvalidParams", err)
	}
}

func TestContextPool_LoadFailureNotCounted(t *testing.T) {
	boom := errors.New("boom")
	pool, _ := newContextPool(1, func() (*SDContext, error) { return nil, boom })

	if _, err := pool.acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if pool.size() != 0 {
		t.Errorf("size = %d after failed load, want 0", pool.size())
	}
}
