package sdruntime

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// PipelineOptions configures LoadPipeline.
type PipelineOptions struct {
	// Device selects the execution device. DeviceAuto tries CUDA first when the
	// linked library supports it and falls back to the CPU.
	Device Device
	// MaxConcurrent is the number of img2img runs allowed at once on this
	// pipeline. Each slot holds its own context. Default 1.
	MaxConcurrent int
	// Threads is the CPU thread count per context; 0 lets the library decide.
	Threads int
	// Checksum is the expected SHA256 of the weights. Empty skips verification.
	Checksum string
}

// Pipeline is a loaded img2img model bound to one device. It is safe for
// concurrent use; invocations beyond MaxConcurrent wait for a free slot.
type Pipeline struct {
	modelPath string
	device    Device
	precision Precision
	pool      *contextPool
}

// LoadPipeline loads the weights at modelPath and returns a ready pipeline.
// The first context is created eagerly so load errors surface here rather
// than on the first request.
func LoadPipeline(modelPath string, opts PipelineOptions) (*Pipeline, error) {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if err := VerifyModelChecksum(modelPath, opts.Checksum); err != nil {
		return nil, err
	}

	var errs []error
	for _, device := range deviceCandidates(opts.Device) {
		p, err := loadOn(modelPath, device, opts)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrModelCorrupted) {
			return nil, err
		}
		errs = append(errs, fmt.Errorf("%s: %w", device, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrModelLoadFailed, errors.Join(errs...))
}

func deviceCandidates(d Device) []Device {
	switch d {
	case DeviceCUDA:
		return []Device{DeviceCUDA}
	case DeviceCPU:
		return []Device{DeviceCPU}
	default:
		if CUDAAvailable() {
			return []Device{DeviceCUDA, DeviceCPU}
		}
		return []Device{DeviceCPU}
	}
}

func loadOn(modelPath string, device Device, opts PipelineOptions) (*Pipeline, error) {
	copts := ContextOptions{Device: device, Precision: PrecisionFor(device), Threads: opts.Threads}

	pool, err := newContextPool(opts.MaxConcurrent, func() (*SDContext, error) {
		return LoadModel(modelPath, copts)
	})
	if err != nil {
		return nil, err
	}

	first, err := pool.acquire(context.Background())
	if err != nil {
		return nil, err
	}
	pool.release(first)

	return &Pipeline{
		modelPath: modelPath,
		device:    device,
		precision: copts.Precision,
		pool:      pool,
	}, nil
}

// Img2Img runs one generation. A negative Seed is replaced with a random one,
// so identical calls may produce different images. ctx bounds only the wait
// for a free slot; a started run completes.
func (p *Pipeline) Img2Img(ctx context.Context, params Img2ImgParams) (image.Image, error) {
	if err := ValidateImg2ImgParams(params); err != nil {
		return nil, err
	}
	params.Prompt = SanitizePrompt(params.Prompt)
	if params.Seed < 0 {
		params.Seed = RandomSeed()
	}

	sdCtx, err := p.pool.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire slot: %w", err)
	}
	defer p.pool.release(sdCtx)

	out, err := Img2Img(sdCtx, params)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty output", ErrGenerationFailed)
	}
	return out, nil
}

// Device returns the device the pipeline runs on.
func (p *Pipeline) Device() Device { return p.device }

// Precision returns the weight precision in use.
func (p *Pipeline) Precision() Precision { return p.precision }

// ModelPath returns the weights path.
func (p *Pipeline) ModelPath() string { return p.modelPath }

// Slots returns the number of contexts created so far.
func (p *Pipeline) Slots() int { return p.pool.size() }

// Close frees the pipeline's contexts. Safe to call more than once.
func (p *Pipeline) Close() error {
	p.pool.close()
	return nil
}
