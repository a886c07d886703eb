//go:build !sd || stub

// Stub bindings used when stable-diffusion.cpp is not linked.

package sdruntime

import (
	"fmt"
	"image"
	"os"
	"sync/atomic"
)

// StubBackendInfo is reported by GetBackendInfo in stub builds.
const StubBackendInfo = "stub (no stable-diffusion.cpp library linked)"

var stubContextCounter uint64

// loadModelImpl checks the model path exists but loads nothing.
func loadModelImpl(modelPath string, opts ContextOptions) (*SDContext, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrModelLoadFailed, modelPath, err)
	}
	if opts.Device == DeviceCUDA {
		return nil, fmt.Errorf("%w: stub build", ErrCUDANotAvailable)
	}

	return &SDContext{
		id:     atomic.AddUint64(&stubContextCounter, 1),
		device: opts.Device,
		valid:  true,
	}, nil
}

func img2imgImpl(ctx *SDContext, _ Img2ImgParams) (*image.RGBA, error) {
	if !ctx.IsValid() {
		return nil, fmt.Errorf("%w: context is nil or invalid", ErrGenerationFailed)
	}
	return nil, fmt.Errorf("%w: stable-diffusion.cpp library not available (stub mode). "+
		"Build with CGO and the 'sd' tag to enable diffusion styles", ErrGenerationFailed)
}

func freeContextImpl(ctx *SDContext) {
	if ctx == nil {
		return
	}
	ctx.valid = false
}

func cudaAvailableImpl() bool { return false }

func getBackendInfoImpl() string { return StubBackendInfo }
