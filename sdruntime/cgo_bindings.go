// Package sdruntime wraps stable-diffusion.cpp for image-to-image generation.
//
// This file contains the binding facade. The default build links a stub that
// validates model paths but cannot generate; build with the "sd" tag and CGo
// to link the real library:
//
//	CGO_CFLAGS="-I/path/to/stable-diffusion.cpp" \
//	CGO_LDFLAGS="-L/path/to/stable-diffusion.cpp/build -lstable-diffusion" \
//	go build -tags sd
package sdruntime

import "image"

// SDContext is an opaque handle to a loaded stable-diffusion context.
type SDContext struct {
	id     uint64
	device Device
	valid  bool
}

// IsValid returns whether this context is valid and usable.
func (c *SDContext) IsValid() bool {
	return c != nil && c.valid
}

// ContextOptions controls how a context is created.
type ContextOptions struct {
	Device    Device
	Precision Precision
	Threads   int
}

// LoadModel loads weights from modelPath. The returned context must be freed
// with FreeContext.
func LoadModel(modelPath string, opts ContextOptions) (*SDContext, error) {
	return loadModelImpl(modelPath, opts)
}

// Img2Img runs one image-to-image generation on ctx. params must already be
// validated and carry a resolved seed.
func Img2Img(ctx *SDContext, params Img2ImgParams) (*image.RGBA, error) {
	return img2imgImpl(ctx, params)
}

// FreeContext releases ctx. Nil or already-freed contexts are a no-op.
func FreeContext(ctx *SDContext) {
	freeContextImpl(ctx)
}

// CUDAAvailable reports whether the linked library can run on a CUDA device.
func CUDAAvailable() bool {
	return cudaAvailableImpl()
}

// GetBackendInfo describes the linked backend.
func GetBackendInfo() string {
	return getBackendInfoImpl()
}
