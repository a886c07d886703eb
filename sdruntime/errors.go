package sdruntime

import "errors"

// Sentinel errors for SD runtime operations.
var (
	// Model-related errors
	ErrModelNotFound   = errors.New("sdruntime: model file not found")
	ErrModelLoadFailed = errors.New("sdruntime: failed to load model")
	ErrModelCorrupted  = errors.New("sdruntime: model file is corrupted or invalid")

	// Generation errors
	ErrGenerationFailed = errors.New("sdruntime: image generation failed")

	// Input validation errors
	ErrInvalidPrompt = errors.New("sdruntime: invalid prompt")
	ErrInvalidParams = errors.New("sdruntime: invalid img2img parameters")

	// Hardware/resource errors
	ErrCUDANotAvailable = errors.New("sdruntime: CUDA not available")
	ErrOutOfVRAM        = errors.New("sdruntime: out of VRAM")

	// Pipeline errors
	ErrPipelineClosed = errors.New("sdruntime: pipeline is closed")
	ErrAcquireTimeout = errors.New("sdruntime: timeout waiting for an invocation slot")
)
