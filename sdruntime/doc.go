// Package sdruntime runs Stable Diffusion image-to-image generation through a
// CGo wrapper around stable-diffusion.cpp. It backs the pixar, cartoon and
// comic styles.
//
//   - Atoms: pure functions (ValidateImg2ImgParams, ValidatePrompt, RandomSeed, PrecisionFor)
//   - Molecules: the context pool and the CGo binding facade
//   - Organism: Pipeline, the handle the model cache stores per style
//
// # Public API
//
//	p, err := sdruntime.LoadPipeline("/models/dreamshaper_8.safetensors", sdruntime.PipelineOptions{
//	    Device:        sdruntime.DeviceAuto,
//	    MaxConcurrent: 1,
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	out, err := p.Img2Img(ctx, sdruntime.Img2ImgParams{
//	    Prompt:    "Comic-style, vibrant colors",
//	    InitImage: src, // 512x512 RGB
//	    Strength:  0.45,
//	    Steps:     28,
//	    CFGScale:  8.5,
//	    Seed:      -1,
//	})
//
// # Devices
//
// DeviceAuto tries CUDA (half precision) when the linked library supports it
// and falls back to the CPU (full precision). The chosen device is reported
// by Pipeline.Device.
//
// # Concurrency
//
// A Pipeline is safe for concurrent use. MaxConcurrent bounds simultaneous
// runs; each slot owns one library context. With the default of 1, calls on
// the same pipeline are serialized and callers wait in Img2Img until their ctx
// ends (ErrAcquireTimeout). A run that has started is not interrupted.
//
// # Build Tags
//
//   - Stub mode (default): go build
//     Model paths are checked and pipelines load, but Img2Img returns
//     ErrGenerationFailed.
//
//   - Real mode: CGO_ENABLED=1 go build -tags sd (add cuda for a CUDA build)
//     Requires stable-diffusion.cpp built as a shared library.
//
// # Errors
//
// Use errors.Is with the sentinels in errors.go:
//
//	if errors.Is(err, sdruntime.ErrOutOfVRAM) {
//	    // lower SD_MAX_CONCURRENT
//	}
package sdruntime
