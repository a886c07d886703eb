package sdruntime

import (
	"fmt"
	"image"
)

// Img2ImgParams holds the parameters of one image-to-image run.
type Img2ImgParams struct {
	Prompt         string      // Required: text describing the target look
	NegativePrompt string      // Optional: what to avoid
	InitImage      image.Image // Required: source image; dimensions divisible by 8
	Strength       float64     // How much of the source is overwritten, (0, 1]
	Steps          int         // Denoising steps before strength scaling (1-100)
	CFGScale       float64     // Classifier-free guidance scale (1.0-30.0)
	Seed           int64       // -1 for random
}

// Parameter validation constants
const (
	MinImageSize      = 128
	MaxImageSize      = 2048
	ImageSizeMultiple = 8

	MinSteps = 1
	MaxSteps = 100

	MinCFGScale = 1.0
	MaxCFGScale = 30.0

	MaxPromptLength = 1000
)

// ValidateImg2ImgParams validates img2img parameters and returns an error if invalid.
func ValidateImg2ImgParams(p Img2ImgParams) error {
	if err := ValidatePrompt(p.Prompt); err != nil {
		return err
	}

	if p.InitImage == nil {
		return fmt.Errorf("%w: init image is required", ErrInvalidParams)
	}
	b := p.InitImage.Bounds()
	for _, dim := range []struct {
		name string
		v    int
	}{{"width", b.Dx()}, {"height", b.Dy()}} {
		if dim.v < MinImageSize || dim.v > MaxImageSize {
			return fmt.Errorf("%w: %s %d must be between %d and %d",
				ErrInvalidParams, dim.name, dim.v, MinImageSize, MaxImageSize)
		}
		if dim.v%ImageSizeMultiple != 0 {
			return fmt.Errorf("%w: %s %d must be divisible by %d",
				ErrInvalidParams, dim.name, dim.v, ImageSizeMultiple)
		}
	}

	if p.Strength <= 0 || p.Strength > 1 {
		return fmt.Errorf("%w: strength %.2f must be in (0, 1]", ErrInvalidParams, p.Strength)
	}

	if p.Steps < MinSteps || p.Steps > MaxSteps {
		return fmt.Errorf("%w: steps %d must be between %d and %d",
			ErrInvalidParams, p.Steps, MinSteps, MaxSteps)
	}

	if p.CFGScale < MinCFGScale || p.CFGScale > MaxCFGScale {
		return fmt.Errorf("%w: CFGScale %.2f must be between %.1f and %.1f",
			ErrInvalidParams, p.CFGScale, MinCFGScale, MaxCFGScale)
	}

	if len(p.NegativePrompt) > MaxPromptLength {
		return fmt.Errorf("%w: negative prompt length %d exceeds maximum %d",
			ErrInvalidParams, len(p.NegativePrompt), MaxPromptLength)
	}

	return nil
}

// EffectiveSteps is the number of denoising steps actually run: img2img
// skips the first (1-strength) share of the schedule.
func EffectiveSteps(steps int, strength float64) int {
	n := int(float64(steps) * strength)
	if n < 1 {
		n = 1
	}
	return n
}

// Device is the execution device a pipeline runs on.
type Device string

const (
	DeviceAuto Device = "auto"
	DeviceCUDA Device = "cuda"
	DeviceCPU  Device = "cpu"
)

// Precision is the floating point width weights are held in.
type Precision string

const (
	Float16 Precision = "float16"
	Float32 Precision = "float32"
)

// PrecisionFor returns the precision used on d: half precision on CUDA,
// full precision everywhere else.
func PrecisionFor(d Device) Precision {
	if d == DeviceCUDA {
		return Float16
	}
	return Float32
}
