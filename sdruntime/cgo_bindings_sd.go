//go:build sd && cgo && !stub

// stable-diffusion.cpp bindings.
// Build with: CGO_ENABLED=1 go build -tags sd (add -tags "sd cuda" for a CUDA build
// of the library).
//
//   CGO_CFLAGS="-I${SD_CPP_PATH}" \
//   CGO_LDFLAGS="-L${SD_CPP_PATH}/build -lstable-diffusion -Wl,-rpath,${SD_CPP_PATH}/build" \
//   go build -tags sd

package sdruntime

/*
#cgo CFLAGS: -I${SRCDIR}/../vendor/stable-diffusion.cpp
#cgo LDFLAGS: -L${SRCDIR}/../vendor/stable-diffusion.cpp/build -lstable-diffusion

#include <stdlib.h>
#include <stdint.h>
#include <stable-diffusion.h>
*/
import "C"

import (
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// cudaBuild is set by cuda_sd.go when the library was compiled with CUDA.
var cudaBuild bool

var (
	sdContextCounter uint64
	contexts         sync.Map // uint64 -> *C.sd_ctx_t
)

func loadModelImpl(modelPath string, opts ContextOptions) (*SDContext, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrModelLoadFailed, modelPath, err)
	}
	if opts.Device == DeviceCUDA && !cudaBuild {
		return nil, fmt.Errorf("%w: library built without CUDA", ErrCUDANotAvailable)
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = int(C.get_num_physical_cores())
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
	}

	var wtype C.enum_sd_type_t = C.SD_TYPE_F32
	if opts.Precision == Float16 {
		wtype = C.SD_TYPE_F16
	}
	onCPU := C.bool(opts.Device != DeviceCUDA)

	cModelPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cModelPath))
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))

	cCtx := C.new_sd_ctx(
		cModelPath,
		empty, empty, empty, // clip_l, t5xxl, diffusion model
		empty, empty, // vae, taesd
		empty, empty, empty, empty, // control net, lora dir, embeddings, stacked id
		C.bool(false), // vae_decode_only: img2img needs the encoder
		C.bool(false), // vae_tiling
		C.bool(false), // free_params_immediately: the context is reused
		C.int(threads),
		wtype,
		C.STD_DEFAULT_RNG,
		C.DEFAULT,
		onCPU, onCPU, onCPU,
	)
	if cCtx == nil {
		return nil, fmt.Errorf("%w: new_sd_ctx returned null for %s", ErrModelLoadFailed, modelPath)
	}

	id := atomic.AddUint64(&sdContextCounter, 1)
	contexts.Store(id, cCtx)

	return &SDContext{id: id, device: opts.Device, valid: true}, nil
}

func img2imgImpl(ctx *SDContext, params Img2ImgParams) (*image.RGBA, error) {
	if !ctx.IsValid() {
		return nil, fmt.Errorf("%w: context is nil or invalid", ErrGenerationFailed)
	}
	v, ok := contexts.Load(ctx.id)
	if !ok {
		return nil, fmt.Errorf("%w: no C context for handle %d", ErrGenerationFailed, ctx.id)
	}
	cCtx := v.(*C.sd_ctx_t)

	b := params.InitImage.Bounds()
	w, h := b.Dx(), b.Dy()

	rgb := C.malloc(C.size_t(w * h * 3))
	defer C.free(rgb)
	buf := unsafe.Slice((*byte)(rgb), w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := params.InitImage.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*w + x) * 3
			buf[i], buf[i+1], buf[i+2] = byte(r>>8), byte(g>>8), byte(bl>>8)
		}
	}
	init := C.sd_image_t{
		width:   C.uint32_t(w),
		height:  C.uint32_t(h),
		channel: 3,
		data:    (*C.uint8_t)(rgb),
	}

	cPrompt := C.CString(params.Prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	cNegPrompt := C.CString(params.NegativePrompt)
	defer C.free(unsafe.Pointer(cNegPrompt))
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))

	out := C.img2img(
		cCtx,
		init,
		cPrompt,
		cNegPrompt,
		C.int(-1), // clip_skip
		C.float(params.CFGScale),
		C.float(3.5), // distilled guidance, unused by SD1.x
		C.int(w), C.int(h),
		C.EULER_A,
		C.int(params.Steps),
		C.float(params.Strength),
		C.int64_t(params.Seed),
		C.int(1),  // batch_count
		nil,       // control_cond
		C.float(0), C.float(0),
		C.bool(false),
		empty,
	)
	if out == nil {
		return nil, fmt.Errorf("%w: img2img returned null", ErrGenerationFailed)
	}
	defer C.free(unsafe.Pointer(out))
	if out.data == nil {
		return nil, fmt.Errorf("%w: img2img returned an empty image", ErrGenerationFailed)
	}
	defer C.free(unsafe.Pointer(out.data))

	ow, oh, ch := int(out.width), int(out.height), int(out.channel)
	if ch != 3 && ch != 4 {
		return nil, fmt.Errorf("%w: unexpected channel count %d", ErrGenerationFailed, ch)
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(out.data)), ow*oh*ch)
	dst := image.NewRGBA(image.Rect(0, 0, ow, oh))
	for i, p := 0, 0; i < len(src); i, p = i+ch, p+4 {
		dst.Pix[p], dst.Pix[p+1], dst.Pix[p+2], dst.Pix[p+3] = src[i], src[i+1], src[i+2], 0xff
	}
	return dst, nil
}

func freeContextImpl(ctx *SDContext) {
	if ctx == nil {
		return
	}
	if v, ok := contexts.LoadAndDelete(ctx.id); ok {
		C.free_sd_ctx(v.(*C.sd_ctx_t))
	}
	ctx.valid = false
}

func cudaAvailableImpl() bool { return cudaBuild }

func getBackendInfoImpl() string {
	info := C.GoString(C.sd_get_system_info())
	if cudaBuild {
		return "stable-diffusion.cpp (CUDA) " + info
	}
	return "stable-diffusion.cpp (CPU) " + info
}
