// Package router validates a style name and dispatches an image to the
// backend family that serves it.
package router

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/KK-2k06/DreamInk/filters"
	"github.com/KK-2k06/DreamInk/imagecodec"
	"github.com/KK-2k06/DreamInk/modelcache"
	"github.com/KK-2k06/DreamInk/sdruntime"
	"github.com/KK-2k06/DreamInk/stylenet"
	"github.com/KK-2k06/DreamInk/styles"
	"go.uber.org/zap"
)

// Errors
var (
	// ErrUnknownStyle is the styles sentinel, re-exported for callers that
	// only import router.
	ErrUnknownStyle = styles.ErrUnknownStyle

	ErrNoPreset       = errors.New("router: no preset for generative style")
	ErrHandleMismatch = errors.New("router: cached handle does not match style family")
)

// Acquirer hands out cached backend handles. *modelcache.Cache satisfies it.
type Acquirer interface {
	Acquire(styles.Style) (modelcache.Handle, error)
}

// Generator is a generative handle. *sdruntime.Pipeline satisfies it.
type Generator interface {
	Img2Img(ctx context.Context, params sdruntime.Img2ImgParams) (image.Image, error)
}

type handlerFunc func(ctx context.Context, style styles.Style, raw []byte) ([]byte, error)

// Router maps styles to backend handlers.
type Router struct {
	cache    Acquirer
	catalog  *styles.Catalog
	logger   *zap.Logger
	handlers map[styles.Family]handlerFunc
}

// New creates a router over cache. A nil catalog uses the default presets.
func New(cache Acquirer, catalog *styles.Catalog, logger *zap.Logger) *Router {
	if catalog == nil {
		catalog = styles.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{cache: cache, catalog: catalog, logger: logger}
	r.handlers = map[styles.Family]handlerFunc{
		styles.FamilyGenerative: r.generative,
		styles.FamilyNetwork:    r.network,
		styles.FamilyClassical:  classical,
	}
	return r
}

// Dispatch transforms image into style and returns PNG bytes.
// The style is validated before any backend is touched.
func (r *Router) Dispatch(ctx context.Context, style string, image []byte) ([]byte, error) {
	st, err := styles.Parse(style)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, imagecodec.ErrEmptyImage
	}

	handle := r.handlers[st.Family()]
	if handle == nil {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownStyle, style)
	}
	return handle(ctx, st, image)
}

// Preload constructs handles for the given styles so the first request does
// not pay the load cost. Failures are logged and skipped.
func (r *Router) Preload(ctx context.Context, list ...styles.Style) {
	for _, st := range list {
		if ctx.Err() != nil {
			return
		}
		if !st.NeedsModel() {
			continue
		}
		start := time.Now()
		if _, err := r.cache.Acquire(st); err != nil {
			r.logger.Warn("preload failed",
				zap.String("style", string(st)),
				zap.Error(err))
			continue
		}
		r.logger.Info("preloaded style",
			zap.String("style", string(st)),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// IsInputError reports whether err was caused by the caller's input rather
// than a backend.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownStyle) ||
		errors.Is(err, imagecodec.ErrEmptyImage) ||
		errors.Is(err, imagecodec.ErrInvalidImage) ||
		errors.Is(err, imagecodec.ErrInvalidDimensions)
}

func (r *Router) generative(ctx context.Context, st styles.Style, raw []byte) ([]byte, error) {
	preset, ok := r.catalog.Preset(st)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPreset, st)
	}

	src, err := imagecodec.PrepareSquare(raw)
	if err != nil {
		return nil, err
	}

	h, err := r.cache.Acquire(st)
	if err != nil {
		return nil, err
	}
	gen, ok := h.(Generator)
	if !ok {
		return nil, fmt.Errorf("%w: %s handle is %T", ErrHandleMismatch, st, h)
	}

	r.logger.Debug("running img2img",
		zap.String("style", string(st)),
		zap.Int("steps", preset.Steps),
		zap.Float64("strength", preset.Strength),
		zap.Int("effective_steps", sdruntime.EffectiveSteps(preset.Steps, preset.Strength)))
	out, err := gen.Img2Img(ctx, sdruntime.Img2ImgParams{
		Prompt:         preset.Prompt,
		NegativePrompt: preset.NegativePrompt,
		InitImage:      src,
		Strength:       preset.Strength,
		Steps:          preset.Steps,
		CFGScale:       preset.GuidanceScale,
		Seed:           -1,
	})
	if err != nil {
		return nil, err
	}
	return imagecodec.EncodePNG(out)
}

func (r *Router) network(ctx context.Context, st styles.Style, raw []byte) ([]byte, error) {
	img, err := imagecodec.Decode(raw)
	if err != nil {
		return nil, err
	}

	h, err := r.cache.Acquire(st)
	if err != nil {
		return nil, err
	}
	sess, ok := h.(stylenet.Session)
	if !ok {
		return nil, fmt.Errorf("%w: %s handle is %T", ErrHandleMismatch, st, h)
	}

	out, err := stylenet.Transform(ctx, sess, img)
	if err != nil {
		return nil, err
	}
	return imagecodec.EncodePNG(out)
}

func classical(ctx context.Context, st styles.Style, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch st {
	case styles.Oil:
		return filters.Oil(raw)
	case styles.Sketch:
		return filters.Sketch(raw)
	}
	return nil, fmt.Errorf("%w '%s'", ErrUnknownStyle, st)
}
