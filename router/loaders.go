package router

import (
	"errors"
	"fmt"

	"github.com/KK-2k06/DreamInk/core"
	"github.com/KK-2k06/DreamInk/modelcache"
	"github.com/KK-2k06/DreamInk/sdruntime"
	"github.com/KK-2k06/DreamInk/stylenet"
	"github.com/KK-2k06/DreamInk/styles"
	"go.uber.org/zap"
)

// ErrNoModel is returned when asked to load a style that has no model.
var ErrNoModel = errors.New("router: style has no model")

// NewLoader returns the modelcache loader for cfg: diffusion pipelines for
// generative styles and ONNX sessions for network styles.
func NewLoader(cfg *core.Config, logger *zap.Logger) modelcache.Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(st styles.Style) (modelcache.Handle, error) {
		path := cfg.ModelPath(string(st))

		switch st.Family() {
		case styles.FamilyGenerative:
			sum := cfg.ModelChecksum(string(st))
			logger.Info("loading diffusion pipeline",
				zap.String("style", string(st)),
				zap.String("path", path),
				zap.String("device", cfg.SDDevice),
				zap.String("backend", sdruntime.GetBackendInfo()),
				zap.Bool("verify_checksum", sum != ""))
			p, err := sdruntime.LoadPipeline(path, sdruntime.PipelineOptions{
				Device:        sdruntime.Device(cfg.SDDevice),
				MaxConcurrent: cfg.SDMaxConcurrent,
				Checksum:      sum,
			})
			if err != nil {
				logger.Error("diffusion pipeline failed to load",
					zap.String("style", string(st)),
					zap.String("path", path),
					zap.Bool("missing", sdruntime.IsModelNotFound(err)),
					zap.Bool("corrupted", sdruntime.IsModelCorrupted(err)),
					zap.Error(err))
				return nil, err
			}
			logger.Info("diffusion pipeline ready",
				zap.String("style", string(st)),
				zap.String("path", p.ModelPath()),
				zap.String("device", string(p.Device())),
				zap.String("precision", string(p.Precision())),
				zap.Int("slots", p.Slots()))
			return p, nil

		case styles.FamilyNetwork:
			logger.Info("loading style network",
				zap.String("style", string(st)),
				zap.String("path", path))
			s, err := stylenet.LoadSession(path, stylenet.Options{
				Serialize: cfg.StyleNetSerialize,
				Logger:    logger,
			})
			if err != nil {
				return nil, err
			}
			logger.Info("style network ready",
				zap.String("style", string(st)),
				zap.String("provider", string(s.Provider())),
				zap.String("input", s.InputName()),
				zap.String("output", s.OutputName()))
			return s, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNoModel, st)
	}
}
