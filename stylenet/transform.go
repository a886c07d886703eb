package stylenet

import (
	"context"
	"fmt"
	"image"

	"github.com/KK-2k06/DreamInk/imagecodec"
)

// Transform resizes img to the session's input size, normalizes it to [-1, 1],
// runs one forward pass and denormalizes the result back to 8-bit RGB.
func Transform(ctx context.Context, s Session, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := s.InputSize()
	src := imagecodec.Resize(img, w, h)

	out, err := s.Run(imagecodec.NormalizeCentered(src), w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}

	res, err := imagecodec.DenormalizeCentered(out, w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: output shape: %w", ErrInferenceFailed, err)
	}
	return res, nil
}
