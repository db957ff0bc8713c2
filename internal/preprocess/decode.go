package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// MaxPixels caps the decoded image area. The header is checked before any
// pixel data is allocated.
const MaxPixels = 40_000_000

// Decode parses JPEG, PNG, BMP or WebP bytes and reports the detected format.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", domain.ErrInvalidImage.WithError(fmt.Errorf("empty image"))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.ErrInvalidImage.WithError(fmt.Errorf("decode image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", domain.ErrInvalidImage.WithError(
			fmt.Errorf("image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, MaxPixels))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.ErrInvalidImage.WithError(fmt.Errorf("decode image: %w", err))
	}

	return img, format, nil
}
