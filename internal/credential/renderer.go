package credential

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

const (
	// DefaultSize is the rendered image edge in pixels
	DefaultSize = 512
	// DefaultVersion holds a 36 character token at level M with room to spare
	DefaultVersion = 4
	// DefaultRecoveryLevel is the error correction level letter
	DefaultRecoveryLevel = "M"
)

// RenderConfig fixes the encoder knobs so the same token always yields the same symbol
type RenderConfig struct {
	Size          int
	Version       int
	RecoveryLevel string
}

// DefaultRenderConfig returns a 512px version 4 level M configuration
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Size:          DefaultSize,
		Version:       DefaultVersion,
		RecoveryLevel: DefaultRecoveryLevel,
	}
}

// ParseRecoveryLevel maps L, M, Q or H to the encoder level
func ParseRecoveryLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(s) {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown QR recovery level: %s (supported: L, M, Q, H)", s)
	}
}

// Renderer draws tokens as monochrome QR images
type Renderer struct {
	size    int
	version int
	level   qrcode.RecoveryLevel
}

// quietZone is the border in modules the encoder draws on each side
const quietZone = 4

// MinSize is the smallest image edge that holds one pixel per module for
// version, quiet zone included. Smaller sizes would be silently enlarged.
func MinSize(version int) int {
	return 4*version + 17 + 2*quietZone
}

// NewRenderer validates cfg and builds a Renderer
func NewRenderer(cfg RenderConfig) (*Renderer, error) {
	if cfg.Version < 1 || cfg.Version > 40 {
		return nil, fmt.Errorf("QR version must be between 1 and 40, got %d", cfg.Version)
	}
	if cfg.Size < MinSize(cfg.Version) {
		return nil, fmt.Errorf("QR size %d is below %d pixels needed for version %d", cfg.Size, MinSize(cfg.Version), cfg.Version)
	}
	level, err := ParseRecoveryLevel(cfg.RecoveryLevel)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		size:    cfg.Size,
		version: cfg.Version,
		level:   level,
	}, nil
}

// Render encodes token into a size x size image. A token that does not fit
// the fixed version fails with domain.ErrEncoding.
func (r *Renderer) Render(token string) (image.Image, error) {
	code, err := qrcode.NewWithForcedVersion(token, r.version, r.level)
	if err != nil {
		return nil, domain.ErrEncoding.WithError(err)
	}
	return code.Image(r.size), nil
}

// RenderPNG is Render followed by PNG encoding
func (r *Renderer) RenderPNG(token string) ([]byte, error) {
	img, err := r.Render(token)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.ErrEncoding.WithError(err)
	}
	return buf.Bytes(), nil
}
