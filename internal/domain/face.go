package domain

import (
	"image"
	"time"
)

const (
	// TensorSize is the width and height of the face crop fed to the model.
	TensorSize = 160
	// TensorChannels is the number of colour channels per pixel (R, G, B).
	TensorChannels = 3
	// TensorLength is the number of floats in a NormalizedTensor.
	TensorLength = TensorSize * TensorSize * TensorChannels

	// DefaultEmbeddingDimension is the output length of the reference model.
	DefaultEmbeddingDimension = 512
	// DefaultMatchThreshold is calibrated for the reference model.
	DefaultMatchThreshold = 0.6
)

// FaceRegion is an axis-aligned pixel rectangle reported by a face detector.
// Right and Bottom are exclusive.
type FaceRegion struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width of the region, which may be non-positive before clipping.
func (r FaceRegion) Width() int { return r.Right - r.Left }

// Height of the region, which may be non-positive before clipping.
func (r FaceRegion) Height() int { return r.Bottom - r.Top }

// Area is zero for regions with non-positive width or height.
func (r FaceRegion) Area() int {
	if r.Width() <= 0 || r.Height() <= 0 {
		return 0
	}
	return r.Width() * r.Height()
}

// Clip constrains the region to bounds, which are taken as starting at the
// origin like the rectangle of a decoded image.
func (r FaceRegion) Clip(bounds image.Rectangle) FaceRegion {
	return FaceRegion{
		Left:   max(0, r.Left),
		Top:    max(0, r.Top),
		Right:  min(bounds.Dx(), r.Right),
		Bottom: min(bounds.Dy(), r.Bottom),
	}
}

// NormalizedTensor holds TensorSize x TensorSize pixels in row-major order,
// three floats per pixel in R, G, B order, each scaled to [-1, 1).
type NormalizedTensor []float32

// Embedding is the fixed-length face fingerprint returned by the model.
type Embedding []float32

// Clone returns a copy that does not share the backing array.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// EnrollmentRecord is the stored template for one identity.
type EnrollmentRecord struct {
	Identity   string    `json:"identity"`
	Embedding  Embedding `json:"embedding"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// MatchDecision is the outcome of comparing a probe against a template.
// Match is true iff Distance < Threshold.
type MatchDecision struct {
	Match     bool    `json:"match"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// Credential is a single-use token minted after a successful verification.
type Credential struct {
	Token    string    `json:"token"`
	Identity string    `json:"identity"`
	IssuedAt time.Time `json:"issued_at"`
}
