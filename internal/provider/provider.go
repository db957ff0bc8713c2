package provider

import (
	"context"
	"fmt"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// EmbeddingProvider maps a normalized face tensor to a fixed-length embedding.
// Implementations must be deterministic for a fixed model and must report
// execution failures as domain.ErrModelInvocation.
type EmbeddingProvider interface {
	Embed(ctx context.Context, tensor domain.NormalizedTensor) (domain.Embedding, error)
}

// FaceDetector finds faces in an encoded image. Regions are in pixels relative
// to the top-left corner of an image of the given width and height.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte, width, height int) ([]DetectedFace, error)
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	Region     domain.FaceRegion `json:"region"`
	Confidence float64           `json:"confidence"`
}

// SelectionPolicy decides which candidate to use when a detector reports
// more than one face.
type SelectionPolicy string

const (
	// SelectFirst uses the first candidate the detector returned.
	SelectFirst SelectionPolicy = "first"
	// SelectLargest uses the candidate with the largest area.
	SelectLargest SelectionPolicy = "largest"
	// SelectConfidence uses the candidate with the highest confidence.
	SelectConfidence SelectionPolicy = "confidence"
)

// ParseSelectionPolicy accepts "first", "largest" or "confidence". The empty
// string means SelectFirst.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch SelectionPolicy(s) {
	case SelectFirst, "":
		return SelectFirst, nil
	case SelectLargest:
		return SelectLargest, nil
	case SelectConfidence:
		return SelectConfidence, nil
	default:
		return "", fmt.Errorf("unknown face selection policy: %s (supported: %s, %s, %s)",
			s, SelectFirst, SelectLargest, SelectConfidence)
	}
}

// SelectFace picks one candidate according to policy. Ties keep the earliest
// candidate. An empty slice yields domain.ErrNoFaceDetected.
func SelectFace(faces []DetectedFace, policy SelectionPolicy) (DetectedFace, error) {
	if len(faces) == 0 {
		return DetectedFace{}, domain.ErrNoFaceDetected
	}

	best := 0
	switch policy {
	case SelectLargest:
		for i := 1; i < len(faces); i++ {
			if faces[i].Region.Area() > faces[best].Region.Area() {
				best = i
			}
		}
	case SelectConfidence:
		for i := 1; i < len(faces); i++ {
			if faces[i].Confidence > faces[best].Confidence {
				best = i
			}
		}
	}

	return faces[best], nil
}
