package rekognition

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/audit"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Detector implements provider.FaceDetector using AWS Rekognition DetectFaces
type Detector struct {
	api         RekognitionAPI
	config      Config
	auditLogger audit.Logger
}

// DetectorOption defines optional configuration for Detector
type DetectorOption func(*Detector)

// WithAuditLogger sets the audit logger for the detector
func WithAuditLogger(logger audit.Logger) DetectorOption {
	return func(d *Detector) {
		d.auditLogger = logger
	}
}

var _ provider.FaceDetector = (*Detector)(nil)

// NewDetector wraps an existing Rekognition API client
func NewDetector(api RekognitionAPI, cfg Config, opts ...DetectorOption) *Detector {
	d := &Detector{
		api:    api,
		config: cfg,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// New loads AWS credentials and builds a Detector for the configured region
func New(ctx context.Context, cfg Config, opts ...DetectorOption) (*Detector, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewDetector(client, cfg, opts...), nil
}

// logAudit is fire-and-forget: audit failures never fail detection
func (d *Detector) logAudit(ctx context.Context, success bool, err error, metadata map[string]string) {
	if d.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: audit.EventFaceDetected,
		Source:    "rekognition",
		Success:   success,
		Metadata:  metadata,
	}

	if err != nil {
		event.Error = err.Error()
	}

	_ = d.auditLogger.Log(ctx, event)
}

func validateImage(image []byte) error {
	if len(image) == 0 {
		return domain.ErrInvalidImage
	}
	if len(image) < minImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too small (%d bytes, minimum %d)", len(image), minImageSize))
	}
	if len(image) > maxImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too large (%d bytes, maximum %d)", len(image), maxImageSize))
	}
	return nil
}

// DetectFaces detects faces using the Rekognition DetectFaces API.
// Returns an empty slice if no faces are detected (not an error)
func (d *Detector) DetectFaces(ctx context.Context, image []byte, width, height int) ([]provider.DetectedFace, error) {
	metadata := map[string]string{
		"image_size": strconv.Itoa(len(image)),
	}

	if err := validateImage(image); err != nil {
		d.logAudit(ctx, false, err, metadata)
		return nil, err
	}
	if width <= 0 || height <= 0 {
		err := domain.ErrInvalidImage.WithError(fmt.Errorf("invalid dimensions %dx%d", width, height))
		d.logAudit(ctx, false, err, metadata)
		return nil, err
	}

	output, err := d.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		mapped := mapAPIError(err)
		d.logAudit(ctx, false, mapped, metadata)
		return nil, mapped
	}

	faces := make([]provider.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}
		confidence := float64(aws.ToFloat32(detail.Confidence))
		if confidence < d.config.MinConfidence {
			continue
		}
		faces = append(faces, provider.DetectedFace{
			Region:     toRegion(detail.BoundingBox, width, height),
			Confidence: confidence / 100,
		})
	}

	metadata["faces_count"] = strconv.Itoa(len(faces))
	d.logAudit(ctx, true, nil, metadata)

	return faces, nil
}

// toRegion converts a ratio-based bounding box into pixels. The box is widened
// outward to whole pixels; clipping to the image happens during preprocessing.
func toRegion(box *types.BoundingBox, width, height int) domain.FaceRegion {
	left := float64(aws.ToFloat32(box.Left))
	top := float64(aws.ToFloat32(box.Top))
	w := float64(aws.ToFloat32(box.Width))
	h := float64(aws.ToFloat32(box.Height))

	return domain.FaceRegion{
		Left:   int(math.Floor(left * float64(width))),
		Top:    int(math.Floor(top * float64(height))),
		Right:  int(math.Ceil((left + w) * float64(width))),
		Bottom: int(math.Ceil((top + h) * float64(height))),
	}
}
