package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider"
)

var ErrInvalidTensor = errors.New("tensor does not match model input shape")

// Provider is a deterministic FaceDetector and EmbeddingProvider for tests and
// local development
type Provider struct {
	dimension int
}

// New returns a mock provider. A non-positive dimension uses
// domain.DefaultEmbeddingDimension.
func New(dimension int) *Provider {
	if dimension <= 0 {
		dimension = domain.DefaultEmbeddingDimension
	}
	return &Provider{dimension: dimension}
}

// DetectFaces reports one face covering the central 80% of the image
func (p *Provider) DetectFaces(ctx context.Context, image []byte, width, height int) ([]provider.DetectedFace, error) {
	if len(image) == 0 || width <= 0 || height <= 0 {
		return nil, domain.ErrInvalidImage
	}

	return []provider.DetectedFace{
		{
			Region: domain.FaceRegion{
				Left:   width / 10,
				Top:    height / 10,
				Right:  width - width/10,
				Bottom: height - height/10,
			},
			Confidence: 0.99,
		},
	}, nil
}

// Embed hashes the tensor into a unit-length embedding
func (p *Provider) Embed(ctx context.Context, tensor domain.NormalizedTensor) (domain.Embedding, error) {
	if len(tensor) != domain.TensorLength {
		return nil, domain.ErrModelInvocation.WithError(
			fmt.Errorf("%w: got %d values, want %d", ErrInvalidTensor, len(tensor), domain.TensorLength),
		)
	}

	return generateEmbedding(tensor, p.dimension), nil
}

func generateEmbedding(tensor domain.NormalizedTensor, dimension int) domain.Embedding {
	h := sha256.New()
	buf := make([]byte, 4)
	for _, v := range tensor {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		_, _ = h.Write(buf)
	}
	hash := h.Sum(nil)
	hashLen := len(hash)

	embedding := make(domain.Embedding, dimension)
	for i := 0; i < dimension; i++ {
		idx := i % hashLen
		embedding[i] = (float32(hash[idx])/255.0)*2 - 1
	}

	var norm float64
	for _, v := range embedding {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return embedding
	}

	for i := range embedding {
		embedding[i] = float32(float64(embedding[i]) / norm)
	}

	return embedding
}

var (
	_ provider.EmbeddingProvider = (*Provider)(nil)
	_ provider.FaceDetector      = (*Provider)(nil)
)
