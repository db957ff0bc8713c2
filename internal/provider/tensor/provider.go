package tensor

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider"
)

// Provider implements provider.EmbeddingProvider on top of a model server.
// At most Config.Threads predictions are in flight at once.
type Provider struct {
	client    *Client
	slots     *semaphore.Weighted
	dimension int
}

// NewProvider creates a new model server backed embedding provider
func NewProvider(config Config) *Provider {
	defaults := DefaultConfig()
	if config.Threads <= 0 {
		config.Threads = defaults.Threads
	}
	if config.Dimension <= 0 {
		config.Dimension = defaults.Dimension
	}
	if config.Signature == "" {
		config.Signature = defaults.Signature
	}
	if config.MaxRetryDelay <= 0 {
		config.MaxRetryDelay = defaults.MaxRetryDelay
	}

	return &Provider{
		client:    NewClient(config),
		slots:     semaphore.NewWeighted(int64(config.Threads)),
		dimension: config.Dimension,
	}
}

// Embed sends one tensor to the model and returns its embedding
func (p *Provider) Embed(ctx context.Context, tensor domain.NormalizedTensor) (domain.Embedding, error) {
	if len(tensor) != domain.TensorLength {
		return nil, domain.ErrModelInvocation.WithError(
			fmt.Errorf("%w: got %d values, want %d", ErrInvalidTensor, len(tensor), domain.TensorLength),
		)
	}

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, domain.ErrModelInvocation.WithError(fmt.Errorf("wait for model slot: %w", err))
	}
	defer p.slots.Release(1)

	resp, err := p.client.Predict(ctx, PredictRequest{
		Instances: [][][][]float32{reshape(tensor)},
	})
	if err != nil {
		return nil, domain.ErrModelInvocation.WithError(fmt.Errorf("predict: %w", err))
	}

	if len(resp.Predictions) == 0 {
		return nil, domain.ErrModelInvocation.WithError(ErrEmptyPrediction)
	}

	embedding := resp.Predictions[0]
	if len(embedding) != p.dimension {
		return nil, domain.ErrModelInvocation.WithError(
			fmt.Errorf("%w: embedding has %d values, want %d", ErrInvalidResponse, len(embedding), p.dimension),
		)
	}

	return domain.Embedding(embedding), nil
}

// Ready reports an error unless the model has an AVAILABLE version
func (p *Provider) Ready(ctx context.Context) error {
	ok, err := p.client.ModelStatus(ctx)
	if err != nil {
		return fmt.Errorf("model status: %w", err)
	}
	if !ok {
		return errors.New("model has no available version")
	}
	return nil
}

// reshape views a flat tensor as rows of pixels without copying.
func reshape(tensor domain.NormalizedTensor) [][][]float32 {
	rows := make([][][]float32, domain.TensorSize)
	for y := range rows {
		row := make([][]float32, domain.TensorSize)
		for x := range row {
			i := (y*domain.TensorSize + x) * domain.TensorChannels
			row[x] = tensor[i : i+domain.TensorChannels : i+domain.TensorChannels]
		}
		rows[y] = row
	}
	return rows
}

var _ provider.EmbeddingProvider = (*Provider)(nil)
