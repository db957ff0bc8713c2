package face

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/audit"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/config"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/credential"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/database"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider/mock"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider/rekognition"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider/tensor"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/repository"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/service"
)

// NewEmbeddingProvider creates the embedding provider selected by EMBEDDING_PROVIDER
//
// Environment variables:
//   - EMBEDDING_PROVIDER: "tensor" or "mock" (default: "tensor")
//   - EMBEDDING_URL: model server base URL (default: "http://localhost:8501")
//   - EMBEDDING_MODEL, EMBEDDING_THREADS, EMBEDDING_TIMEOUT, EMBEDDING_RETRY_COUNT
func NewEmbeddingProvider(cfg *config.Config) (provider.EmbeddingProvider, error) {
	switch cfg.EmbeddingProvider {
	case config.EmbeddingTensor, "":
		tensorConfig := tensor.DefaultConfig()
		if cfg.EmbeddingURL != "" {
			tensorConfig.BaseURL = cfg.EmbeddingURL
		}
		if cfg.EmbeddingModel != "" {
			tensorConfig.Model = cfg.EmbeddingModel
		}
		if cfg.EmbeddingTimeout > 0 {
			tensorConfig.Timeout = cfg.EmbeddingTimeout
		}
		tensorConfig.Threads = cfg.EmbeddingThreads
		tensorConfig.RetryCount = cfg.EmbeddingRetryCount
		tensorConfig.Dimension = cfg.EmbeddingDimension
		return tensor.NewProvider(tensorConfig), nil

	case config.EmbeddingMock:
		return mock.New(cfg.EmbeddingDimension), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: %s, %s)",
			cfg.EmbeddingProvider, config.EmbeddingTensor, config.EmbeddingMock)
	}
}

// NewFaceDetector creates the detector selected by FACE_DETECTOR.
// Rekognition authenticates through the AWS SDK credential chain
// (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, shared profiles, instance roles).
func NewFaceDetector(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.FaceDetector, error) {
	switch cfg.FaceDetector {
	case config.DetectorRekognition, "":
		rekogConfig := rekognition.DefaultConfig()
		if cfg.AWSRegion != "" {
			rekogConfig.Region = cfg.AWSRegion
		}
		if cfg.AWSMinConfidence > 0 {
			rekogConfig.MinConfidence = cfg.AWSMinConfidence
		}

		detector, err := rekognition.New(ctx, rekogConfig, rekognition.WithAuditLogger(auditLogger))
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return detector, nil

	case config.DetectorMock:
		return mock.New(cfg.EmbeddingDimension), nil

	default:
		return nil, fmt.Errorf("unknown face detector: %s (supported: %s, %s)",
			cfg.FaceDetector, config.DetectorRekognition, config.DetectorMock)
	}
}

// NewTemplateStore opens the store selected by TEMPLATE_STORE and wraps it in a
// per-identity lock. The returned func releases backend connections.
func NewTemplateStore(ctx context.Context, cfg *config.Config) (*repository.LockedStore, func(), error) {
	switch cfg.TemplateStore {
	case config.StorePostgres:
		poolConfig := database.DefaultPoolConfig(cfg.DatabaseURL)
		if cfg.DatabaseMaxConns > 0 {
			poolConfig.MaxConns = cfg.DatabaseMaxConns
		}
		pool, err := database.NewPool(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connect template store: %w", err)
		}
		return repository.NewLockedStore(repository.NewPostgresTemplateStore(pool)), pool.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect template store: %w", err)
		}
		store := repository.NewRedisTemplateStore(client, cfg.RedisKeyPrefix, cfg.EmbeddingDimension)
		return repository.NewLockedStore(store), func() { _ = client.Close() }, nil

	case config.StoreMemory:
		return repository.NewLockedStore(repository.NewMemoryTemplateStore()), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown template store: %s (supported: %s, %s, %s)",
			cfg.TemplateStore, config.StorePostgres, config.StoreRedis, config.StoreMemory)
	}
}

// GatePass bundles the wired service with the store backing it
type GatePass struct {
	Service *service.GatePassService
	Store   *repository.LockedStore
	close   func()
}

// Close releases the template store connections
func (g *GatePass) Close() {
	if g.close != nil {
		g.close()
	}
}

// NewGatePass wires store, detector, embedding provider and credential
// components from configuration.
func NewGatePass(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (*GatePass, error) {
	policy, err := provider.ParseSelectionPolicy(cfg.FaceSelection)
	if err != nil {
		return nil, err
	}

	renderer, err := credential.NewRenderer(credential.RenderConfig{
		Size:          cfg.QRSize,
		Version:       cfg.QRVersion,
		RecoveryLevel: cfg.QRRecoveryLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("create credential renderer: %w", err)
	}

	embedder, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}

	detector, err := NewFaceDetector(ctx, cfg, auditLogger)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := NewTemplateStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := service.NewGatePassService(store, detector, embedder, credential.NewIssuer(), renderer).
		WithThreshold(cfg.MatchThreshold).
		WithDimension(cfg.EmbeddingDimension).
		WithSelectionPolicy(policy).
		WithAuditLogger(auditLogger)

	return &GatePass{
		Service: svc,
		Store:   store,
		close:   closeStore,
	}, nil
}
