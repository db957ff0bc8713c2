package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/credential"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"

	DetectorRekognition = "rekognition"
	DetectorMock        = "mock"

	EmbeddingTensor = "tensor"
	EmbeddingMock   = "mock"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Template store
	TemplateStore    string `envconfig:"TEMPLATE_STORE" default:"postgres"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix   string `envconfig:"REDIS_KEY_PREFIX" default:"gatepass:template:"`

	// Face detection
	FaceDetector     string  `envconfig:"FACE_DETECTOR" default:"rekognition"`
	AWSRegion        string  `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSMinConfidence float64 `envconfig:"AWS_MIN_CONFIDENCE" default:"90"`
	FaceSelection    string  `envconfig:"FACE_SELECTION" default:"first"`

	// Embedding model host
	EmbeddingProvider   string        `envconfig:"EMBEDDING_PROVIDER" default:"tensor"`
	EmbeddingURL        string        `envconfig:"EMBEDDING_URL" default:"http://localhost:8501"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"facenet"`
	EmbeddingThreads    int           `envconfig:"EMBEDDING_THREADS" default:"4"`
	EmbeddingTimeout    time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"30s"`
	EmbeddingRetryCount int           `envconfig:"EMBEDDING_RETRY_COUNT" default:"0"`
	EmbeddingDimension  int           `envconfig:"EMBEDDING_DIMENSION" default:"512"`

	// Matching
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.6"`

	// Credential rendering
	QRSize          int    `envconfig:"QR_SIZE" default:"512"`
	QRVersion       int    `envconfig:"QR_VERSION" default:"4"`
	QRRecoveryLevel string `envconfig:"QR_RECOVERY_LEVEL" default:"M"`

	// Rate limiting
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"60"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.MatchThreshold <= 0 {
		errs = append(errs, fmt.Errorf("MATCH_THRESHOLD must be positive, got %v", c.MatchThreshold))
	}
	if c.EmbeddingDimension <= 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension))
	}
	if c.EmbeddingThreads <= 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_THREADS must be positive, got %d", c.EmbeddingThreads))
	}
	if c.EmbeddingRetryCount < 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_RETRY_COUNT must not be negative, got %d", c.EmbeddingRetryCount))
	}
	if c.QRVersion < 1 || c.QRVersion > 40 {
		errs = append(errs, fmt.Errorf("QR_VERSION must be between 1 and 40, got %d", c.QRVersion))
		if c.QRSize <= 0 {
			errs = append(errs, fmt.Errorf("QR_SIZE must be positive, got %d", c.QRSize))
		}
	} else if minSize := credential.MinSize(c.QRVersion); c.QRSize < minSize {
		errs = append(errs, fmt.Errorf("QR_SIZE must be at least %d for QR_VERSION %d, got %d", minSize, c.QRVersion, c.QRSize))
	}
	if _, err := credential.ParseRecoveryLevel(c.QRRecoveryLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := provider.ParseSelectionPolicy(c.FaceSelection); err != nil {
		errs = append(errs, err)
	}

	switch c.TemplateStore {
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when TEMPLATE_STORE=postgres"))
		}
		if c.EmbeddingDimension != domain.DefaultEmbeddingDimension {
			errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be %d when TEMPLATE_STORE=postgres (templates.embedding is vector(%d)), got %d",
				domain.DefaultEmbeddingDimension, domain.DefaultEmbeddingDimension, c.EmbeddingDimension))
		}
	case StoreRedis, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown TEMPLATE_STORE: %s (supported: postgres, redis, memory)", c.TemplateStore))
	}

	switch c.FaceDetector {
	case DetectorRekognition, DetectorMock:
	default:
		errs = append(errs, fmt.Errorf("unknown FACE_DETECTOR: %s (supported: rekognition, mock)", c.FaceDetector))
	}

	switch c.EmbeddingProvider {
	case EmbeddingTensor, EmbeddingMock:
	default:
		errs = append(errs, fmt.Errorf("unknown EMBEDDING_PROVIDER: %s (supported: tensor, mock)", c.EmbeddingProvider))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
