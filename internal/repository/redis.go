package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// DefaultRedisKeyPrefix namespaces template keys
const DefaultRedisKeyPrefix = "gatepass:template:"

// RedisClient is the subset of *redis.Client used by the Redis store
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type redisTemplate struct {
	Identity   string    `json:"identity"`
	Embedding  []float32 `json:"embedding"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// RedisTemplateStore stores each template as a JSON document under prefix+identity
type RedisTemplateStore struct {
	client    RedisClient
	prefix    string
	dimension int
}

// NewRedisTemplateStore creates a store. Documents whose embedding length is
// not dimension are treated as corrupt; a non-positive dimension disables the check.
func NewRedisTemplateStore(client RedisClient, prefix string, dimension int) *RedisTemplateStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisTemplateStore{
		client:    client,
		prefix:    prefix,
		dimension: dimension,
	}
}

func (s *RedisTemplateStore) key(identity string) string {
	return s.prefix + identity
}

func (s *RedisTemplateStore) Save(ctx context.Context, identity string, embedding domain.Embedding, enrolledAt time.Time) error {
	if identity == "" {
		return domain.ErrInvalidIdentity
	}

	payload, err := json.Marshal(redisTemplate{
		Identity:   identity,
		Embedding:  embedding,
		EnrolledAt: enrolledAt.UTC(),
	})
	if err != nil {
		return domain.ErrInternal.WithError(fmt.Errorf("marshal template: %w", err))
	}

	if err := s.client.Set(ctx, s.key(identity), payload, 0).Err(); err != nil {
		return domain.ErrStoreUnavailable.WithError(fmt.Errorf("save template: %w", err))
	}
	return nil
}

func (s *RedisTemplateStore) Lookup(ctx context.Context, identity string) (domain.EnrollmentRecord, error) {
	if identity == "" {
		return domain.EnrollmentRecord{}, domain.ErrInvalidIdentity
	}

	raw, err := s.client.Get(ctx, s.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.EnrollmentRecord{}, domain.ErrTemplateNotFound
	}
	if err != nil {
		return domain.EnrollmentRecord{}, domain.ErrStoreUnavailable.WithError(fmt.Errorf("lookup template: %w", err))
	}

	var doc redisTemplate
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.EnrollmentRecord{}, domain.ErrInternal.WithError(fmt.Errorf("decode template %q: %w", identity, err))
	}
	if s.dimension > 0 && len(doc.Embedding) != s.dimension {
		return domain.EnrollmentRecord{}, domain.ErrInternal.WithError(
			fmt.Errorf("template %q has %d dimensions, expected %d", identity, len(doc.Embedding), s.dimension))
	}

	return domain.EnrollmentRecord{
		Identity:   identity,
		Embedding:  doc.Embedding,
		EnrolledAt: doc.EnrolledAt,
	}, nil
}

func (s *RedisTemplateStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}
	return nil
}
