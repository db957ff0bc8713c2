package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// PostgresTemplateStore keeps templates in a pgvector column
type PostgresTemplateStore struct {
	pool PgxPool
}

func NewPostgresTemplateStore(pool PgxPool) *PostgresTemplateStore {
	return &PostgresTemplateStore{pool: pool}
}

func (r *PostgresTemplateStore) Save(ctx context.Context, identity string, embedding domain.Embedding, enrolledAt time.Time) error {
	if identity == "" {
		return domain.ErrInvalidIdentity
	}

	query := `
		INSERT INTO templates (identity, embedding, enrolled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity) DO UPDATE
		SET embedding = EXCLUDED.embedding, enrolled_at = EXCLUDED.enrolled_at
	`

	vec := pgvector.NewVector(embedding.Clone())

	if _, err := r.pool.Exec(ctx, query, identity, vec, enrolledAt.UTC()); err != nil {
		return domain.ErrStoreUnavailable.WithError(fmt.Errorf("save template: %w", err))
	}

	return nil
}

func (r *PostgresTemplateStore) Lookup(ctx context.Context, identity string) (domain.EnrollmentRecord, error) {
	if identity == "" {
		return domain.EnrollmentRecord{}, domain.ErrInvalidIdentity
	}

	query := `
		SELECT identity, embedding, enrolled_at
		FROM templates
		WHERE identity = $1
	`

	var record domain.EnrollmentRecord
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, identity).Scan(
		&record.Identity,
		&embedding,
		&record.EnrolledAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EnrollmentRecord{}, domain.ErrTemplateNotFound
	}
	if err != nil {
		return domain.EnrollmentRecord{}, domain.ErrStoreUnavailable.WithError(fmt.Errorf("lookup template: %w", err))
	}

	if embedding != nil {
		record.Embedding = domain.Embedding(embedding.Slice()).Clone()
	}

	return record, nil
}

func (r *PostgresTemplateStore) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}
	return nil
}
