package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// TemplateStore persists one enrolled embedding per identity.
//
// Save overwrites any existing record and fails with domain.ErrInvalidIdentity
// for an empty identity. Lookup fails with domain.ErrTemplateNotFound when no
// record exists. Backend failures are reported as domain.ErrStoreUnavailable.
type TemplateStore interface {
	Save(ctx context.Context, identity string, embedding domain.Embedding, enrolledAt time.Time) error
	Lookup(ctx context.Context, identity string) (domain.EnrollmentRecord, error)
}

// Pinger is implemented by stores backed by a remote service
type Pinger interface {
	Ping(ctx context.Context) error
}

// PgxPool is the subset of *pgxpool.Pool used by the Postgres store
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}
