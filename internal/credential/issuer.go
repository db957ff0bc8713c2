// Package credential mints one-time access tokens and renders them as QR codes.
package credential

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// Issuer mints credentials. Tokens carry 128 random bits formatted as a
// canonical UUID string.
type Issuer struct {
	random io.Reader
	now    func() time.Time
}

// IssuerOption configures an Issuer
type IssuerOption func(*Issuer)

// WithClock overrides the issuance clock
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.now = now
	}
}

// WithRandom overrides the entropy source
func WithRandom(r io.Reader) IssuerOption {
	return func(i *Issuer) {
		i.random = r
	}
}

// NewIssuer creates an Issuer backed by crypto/rand
func NewIssuer(opts ...IssuerOption) *Issuer {
	i := &Issuer{
		random: rand.Reader,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue binds a fresh token to identity
func (i *Issuer) Issue(identity string) (domain.Credential, error) {
	if identity == "" {
		return domain.Credential{}, domain.ErrInvalidIdentity
	}

	var raw uuid.UUID
	if _, err := io.ReadFull(i.random, raw[:]); err != nil {
		return domain.Credential{}, domain.ErrInternal.WithError(fmt.Errorf("read token entropy: %w", err))
	}

	return domain.Credential{
		Token:    raw.String(),
		Identity: identity,
		IssuedAt: i.now().UTC(),
	}, nil
}
