package repository

import (
	"context"
	"sync"
	"time"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

type identityLock struct {
	mu   sync.RWMutex
	refs int
}

// LockedStore serializes writes per identity and keeps lookups from
// interleaving with an in-flight save to the same identity. Different
// identities never block each other.
type LockedStore struct {
	inner TemplateStore

	mu    sync.Mutex
	locks map[string]*identityLock
}

func NewLockedStore(inner TemplateStore) *LockedStore {
	return &LockedStore{
		inner: inner,
		locks: make(map[string]*identityLock),
	}
}

func (s *LockedStore) acquire(identity string) *identityLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[identity]
	if !ok {
		l = &identityLock{}
		s.locks[identity] = l
	}
	l.refs++
	return l
}

func (s *LockedStore) release(identity string, l *identityLock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, identity)
	}
}

func (s *LockedStore) Save(ctx context.Context, identity string, embedding domain.Embedding, enrolledAt time.Time) error {
	l := s.acquire(identity)
	defer s.release(identity, l)

	l.mu.Lock()
	defer l.mu.Unlock()

	return s.inner.Save(ctx, identity, embedding, enrolledAt)
}

func (s *LockedStore) Lookup(ctx context.Context, identity string) (domain.EnrollmentRecord, error) {
	l := s.acquire(identity)
	defer s.release(identity, l)

	l.mu.RLock()
	defer l.mu.RUnlock()

	return s.inner.Lookup(ctx, identity)
}

// Ping forwards to the wrapped store when it supports health checks
func (s *LockedStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
