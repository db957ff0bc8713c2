package repository

import (
	"context"
	"sync"
	"time"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// MemoryTemplateStore keeps templates in process memory. Records are copied
// on the way in and out so callers never share a slice with the store.
type MemoryTemplateStore struct {
	mu      sync.RWMutex
	records map[string]domain.EnrollmentRecord
}

func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{
		records: make(map[string]domain.EnrollmentRecord),
	}
}

func (s *MemoryTemplateStore) Save(_ context.Context, identity string, embedding domain.Embedding, enrolledAt time.Time) error {
	if identity == "" {
		return domain.ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[identity] = domain.EnrollmentRecord{
		Identity:   identity,
		Embedding:  embedding.Clone(),
		EnrolledAt: enrolledAt.UTC(),
	}
	return nil
}

func (s *MemoryTemplateStore) Lookup(_ context.Context, identity string) (domain.EnrollmentRecord, error) {
	if identity == "" {
		return domain.EnrollmentRecord{}, domain.ErrInvalidIdentity
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[identity]
	if !ok {
		return domain.EnrollmentRecord{}, domain.ErrTemplateNotFound
	}
	record.Embedding = record.Embedding.Clone()
	return record, nil
}

// Len returns the number of enrolled identities
func (s *MemoryTemplateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
