package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
)

type store struct {
	mu      sync.Mutex
	records map[string]*preorder.Record
}

// New returns a new in memory preorder.Store
func New() preorder.Store {
	return &store{
		records: make(map[string]*preorder.Record),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.records = make(map[string]*preorder.Record)
	s.mu.Unlock()
}

// Put implements preorder.Store.Put
func (s *store) Put(_ context.Context, record *preorder.Record) error {
	if err := record.Validate(); err != nil {
		return preorder.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.Ref]; ok {
		return preorder.ErrAlreadyExists
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Second)
	if record.PaidAt != nil {
		paidAt := record.PaidAt.UTC().Truncate(time.Second)
		record.PaidAt = &paidAt
	}

	cloned := record.Clone()
	s.records[record.Ref] = &cloned

	return nil
}

// Get implements preorder.Store.Get
func (s *store) Get(_ context.Context, ref string) (*preorder.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[ref]
	if !ok {
		return nil, preorder.ErrNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// DeleteUnpaidBefore implements preorder.Store.DeleteUnpaidBefore
func (s *store) DeleteUnpaidBefore(_ context.Context, before time.Time) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before = before.UTC().Truncate(time.Second)

	var deleted uint64
	for ref, item := range s.records {
		if item.PaidAt == nil && item.CreatedAt.Before(before) {
			delete(s.records, ref)
			deleted++
		}
	}
	return deleted, nil
}

// Close implements preorder.Store.Close
func (s *store) Close() error {
	return nil
}
