package ledger

import (
	"context"
	"sync"

	"github.com/creatorjar/creatorjar"
)

// MemoryStore is an in-memory Store for tests and single-process
// development setups. Thread-safe; enforces the same proof-reference
// uniqueness as the gorm store.
type MemoryStore struct {
	mu      sync.Mutex
	records []creatorjar.TipRecord
	proofs  map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proofs: make(map[string]struct{}),
	}
}

// Insert appends one record, rejecting duplicate proof references.
func (s *MemoryStore) Insert(ctx context.Context, record creatorjar.TipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.proofs[record.ProofReference]; exists {
		return ErrDuplicateProof
	}
	s.proofs[record.ProofReference] = struct{}{}
	s.records = append(s.records, record)
	return nil
}

// Query returns matching records, newest first.
func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]creatorjar.TipRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []creatorjar.TipRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if filter.Sender != "" && r.Sender != filter.Sender {
			continue
		}
		if filter.Recipient != "" && r.Recipient != filter.Recipient {
			continue
		}
		if filter.PremiumOnly && !r.PremiumUnlocked {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
