// Package ledger persists confirmed tips and answers access-gating
// queries over them. Records are append-only: one insert per confirmed
// payment, never mutated afterward.
package ledger

import (
	"context"
	"errors"

	"github.com/creatorjar/creatorjar"
)

// ErrDuplicateProof indicates an insert reused an already-recorded proof
// reference. One on-chain payment yields exactly one record.
var ErrDuplicateProof = errors.New("duplicate proof reference")

// Filter narrows a tip-record query. Zero-valued fields match everything.
type Filter struct {
	Sender      creatorjar.Address
	Recipient   creatorjar.Address
	PremiumOnly bool

	// Limit caps the result size; zero means no cap.
	Limit int
}

// Store is the persistent tip-records collection. Implementations must
// provide read-your-writes consistency for the same client: a record
// visible to Insert's caller is visible to its next Query.
//
// The interface supports both the gorm-backed store and the in-memory
// store used in tests.
type Store interface {
	// Insert appends one record. A reused proof reference fails with
	// ErrDuplicateProof.
	Insert(ctx context.Context, record creatorjar.TipRecord) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, filter Filter) ([]creatorjar.TipRecord, error)
}
