package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/creatorjar/creatorjar"
)

// Recorder writes one TipRecord per confirmed payment. premiumUnlocked is
// computed at write time from the policy threshold, so later policy
// changes never retroactively alter historical records.
type Recorder struct {
	store  Store
	policy creatorjar.FeePolicy
	now    func() time.Time
}

// NewRecorder creates a recorder over the given store and policy.
func NewRecorder(store Store, policy creatorjar.FeePolicy) *Recorder {
	return &Recorder{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// Record persists the outcome of a confirmed intent. Must be called
// exactly once per confirmation; a duplicate proof reference is a caller
// bug and surfaces as record_failed with a duplicate detail.
//
// A failure here is bookkeeping only: the on-chain payment has already
// succeeded, so callers must never present it as a failed tip.
func (r *Recorder) Record(ctx context.Context, intent creatorjar.PaymentIntent, conf creatorjar.Confirmation) (*creatorjar.TipRecord, error) {
	total, err := creatorjar.ParseAmount(intent.Amount)
	if err != nil {
		return nil, err
	}

	record := creatorjar.TipRecord{
		ID:              uuid.NewString(),
		Sender:          intent.Sender,
		Recipient:       intent.Recipient,
		GrossAmount:     intent.Amount,
		MicroUnits:      total,
		ProofReference:  conf.ProofReference,
		Note:            intent.Note,
		PremiumUnlocked: r.policy.Unlocks(total),
		CreatedAt:       r.now().UTC(),
	}

	if err := r.store.Insert(ctx, record); err != nil {
		te := creatorjar.WrapTipError(creatorjar.ErrCodeRecordFailed, "failed to persist tip record", err)
		te.Details = map[string]interface{}{
			"proofReference": conf.ProofReference,
			"duplicate":      errors.Is(err, ErrDuplicateProof),
		}
		return nil, te
	}
	return &record, nil
}

var _ creatorjar.Recorder = (*Recorder)(nil)
