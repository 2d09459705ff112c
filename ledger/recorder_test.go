package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorjar/creatorjar"
)

func TestRecorder_Record(t *testing.T) {
	store := NewMemoryStore()
	r := NewRecorder(store, creatorjar.DefaultFeePolicy())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	intent := creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "10.0", Note: "thanks"}
	conf := creatorjar.Confirmation{ProofReference: "TX1", CommittedRound: 42}

	rec, err := r.Record(context.Background(), intent, conf)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, creatorjar.Address("alice"), rec.Sender)
	assert.Equal(t, "10.0", rec.GrossAmount)
	assert.Equal(t, uint64(10_000_000), rec.MicroUnits)
	assert.Equal(t, "TX1", rec.ProofReference)
	assert.Equal(t, "thanks", rec.Note)
	assert.True(t, rec.PremiumUnlocked)
	assert.Equal(t, fixed, rec.CreatedAt)

	stored, err := store.Query(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, *rec, stored[0])
}

func TestRecorder_PremiumDecidedAtWriteTime(t *testing.T) {
	store := NewMemoryStore()
	r := NewRecorder(store, creatorjar.DefaultFeePolicy())

	rec, err := r.Record(context.Background(),
		creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "9.99"},
		creatorjar.Confirmation{ProofReference: "TX1"})
	require.NoError(t, err)
	assert.False(t, rec.PremiumUnlocked)

	// A lower threshold applies only to records written under it.
	r2 := NewRecorder(store, creatorjar.FeePolicy{FeeBps: 200, MinShare: 1000, GatingThreshold: 5_000_000})
	rec2, err := r2.Record(context.Background(),
		creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "9.99"},
		creatorjar.Confirmation{ProofReference: "TX2"})
	require.NoError(t, err)
	assert.True(t, rec2.PremiumUnlocked)

	stored, err := store.Query(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.False(t, stored[1].PremiumUnlocked)
}

func TestRecorder_DuplicateProof(t *testing.T) {
	r := NewRecorder(NewMemoryStore(), creatorjar.DefaultFeePolicy())
	intent := creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "10.0"}
	conf := creatorjar.Confirmation{ProofReference: "TX1"}

	_, err := r.Record(context.Background(), intent, conf)
	require.NoError(t, err)

	_, err = r.Record(context.Background(), intent, conf)
	require.Error(t, err)
	assert.Equal(t, creatorjar.ErrCodeRecordFailed, creatorjar.CodeOf(err))

	var te *creatorjar.TipError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "TX1", te.Details["proofReference"])
	assert.Equal(t, true, te.Details["duplicate"])
}

func TestRecorder_InvalidAmount(t *testing.T) {
	r := NewRecorder(NewMemoryStore(), creatorjar.DefaultFeePolicy())

	_, err := r.Record(context.Background(),
		creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "abc"},
		creatorjar.Confirmation{ProofReference: "TX1"})
	require.Error(t, err)
	assert.Equal(t, creatorjar.ErrCodeInvalidAmount, creatorjar.CodeOf(err))
}

func TestGate_HasAccess(t *testing.T) {
	store := NewMemoryStore()
	gate := NewGate(store)
	r := NewRecorder(store, creatorjar.DefaultFeePolicy())
	ctx := context.Background()

	ok, err := gate.HasAccess(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	// A below-threshold tip records fine but unlocks nothing.
	_, err = r.Record(ctx,
		creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "9.99"},
		creatorjar.Confirmation{ProofReference: "TX1"})
	require.NoError(t, err)

	ok, err = gate.HasAccess(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Record(ctx,
		creatorjar.PaymentIntent{Sender: "alice", Recipient: "carol", Amount: "10.0"},
		creatorjar.Confirmation{ProofReference: "TX2"})
	require.NoError(t, err)

	ok, err = gate.HasAccess(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.True(t, ok)

	// Access is per pair, not per tipper or per creator.
	ok, err = gate.HasAccess(ctx, "alice", "dave")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gate.HasAccess(ctx, "bob", "carol")
	require.NoError(t, err)
	assert.False(t, ok)
}
