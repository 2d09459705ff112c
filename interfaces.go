package creatorjar

import "context"

// NodeClient is the network parameter/broadcast/status provider the core
// relies on. Implementations talk to a node's REST API; failures surface
// as TipErrors with ErrCodeNetworkUnavailable or ErrCodeSubmissionRejected.
type NodeClient interface {
	// SuggestedParams fetches the network's current transaction parameters.
	SuggestedParams(ctx context.Context) (Params, error)

	// BroadcastGroup submits a signed group as a single call and returns
	// the network-assigned proof reference. The network accepts or refuses
	// the group as a whole.
	BroadcastGroup(ctx context.Context, signed SignedGroup) (string, error)

	// Status reports the current round.
	Status(ctx context.Context) (NodeStatus, error)

	// WaitForRoundAfter blocks until the network advances past the given
	// round, then reports the new status.
	WaitForRoundAfter(ctx context.Context, round uint64) (NodeStatus, error)

	// PendingInfo looks up the confirmation state of a submitted
	// transaction by proof reference. Safe to call repeatedly; after
	// confirmation it re-observes the same confirmed round.
	PendingInfo(ctx context.Context, proofReference string) (PendingResult, error)
}

// GroupBuilder assembles the atomic two-transaction payment group for an
// intent. It does not sign or submit.
type GroupBuilder interface {
	BuildGroup(ctx context.Context, intent PaymentIntent, platform Address) (*TransactionGroup, error)
}

// GroupSigner obtains signatures for a transaction group from a
// user-controlled signer. The call suspends until the signer responds or
// ctx is cancelled; the returned payloads mirror the group's ordering
// exactly.
//
// Implementations include the wallet bridge (external agent, may reject or
// never respond) and the local dev signer.
type GroupSigner interface {
	SignGroup(ctx context.Context, group *TransactionGroup, signer Address) (SignedGroup, error)
}

// ConfirmationWatcher broadcasts a signed group and waits for finality.
// On a confirmation timeout the returned Confirmation still carries the
// proof reference alongside the error.
type ConfirmationWatcher interface {
	SubmitAndConfirm(ctx context.Context, signed SignedGroup) (Confirmation, error)
}

// Recorder persists the outcome of one confirmed tip, exactly once per
// confirmation. A failure here is bookkeeping only; the payment has
// already committed on-chain.
type Recorder interface {
	Record(ctx context.Context, intent PaymentIntent, conf Confirmation) (*TipRecord, error)
}

// AccessGate answers whether a tipper has unlocked a creator's gated
// content. Pure read; safe to call repeatedly and concurrently.
type AccessGate interface {
	HasAccess(ctx context.Context, tipper, creator Address) (bool, error)
}
