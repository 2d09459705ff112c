// Package confirm broadcasts signed groups and waits for network
// finality with a bounded round budget.
package confirm

import (
	"context"
	"fmt"

	"github.com/creatorjar/creatorjar"
	"github.com/creatorjar/creatorjar/logging"
)

// DefaultWaitRounds is the default confirmation budget. Polling past it
// surfaces confirmation_timeout; the group may still commit later, so the
// proof reference is preserved for manual lookup.
const DefaultWaitRounds = 10

// Option configures the watcher.
type Option func(*Watcher)

// WithWaitRounds overrides the confirmation round budget.
func WithWaitRounds(rounds uint64) Option {
	return func(w *Watcher) {
		w.waitRounds = rounds
	}
}

// WithLogger attaches a logger for pipeline visibility.
func WithLogger(log logging.Logger) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// Watcher submits signed groups and polls the network round by round
// until the group is confirmed or the budget is exhausted.
type Watcher struct {
	node       creatorjar.NodeClient
	waitRounds uint64
	log        logging.Logger
}

// New creates a confirmation watcher over the given node client.
func New(node creatorjar.NodeClient, opts ...Option) *Watcher {
	w := &Watcher{
		node:       node,
		waitRounds: DefaultWaitRounds,
		log:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SubmitAndConfirm broadcasts the signed group as a single call, then
// polls: read the current round, wait for the next round boundary, check
// the pending state; repeat until confirmed or the round budget expires.
//
// Once broadcast succeeds the flow is committed to waiting: an in-flight
// broadcast cannot be un-sent, so ctx cancellation here abandons the wait
// but not the payment. On confirmation_timeout the returned Confirmation
// still carries the proof reference.
func (w *Watcher) SubmitAndConfirm(ctx context.Context, signed creatorjar.SignedGroup) (creatorjar.Confirmation, error) {
	proofRef, err := w.node.BroadcastGroup(ctx, signed)
	if err != nil {
		return creatorjar.Confirmation{}, err
	}
	w.log.Info(ctx, "group broadcast accepted", "proofReference", proofRef)

	status, err := w.node.Status(ctx)
	if err != nil {
		return creatorjar.Confirmation{ProofReference: proofRef}, err
	}

	round := status.LastRound
	deadline := round + w.waitRounds

	for {
		pending, err := w.node.PendingInfo(ctx, proofRef)
		if err != nil {
			return creatorjar.Confirmation{ProofReference: proofRef}, err
		}
		if pending.ConfirmedRound > 0 {
			w.log.Info(ctx, "group confirmed", "proofReference", proofRef, "round", pending.ConfirmedRound)
			return creatorjar.Confirmation{
				ProofReference: proofRef,
				CommittedRound: pending.ConfirmedRound,
			}, nil
		}
		if pending.PoolError != "" {
			return creatorjar.Confirmation{ProofReference: proofRef}, creatorjar.NewTipError(
				creatorjar.ErrCodeSubmissionRejected,
				fmt.Sprintf("network dropped the group: %s", pending.PoolError),
				map[string]interface{}{"proofReference": proofRef},
			)
		}

		if round >= deadline {
			w.log.Warn(ctx, "confirmation budget exhausted", "proofReference", proofRef, "rounds", w.waitRounds)
			return creatorjar.Confirmation{ProofReference: proofRef}, creatorjar.NewTipError(
				creatorjar.ErrCodeConfirmationTimeout,
				fmt.Sprintf("no confirmation within %d rounds", w.waitRounds),
				map[string]interface{}{"proofReference": proofRef},
			)
		}

		status, err = w.node.WaitForRoundAfter(ctx, round)
		if err != nil {
			return creatorjar.Confirmation{ProofReference: proofRef}, err
		}
		if status.LastRound > round {
			round = status.LastRound
		} else {
			round++
		}
	}
}

var _ creatorjar.ConfirmationWatcher = (*Watcher)(nil)
