package creatorjar

import "context"

// Lifecycle hooks let the surrounding application observe the tip
// pipeline (progress UI, metrics, alerting) without the library logging
// on its behalf. Hooks are observe-only: they cannot abort the flow, and
// a slow hook delays the flow it runs in.

// BeforeSignHook runs after the group is built, before the signer
// round-trip begins.
type BeforeSignHook func(ctx context.Context, intent PaymentIntent, group *TransactionGroup)

// AfterConfirmHook runs once the network has committed the group, before
// the ledger write.
type AfterConfirmHook func(ctx context.Context, intent PaymentIntent, conf Confirmation)

// RecordFailureHook runs when the ledger write fails after a successful
// on-chain confirmation.
type RecordFailureHook func(ctx context.Context, intent PaymentIntent, conf Confirmation, err error)

type tipHooks struct {
	beforeSign    []BeforeSignHook
	afterConfirm  []AfterConfirmHook
	recordFailure []RecordFailureHook
}

// OnBeforeSign registers a hook that runs before each signer round-trip.
func (s *TipService) OnBeforeSign(hook BeforeSignHook) *TipService {
	s.hooks.beforeSign = append(s.hooks.beforeSign, hook)
	return s
}

// OnAfterConfirm registers a hook that runs after each confirmation.
func (s *TipService) OnAfterConfirm(hook AfterConfirmHook) *TipService {
	s.hooks.afterConfirm = append(s.hooks.afterConfirm, hook)
	return s
}

// OnRecordFailure registers a hook that runs when a ledger write fails.
func (s *TipService) OnRecordFailure(hook RecordFailureHook) *TipService {
	s.hooks.recordFailure = append(s.hooks.recordFailure, hook)
	return s
}

func (h *tipHooks) runBeforeSign(ctx context.Context, intent PaymentIntent, group *TransactionGroup) {
	for _, hook := range h.beforeSign {
		hook(ctx, intent, group)
	}
}

func (h *tipHooks) runAfterConfirm(ctx context.Context, intent PaymentIntent, conf Confirmation) {
	for _, hook := range h.afterConfirm {
		hook(ctx, intent, conf)
	}
}

func (h *tipHooks) runRecordFailure(ctx context.Context, intent PaymentIntent, conf Confirmation, err error) {
	for _, hook := range h.recordFailure {
		hook(ctx, intent, conf, err)
	}
}
