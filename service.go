package creatorjar

import (
	"context"
	"fmt"

	"github.com/creatorjar/creatorjar/logging"
)

// ServiceConfig wires the tip pipeline's collaborators. Builder, Signer,
// Watcher, Recorder, and PlatformAddress are required; Policy and Logger
// are optional.
type ServiceConfig struct {
	Builder  GroupBuilder
	Signer   GroupSigner
	Watcher  ConfirmationWatcher
	Recorder Recorder

	// PlatformAddress receives the fee leg of every group.
	PlatformAddress Address

	// Policy defaults to DefaultFeePolicy when nil.
	Policy *FeePolicy

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// TipService orchestrates the full tip flow:
// split -> build -> sign -> submit -> confirm -> record.
//
// Concurrently initiated flows are fully independent: each operates on its
// own intent, group, and signed payload, and no state is shared across
// flows. The network's all-or-nothing group commitment means no cross-flow
// interleaving can produce a partially applied payment.
type TipService struct {
	splitter *Splitter
	builder  GroupBuilder
	signer   GroupSigner
	watcher  ConfirmationWatcher
	recorder Recorder
	platform Address
	log      logging.Logger

	hooks tipHooks
}

// ServiceOption configures the service.
type ServiceOption func(*TipService)

// WithServiceLogger attaches a logger for pipeline visibility.
func WithServiceLogger(log logging.Logger) ServiceOption {
	return func(s *TipService) {
		s.log = log
	}
}

// NewTipService creates the orchestrator. Returns an error if a required
// collaborator is missing.
func NewTipService(cfg ServiceConfig, opts ...ServiceOption) (*TipService, error) {
	switch {
	case cfg.Builder == nil:
		return nil, fmt.Errorf("group builder is required")
	case cfg.Signer == nil:
		return nil, fmt.Errorf("group signer is required")
	case cfg.Watcher == nil:
		return nil, fmt.Errorf("confirmation watcher is required")
	case cfg.Recorder == nil:
		return nil, fmt.Errorf("recorder is required")
	case cfg.PlatformAddress == "":
		return nil, fmt.Errorf("platform address is required")
	}

	policy := DefaultFeePolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	s := &TipService{
		splitter: NewSplitter(policy),
		builder:  cfg.Builder,
		signer:   cfg.Signer,
		watcher:  cfg.Watcher,
		recorder: cfg.Recorder,
		platform: cfg.PlatformAddress,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CalculateSplit computes the exact fee breakdown for live display.
// Synchronous; no network interaction.
func (s *TipService) CalculateSplit(amount string) (SplitAmounts, error) {
	return s.splitter.Split(amount)
}

// Policy returns the service's fee policy.
func (s *TipService) Policy() FeePolicy {
	return s.splitter.Policy()
}

// SendTip runs one tip flow to a terminal state.
//
// Error semantics follow the recovery taxonomy: everything before
// broadcast leaves no residual state and is safe to retry from the top
// with a freshly built group. After broadcast, a confirmation_timeout
// returns the receipt with the proof reference set so the caller can check
// status later; a record_failed also returns the receipt, because the
// payment itself has already committed.
func (s *TipService) SendTip(ctx context.Context, intent PaymentIntent) (*TipReceipt, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	group, err := s.builder.BuildGroup(ctx, intent, s.platform)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "group built", "sender", intent.Sender, "recipient", intent.Recipient)

	s.hooks.runBeforeSign(ctx, intent, group)

	signed, err := s.signer.SignGroup(ctx, group, intent.Sender)
	if err != nil {
		return nil, err
	}

	conf, err := s.watcher.SubmitAndConfirm(ctx, signed)
	if err != nil {
		if conf.ProofReference != "" && CodeOf(err) == ErrCodeConfirmationTimeout {
			// Ambiguous outcome: the group may still commit. Hand the
			// proof reference back for later manual lookup.
			return &TipReceipt{ProofReference: conf.ProofReference}, err
		}
		return nil, err
	}

	s.hooks.runAfterConfirm(ctx, intent, conf)
	s.log.Info(ctx, "tip confirmed",
		"proofReference", conf.ProofReference, "round", conf.CommittedRound)

	receipt := &TipReceipt{
		ProofReference: conf.ProofReference,
		CommittedRound: conf.CommittedRound,
	}

	record, err := s.recorder.Record(ctx, intent, conf)
	if err != nil {
		// Bookkeeping failure with a successful payment underneath: the
		// receipt still reflects on-chain success.
		s.hooks.runRecordFailure(ctx, intent, conf, err)
		s.log.Error(ctx, "tip recorded on-chain but ledger write failed",
			"proofReference", conf.ProofReference, "error", err)
		if total, perr := ParseAmount(intent.Amount); perr == nil {
			receipt.PremiumUnlocked = s.splitter.Policy().Unlocks(total)
		}
		return receipt, err
	}

	receipt.PremiumUnlocked = record.PremiumUnlocked
	return receipt, nil
}

func validateIntent(intent PaymentIntent) error {
	if intent.Sender == "" {
		return NewTipError(ErrCodeInvalidRequest, "sender address is required", nil)
	}
	if intent.Recipient == "" {
		return NewTipError(ErrCodeInvalidRequest, "recipient address is required", nil)
	}
	if intent.Sender == intent.Recipient {
		return NewTipError(ErrCodeInvalidRequest, "sender and recipient must differ", nil)
	}
	return nil
}
