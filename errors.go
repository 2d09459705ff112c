package creatorjar

import (
	"errors"
	"fmt"
)

// TipError represents a tip-flow-specific error
type TipError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	cause error
}

func (e *TipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TipError) Unwrap() error {
	return e.cause
}

// Common error codes
//
// Codes up to and including ErrCodeConnectionFailed leave no residual state
// behind: the whole flow is safe to retry from the top. From
// ErrCodeSubmissionRejected onward the specific transaction group must be
// discarded and rebuilt, since network parameters may have gone stale.
const (
	// ErrCodeInvalidRequest means the intent is malformed: a missing
	// sender or recipient, or sender and recipient being the same account.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeInvalidAmount means the amount is non-positive, non-numeric,
	// or truncates to zero micro-units.
	ErrCodeInvalidAmount = "invalid_amount"

	// ErrCodeAmountTooSmall means the split produced a share below the
	// minimum transferable unit.
	ErrCodeAmountTooSmall = "amount_too_small"

	// ErrCodeNetworkUnavailable means the node could not be reached for a
	// parameter fetch, broadcast, or status check.
	ErrCodeNetworkUnavailable = "network_unavailable"

	// ErrCodeUserRejected means the external wallet declined to sign.
	ErrCodeUserRejected = "user_rejected"

	// ErrCodeConnectionFailed means the external wallet agent is
	// unreachable or not installed.
	ErrCodeConnectionFailed = "connection_failed"

	// ErrCodeSubmissionRejected means the network refused the signed group
	// (stale validity window, insufficient balance, ...).
	ErrCodeSubmissionRejected = "submission_rejected"

	// ErrCodeConfirmationTimeout means the broadcast was accepted but no
	// confirmation was observed within the round budget. The payment may
	// still commit later; the proof reference is carried in Details.
	ErrCodeConfirmationTimeout = "confirmation_timeout"

	// ErrCodeRecordFailed means the on-chain payment succeeded but the tip
	// record could not be persisted. This is a bookkeeping failure, never a
	// payment failure.
	ErrCodeRecordFailed = "record_failed"
)

// NewTipError creates a new tip error
func NewTipError(code, message string, details map[string]interface{}) *TipError {
	return &TipError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WrapTipError creates a tip error that wraps an underlying cause.
func WrapTipError(code, message string, cause error) *TipError {
	return &TipError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// CodeOf extracts the error code from err, or returns "" if err is not a
// TipError anywhere in its chain.
func CodeOf(err error) string {
	var te *TipError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// Recoverable reports whether the flow can be retried from the top with no
// cleanup: no group was broadcast and no residual state exists.
func Recoverable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidRequest, ErrCodeInvalidAmount, ErrCodeAmountTooSmall,
		ErrCodeNetworkUnavailable, ErrCodeUserRejected, ErrCodeConnectionFailed:
		return true
	}
	return false
}
