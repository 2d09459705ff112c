package creatorjar

import (
	"fmt"
	"math/bits"
	"strings"
)

// FeePolicy holds the platform's payment policy constants. Values are
// injected at construction time rather than scattered as literals so they
// are testable and auditable.
type FeePolicy struct {
	// FeeBps is the platform fee in basis points (200 = 2%).
	FeeBps uint64

	// MinShare is the minimum transferable amount per transaction leg, in
	// micro-units. Splits producing a smaller share are rejected by the
	// group builder.
	MinShare uint64

	// GatingThreshold is the gross amount, in micro-units, at or above
	// which a tip unlocks the creator's premium content.
	GatingThreshold uint64
}

// DefaultFeePolicy returns the platform's standard policy: 2% fee,
// 1000 micro-unit minimum share, 10-unit gating threshold.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		FeeBps:          200,
		MinShare:        1000,
		GatingThreshold: 10 * MicroUnitsPerUnit,
	}
}

// Unlocks reports whether a gross amount meets the gating threshold.
func (p FeePolicy) Unlocks(totalMicroUnits uint64) bool {
	return totalMicroUnits >= p.GatingThreshold
}

// Splitter converts gross amounts into exact creator/platform shares.
// Deterministic and side-effect free.
type Splitter struct {
	policy FeePolicy
}

// NewSplitter creates a splitter with the given policy.
func NewSplitter(policy FeePolicy) *Splitter {
	return &Splitter{policy: policy}
}

// Policy returns the splitter's fee policy.
func (s *Splitter) Policy() FeePolicy {
	return s.policy
}

// Split converts a decimal gross amount into exact integer shares.
//
// The platform share is floor(total * feeRate); the recipient share is the
// remainder, so the two always sum to the total by construction. Split
// does not enforce the network minimum share; that is the group builder's
// job.
func (s *Splitter) Split(amount string) (SplitAmounts, error) {
	total, err := ParseAmount(amount)
	if err != nil {
		return SplitAmounts{}, err
	}
	return s.SplitMicro(total), nil
}

// SplitMicro splits an amount already expressed in micro-units.
func (s *Splitter) SplitMicro(total uint64) SplitAmounts {
	// Widening multiply: total * FeeBps can exceed 64 bits for large
	// amounts. FeeBps never exceeds 10_000, so the quotient fits.
	hi, lo := bits.Mul64(total, s.policy.FeeBps)
	platform, _ := bits.Div64(hi, lo, 10_000)
	return SplitAmounts{
		Total:     total,
		Recipient: total - platform,
		Platform:  platform,
	}
}

// ParseAmount converts a positive decimal string into micro-units,
// truncating toward zero beyond six decimal places. Truncation (never
// round-to-nearest) is what guarantees the split sum invariant.
//
// Returns a TipError with ErrCodeInvalidAmount for empty, signed,
// non-numeric, or zero-valued input.
func ParseAmount(amount string) (uint64, error) {
	whole, frac, err := splitDecimal(amount)
	if err != nil {
		return 0, err
	}

	// The whole part must leave room for a full six-digit fraction on
	// top, or the fractional addition below could wrap.
	const maxWhole = (^uint64(0) - (MicroUnitsPerUnit - 1)) / MicroUnitsPerUnit
	var total uint64
	for _, c := range whole {
		d := uint64(c - '0')
		if total > (maxWhole-d)/10 {
			return 0, invalidAmount(amount, "amount out of range")
		}
		total = total*10 + d
	}
	total *= MicroUnitsPerUnit

	// Truncate the fraction beyond the currency exponent.
	if len(frac) > MicroUnitExponent {
		frac = frac[:MicroUnitExponent]
	}
	scale := uint64(MicroUnitsPerUnit)
	for _, c := range frac {
		scale /= 10
		total += uint64(c-'0') * scale
	}

	if total == 0 {
		return 0, invalidAmount(amount, "amount must be positive")
	}
	return total, nil
}

// splitDecimal validates the textual form and returns the whole and
// fractional digit runs.
func splitDecimal(amount string) (string, string, error) {
	if amount == "" {
		return "", "", invalidAmount(amount, "amount is required")
	}
	if strings.HasPrefix(amount, "-") || strings.HasPrefix(amount, "+") {
		return "", "", invalidAmount(amount, "amount must be positive")
	}

	whole, frac, hasFrac := strings.Cut(amount, ".")
	if whole == "" && frac == "" {
		return "", "", invalidAmount(amount, "amount is not a number")
	}
	if hasFrac && frac == "" {
		return "", "", invalidAmount(amount, "amount is not a number")
	}
	for _, c := range whole + frac {
		if c < '0' || c > '9' {
			return "", "", invalidAmount(amount, "amount is not a number")
		}
	}
	return whole, frac, nil
}

func invalidAmount(amount, reason string) *TipError {
	return NewTipError(ErrCodeInvalidAmount, fmt.Sprintf("%s: %q", reason, amount), nil)
}
