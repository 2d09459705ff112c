package creatorjar

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_FeeBreakdown(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	tests := []struct {
		amount    string
		total     uint64
		recipient uint64
		platform  uint64
	}{
		{"10.0", 10_000_000, 9_800_000, 200_000},
		{"10", 10_000_000, 9_800_000, 200_000},
		{"1.0", 1_000_000, 980_000, 20_000},
		{"0.00009", 90, 89, 1},
		{"0.000001", 1, 1, 0},
		{"123.456789", 123_456_789, 120_987_654, 2_469_135},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			split, err := s.Split(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.total, split.Total)
			assert.Equal(t, tt.recipient, split.Recipient)
			assert.Equal(t, tt.platform, split.Platform)
		})
	}
}

func TestSplit_SumInvariant(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	// No micro-unit is ever gained or lost, including amounts where the
	// fee doesn't divide evenly.
	for _, amount := range []string{"0.000049", "0.0001", "0.333333", "1.999999", "7", "49.999999", "1000000"} {
		split, err := s.Split(amount)
		require.NoError(t, err, amount)
		assert.Equal(t, split.Total, split.Recipient+split.Platform, amount)
	}
}

func TestSplit_PlatformShareMonotonic(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	var prev uint64
	for i := 1; i <= 2000; i++ {
		split := s.SplitMicro(uint64(i))
		assert.GreaterOrEqual(t, split.Platform, prev, "total=%d", i)
		prev = split.Platform
	}
}

func TestSplit_InvalidAmounts(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	for _, amount := range []string{
		"", "0", "0.0", "0.0000001", "-1", "+1", "-0.5",
		"abc", "1.2.3", "1,5", "10.", ".", "1e6", "NaN", "Inf",
		"99999999999999999999",
	} {
		t.Run(fmt.Sprintf("%q", amount), func(t *testing.T) {
			_, err := s.Split(amount)
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidAmount, CodeOf(err))
		})
	}
}

func TestSplit_TruncatesBeyondExponent(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	// Extra decimal places are truncated toward zero, never rounded up.
	split, err := s.Split("1.9999999")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_999_999), split.Total)
}

func TestParseAmount_UpperBound(t *testing.T) {
	// The largest representable amount still leaves room for a full
	// six-digit fraction; one whole unit more must be rejected, not
	// silently wrapped.
	total, err := ParseAmount("18446744073708.999999")
	require.NoError(t, err)
	assert.Equal(t, uint64(18_446_744_073_708_999_999), total)

	_, err = ParseAmount("18446744073709.999999")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidAmount, CodeOf(err))

	_, err = ParseAmount("18446744073709")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidAmount, CodeOf(err))
}

func TestSplitMicro_LargeAmounts(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	// The fee multiply must not wrap for totals near the top of the
	// accepted range.
	split := s.SplitMicro(100_000_000_000_000_000)
	assert.Equal(t, uint64(2_000_000_000_000_000), split.Platform)
	assert.Equal(t, split.Total, split.Recipient+split.Platform)

	split = s.SplitMicro(18_446_744_073_708_999_999)
	assert.Equal(t, uint64(368_934_881_474_179_999), split.Platform)
	assert.Equal(t, split.Total, split.Recipient+split.Platform)
}

func TestSplit_Deterministic(t *testing.T) {
	s := NewSplitter(DefaultFeePolicy())

	a, err := s.Split("42.123456")
	require.NoError(t, err)
	b, err := s.Split("42.123456")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFeePolicy_Unlocks(t *testing.T) {
	p := DefaultFeePolicy()

	assert.True(t, p.Unlocks(10_000_000))
	assert.True(t, p.Unlocks(10_000_001))
	assert.False(t, p.Unlocks(9_990_000))
}

func TestParseAmount_LeadingDotAndZeros(t *testing.T) {
	total, err := ParseAmount(".5")
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), total)

	total, err = ParseAmount("007")
	require.NoError(t, err)
	assert.Equal(t, uint64(7_000_000), total)
}
