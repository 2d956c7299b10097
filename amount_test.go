package tze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmount(t *testing.T) {
	tests := []struct {
		name  string
		in    int64
		valid bool
	}{
		{"zero", 0, true},
		{"max", MaxMoney, true},
		{"min", -MaxMoney, true},
		{"above max", MaxMoney + 1, false},
		{"below min", -MaxMoney - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAmount(tt.in)
			if !tt.valid {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Amount(tt.in), a)
		})
	}

	_, err := NonNegativeAmount(-1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmountCheckedArithmetic(t *testing.T) {
	maxAmt := Amount(MaxMoney)

	sum, ok := Amount(50).Add(20)
	require.True(t, ok)
	assert.Equal(t, Amount(70), sum)

	_, ok = maxAmt.Add(1)
	assert.False(t, ok)

	diff, ok := Amount(5).Sub(8)
	require.True(t, ok)
	assert.Equal(t, Amount(-3), diff)
	assert.True(t, diff.IsNegative())
	assert.False(t, diff.IsPositive())

	_, ok = (-maxAmt).Sub(1)
	assert.False(t, ok)

	total, ok := SumAmounts()
	require.True(t, ok)
	assert.Equal(t, ZeroAmount, total)

	// 中间结果越界即失败，即使最终结果在范围内
	_, ok = SumAmounts(maxAmt, 1, -1)
	assert.False(t, ok)
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "1.5 ZEC", Amount(150000000).String())
	assert.Equal(t, "0 ZEC", ZeroAmount.String())
}
