package amm_test

import (
	"math"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/amm"
)

func TestSwapOut(t *testing.T) {
	for _, tc := range []struct {
		name       string
		amountIn   uint64
		reserveIn  uint64
		reserveOut uint64
		feeBps     uint16
		out        uint64
		fee        uint64
	}{
		// ceil(1_000_000 / 1_100) = 910, raw out 90, fee rounds to zero
		{name: "small pool", amountIn: 100, reserveIn: 1_000, reserveOut: 1_000, feeBps: 30, out: 90, fee: 0},
		// ceil(1e12 / 1_100_000) = 909_091, raw out 90_909, fee 272
		{name: "large pool", amountIn: 100_000, reserveIn: 1_000_000, reserveOut: 1_000_000, feeBps: 30, out: 90_637, fee: 272},
		{name: "no fee", amountIn: 100_000, reserveIn: 1_000_000, reserveOut: 1_000_000, feeBps: 0, out: 90_909, fee: 0},
		// Input too small to move the curve: the payout rounds to nothing.
		{name: "dust input", amountIn: 1, reserveIn: 100_000, reserveOut: 100_000, feeBps: 30, out: 0, fee: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, fee, err := amm.SwapOut(tc.amountIn, tc.reserveIn, tc.reserveOut, tc.feeBps)
			require.NoError(t, err)
			assert.Equal(t, tc.out, out)
			assert.Equal(t, tc.fee, fee)

			// The invariant never decreases across the trade.
			newIn := tc.reserveIn + tc.amountIn
			newOut := tc.reserveOut - out - fee
			assert.True(t, uint64mul128GE(newIn, newOut, tc.reserveIn, tc.reserveOut))
		})
	}
}

// uint64mul128GE reports a*b >= c*d without overflowing.
func uint64mul128GE(a, b, c, d uint64) bool {
	abHi, abLo := bits.Mul64(a, b)
	cdHi, cdLo := bits.Mul64(c, d)
	if abHi != cdHi {
		return abHi > cdHi
	}
	return abLo >= cdLo
}

func TestSwapOut_InputOverflow(t *testing.T) {
	_, _, err := amm.SwapOut(math.MaxUint64, 2, 2, 0)
	assert.Equal(t, ledger.ErrArithmeticOverflow, err)
}

func TestDepositAmounts_RoundsUp(t *testing.T) {
	x, y, err := amm.DepositAmounts(1, 10, 10, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, x)
	assert.EqualValues(t, 4, y)

	// Exact proportions do not round.
	x, y, err = amm.DepositAmounts(5, 100, 200, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 50, x)
	assert.EqualValues(t, 100, y)
}

func TestWithdrawAmounts_RoundsDown(t *testing.T) {
	x, y, err := amm.WithdrawAmounts(1, 10, 10, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, x)
	assert.EqualValues(t, 3, y)
}

func TestCurve_Overflow(t *testing.T) {
	_, _, err := amm.WithdrawAmounts(math.MaxUint64, math.MaxUint64, 1, 1)
	assert.Equal(t, ledger.ErrArithmeticOverflow, err)

	_, _, err = amm.DepositAmounts(math.MaxUint64, math.MaxUint64, 1, 1)
	assert.Equal(t, ledger.ErrArithmeticOverflow, err)

	// Zero supply is a host bug, not a price.
	_, _, err = amm.WithdrawAmounts(1, 1, 1, 0)
	assert.Equal(t, ledger.ErrArithmeticOverflow, err)
}
