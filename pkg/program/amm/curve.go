package amm

import (
	"math/bits"

	"github.com/forge-markets/forge-server/pkg/ledger"
)

// Constant-product curve math. All intermediates are 128-bit so that
// reserve products near the uint64 ceiling never wrap. Rounding always
// favors the pool: deposits round the owed amounts up, withdrawals round
// the returned amounts down, and the swap output is floored.

func mulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ledger.ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ledger.ErrArithmeticOverflow
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, nil
}

func mulDivCeil(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ledger.ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ledger.ErrArithmeticOverflow
	}
	q, r := bits.Div64(hi, lo, den)
	if r > 0 {
		if q == ^uint64(0) {
			return 0, ledger.ErrArithmeticOverflow
		}
		q++
	}
	return q, nil
}

// DepositAmounts returns the reserves owed for minting lpAmount shares
// against the current reserves and share supply, rounded up.
func DepositAmounts(lpAmount, reserveX, reserveY, supply uint64) (x, y uint64, err error) {
	x, err = mulDivCeil(lpAmount, reserveX, supply)
	if err != nil {
		return 0, 0, err
	}
	y, err = mulDivCeil(lpAmount, reserveY, supply)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// WithdrawAmounts returns the reserves released for burning lpAmount shares,
// rounded down.
func WithdrawAmounts(lpAmount, reserveX, reserveY, supply uint64) (x, y uint64, err error) {
	x, err = mulDiv(lpAmount, reserveX, supply)
	if err != nil {
		return 0, 0, err
	}
	y, err = mulDiv(lpAmount, reserveY, supply)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// SwapOut prices an exact-in swap against the invariant k = reserveIn *
// reserveOut. The post-swap output reserve is rounded up before computing
// the payout, so k never decreases. The fee, in basis points, comes out of
// the payout.
func SwapOut(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (out, fee uint64, err error) {
	if reserveIn > ^uint64(0)-amountIn {
		return 0, 0, ledger.ErrArithmeticOverflow
	}
	newIn := reserveIn + amountIn

	// k / newIn < reserveOut since newIn > reserveIn, so the quotient fits.
	hi, lo := bits.Mul64(reserveIn, reserveOut)
	newOut, r := bits.Div64(hi, lo, newIn)
	if r > 0 {
		newOut++
	}
	if newOut > reserveOut {
		return 0, 0, ledger.ErrArithmeticOverflow
	}

	raw := reserveOut - newOut
	fee, err = mulDiv(raw, uint64(feeBps), MaxFeeBps)
	if err != nil {
		return 0, 0, err
	}
	return raw - fee, fee, nil
}
