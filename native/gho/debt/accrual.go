package debt

import (
	"fmt"
	"math/big"

	"ghochain/native/fpmath"
)

const maxInterestBits = 128

// accrualOutcome captures the effects of advancing a user's debt position from
// PreviousIndex to the supplied index.
type accrualOutcome struct {
	// balanceIncrease is the real-value growth net of the applied discount.
	balanceIncrease *big.Int
	// discount is the real interest suppressed by the user's discount percent.
	discount *big.Int
	// discountScaled is the discount converted back to scaled units so it can
	// be burned from the scaled ledger.
	discountScaled *big.Int
}

// computeAccrual is the single source of the accrual formula. Both the
// mutating action path and the read-only balance projection call it so the
// two can never drift numerically. The index must be non-zero; the external
// protocol guarantees a positive, monotonically non-decreasing index.
func computeAccrual(scaledBalance, previousIndex, index *big.Int, discountPercent uint64) accrualOutcome {
	rawIncrease := fpmath.RayMul(scaledBalance, index)
	rawIncrease.Sub(rawIncrease, fpmath.RayMul(scaledBalance, previousIndex))

	out := accrualOutcome{
		balanceIncrease: rawIncrease,
		discount:        big.NewInt(0),
		discountScaled:  big.NewInt(0),
	}
	if rawIncrease.Sign() != 0 && discountPercent != 0 {
		out.discount = fpmath.PercentMul(rawIncrease, discountPercent)
		// Floor conversion on purpose: the half-up variant could round the
		// scaled discount above the scaled growth at a 100% discount.
		out.discountScaled = fpmath.RayDivUnchecked(out.discount, index)
		out.balanceIncrease = new(big.Int).Sub(rawIncrease, out.discount)
	}
	return out
}

// accrueDebtOnAction advances the user's recorded index and accumulates the
// realized interest. Overflow of the 128-bit interest accumulator is
// unreachable under correct usage and treated as an unrecoverable fault.
func accrueDebtOnAction(user *UserState, index *big.Int) accrualOutcome {
	out := computeAccrual(user.ScaledBalance, user.PreviousIndex, index, user.DiscountPercent)
	user.PreviousIndex = new(big.Int).Set(index)
	if out.balanceIncrease.Sign() != 0 {
		accumulated := new(big.Int).Add(user.AccumulatedDebtInterest, out.balanceIncrease)
		if accumulated.BitLen() > maxInterestBits {
			panic(fmt.Sprintf("debt engine: accumulated interest overflow for %s", user.Address.String()))
		}
		user.AccumulatedDebtInterest = accumulated
	}
	return out
}
