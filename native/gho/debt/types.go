package debt

import (
	"math/big"

	"ghochain/crypto"
)

// UserState carries the full debt position for a single user. Together with
// the current external index these fields determine the user's real debt at
// any time.
type UserState struct {
	// Address is the debt holder identity.
	Address crypto.Address
	// ScaledBalance is the debt stored independent of the compounding index;
	// real balance = ScaledBalance * index / RAY.
	ScaledBalance *big.Int
	// PreviousIndex is the external index observed at the user's last accrual.
	PreviousIndex *big.Int
	// AccumulatedDebtInterest tracks interest accrued on top of principal,
	// bounded to an unsigned 128-bit range.
	AccumulatedDebtInterest *big.Int
	// DiscountPercent is the basis-point suppression applied to interest
	// growth (0-10000).
	DiscountPercent uint64
	// RebalanceTimestamp is zero when no discount lock is active, otherwise
	// the epoch second before which external rebalances are rejected.
	RebalanceTimestamp uint64
}

// Clone returns a deep copy to keep engine internals from leaking mutable
// pointers to callers.
func (u *UserState) Clone() *UserState {
	if u == nil {
		return nil
	}
	clone := &UserState{
		Address:            u.Address,
		DiscountPercent:    u.DiscountPercent,
		RebalanceTimestamp: u.RebalanceTimestamp,
	}
	if u.ScaledBalance != nil {
		clone.ScaledBalance = new(big.Int).Set(u.ScaledBalance)
	}
	if u.PreviousIndex != nil {
		clone.PreviousIndex = new(big.Int).Set(u.PreviousIndex)
	}
	if u.AccumulatedDebtInterest != nil {
		clone.AccumulatedDebtInterest = new(big.Int).Set(u.AccumulatedDebtInterest)
	}
	return clone
}

func ensureUserDefaults(u *UserState) {
	if u == nil {
		return
	}
	if u.ScaledBalance == nil {
		u.ScaledBalance = big.NewInt(0)
	}
	if u.PreviousIndex == nil {
		u.PreviousIndex = big.NewInt(0)
	}
	if u.AccumulatedDebtInterest == nil {
		u.AccumulatedDebtInterest = big.NewInt(0)
	}
}
