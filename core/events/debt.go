package events

import (
	"math/big"
	"strconv"

	"ghochain/core/types"
	"ghochain/crypto"
)

const (
	// TypeDebtMint is emitted when a user's real debt grows, covering both
	// freshly minted principal and interest compounded on the action.
	TypeDebtMint = "ghodebt.mint"
	// TypeDebtBurn is emitted when a user's real debt shrinks.
	TypeDebtBurn = "ghodebt.burn"
	// TypeDiscountPercentLocked is emitted whenever a user's discount percent
	// is (re)applied together with its rebalance lock.
	TypeDiscountPercentLocked = "ghodebt.discount.locked"
	// TypeDiscountRateStrategyUpdated is emitted when governance swaps the
	// discount rate strategy.
	TypeDiscountRateStrategyUpdated = "ghodebt.discount.strategy"
	// TypeDiscountTokenUpdated is emitted when governance swaps the discount
	// token reference.
	TypeDiscountTokenUpdated = "ghodebt.discount.token"
	// TypeDiscountLockPeriodUpdated is emitted when governance changes the
	// rebalance lock period.
	TypeDiscountLockPeriodUpdated = "ghodebt.discount.lock_period"
	// TypeATokenSet is emitted exactly once when the AToken reference is set.
	TypeATokenSet = "ghodebt.atoken.set"
)

// DebtMint mirrors the transfer-style mint event of the debt ledger. Value is
// amount plus the interest that compounded on this action.
type DebtMint struct {
	Caller     crypto.Address
	OnBehalfOf crypto.Address
	Value      *big.Int
	Index      *big.Int
}

func (DebtMint) EventType() string { return TypeDebtMint }

func (e DebtMint) Event() *types.Event {
	return &types.Event{
		Type: TypeDebtMint,
		Attributes: map[string]string{
			"caller":     addrString(e.Caller),
			"onBehalfOf": addrString(e.OnBehalfOf),
			"value":      bigString(e.Value),
			"index":      bigString(e.Index),
		},
	}
}

// DebtBurn mirrors the transfer-style burn event of the debt ledger.
type DebtBurn struct {
	From  crypto.Address
	Value *big.Int
	Index *big.Int
}

func (DebtBurn) EventType() string { return TypeDebtBurn }

func (e DebtBurn) Event() *types.Event {
	return &types.Event{
		Type: TypeDebtBurn,
		Attributes: map[string]string{
			"from":  addrString(e.From),
			"value": bigString(e.Value),
			"index": bigString(e.Index),
		},
	}
}

// DiscountPercentLocked records the discount applied to a user and the
// timestamp until which external rebalances are locked out.
type DiscountPercentLocked struct {
	User               crypto.Address
	DiscountPercent    uint64
	RebalanceTimestamp uint64
}

func (DiscountPercentLocked) EventType() string { return TypeDiscountPercentLocked }

func (e DiscountPercentLocked) Event() *types.Event {
	return &types.Event{
		Type: TypeDiscountPercentLocked,
		Attributes: map[string]string{
			"user":               addrString(e.User),
			"discountPercent":    strconv.FormatUint(e.DiscountPercent, 10),
			"rebalanceTimestamp": strconv.FormatUint(e.RebalanceTimestamp, 10),
		},
	}
}

// DiscountRateStrategyUpdated records a strategy swap.
type DiscountRateStrategyUpdated struct {
	OldStrategy string
	NewStrategy string
}

func (DiscountRateStrategyUpdated) EventType() string { return TypeDiscountRateStrategyUpdated }

func (e DiscountRateStrategyUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeDiscountRateStrategyUpdated,
		Attributes: map[string]string{
			"oldStrategy": e.OldStrategy,
			"newStrategy": e.NewStrategy,
		},
	}
}

// DiscountTokenUpdated records a discount token swap.
type DiscountTokenUpdated struct {
	OldToken crypto.Address
	NewToken crypto.Address
}

func (DiscountTokenUpdated) EventType() string { return TypeDiscountTokenUpdated }

func (e DiscountTokenUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeDiscountTokenUpdated,
		Attributes: map[string]string{
			"oldToken": addrString(e.OldToken),
			"newToken": addrString(e.NewToken),
		},
	}
}

// DiscountLockPeriodUpdated records a lock period change in seconds.
type DiscountLockPeriodUpdated struct {
	OldLockPeriod uint64
	NewLockPeriod uint64
}

func (DiscountLockPeriodUpdated) EventType() string { return TypeDiscountLockPeriodUpdated }

func (e DiscountLockPeriodUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeDiscountLockPeriodUpdated,
		Attributes: map[string]string{
			"oldLockPeriod": strconv.FormatUint(e.OldLockPeriod, 10),
			"newLockPeriod": strconv.FormatUint(e.NewLockPeriod, 10),
		},
	}
}

// ATokenSet records the write-once AToken reference.
type ATokenSet struct {
	AToken crypto.Address
}

func (ATokenSet) EventType() string { return TypeATokenSet }

func (e ATokenSet) Event() *types.Event {
	return &types.Event{
		Type: TypeATokenSet,
		Attributes: map[string]string{
			"aToken": addrString(e.AToken),
		},
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
