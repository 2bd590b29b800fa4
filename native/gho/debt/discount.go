package debt

import (
	"math/big"

	"ghochain/core/events"
	"ghochain/crypto"
	"ghochain/observability"
)

// maxDiscountBps caps strategies at a full discount.
const maxDiscountBps = 10_000

// maxTimestampBits bounds rebalance timestamps to the stored 40-bit range.
const maxTimestampBits = 40

// wad is the 1e18 unit the discount token is denominated in.
var wad = big.NewInt(1_000_000_000_000_000_000)

// DiscountRateStrategy computes the discount percent for a user given their
// current debt balance and discount token balance, both in wei.
type DiscountRateStrategy interface {
	Name() string
	CalculateDiscountRate(debtBalance, discountTokenBalance *big.Int) uint64
}

// RatioDiscountRateStrategy grants the full discount rate while the user's
// discount token holdings cover their debt, scaling down linearly otherwise.
type RatioDiscountRateStrategy struct {
	// DiscountRateBps is the maximum discount granted, in basis points.
	DiscountRateBps uint64
	// DebtPerDiscountToken is the wei debt amount one wei of discount token
	// makes eligible for the discount.
	DebtPerDiscountToken *big.Int
	// MinDiscountTokenBalance below which no discount applies.
	MinDiscountTokenBalance *big.Int
	// MinDebtBalance below which no discount applies.
	MinDebtBalance *big.Int
}

func (RatioDiscountRateStrategy) Name() string { return "ratio" }

func (s RatioDiscountRateStrategy) CalculateDiscountRate(debtBalance, discountTokenBalance *big.Int) uint64 {
	if debtBalance == nil || discountTokenBalance == nil {
		return 0
	}
	// A negative eligibility would flip the ratio arithmetic below; no
	// holdings means no discount.
	if discountTokenBalance.Sign() < 0 {
		return 0
	}
	if s.MinDiscountTokenBalance != nil && discountTokenBalance.Cmp(s.MinDiscountTokenBalance) < 0 {
		return 0
	}
	if s.MinDebtBalance != nil && debtBalance.Cmp(s.MinDebtBalance) < 0 {
		return 0
	}
	if debtBalance.Sign() == 0 {
		return 0
	}
	rate := s.DiscountRateBps
	if rate > maxDiscountBps {
		rate = maxDiscountBps
	}
	perToken := s.DebtPerDiscountToken
	if perToken == nil || perToken.Sign() == 0 {
		return rate
	}
	discountedBalance := new(big.Int).Mul(discountTokenBalance, perToken)
	discountedBalance.Quo(discountedBalance, wad)
	if discountedBalance.Cmp(debtBalance) >= 0 {
		return rate
	}
	scaled := new(big.Int).Mul(discountedBalance, new(big.Int).SetUint64(rate))
	scaled.Quo(scaled, debtBalance)
	return scaled.Uint64()
}

// SetAToken configures the write-once AToken reference that gates mint and
// burn.
func (e *Engine) SetAToken(caller, aToken crypto.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireGovernance(caller); err != nil {
		return err
	}
	if e.aTokenSet {
		return ErrATokenAlreadySet
	}
	if aToken.IsZero() {
		return ErrInvalidAddress
	}
	e.aToken = aToken
	e.aTokenSet = true
	e.state.AppendEvent(events.ATokenSet{AToken: aToken}.Event())
	return nil
}

// AToken returns the configured AToken reference.
func (e *Engine) AToken() crypto.Address {
	if e == nil {
		return crypto.Address{}
	}
	return e.aToken
}

// UpdateDiscountRateStrategy swaps the discount rate strategy.
func (e *Engine) UpdateDiscountRateStrategy(caller crypto.Address, strategy DiscountRateStrategy) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireGovernance(caller); err != nil {
		return err
	}
	oldName := ""
	if e.strategy != nil {
		oldName = e.strategy.Name()
	}
	newName := ""
	if strategy != nil {
		newName = strategy.Name()
	}
	e.strategy = strategy
	e.state.AppendEvent(events.DiscountRateStrategyUpdated{
		OldStrategy: oldName,
		NewStrategy: newName,
	}.Event())
	return nil
}

// DiscountRateStrategyRef returns the active strategy.
func (e *Engine) DiscountRateStrategyRef() DiscountRateStrategy {
	if e == nil {
		return nil
	}
	return e.strategy
}

// UpdateDiscountToken swaps the discount token reference together with its
// balance source.
func (e *Engine) UpdateDiscountToken(caller, token crypto.Address, source DiscountTokenSource) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireGovernance(caller); err != nil {
		return err
	}
	if token.IsZero() {
		return ErrInvalidAddress
	}
	oldToken := e.discountToken
	e.discountToken = token
	e.discountSource = source
	e.state.AppendEvent(events.DiscountTokenUpdated{
		OldToken: oldToken,
		NewToken: token,
	}.Event())
	return nil
}

// DiscountToken returns the configured discount token reference.
func (e *Engine) DiscountToken() crypto.Address {
	if e == nil {
		return crypto.Address{}
	}
	return e.discountToken
}

// UpdateDiscountLockPeriod changes the rebalance lock period in seconds.
func (e *Engine) UpdateDiscountLockPeriod(caller crypto.Address, seconds uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireGovernance(caller); err != nil {
		return err
	}
	old := e.lockPeriod
	e.lockPeriod = seconds
	e.state.AppendEvent(events.DiscountLockPeriodUpdated{
		OldLockPeriod: old,
		NewLockPeriod: seconds,
	}.Event())
	return nil
}

// DiscountLockPeriod returns the rebalance lock period in seconds.
func (e *Engine) DiscountLockPeriod() uint64 {
	if e == nil {
		return 0
	}
	return e.lockPeriod
}

// refreshDiscountPercent recomputes the user's discount percent from the
// active strategy. A nonzero percent always re-arms the rebalance lock and
// emits the lock event, even when the percent itself is unchanged; a percent
// dropping to zero clears the lock and emits the event with zero exactly
// once.
func (e *Engine) refreshDiscountPercent(userState *UserState, balance, eligibility *big.Int) error {
	newPercent := uint64(0)
	if e.strategy != nil {
		newPercent = e.strategy.CalculateDiscountRate(balance, eligibility)
		if newPercent > maxDiscountBps {
			newPercent = maxDiscountBps
		}
	}
	changed := newPercent != userState.DiscountPercent
	if changed {
		userState.DiscountPercent = newPercent
	}
	if newPercent != 0 {
		ts := uint64(e.clock().Unix()) + e.lockPeriod
		if ts >= 1<<maxTimestampBits {
			panic("debt engine: rebalance timestamp exceeds 40-bit range")
		}
		userState.RebalanceTimestamp = ts
		e.state.AppendEvent(events.DiscountPercentLocked{
			User:               userState.Address,
			DiscountPercent:    newPercent,
			RebalanceTimestamp: ts,
		}.Event())
	} else if changed {
		userState.RebalanceTimestamp = 0
		e.state.AppendEvent(events.DiscountPercentLocked{
			User:               userState.Address,
			DiscountPercent:    0,
			RebalanceTimestamp: 0,
		}.Event())
	}
	observability.DebtMetrics().ObserveDiscount(newPercent)
	return nil
}

func (e *Engine) requireGovernance(caller crypto.Address) error {
	if !caller.Equal(e.governance) {
		return ErrUnauthorized
	}
	return nil
}
