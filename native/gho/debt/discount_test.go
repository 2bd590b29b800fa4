package debt

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"ghochain/core/events"
	"ghochain/crypto"
	"ghochain/native/fpmath"
)

func wadUnits(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), wad)
}

func TestSetATokenWriteOnce(t *testing.T) {
	governance := makeAddress(crypto.GHOPrefix, 0x01)
	aToken := makeAddress(crypto.DebtPrefix, 0x02)
	other := makeAddress(crypto.DebtPrefix, 0x03)
	intruder := makeAddress(crypto.GHOPrefix, 0x66)

	engine := NewEngine(governance)
	engine.SetState(newMockEngineState())

	if err := engine.SetAToken(intruder, aToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := engine.SetAToken(governance, crypto.Address{}); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if err := engine.SetAToken(governance, aToken); err != nil {
		t.Fatalf("set atoken: %v", err)
	}
	if !engine.AToken().Equal(aToken) {
		t.Fatalf("unexpected atoken: %s", engine.AToken().String())
	}
	if err := engine.SetAToken(governance, other); !errors.Is(err, ErrATokenAlreadySet) {
		t.Fatalf("expected ErrATokenAlreadySet, got %v", err)
	}
}

func TestRatioStrategyFullRateWhileCovered(t *testing.T) {
	strategy := RatioDiscountRateStrategy{
		DiscountRateBps:      2000,
		DebtPerDiscountToken: wadUnits(100),
	}

	// One token covers 100 debt, so 50 debt gets the full rate.
	if rate := strategy.CalculateDiscountRate(wadUnits(50), wadUnits(1)); rate != 2000 {
		t.Fatalf("expected full rate, got %d", rate)
	}
	// 200 debt is only half covered, scaling the rate linearly.
	if rate := strategy.CalculateDiscountRate(wadUnits(200), wadUnits(1)); rate != 1000 {
		t.Fatalf("expected scaled rate 1000, got %d", rate)
	}
}

func TestRatioStrategyThresholds(t *testing.T) {
	strategy := RatioDiscountRateStrategy{
		DiscountRateBps:         2000,
		DebtPerDiscountToken:    wadUnits(100),
		MinDiscountTokenBalance: wadUnits(1),
		MinDebtBalance:          wadUnits(10),
	}

	if rate := strategy.CalculateDiscountRate(wadUnits(50), big.NewInt(1)); rate != 0 {
		t.Fatalf("expected zero below token threshold, got %d", rate)
	}
	if rate := strategy.CalculateDiscountRate(wadUnits(5), wadUnits(1)); rate != 0 {
		t.Fatalf("expected zero below debt threshold, got %d", rate)
	}
	if rate := strategy.CalculateDiscountRate(big.NewInt(0), wadUnits(1)); rate != 0 {
		t.Fatalf("expected zero for zero debt, got %d", rate)
	}
	if rate := strategy.CalculateDiscountRate(nil, nil); rate != 0 {
		t.Fatalf("expected zero for nil balances, got %d", rate)
	}
}

func TestRatioStrategyNegativeEligibility(t *testing.T) {
	strategy := RatioDiscountRateStrategy{
		DiscountRateBps:      2000,
		DebtPerDiscountToken: wadUnits(100),
	}
	negative := new(big.Int).Neg(wadUnits(5))
	if rate := strategy.CalculateDiscountRate(wadUnits(100), negative); rate != 0 {
		t.Fatalf("expected zero for negative holdings, got %d", rate)
	}
}

func TestRatioStrategyClampsRate(t *testing.T) {
	strategy := RatioDiscountRateStrategy{DiscountRateBps: 25_000}
	if rate := strategy.CalculateDiscountRate(wadUnits(50), wadUnits(1)); rate != maxDiscountBps {
		t.Fatalf("expected rate clamped to %d, got %d", maxDiscountBps, rate)
	}
}

func TestDiscountLockReArmsOnEveryAction(t *testing.T) {
	engine, state, governance, aToken := newTestEngine()
	user := makeAddress(crypto.GHOPrefix, 0x30)

	if err := engine.UpdateDiscountLockPeriod(governance, 3_600); err != nil {
		t.Fatalf("update lock period: %v", err)
	}
	if err := engine.UpdateDiscountRateStrategy(governance, RatioDiscountRateStrategy{DiscountRateBps: 2000}); err != nil {
		t.Fatalf("update strategy: %v", err)
	}
	state.events = nil

	if _, _, err := engine.Mint(aToken, user, user, big.NewInt(100), fpmath.Ray()); err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if _, _, err := engine.Mint(aToken, user, user, big.NewInt(100), fpmath.Ray()); err != nil {
		t.Fatalf("second mint: %v", err)
	}

	// The percent is unchanged between the two mints but the lock re-arms
	// and the event fires both times.
	locks := state.eventsOfType(events.TypeDiscountPercentLocked)
	if len(locks) != 2 {
		t.Fatalf("expected 2 lock events, got %d", len(locks))
	}
	for _, lock := range locks {
		if lock.Attributes["discountPercent"] != "2000" || lock.Attributes["rebalanceTimestamp"] != "4600" {
			t.Fatalf("unexpected lock attributes: %v", lock.Attributes)
		}
	}
}

func TestDiscountDropToZeroEmitsOnce(t *testing.T) {
	engine, state, governance, aToken := newTestEngine()
	user := makeAddress(crypto.GHOPrefix, 0x31)

	if err := engine.UpdateDiscountRateStrategy(governance, RatioDiscountRateStrategy{DiscountRateBps: 2000}); err != nil {
		t.Fatalf("update strategy: %v", err)
	}
	if _, _, err := engine.Mint(aToken, user, user, big.NewInt(100), fpmath.Ray()); err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Removing the strategy drops the percent to zero on the next action.
	if err := engine.UpdateDiscountRateStrategy(governance, nil); err != nil {
		t.Fatalf("clear strategy: %v", err)
	}
	state.events = nil

	if _, err := engine.Burn(aToken, user, big.NewInt(10), fpmath.Ray()); err != nil {
		t.Fatalf("first burn: %v", err)
	}
	locks := state.eventsOfType(events.TypeDiscountPercentLocked)
	if len(locks) != 1 || locks[0].Attributes["discountPercent"] != "0" || locks[0].Attributes["rebalanceTimestamp"] != "0" {
		t.Fatalf("unexpected lock events after drop: %v", locks)
	}

	// Staying at zero emits nothing further.
	state.events = nil
	if _, err := engine.Burn(aToken, user, big.NewInt(10), fpmath.Ray()); err != nil {
		t.Fatalf("second burn: %v", err)
	}
	if locks := state.eventsOfType(events.TypeDiscountPercentLocked); len(locks) != 0 {
		t.Fatalf("expected no lock events at steady zero, got %v", locks)
	}
}

func TestRebalanceTimestampRangePanics(t *testing.T) {
	engine, _, governance, aToken := newTestEngine()
	user := makeAddress(crypto.GHOPrefix, 0x32)

	if err := engine.UpdateDiscountRateStrategy(governance, RatioDiscountRateStrategy{DiscountRateBps: 2000}); err != nil {
		t.Fatalf("update strategy: %v", err)
	}
	engine.SetClock(func() time.Time { return time.Unix(1<<40, 0) })

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range rebalance timestamp")
		}
	}()
	_, _, _ = engine.Mint(aToken, user, user, big.NewInt(100), fpmath.Ray())
}

func TestUpdateDiscountTokenGovernance(t *testing.T) {
	engine, state, governance, _ := newTestEngine()
	token := makeAddress(crypto.DebtPrefix, 0x04)
	intruder := makeAddress(crypto.GHOPrefix, 0x67)

	if err := engine.UpdateDiscountToken(intruder, token, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := engine.UpdateDiscountToken(governance, crypto.Address{}, nil); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if err := engine.UpdateDiscountToken(governance, token, nil); err != nil {
		t.Fatalf("update discount token: %v", err)
	}
	if !engine.DiscountToken().Equal(token) {
		t.Fatalf("unexpected discount token: %s", engine.DiscountToken().String())
	}
	if updates := state.eventsOfType(events.TypeDiscountTokenUpdated); len(updates) != 1 {
		t.Fatalf("expected token update event, got %v", state.events)
	}
}

func TestUpdateDiscountLockPeriodGovernance(t *testing.T) {
	engine, state, governance, _ := newTestEngine()
	intruder := makeAddress(crypto.GHOPrefix, 0x68)

	if err := engine.UpdateDiscountLockPeriod(intruder, 60); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := engine.UpdateDiscountLockPeriod(governance, 60); err != nil {
		t.Fatalf("update lock period: %v", err)
	}
	if engine.DiscountLockPeriod() != 60 {
		t.Fatalf("unexpected lock period: %d", engine.DiscountLockPeriod())
	}
	updates := state.eventsOfType(events.TypeDiscountLockPeriodUpdated)
	if len(updates) != 1 || updates[0].Attributes["newLockPeriod"] != "60" {
		t.Fatalf("unexpected lock period events: %v", updates)
	}
}

func TestUpdateDiscountRateStrategyEmitsNames(t *testing.T) {
	engine, state, governance, _ := newTestEngine()

	if err := engine.UpdateDiscountRateStrategy(governance, RatioDiscountRateStrategy{DiscountRateBps: 1000}); err != nil {
		t.Fatalf("update strategy: %v", err)
	}
	updates := state.eventsOfType(events.TypeDiscountRateStrategyUpdated)
	if len(updates) != 1 || updates[0].Attributes["oldStrategy"] != "" || updates[0].Attributes["newStrategy"] != "ratio" {
		t.Fatalf("unexpected strategy events: %v", updates)
	}
	if engine.DiscountRateStrategyRef() == nil {
		t.Fatalf("expected strategy reference")
	}
}
