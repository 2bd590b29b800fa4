package debt

import (
	"fmt"
	"math/big"
	"time"

	"ghochain/core/events"
	"ghochain/core/types"
	"ghochain/crypto"
	nativecommon "ghochain/native/common"
	"ghochain/native/fpmath"
	"ghochain/observability"
)

const moduleName = "ghodebt"

// EngineState describes the persistence surface the debt engine needs from
// the surrounding state implementation. GetUserState returns nil without
// error when the user has no recorded position.
type EngineState interface {
	GetUserState(addr crypto.Address) (*UserState, error)
	PutUserState(user *UserState) error
	ScaledTotalSupply() (*big.Int, error)
	SetScaledTotalSupply(total *big.Int) error
	BorrowAllowance(from, delegatee crypto.Address) (*big.Int, error)
	SetBorrowAllowance(from, delegatee crypto.Address, amount *big.Int) error
	AppendEvent(evt *types.Event)
}

// DiscountTokenSource exposes the balance of the external discount-eligibility
// asset.
type DiscountTokenSource interface {
	BalanceOf(addr crypto.Address) (*big.Int, error)
}

// Engine maintains the scaled debt ledger. Real balances grow with the
// external normalized index; eligible users have part of that growth
// suppressed by their discount percent and the suppressed portion burned from
// the scaled ledger.
//
// Debt positions are not transferable: every transfer or allowance entry
// point fails with ErrOperationNotSupported.
type Engine struct {
	state          EngineState
	governance     crypto.Address
	aToken         crypto.Address
	aTokenSet      bool
	discountToken  crypto.Address
	discountSource DiscountTokenSource
	strategy       DiscountRateStrategy
	lockPeriod     uint64
	pauses         nativecommon.PauseView
	clock          func() time.Time
}

// NewEngine constructs a debt engine governed by the provided address.
func NewEngine(governance crypto.Address) *Engine {
	return &Engine{governance: governance, clock: time.Now}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state EngineState) { e.state = state }

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetClock overrides the time source (primarily for deterministic testing).
func (e *Engine) SetClock(clock func() time.Time) {
	if e == nil || clock == nil {
		return
	}
	e.clock = clock
}

// Mint records new debt for onBehalfOf at the supplied index. When user and
// onBehalfOf differ the delegated borrow allowance from onBehalfOf to user is
// spent first. Returns whether this is the user's first debt and the new
// scaled total supply.
func (e *Engine) Mint(caller, user, onBehalfOf crypto.Address, amount, index *big.Int) (bool, *big.Int, error) {
	if e == nil || e.state == nil {
		return false, nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return false, nil, err
	}
	if err := e.requireAToken(caller); err != nil {
		return false, nil, err
	}
	if onBehalfOf.IsZero() {
		return false, nil, ErrInvalidAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return false, nil, ErrInvalidMintAmount
	}
	if index == nil || index.Sign() <= 0 {
		return false, nil, ErrInvalidIndex
	}

	amountScaled := fpmath.RayDiv(amount, index)
	if amountScaled.Sign() == 0 {
		return false, nil, ErrInvalidMintAmount
	}

	// Spend the delegation only after every validation that can still reject
	// the mint, so a failed call never leaves the allowance decremented.
	if !user.Equal(onBehalfOf) {
		if err := e.spendBorrowAllowance(onBehalfOf, user, amount); err != nil {
			return false, nil, err
		}
	}

	userState, err := e.ensureUserState(onBehalfOf)
	if err != nil {
		return false, nil, err
	}
	previousScaledBalance := new(big.Int).Set(userState.ScaledBalance)

	out := accrueDebtOnAction(userState, index)

	// The discount already anticipated part of the growth this mint
	// represents; the net scaled-supply change may even be negative.
	netScaled := new(big.Int).Sub(amountScaled, out.discountScaled)
	supply, err := e.adjustScaled(userState, netScaled)
	if err != nil {
		return false, nil, err
	}

	if err := e.refreshDiscountPercent(userState, fpmath.RayMul(userState.ScaledBalance, index), e.eligibilityBalance(onBehalfOf)); err != nil {
		return false, nil, err
	}
	if err := e.state.PutUserState(userState); err != nil {
		return false, nil, err
	}

	e.state.AppendEvent(events.DebtMint{
		Caller:     user,
		OnBehalfOf: onBehalfOf,
		Value:      new(big.Int).Add(amount, out.balanceIncrease),
		Index:      index,
	}.Event())
	observability.DebtMetrics().RecordAccrual()

	return previousScaledBalance.Sign() == 0, supply, nil
}

// Burn repays amount of the user's debt at the supplied index. The burned
// scaled quantity covers both the repayment and the discount clawback accrued
// on this action. Returns the new scaled total supply.
func (e *Engine) Burn(caller, from crypto.Address, amount, index *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.requireAToken(caller); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidBurnAmount
	}
	if index == nil || index.Sign() <= 0 {
		return nil, ErrInvalidIndex
	}

	amountScaled := fpmath.RayDiv(amount, index)
	if amountScaled.Sign() == 0 {
		return nil, ErrInvalidBurnAmount
	}

	userState, err := e.ensureUserState(from)
	if err != nil {
		return nil, err
	}

	out := accrueDebtOnAction(userState, index)

	burnScaled := new(big.Int).Add(amountScaled, out.discountScaled)
	supply, err := e.adjustScaled(userState, new(big.Int).Neg(burnScaled))
	if err != nil {
		return nil, err
	}

	if err := e.refreshDiscountPercent(userState, fpmath.RayMul(userState.ScaledBalance, index), e.eligibilityBalance(from)); err != nil {
		return nil, err
	}
	if err := e.state.PutUserState(userState); err != nil {
		return nil, err
	}

	// The observable real-value delta decides the event direction: interest
	// accrued this action can exceed the repayment.
	if out.balanceIncrease.Cmp(amount) > 0 {
		e.state.AppendEvent(events.DebtMint{
			Caller:     from,
			OnBehalfOf: from,
			Value:      new(big.Int).Sub(out.balanceIncrease, amount),
			Index:      index,
		}.Event())
	} else {
		e.state.AppendEvent(events.DebtBurn{
			From:  from,
			Value: new(big.Int).Sub(amount, out.balanceIncrease),
			Index: index,
		}.Event())
	}
	observability.DebtMetrics().RecordAccrual()

	return supply, nil
}

// UpdateDiscountDistribution is invoked by the discount token on transfers
// between debt holders so discount eligibility stays synchronized with the
// external asset's ledger.
func (e *Engine) UpdateDiscountDistribution(caller, sender, recipient crypto.Address, senderDiscountTokenBalance, recipientDiscountTokenBalance, amount, index *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if !caller.Equal(e.discountToken) || e.discountToken.IsZero() {
		return ErrCallerNotDiscountToken
	}
	if index == nil || index.Sign() <= 0 {
		return ErrInvalidIndex
	}
	transferred := big.NewInt(0)
	if amount != nil {
		transferred = amount
	}

	if !sender.IsZero() {
		eligibility := new(big.Int).Sub(defaultBig(senderDiscountTokenBalance), transferred)
		// A stale reported balance can understate the sender's holdings;
		// floor at zero rather than feed a negative eligibility downstream.
		if eligibility.Sign() < 0 {
			eligibility.SetInt64(0)
		}
		if err := e.rebalanceOnAction(sender, eligibility, index); err != nil {
			return err
		}
	}
	if !recipient.IsZero() {
		eligibility := new(big.Int).Add(defaultBig(recipientDiscountTokenBalance), transferred)
		if err := e.rebalanceOnAction(recipient, eligibility, index); err != nil {
			return err
		}
	}
	return nil
}

// RebalanceUserDiscountPercent lets any caller force-correct a stale discount
// lock once the user's rebalance timestamp has elapsed.
func (e *Engine) RebalanceUserDiscountPercent(user crypto.Address, index *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if index == nil || index.Sign() <= 0 {
		return ErrInvalidIndex
	}
	userState, err := e.ensureUserState(user)
	if err != nil {
		return err
	}
	ts := userState.RebalanceTimestamp
	if ts == 0 || uint64(e.clock().Unix()) < ts {
		return ErrRebalanceConditionNotMet
	}
	if err := e.applyRebalance(userState, e.eligibilityBalance(user), index); err != nil {
		return err
	}
	observability.DebtMetrics().RecordRebalance()
	return nil
}

// BalanceOf projects the user's real debt at the supplied index without
// mutating state. The projection shares the accrual formula with the mutating
// path so the two stay numerically identical.
func (e *Engine) BalanceOf(user crypto.Address, index *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if index == nil || index.Sign() <= 0 {
		return nil, ErrInvalidIndex
	}
	userState, err := e.state.GetUserState(user)
	if err != nil {
		return nil, err
	}
	if userState == nil {
		return big.NewInt(0), nil
	}
	ensureUserDefaults(userState)
	if userState.ScaledBalance.Sign() == 0 {
		return big.NewInt(0), nil
	}
	balance := fpmath.RayMul(userState.ScaledBalance, index)
	if index.Cmp(userState.PreviousIndex) == 0 {
		return balance, nil
	}
	if userState.DiscountPercent != 0 {
		out := computeAccrual(userState.ScaledBalance, userState.PreviousIndex, index, userState.DiscountPercent)
		balance.Sub(balance, out.discount)
	}
	return balance, nil
}

// ScaledBalanceOf returns the user's stored scaled balance.
func (e *Engine) ScaledBalanceOf(user crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	userState, err := e.state.GetUserState(user)
	if err != nil {
		return nil, err
	}
	if userState == nil || userState.ScaledBalance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(userState.ScaledBalance), nil
}

// ScaledTotalSupply returns the scaled supply across all debt holders.
func (e *Engine) ScaledTotalSupply() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.ScaledTotalSupply()
}

// TotalSupply projects the real debt supply at the supplied index.
func (e *Engine) TotalSupply(index *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if index == nil || index.Sign() <= 0 {
		return nil, ErrInvalidIndex
	}
	supply, err := e.state.ScaledTotalSupply()
	if err != nil {
		return nil, err
	}
	return fpmath.RayMul(supply, index), nil
}

// GetBalanceFromInterest returns the interest accumulated on top of the
// user's principal.
func (e *Engine) GetBalanceFromInterest(user crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	userState, err := e.state.GetUserState(user)
	if err != nil {
		return nil, err
	}
	if userState == nil || userState.AccumulatedDebtInterest == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(userState.AccumulatedDebtInterest), nil
}

// DecreaseBalanceFromInterest is used by the AToken when accumulated interest
// is repaid directly. An amount above the recorded interest is unreachable
// under correct usage and treated as an unrecoverable fault.
func (e *Engine) DecreaseBalanceFromInterest(caller, user crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAToken(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidBurnAmount
	}
	userState, err := e.ensureUserState(user)
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(userState.AccumulatedDebtInterest, amount)
	if remaining.Sign() < 0 {
		panic(fmt.Sprintf("debt engine: accumulated interest underflow for %s", user.String()))
	}
	userState.AccumulatedDebtInterest = remaining
	return e.state.PutUserState(userState)
}

// GetDiscountPercent returns the user's current discount percent in basis
// points.
func (e *Engine) GetDiscountPercent(user crypto.Address) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	userState, err := e.state.GetUserState(user)
	if err != nil {
		return 0, err
	}
	if userState == nil {
		return 0, nil
	}
	return userState.DiscountPercent, nil
}

// GetRebalanceTimestamp returns the epoch second until which external
// rebalances for the user are locked, or zero when no lock is active.
func (e *Engine) GetRebalanceTimestamp(user crypto.Address) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	userState, err := e.state.GetUserState(user)
	if err != nil {
		return 0, err
	}
	if userState == nil {
		return 0, nil
	}
	return userState.RebalanceTimestamp, nil
}

// ApproveDelegation lets from authorize delegatee to mint debt against their
// position.
func (e *Engine) ApproveDelegation(from, delegatee crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if from.IsZero() || delegatee.IsZero() {
		return ErrInvalidAddress
	}
	return e.state.SetBorrowAllowance(from, delegatee, defaultBig(amount))
}

// BorrowAllowance returns the remaining delegated borrow allowance.
func (e *Engine) BorrowAllowance(from, delegatee crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.BorrowAllowance(from, delegatee)
}

// Debt positions are deliberately non-transferable.

func (e *Engine) Transfer(crypto.Address, crypto.Address, *big.Int) error {
	return ErrOperationNotSupported
}

func (e *Engine) TransferFrom(crypto.Address, crypto.Address, crypto.Address, *big.Int) error {
	return ErrOperationNotSupported
}

func (e *Engine) Approve(crypto.Address, crypto.Address, *big.Int) error {
	return ErrOperationNotSupported
}

func (e *Engine) IncreaseAllowance(crypto.Address, crypto.Address, *big.Int) error {
	return ErrOperationNotSupported
}

func (e *Engine) DecreaseAllowance(crypto.Address, crypto.Address, *big.Int) error {
	return ErrOperationNotSupported
}

func (e *Engine) Allowance(crypto.Address, crypto.Address) (*big.Int, error) {
	return nil, ErrOperationNotSupported
}

// --- internals ---

// rebalanceOnAction accrues and refreshes a user for a discount distribution
// change, skipping users with no debt.
func (e *Engine) rebalanceOnAction(user crypto.Address, eligibility, index *big.Int) error {
	userState, err := e.ensureUserState(user)
	if err != nil {
		return err
	}
	if userState.ScaledBalance.Sign() == 0 {
		return nil
	}
	return e.applyRebalance(userState, eligibility, index)
}

func (e *Engine) applyRebalance(userState *UserState, eligibility, index *big.Int) error {
	out := accrueDebtOnAction(userState, index)
	if out.discountScaled.Sign() != 0 {
		if _, err := e.adjustScaled(userState, new(big.Int).Neg(out.discountScaled)); err != nil {
			return err
		}
	}
	if err := e.refreshDiscountPercent(userState, fpmath.RayMul(userState.ScaledBalance, index), eligibility); err != nil {
		return err
	}
	if err := e.state.PutUserState(userState); err != nil {
		return err
	}
	if out.balanceIncrease.Sign() > 0 {
		e.state.AppendEvent(events.DebtMint{
			Caller:     userState.Address,
			OnBehalfOf: userState.Address,
			Value:      out.balanceIncrease,
			Index:      index,
		}.Event())
	}
	observability.DebtMetrics().RecordAccrual()
	return nil
}

// adjustScaled applies a signed delta to the user's scaled balance and the
// scaled total supply. A negative result on either side is unreachable under
// correct usage and treated as an unrecoverable fault.
func (e *Engine) adjustScaled(userState *UserState, delta *big.Int) (*big.Int, error) {
	if delta.Sign() == 0 {
		return e.state.ScaledTotalSupply()
	}
	balance := new(big.Int).Add(userState.ScaledBalance, delta)
	if balance.Sign() < 0 {
		panic(fmt.Sprintf("debt engine: scaled balance underflow for %s", userState.Address.String()))
	}
	userState.ScaledBalance = balance

	supply, err := e.state.ScaledTotalSupply()
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(supply, delta)
	if total.Sign() < 0 {
		panic("debt engine: scaled total supply underflow")
	}
	if err := e.state.SetScaledTotalSupply(total); err != nil {
		return nil, err
	}
	return total, nil
}

func (e *Engine) ensureUserState(addr crypto.Address) (*UserState, error) {
	userState, err := e.state.GetUserState(addr)
	if err != nil {
		return nil, err
	}
	if userState == nil {
		userState = &UserState{Address: addr}
	}
	ensureUserDefaults(userState)
	return userState, nil
}

func (e *Engine) spendBorrowAllowance(from, delegatee crypto.Address, amount *big.Int) error {
	allowance, err := e.state.BorrowAllowance(from, delegatee)
	if err != nil {
		return err
	}
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientBorrowAllowance
	}
	return e.state.SetBorrowAllowance(from, delegatee, new(big.Int).Sub(allowance, amount))
}

func (e *Engine) eligibilityBalance(addr crypto.Address) *big.Int {
	if e.discountSource == nil {
		return big.NewInt(0)
	}
	balance, err := e.discountSource.BalanceOf(addr)
	if err != nil || balance == nil {
		return big.NewInt(0)
	}
	return balance
}

func (e *Engine) requireAToken(caller crypto.Address) error {
	if !e.aTokenSet || !caller.Equal(e.aToken) {
		return ErrCallerNotAToken
	}
	return nil
}

func defaultBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
