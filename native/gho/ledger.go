package gho

import (
	"math/big"

	"ghochain/core/events"
	"ghochain/core/types"
	"ghochain/crypto"
	nativecommon "ghochain/native/common"
	"ghochain/observability"
)

const moduleName = "gho"

// LedgerState describes the balance and supply persistence the stablecoin
// ledger requires.
type LedgerState interface {
	Balance(addr crypto.Address) (*big.Int, error)
	SetBalance(addr crypto.Address, amount *big.Int) error
	TokenSupply() (*big.Int, error)
	SetTokenSupply(total *big.Int) error
	AppendEvent(evt *types.Event)
}

// Ledger is the thin issuance gate over the facilitator registry: no balance
// or supply moves without the matching bucket accounting having succeeded
// first.
type Ledger struct {
	state    LedgerState
	registry *Registry
	pauses   nativecommon.PauseView
	emitter  events.Emitter
}

// NewLedger constructs a ledger gated by the provided registry.
func NewLedger(registry *Registry) *Ledger {
	return &Ledger{registry: registry, emitter: events.NoopEmitter{}}
}

// SetState wires the ledger to the external persistence layer.
func (l *Ledger) SetState(state LedgerState) { l.state = state }

// SetEmitter configures the emitter used to broadcast supply changes to
// downstream subscribers. Passing nil resets it to a no-op.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if l == nil {
		return
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l.emitter == nil {
		return
	}
	l.emitter.Emit(evt)
}

func (l *Ledger) SetPauses(p nativecommon.PauseView) {
	if l == nil {
		return
	}
	l.pauses = p
}

// Mint issues amount to account on behalf of the calling facilitator. The
// registry reserves bucket capacity first; any failure there aborts the mint
// with no observable effects.
func (l *Ledger) Mint(caller, account crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil || l.registry == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(l.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidMintAmount
	}
	if account.IsZero() {
		return ErrInvalidInput
	}

	if err := l.registry.MintAuthorization(caller, amount); err != nil {
		return err
	}

	balance, err := l.state.Balance(account)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(account, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}

	supply, err := l.state.TokenSupply()
	if err != nil {
		return err
	}
	total := new(big.Int).Add(supply, amount)
	if err := l.state.SetTokenSupply(total); err != nil {
		return err
	}

	transfer := events.TokenTransfer{To: account, Amount: amount}
	supplyEvt := events.TokenSupply{
		Facilitator: caller,
		Total:       total,
		Delta:       amount,
		Reason:      events.SupplyReasonMint,
	}
	l.state.AppendEvent(transfer.Event())
	l.state.AppendEvent(supplyEvt.Event())
	l.emit(transfer)
	l.emit(supplyEvt)
	observability.GhoMetrics().RecordMint(amount)
	return nil
}

// Burn retires amount of the calling facilitator's own balance and releases
// the matching bucket capacity.
func (l *Ledger) Burn(caller crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil || l.registry == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(l.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidBurnAmount
	}

	balance, err := l.state.Balance(caller)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	if err := l.registry.BurnAuthorization(caller, amount); err != nil {
		return err
	}

	if err := l.state.SetBalance(caller, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}

	supply, err := l.state.TokenSupply()
	if err != nil {
		return err
	}
	total := new(big.Int).Sub(supply, amount)
	if err := l.state.SetTokenSupply(total); err != nil {
		return err
	}

	transfer := events.TokenTransfer{From: caller, Amount: amount}
	supplyEvt := events.TokenSupply{
		Facilitator: caller,
		Total:       total,
		Delta:       new(big.Int).Neg(amount),
		Reason:      events.SupplyReasonBurn,
	}
	l.state.AppendEvent(transfer.Event())
	l.state.AppendEvent(supplyEvt.Event())
	l.emit(transfer)
	l.emit(supplyEvt)
	observability.GhoMetrics().RecordBurn(amount)
	return nil
}

// BalanceOf returns the stablecoin balance for the account.
func (l *Ledger) BalanceOf(account crypto.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	return l.state.Balance(account)
}

// TotalSupply returns the outstanding stablecoin supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	return l.state.TokenSupply()
}
