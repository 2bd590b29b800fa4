package events

import (
	"math/big"
	"strings"

	"ghochain/core/types"
	"ghochain/crypto"
)

const (
	// TypeTokenSupply is emitted whenever the stablecoin supply changes.
	TypeTokenSupply = "gho.token.supply"
	// TypeTokenTransfer mirrors the ledger-visible transfer for mints and
	// burns so indexers observe the full value flow.
	TypeTokenTransfer = "gho.token.transfer"

	// SupplyReasonMint identifies mint driven supply increases.
	SupplyReasonMint = "mint"
	// SupplyReasonBurn identifies burn driven supply decreases.
	SupplyReasonBurn = "burn"
)

// TokenSupply captures a supply delta for the stablecoin.
type TokenSupply struct {
	Facilitator crypto.Address
	Total       *big.Int
	Delta       *big.Int
	Reason      string
}

func (TokenSupply) EventType() string { return TypeTokenSupply }

// Event renders the structured supply change event for downstream consumers.
func (e TokenSupply) Event() *types.Event {
	attrs := map[string]string{
		"facilitator": e.Facilitator.String(),
	}

	total := big.NewInt(0)
	if e.Total != nil {
		total = new(big.Int).Set(e.Total)
	}
	attrs["total"] = total.String()

	if e.Delta != nil {
		attrs["delta"] = new(big.Int).Set(e.Delta).String()
	}

	reason := strings.TrimSpace(e.Reason)
	if reason != "" {
		attrs["reason"] = reason
	}

	return &types.Event{Type: TypeTokenSupply, Attributes: attrs}
}

// TokenTransfer captures a balance movement. Mints use a zero From address and
// burns a zero To address.
type TokenTransfer struct {
	From   crypto.Address
	To     crypto.Address
	Amount *big.Int
}

func (TokenTransfer) EventType() string { return TypeTokenTransfer }

func (e TokenTransfer) Event() *types.Event {
	amount := big.NewInt(0)
	if e.Amount != nil {
		amount = new(big.Int).Set(e.Amount)
	}
	return &types.Event{
		Type: TypeTokenTransfer,
		Attributes: map[string]string{
			"from":   addrString(e.From),
			"to":     addrString(e.To),
			"amount": amount.String(),
		},
	}
}

func addrString(addr crypto.Address) string {
	if len(addr.Bytes()) == 0 {
		return ""
	}
	return addr.String()
}
