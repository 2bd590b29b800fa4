package config

import (
	"fmt"
	"math/big"
	"strings"

	"ghochain/crypto"
)

const maxDiscountRateBps = 10_000

// Validate checks the configuration for values that would be rejected at
// module construction time.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GovernanceAddress) != "" {
		if _, err := crypto.DecodeAddress(c.GovernanceAddress); err != nil {
			return fmt.Errorf("config: invalid GovernanceAddress: %w", err)
		}
	}
	if c.Discount.DiscountRateBps > maxDiscountRateBps {
		return fmt.Errorf("config: DiscountRateBps exceeds %d", maxDiscountRateBps)
	}
	seen := make(map[string]struct{}, len(c.GenesisFacilitators))
	for i, fac := range c.GenesisFacilitators {
		if _, err := crypto.DecodeAddress(fac.Address); err != nil {
			return fmt.Errorf("config: facilitator %d: invalid address: %w", i, err)
		}
		if _, dup := seen[fac.Address]; dup {
			return fmt.Errorf("config: facilitator %d: duplicate address %s", i, fac.Address)
		}
		seen[fac.Address] = struct{}{}
		if strings.TrimSpace(fac.Label) == "" {
			return fmt.Errorf("config: facilitator %d: empty label", i)
		}
		if _, err := parseAmount(fac.Capacity); err != nil {
			return fmt.Errorf("config: facilitator %d: invalid capacity: %w", i, err)
		}
	}
	return nil
}

// FacilitatorCapacity parses the capacity string of a genesis facilitator.
func (f GenesisFacilitator) FacilitatorCapacity() (*big.Int, error) {
	return parseAmount(f.Capacity)
}

// Amounts parses the decimal string fields of the discount strategy.
func (d DiscountStrategy) Amounts() (debtPerToken, minTokenBalance, minDebtBalance *big.Int, err error) {
	if debtPerToken, err = parseAmount(d.DebtPerDiscountToken); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid DebtPerDiscountToken: %w", err)
	}
	if minTokenBalance, err = parseAmount(d.MinDiscountTokenBalance); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid MinDiscountTokenBalance: %w", err)
	}
	if minDebtBalance, err = parseAmount(d.MinDebtBalance); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid MinDebtBalance: %w", err)
	}
	return debtPerToken, minTokenBalance, minDebtBalance, nil
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %q", raw)
	}
	return value, nil
}
