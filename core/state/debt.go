package state

import (
	"fmt"
	"math/big"

	"ghochain/crypto"
	"ghochain/native/gho/debt"
)

// storedUserState is the RLP layout for a debt position.
type storedUserState struct {
	Address                 [20]byte
	ScaledBalance           *big.Int
	PreviousIndex           *big.Int
	AccumulatedDebtInterest *big.Int
	DiscountPercent         uint64
	RebalanceTimestamp      uint64
}

// GetUserState loads the debt position for a user, returning nil when the
// user has never held debt.
func (m *Manager) GetUserState(addr crypto.Address) (*debt.UserState, error) {
	var stored storedUserState
	ok, err := m.KVGet(debtUserKey(addr.Bytes()), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &debt.UserState{
		Address:                 crypto.NewAddress(crypto.GHOPrefix, stored.Address[:]),
		ScaledBalance:           defaultBig(stored.ScaledBalance),
		PreviousIndex:           defaultBig(stored.PreviousIndex),
		AccumulatedDebtInterest: defaultBig(stored.AccumulatedDebtInterest),
		DiscountPercent:         stored.DiscountPercent,
		RebalanceTimestamp:      stored.RebalanceTimestamp,
	}, nil
}

// PutUserState persists the user's debt position, enforcing the unsigned
// 128-bit range on the interest accumulator.
func (m *Manager) PutUserState(user *debt.UserState) error {
	if user == nil {
		return fmt.Errorf("nil user state")
	}
	if err := checkUint128(user.AccumulatedDebtInterest); err != nil {
		return fmt.Errorf("accumulated interest: %w", err)
	}
	stored := storedUserState{
		ScaledBalance:           defaultBig(user.ScaledBalance),
		PreviousIndex:           defaultBig(user.PreviousIndex),
		AccumulatedDebtInterest: defaultBig(user.AccumulatedDebtInterest),
		DiscountPercent:         user.DiscountPercent,
		RebalanceTimestamp:      user.RebalanceTimestamp,
	}
	copy(stored.Address[:], user.Address.Bytes())
	return m.KVPut(debtUserKey(user.Address.Bytes()), &stored)
}

// ScaledTotalSupply returns the scaled debt supply, defaulting to zero.
func (m *Manager) ScaledTotalSupply() (*big.Int, error) {
	supply := new(big.Int)
	ok, err := m.KVGet(debtScaledSupplyKey, supply)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return supply, nil
}

// SetScaledTotalSupply overwrites the scaled debt supply.
func (m *Manager) SetScaledTotalSupply(total *big.Int) error {
	if total == nil || total.Sign() < 0 {
		return fmt.Errorf("scaled supply cannot be negative")
	}
	return m.KVPut(debtScaledSupplyKey, total)
}

// BorrowAllowance returns the delegated borrow allowance, defaulting to zero.
func (m *Manager) BorrowAllowance(from, delegatee crypto.Address) (*big.Int, error) {
	allowance := new(big.Int)
	ok, err := m.KVGet(debtAllowanceKey(from.Bytes(), delegatee.Bytes()), allowance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return allowance, nil
}

// SetBorrowAllowance persists the delegated borrow allowance.
func (m *Manager) SetBorrowAllowance(from, delegatee crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("allowance cannot be negative")
	}
	return m.KVPut(debtAllowanceKey(from.Bytes(), delegatee.Bytes()), amount)
}
