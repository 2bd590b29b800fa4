package state

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"ghochain/crypto"
	"ghochain/native/gho"
)

// storedFacilitator is the RLP layout for a facilitator entry.
type storedFacilitator struct {
	Address  [20]byte
	Label    string
	Capacity *big.Int
	Level    *big.Int
}

// GetFacilitator loads a facilitator entry, returning nil when absent.
func (m *Manager) GetFacilitator(addr crypto.Address) (*gho.Facilitator, error) {
	var stored storedFacilitator
	ok, err := m.KVGet(facilitatorKey(addr.Bytes()), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &gho.Facilitator{
		Address: crypto.NewAddress(crypto.GHOPrefix, stored.Address[:]),
		Label:   stored.Label,
		Bucket: gho.Bucket{
			Capacity: defaultBig(stored.Capacity),
			Level:    defaultBig(stored.Level),
		},
	}, nil
}

// PutFacilitator persists the facilitator entry, enforcing the unsigned
// 128-bit range on both bucket values.
func (m *Manager) PutFacilitator(facilitator *gho.Facilitator) error {
	if facilitator == nil {
		return fmt.Errorf("nil facilitator")
	}
	if err := checkUint128(facilitator.Bucket.Capacity); err != nil {
		return fmt.Errorf("bucket capacity: %w", err)
	}
	if err := checkUint128(facilitator.Bucket.Level); err != nil {
		return fmt.Errorf("bucket level: %w", err)
	}
	stored := storedFacilitator{
		Label:    facilitator.Label,
		Capacity: defaultBig(facilitator.Bucket.Capacity),
		Level:    defaultBig(facilitator.Bucket.Level),
	}
	copy(stored.Address[:], facilitator.Address.Bytes())
	return m.KVPut(facilitatorKey(facilitator.Address.Bytes()), &stored)
}

// DeleteFacilitator removes the facilitator mapping entry.
func (m *Manager) DeleteFacilitator(addr crypto.Address) error {
	return m.KVDelete(facilitatorKey(addr.Bytes()))
}

// FacilitatorList returns all facilitator addresses in insertion order.
func (m *Manager) FacilitatorList() ([]crypto.Address, error) {
	var stored [][]byte
	if _, err := m.KVGet(facilitatorIndexKey, &stored); err != nil {
		return nil, err
	}
	list := make([]crypto.Address, 0, len(stored))
	for _, raw := range stored {
		if len(raw) != 20 {
			return nil, fmt.Errorf("corrupted facilitator index entry")
		}
		list = append(list, crypto.NewAddress(crypto.GHOPrefix, append([]byte(nil), raw...)))
	}
	return list, nil
}

// SetFacilitatorList overwrites the insertion-ordered enumeration list.
func (m *Manager) SetFacilitatorList(addrs []crypto.Address) error {
	stored := make([][]byte, 0, len(addrs))
	for _, addr := range addrs {
		stored = append(stored, append([]byte(nil), addr.Bytes()...))
	}
	return m.KVPut(facilitatorIndexKey, stored)
}

// Balance returns the stablecoin balance for the address, defaulting to zero.
func (m *Manager) Balance(addr crypto.Address) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := m.KVGet(balanceKey(addr.Bytes()), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// SetBalance persists the stablecoin balance for the address.
func (m *Manager) SetBalance(addr crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("balance cannot be negative")
	}
	return m.KVPut(balanceKey(addr.Bytes()), amount)
}

// TokenSupply returns the outstanding stablecoin supply, defaulting to zero.
func (m *Manager) TokenSupply() (*big.Int, error) {
	supply := new(big.Int)
	ok, err := m.KVGet(tokenSupplyKey, supply)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return supply, nil
}

// SetTokenSupply overwrites the stored total supply.
func (m *Manager) SetTokenSupply(total *big.Int) error {
	if total == nil || total.Sign() < 0 {
		return fmt.Errorf("token supply cannot be negative")
	}
	return m.KVPut(tokenSupplyKey, total)
}

// checkUint128 rejects values outside the unsigned 128-bit range the wire
// format reserves for bucket accounting.
func checkUint128(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return fmt.Errorf("value must be non-negative")
	}
	u, overflow := uint256.FromBig(v)
	if overflow || u.BitLen() > 128 {
		return fmt.Errorf("value exceeds uint128 range")
	}
	return nil
}

func defaultBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
