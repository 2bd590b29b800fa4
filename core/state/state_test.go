package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"ghochain/core/events"
	"ghochain/crypto"
	"ghochain/native/gho"
	"ghochain/native/gho/debt"
	"ghochain/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func testAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.NewAddress(crypto.GHOPrefix, raw)
}

func TestFacilitatorRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	addr := testAddress(0x01)

	missing, err := manager.GetFacilitator(addr)
	require.NoError(t, err)
	require.Nil(t, missing)

	stored := &gho.Facilitator{
		Address: addr,
		Label:   "aave-pool",
		Bucket: gho.Bucket{
			Capacity: big.NewInt(1_000),
			Level:    big.NewInt(250),
		},
	}
	require.NoError(t, manager.PutFacilitator(stored))

	loaded, err := manager.GetFacilitator(addr)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.Address.Equal(addr))
	require.Equal(t, "aave-pool", loaded.Label)
	require.Zero(t, loaded.Bucket.Capacity.Cmp(big.NewInt(1_000)))
	require.Zero(t, loaded.Bucket.Level.Cmp(big.NewInt(250)))

	require.NoError(t, manager.DeleteFacilitator(addr))
	deleted, err := manager.GetFacilitator(addr)
	require.NoError(t, err)
	require.Nil(t, deleted)
}

func TestPutFacilitatorRejectsOversizedBucket(t *testing.T) {
	manager := newTestManager(t)
	oversized := new(big.Int).Lsh(big.NewInt(1), 129)

	err := manager.PutFacilitator(&gho.Facilitator{
		Address: testAddress(0x02),
		Label:   "pool",
		Bucket:  gho.Bucket{Capacity: oversized, Level: big.NewInt(0)},
	})
	require.ErrorContains(t, err, "uint128")

	err = manager.PutFacilitator(&gho.Facilitator{
		Address: testAddress(0x02),
		Label:   "pool",
		Bucket:  gho.Bucket{Capacity: big.NewInt(1), Level: big.NewInt(-1)},
	})
	require.Error(t, err)
}

func TestFacilitatorListRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	list, err := manager.FacilitatorList()
	require.NoError(t, err)
	require.Empty(t, list)

	first := testAddress(0x03)
	second := testAddress(0x04)
	require.NoError(t, manager.SetFacilitatorList([]crypto.Address{first, second}))

	list, err = manager.FacilitatorList()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.True(t, list[0].Equal(first))
	require.True(t, list[1].Equal(second))
}

func TestBalanceAndSupply(t *testing.T) {
	manager := newTestManager(t)
	addr := testAddress(0x05)

	balance, err := manager.Balance(addr)
	require.NoError(t, err)
	require.Zero(t, balance.Sign())

	require.NoError(t, manager.SetBalance(addr, big.NewInt(777)))
	balance, err = manager.Balance(addr)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(777)))

	require.Error(t, manager.SetBalance(addr, big.NewInt(-1)))
	require.Error(t, manager.SetBalance(addr, nil))

	supply, err := manager.TokenSupply()
	require.NoError(t, err)
	require.Zero(t, supply.Sign())

	require.NoError(t, manager.SetTokenSupply(big.NewInt(777)))
	supply, err = manager.TokenSupply()
	require.NoError(t, err)
	require.Zero(t, supply.Cmp(big.NewInt(777)))
}

func TestUserStateRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	addr := testAddress(0x06)

	missing, err := manager.GetUserState(addr)
	require.NoError(t, err)
	require.Nil(t, missing)

	stored := &debt.UserState{
		Address:                 addr,
		ScaledBalance:           big.NewInt(100),
		PreviousIndex:           big.NewInt(1_000),
		AccumulatedDebtInterest: big.NewInt(8),
		DiscountPercent:         2000,
		RebalanceTimestamp:      4_600,
	}
	require.NoError(t, manager.PutUserState(stored))

	loaded, err := manager.GetUserState(addr)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.Address.Equal(addr))
	require.Zero(t, loaded.ScaledBalance.Cmp(big.NewInt(100)))
	require.Zero(t, loaded.PreviousIndex.Cmp(big.NewInt(1_000)))
	require.Zero(t, loaded.AccumulatedDebtInterest.Cmp(big.NewInt(8)))
	require.Equal(t, uint64(2000), loaded.DiscountPercent)
	require.Equal(t, uint64(4_600), loaded.RebalanceTimestamp)
}

func TestPutUserStateRejectsOversizedInterest(t *testing.T) {
	manager := newTestManager(t)

	err := manager.PutUserState(&debt.UserState{
		Address:                 testAddress(0x07),
		ScaledBalance:           big.NewInt(1),
		PreviousIndex:           big.NewInt(1),
		AccumulatedDebtInterest: new(big.Int).Lsh(big.NewInt(1), 129),
	})
	require.ErrorContains(t, err, "uint128")
}

func TestScaledSupplyAndAllowances(t *testing.T) {
	manager := newTestManager(t)
	from := testAddress(0x08)
	delegatee := testAddress(0x09)

	supply, err := manager.ScaledTotalSupply()
	require.NoError(t, err)
	require.Zero(t, supply.Sign())

	require.NoError(t, manager.SetScaledTotalSupply(big.NewInt(119)))
	supply, err = manager.ScaledTotalSupply()
	require.NoError(t, err)
	require.Zero(t, supply.Cmp(big.NewInt(119)))

	allowance, err := manager.BorrowAllowance(from, delegatee)
	require.NoError(t, err)
	require.Zero(t, allowance.Sign())

	require.NoError(t, manager.SetBorrowAllowance(from, delegatee, big.NewInt(50)))
	allowance, err = manager.BorrowAllowance(from, delegatee)
	require.NoError(t, err)
	require.Zero(t, allowance.Cmp(big.NewInt(50)))

	// The reverse direction stays independent.
	reverse, err := manager.BorrowAllowance(delegatee, from)
	require.NoError(t, err)
	require.Zero(t, reverse.Sign())
}

func TestEventCollection(t *testing.T) {
	manager := newTestManager(t)

	manager.AppendEvent(events.FacilitatorAdded{Facilitator: testAddress(0x0a), Label: "pool"}.Event())
	manager.AppendEvent(nil)

	collected := manager.Events()
	require.Len(t, collected, 1)
	require.Equal(t, events.TypeFacilitatorAdded, collected[0].Type)

	manager.ClearEvents()
	require.Empty(t, manager.Events())
}

func TestManagerPersistsAcrossInstances(t *testing.T) {
	db := storage.NewMemDB()
	first := NewManager(db)
	addr := testAddress(0x0b)

	require.NoError(t, first.SetBalance(addr, big.NewInt(42)))

	second := NewManager(db)
	balance, err := second.Balance(addr)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(42)))
}
