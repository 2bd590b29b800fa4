package gho

import (
	"fmt"
	"math/big"
	"strings"

	"ghochain/core/events"
	"ghochain/core/types"
	"ghochain/crypto"
	"ghochain/observability"
)

const maxBucketBits = 128

// RegistryState describes the persistence surface the facilitator registry
// needs from the surrounding state implementation. GetFacilitator returns nil
// without error when the entry is absent.
type RegistryState interface {
	GetFacilitator(addr crypto.Address) (*Facilitator, error)
	PutFacilitator(facilitator *Facilitator) error
	DeleteFacilitator(addr crypto.Address) error
	FacilitatorList() ([]crypto.Address, error)
	SetFacilitatorList(addrs []crypto.Address) error
	AppendEvent(evt *types.Event)
}

// Registry governs stablecoin issuance by tracking each facilitator's bucket
// capacity and current level. All mutations are all-or-nothing: validation
// happens before any state write.
type Registry struct {
	state      RegistryState
	governance crypto.Address
}

// NewRegistry constructs a registry governed by the provided address.
func NewRegistry(governance crypto.Address) *Registry {
	return &Registry{governance: governance}
}

// SetState wires the registry to the external persistence layer.
func (r *Registry) SetState(state RegistryState) { r.state = state }

// Governance returns the privileged caller for registry administration.
func (r *Registry) Governance() crypto.Address {
	if r == nil {
		return crypto.Address{}
	}
	return r.governance
}

// AddFacilitators registers the provided facilitators with empty buckets. The
// three slices must have equal length and every entry must be new and carry a
// non-empty label. Capacity zero is legal; such a facilitator cannot mint
// until governance raises its ceiling.
func (r *Registry) AddFacilitators(caller crypto.Address, addrs []crypto.Address, labels []string, capacities []*big.Int) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if err := r.requireGovernance(caller); err != nil {
		return err
	}
	if len(addrs) == 0 || len(addrs) != len(labels) || len(addrs) != len(capacities) {
		return ErrInvalidInput
	}
	// Validate the whole batch before committing anything so a rejected entry
	// leaves no partial state behind.
	seen := make(map[string]struct{}, len(addrs))
	entries := make([]*Facilitator, 0, len(addrs))
	for i, addr := range addrs {
		if addr.IsZero() {
			return fmt.Errorf("%w: zero facilitator address", ErrInvalidInput)
		}
		label := strings.TrimSpace(labels[i])
		if label == "" {
			return ErrInvalidLabel
		}
		capacity := capacities[i]
		if capacity == nil || capacity.Sign() < 0 || capacity.BitLen() > maxBucketBits {
			return fmt.Errorf("%w: capacity out of range", ErrInvalidInput)
		}
		if _, dup := seen[string(addr.Bytes())]; dup {
			return ErrFacilitatorExists
		}
		seen[string(addr.Bytes())] = struct{}{}
		existing, err := r.state.GetFacilitator(addr)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrFacilitatorExists
		}
		entries = append(entries, &Facilitator{
			Address: addr,
			Label:   label,
			Bucket: Bucket{
				Capacity: new(big.Int).Set(capacity),
				Level:    big.NewInt(0),
			},
		})
	}
	list, err := r.state.FacilitatorList()
	if err != nil {
		return err
	}
	for _, facilitator := range entries {
		if err := r.state.PutFacilitator(facilitator); err != nil {
			return err
		}
		list = append(list, facilitator.Address)
		r.state.AppendEvent(events.FacilitatorAdded{
			Facilitator: facilitator.Address,
			Label:       facilitator.Label,
			Capacity:    facilitator.Bucket.Capacity,
		}.Event())
	}
	return r.state.SetFacilitatorList(list)
}

// RemoveFacilitators deletes the provided facilitators. A facilitator can only
// be removed once its bucket level has been fully burned down; the mapping
// entry and the enumeration list entry are dropped together.
func (r *Registry) RemoveFacilitators(caller crypto.Address, addrs []crypto.Address) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if err := r.requireGovernance(caller); err != nil {
		return err
	}
	if len(addrs) == 0 {
		return ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		if _, dup := seen[string(addr.Bytes())]; dup {
			return ErrFacilitatorNotFound
		}
		seen[string(addr.Bytes())] = struct{}{}
		facilitator, err := r.state.GetFacilitator(addr)
		if err != nil {
			return err
		}
		if facilitator == nil {
			return ErrFacilitatorNotFound
		}
		ensureBucketDefaults(facilitator)
		if facilitator.Bucket.Level.Sign() != 0 {
			return ErrBucketLevelNotZero
		}
	}
	list, err := r.state.FacilitatorList()
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		if err := r.state.DeleteFacilitator(addr); err != nil {
			return err
		}
		filtered := make([]crypto.Address, 0, len(list))
		for _, entry := range list {
			if !entry.Equal(addr) {
				filtered = append(filtered, entry)
			}
		}
		list = filtered
		r.state.AppendEvent(events.FacilitatorRemoved{Facilitator: addr}.Event())
	}
	return r.state.SetFacilitatorList(list)
}

// SetBucketCapacity updates the facilitator's issuance ceiling. The level is
// untouched; lowering capacity below the current level simply blocks further
// minting until the level drains.
func (r *Registry) SetBucketCapacity(caller, facilitatorAddr crypto.Address, newCapacity *big.Int) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if err := r.requireGovernance(caller); err != nil {
		return err
	}
	if newCapacity == nil || newCapacity.Sign() < 0 || newCapacity.BitLen() > maxBucketBits {
		return fmt.Errorf("%w: capacity out of range", ErrInvalidInput)
	}
	facilitator, err := r.state.GetFacilitator(facilitatorAddr)
	if err != nil {
		return err
	}
	if facilitator == nil {
		return ErrFacilitatorNotFound
	}
	ensureBucketDefaults(facilitator)
	oldCapacity := new(big.Int).Set(facilitator.Bucket.Capacity)
	facilitator.Bucket.Capacity = new(big.Int).Set(newCapacity)
	if err := r.state.PutFacilitator(facilitator); err != nil {
		return err
	}
	r.state.AppendEvent(events.BucketCapacityUpdated{
		Facilitator: facilitatorAddr,
		OldCapacity: oldCapacity,
		NewCapacity: newCapacity,
	}.Event())
	return nil
}

// MintAuthorization reserves bucket capacity for a mint by the caller. The
// level is committed before the ledger mutates balances so a capacity failure
// aborts the whole operation.
func (r *Registry) MintAuthorization(caller crypto.Address, amount *big.Int) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidMintAmount
	}
	facilitator, err := r.state.GetFacilitator(caller)
	if err != nil {
		return err
	}
	if facilitator == nil {
		return ErrInvalidFacilitator
	}
	ensureBucketDefaults(facilitator)
	if facilitator.Bucket.Capacity.Sign() == 0 {
		return ErrInvalidFacilitator
	}
	oldLevel := new(big.Int).Set(facilitator.Bucket.Level)
	newLevel := new(big.Int).Add(oldLevel, amount)
	if newLevel.Cmp(facilitator.Bucket.Capacity) > 0 {
		return ErrBucketCapacityExceeded
	}
	facilitator.Bucket.Level = newLevel
	if err := r.state.PutFacilitator(facilitator); err != nil {
		return err
	}
	r.state.AppendEvent(events.BucketLevelUpdated{
		Facilitator: caller,
		OldLevel:    oldLevel,
		NewLevel:    newLevel,
	}.Event())
	observability.GhoMetrics().SetBucketLevel(caller.String(), newLevel)
	return nil
}

// BurnAuthorization releases bucket capacity after a burn by the caller. A
// burn exceeding the recorded level is unreachable through correct facilitator
// usage and treated as an unrecoverable fault rather than a validation error.
func (r *Registry) BurnAuthorization(caller crypto.Address, amount *big.Int) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidBurnAmount
	}
	facilitator, err := r.state.GetFacilitator(caller)
	if err != nil {
		return err
	}
	if facilitator == nil {
		return ErrInvalidFacilitator
	}
	ensureBucketDefaults(facilitator)
	oldLevel := new(big.Int).Set(facilitator.Bucket.Level)
	newLevel := new(big.Int).Sub(oldLevel, amount)
	if newLevel.Sign() < 0 {
		panic(fmt.Sprintf("gho: bucket level underflow for %s", caller.String()))
	}
	facilitator.Bucket.Level = newLevel
	if err := r.state.PutFacilitator(facilitator); err != nil {
		return err
	}
	r.state.AppendEvent(events.BucketLevelUpdated{
		Facilitator: caller,
		OldLevel:    oldLevel,
		NewLevel:    newLevel,
	}.Event())
	observability.GhoMetrics().SetBucketLevel(caller.String(), newLevel)
	return nil
}

// Facilitator returns a copy of the stored facilitator entry.
func (r *Registry) Facilitator(addr crypto.Address) (*Facilitator, error) {
	if r == nil || r.state == nil {
		return nil, ErrNilState
	}
	facilitator, err := r.state.GetFacilitator(addr)
	if err != nil {
		return nil, err
	}
	if facilitator == nil {
		return nil, ErrFacilitatorNotFound
	}
	ensureBucketDefaults(facilitator)
	return facilitator.Clone(), nil
}

// Bucket returns a copy of the facilitator's bucket.
func (r *Registry) Bucket(addr crypto.Address) (*Bucket, error) {
	facilitator, err := r.Facilitator(addr)
	if err != nil {
		return nil, err
	}
	return facilitator.Bucket.Clone(), nil
}

// FacilitatorsList returns all facilitator addresses in insertion order.
func (r *Registry) FacilitatorsList() ([]crypto.Address, error) {
	if r == nil || r.state == nil {
		return nil, ErrNilState
	}
	return r.state.FacilitatorList()
}

func (r *Registry) requireGovernance(caller crypto.Address) error {
	if !caller.Equal(r.governance) {
		return ErrUnauthorized
	}
	return nil
}
