package events

import (
	"math/big"

	"ghochain/core/types"
	"ghochain/crypto"
)

const (
	// TypeFacilitatorAdded is emitted when a new facilitator is registered.
	TypeFacilitatorAdded = "gho.facilitator.added"
	// TypeFacilitatorRemoved is emitted when a facilitator is removed.
	TypeFacilitatorRemoved = "gho.facilitator.removed"
	// TypeBucketLevelUpdated is emitted whenever a facilitator bucket level
	// changes through a mint or burn.
	TypeBucketLevelUpdated = "gho.facilitator.bucket_level"
	// TypeBucketCapacityUpdated is emitted when governance adjusts a
	// facilitator bucket capacity.
	TypeBucketCapacityUpdated = "gho.facilitator.bucket_capacity"
)

// FacilitatorAdded captures the registration of a new facilitator.
type FacilitatorAdded struct {
	Facilitator crypto.Address
	Label       string
	Capacity    *big.Int
}

func (FacilitatorAdded) EventType() string { return TypeFacilitatorAdded }

func (e FacilitatorAdded) Event() *types.Event {
	capacity := big.NewInt(0)
	if e.Capacity != nil {
		capacity = new(big.Int).Set(e.Capacity)
	}
	return &types.Event{
		Type: TypeFacilitatorAdded,
		Attributes: map[string]string{
			"facilitator": e.Facilitator.String(),
			"label":       e.Label,
			"capacity":    capacity.String(),
		},
	}
}

// FacilitatorRemoved captures the deletion of a facilitator entry.
type FacilitatorRemoved struct {
	Facilitator crypto.Address
}

func (FacilitatorRemoved) EventType() string { return TypeFacilitatorRemoved }

func (e FacilitatorRemoved) Event() *types.Event {
	return &types.Event{
		Type: TypeFacilitatorRemoved,
		Attributes: map[string]string{
			"facilitator": e.Facilitator.String(),
		},
	}
}

// BucketLevelUpdated records an old/new bucket level pair for a facilitator.
type BucketLevelUpdated struct {
	Facilitator crypto.Address
	OldLevel    *big.Int
	NewLevel    *big.Int
}

func (BucketLevelUpdated) EventType() string { return TypeBucketLevelUpdated }

func (e BucketLevelUpdated) Event() *types.Event {
	oldLevel := big.NewInt(0)
	if e.OldLevel != nil {
		oldLevel = new(big.Int).Set(e.OldLevel)
	}
	newLevel := big.NewInt(0)
	if e.NewLevel != nil {
		newLevel = new(big.Int).Set(e.NewLevel)
	}
	return &types.Event{
		Type: TypeBucketLevelUpdated,
		Attributes: map[string]string{
			"facilitator": e.Facilitator.String(),
			"oldLevel":    oldLevel.String(),
			"newLevel":    newLevel.String(),
		},
	}
}

// BucketCapacityUpdated records a governance capacity change.
type BucketCapacityUpdated struct {
	Facilitator crypto.Address
	OldCapacity *big.Int
	NewCapacity *big.Int
}

func (BucketCapacityUpdated) EventType() string { return TypeBucketCapacityUpdated }

func (e BucketCapacityUpdated) Event() *types.Event {
	oldCapacity := big.NewInt(0)
	if e.OldCapacity != nil {
		oldCapacity = new(big.Int).Set(e.OldCapacity)
	}
	newCapacity := big.NewInt(0)
	if e.NewCapacity != nil {
		newCapacity = new(big.Int).Set(e.NewCapacity)
	}
	return &types.Event{
		Type: TypeBucketCapacityUpdated,
		Attributes: map[string]string{
			"facilitator": e.Facilitator.String(),
			"oldCapacity": oldCapacity.String(),
			"newCapacity": newCapacity.String(),
		},
	}
}
