package gho

import (
	"math/big"

	"ghochain/crypto"
)

// Bucket bounds how much stablecoin a facilitator may have outstanding.
// Capacity and Level are denominated in wei and must both fit an unsigned
// 128-bit integer; Level never exceeds Capacity once committed.
type Bucket struct {
	// Capacity is the governance controlled issuance ceiling.
	Capacity *big.Int
	// Level tracks the facilitator's currently outstanding issuance.
	Level *big.Int
}

// Facilitator is an authorized minter with a bounded mint capacity.
type Facilitator struct {
	// Address is the unique identity the facilitator mints under.
	Address crypto.Address
	// Label is a non-empty human readable tag assigned at registration.
	Label string
	// Bucket holds the capacity accounting for the facilitator.
	Bucket Bucket
}

// Clone returns a deep copy so callers cannot mutate shared pointers.
func (f *Facilitator) Clone() *Facilitator {
	if f == nil {
		return nil
	}
	clone := &Facilitator{Address: f.Address, Label: f.Label}
	clone.Bucket = *f.Bucket.Clone()
	return clone
}

// Clone returns a deep copy of the bucket.
func (b *Bucket) Clone() *Bucket {
	clone := &Bucket{Capacity: big.NewInt(0), Level: big.NewInt(0)}
	if b == nil {
		return clone
	}
	if b.Capacity != nil {
		clone.Capacity = new(big.Int).Set(b.Capacity)
	}
	if b.Level != nil {
		clone.Level = new(big.Int).Set(b.Level)
	}
	return clone
}

func ensureBucketDefaults(f *Facilitator) {
	if f == nil {
		return
	}
	if f.Bucket.Capacity == nil {
		f.Bucket.Capacity = big.NewInt(0)
	}
	if f.Bucket.Level == nil {
		f.Bucket.Level = big.NewInt(0)
	}
}
