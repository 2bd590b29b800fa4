package fpmath

import "math/big"

var (
	ray         = mustBigInt("1000000000000000000000000000") // 1e27 precision
	halfRay     = new(big.Int).Rsh(ray, 1)
	basisPoints = big.NewInt(10_000)
	halfBps     = big.NewInt(5_000)
)

// Ray returns the 1e27 fixed-point unit used for index and rate math.
func Ray() *big.Int {
	return new(big.Int).Set(ray)
}

// BasisPoints returns the percentage denominator (10000 bps = 100%).
func BasisPoints() *big.Int {
	return new(big.Int).Set(basisPoints)
}

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}

func halfUp(v *big.Int) *big.Int {
	return new(big.Int).Rsh(v, 1)
}

// RayMul multiplies two ray-scaled values, rounding half up.
func RayMul(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return big.NewInt(0)
	}
	product := new(big.Int).Mul(a, b)
	product.Add(product, halfRay)
	product.Quo(product, ray)
	return product
}

// RayDiv divides two ray-scaled values, rounding half up. A nil or zero
// divisor yields zero to keep callers total.
func RayDiv(a, b *big.Int) *big.Int {
	if a == nil || b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).Mul(a, ray)
	numerator.Add(numerator, halfUp(b))
	numerator.Quo(numerator, b)
	return numerator
}

// RayDivUnchecked divides without the half-up rounding adjustment, flooring
// the result. Callers must guarantee a non-zero divisor; the debt engine uses
// it to convert discounted interest back to scaled units, where the rounded
// variant would overshoot the scaled growth at a 100% discount.
func RayDivUnchecked(a, b *big.Int) *big.Int {
	if a == nil || a.Sign() == 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).Mul(a, ray)
	return numerator.Quo(numerator, b)
}

// PercentMul applies a basis-point percentage to the amount, rounding half up.
func PercentMul(amount *big.Int, bps uint64) *big.Int {
	if amount == nil || amount.Sign() == 0 || bps == 0 {
		return big.NewInt(0)
	}
	product := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	product.Add(product, halfBps)
	product.Quo(product, basisPoints)
	return product
}
