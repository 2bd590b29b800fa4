package fpmath

import (
	"math/big"
	"testing"
)

func TestRayMulExact(t *testing.T) {
	a := new(big.Int).Mul(big.NewInt(2), Ray())
	b := new(big.Int).Mul(big.NewInt(3), Ray())
	want := new(big.Int).Mul(big.NewInt(6), Ray())
	if got := RayMul(a, b); got.Cmp(want) != 0 {
		t.Fatalf("unexpected product: got %s want %s", got, want)
	}
}

func TestRayMulRoundsHalfUp(t *testing.T) {
	half := new(big.Int).Rsh(Ray(), 1)
	if got := RayMul(big.NewInt(1), half); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected 0.5 to round up, got %s", got)
	}
	below := new(big.Int).Sub(half, big.NewInt(1))
	if got := RayMul(big.NewInt(1), below); got.Sign() != 0 {
		t.Fatalf("expected value below half to round down, got %s", got)
	}
}

func TestRayMulNilOperand(t *testing.T) {
	if got := RayMul(nil, Ray()); got.Sign() != 0 {
		t.Fatalf("expected zero for nil operand, got %s", got)
	}
}

func TestRayDivExact(t *testing.T) {
	a := new(big.Int).Mul(big.NewInt(6), Ray())
	b := new(big.Int).Mul(big.NewInt(3), Ray())
	want := new(big.Int).Mul(big.NewInt(2), Ray())
	if got := RayDiv(a, b); got.Cmp(want) != 0 {
		t.Fatalf("unexpected quotient: got %s want %s", got, want)
	}
}

func TestRayDivRoundsHalfUp(t *testing.T) {
	two := new(big.Int).Mul(big.NewInt(2), Ray())
	if got := RayDiv(big.NewInt(1), two); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected 0.5 to round up, got %s", got)
	}
	three := new(big.Int).Mul(big.NewInt(3), Ray())
	if got := RayDiv(big.NewInt(1), three); got.Sign() != 0 {
		t.Fatalf("expected one third to round down, got %s", got)
	}
}

func TestRayDivZeroDivisor(t *testing.T) {
	if got := RayDiv(Ray(), nil); got.Sign() != 0 {
		t.Fatalf("expected zero for nil divisor, got %s", got)
	}
	if got := RayDiv(Ray(), big.NewInt(0)); got.Sign() != 0 {
		t.Fatalf("expected zero for zero divisor, got %s", got)
	}
}

func TestRayDivUncheckedFloors(t *testing.T) {
	two := new(big.Int).Mul(big.NewInt(2), Ray())
	if got := RayDivUnchecked(big.NewInt(1), two); got.Sign() != 0 {
		t.Fatalf("expected 0.5 to floor to zero, got %s", got)
	}
	if got := RayDivUnchecked(big.NewInt(3), two); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected 1.5 to floor to one, got %s", got)
	}
}

func TestPercentMul(t *testing.T) {
	if got := PercentMul(big.NewInt(10), 2000); got.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected 20%% of 10 to be 2, got %s", got)
	}
	if got := PercentMul(big.NewInt(1), 5000); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected half to round up, got %s", got)
	}
	if got := PercentMul(big.NewInt(1), 4999); got.Sign() != 0 {
		t.Fatalf("expected below half to round down, got %s", got)
	}
	if got := PercentMul(big.NewInt(100), 0); got.Sign() != 0 {
		t.Fatalf("expected zero bps to yield zero, got %s", got)
	}
}

func TestRayReturnsCopy(t *testing.T) {
	r := Ray()
	r.SetInt64(1)
	if Ray().Cmp(new(big.Int).Mul(big.NewInt(1), mustBigInt("1000000000000000000000000000"))) != 0 {
		t.Fatalf("mutating the returned ray leaked into the package constant")
	}
}
