package utils

import "math/big"

// Rat builds a rational from an integer fraction.
func Rat(num, den int64) *big.Rat {
	return big.NewRat(num, den)
}

// RatZero returns a fresh zero-valued rational.
func RatZero() *big.Rat {
	return new(big.Rat)
}

// RatAdd returns a+b without mutating either operand.
func RatAdd(a, b *big.Rat) *big.Rat {
	return new(big.Rat).Add(a, b)
}

// RatSub returns a-b without mutating either operand.
func RatSub(a, b *big.Rat) *big.Rat {
	return new(big.Rat).Sub(a, b)
}

// RatMul returns a*b without mutating either operand.
func RatMul(a, b *big.Rat) *big.Rat {
	return new(big.Rat).Mul(a, b)
}

// RatDiv returns a/b without mutating either operand.
func RatDiv(a, b *big.Rat) *big.Rat {
	return new(big.Rat).Quo(a, b)
}

// RatMin returns the smaller of a and b.
func RatMin(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// RatMax returns the larger of a and b.
func RatMax(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// RatFloat converts a rational to float64, ignoring exactness loss.
func RatFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}
