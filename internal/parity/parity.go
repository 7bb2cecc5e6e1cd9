// Package parity sums the even and the odd integers of a mixed sequence.
//
// Inputs are tagged Values, so booleans, floats, strings and nulls are told
// apart from integers at construction time and ignored here. Summing never
// fails.
package parity

import "golang.org/x/exp/constraints"

// Sums is the JSON shape of a parity result.
type Sums struct {
	Even int64 `json:"sum_even"`
	Odd  int64 `json:"sum_odd"`
}

// SumEvenAndOdd adds each KindInt value to the even or odd bucket.
// Every other kind, KindBool included, is skipped.
func SumEvenAndOdd(values []Value) (sumEven, sumOdd int64) {
	for _, v := range values {
		n, ok := v.AsInt()
		if !ok {
			continue
		}
		if isEven(n) {
			sumEven += n
		} else {
			sumOdd += n
		}
	}
	return sumEven, sumOdd
}

// Summarize is SumEvenAndOdd returning Sums.
func Summarize(values []Value) Sums {
	even, odd := SumEvenAndOdd(values)
	return Sums{Even: even, Odd: odd}
}

// SumEvenAndOddInts is SumEvenAndOdd for a homogeneous integer slice.
func SumEvenAndOddInts[T constraints.Integer](ts []T) (sumEven, sumOdd T) {
	for _, t := range ts {
		if isEven(t) {
			sumEven += t
		} else {
			sumOdd += t
		}
	}
	return sumEven, sumOdd
}

// isEven holds for negative numbers too: Go's remainder truncates toward
// zero, so -3%2 == -1, and only even numbers leave a zero remainder.
func isEven[T constraints.Integer](n T) bool {
	return n%2 == 0
}
