package core

import (
	"fmt"
	"math"
)

// Rational is a tuning factor declared as a numerator/denominator pair.
type Rational struct {
	Num int64
	Den int64
}

// Validate checks the numerator fits a signed 32-bit value and the
// denominator lies in [1, MaxInt32].
func (r Rational) Validate() error {
	if r.Num < math.MinInt32 || r.Num > math.MaxInt32 {
		return fmt.Errorf("numerator %d out of range [%d, %d]", r.Num, math.MinInt32, math.MaxInt32)
	}
	if r.Den < 1 || r.Den > math.MaxInt32 {
		return fmt.Errorf("denominator %d out of range [1, %d]", r.Den, math.MaxInt32)
	}
	return nil
}

// Float32 reduces the factor to the single-precision value that is persisted.
func (r Rational) Float32() float32 {
	return float32(float64(r.Num) / float64(r.Den))
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
