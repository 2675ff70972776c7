package fieldtest

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is reported by Check when a result is +Inf, -Inf or NaN,
// which happens when a formula divides by a zero denominator.
var ErrNonFinite = errors.New("non-finite result")

// Check returns v unchanged, together with an error wrapping ErrNonFinite
// when v is not a finite number. name identifies the calculation in the error.
func Check(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, fmt.Errorf("%s: %w (%v)", name, ErrNonFinite, v)
	}
	return v, nil
}
