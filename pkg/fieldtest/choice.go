package fieldtest

import "fmt"

// Calculator is implemented by every formula in this package.
type Calculator interface {
	Calculate() float64
}

// Choice is an input to a composite calculator. It holds either a literal
// value or an upstream calculator that is evaluated when the choice is
// resolved. The zero value is the literal 0.
type Choice[C Calculator] struct {
	value    float64
	calc     C
	computed bool
}

// Literal returns a Choice holding the already known value v.
func Literal[C Calculator](v float64) Choice[C] {
	return Choice[C]{value: v}
}

// Computed returns a Choice that runs c when resolved.
func Computed[C Calculator](c C) Choice[C] {
	return Choice[C]{calc: c, computed: true}
}

// Resolve returns the literal value, or the result of the nested calculator.
func (c Choice[C]) Resolve() float64 {
	if c.computed {
		return c.calc.Calculate()
	}
	return c.value
}

// IsComputed reports whether the choice wraps a nested calculator.
func (c Choice[C]) IsComputed() bool {
	return c.computed
}

// Calculator returns the nested calculator and true, or the zero C and false
// for a literal choice.
func (c Choice[C]) Calculator() (C, bool) {
	return c.calc, c.computed
}

func (c Choice[C]) String() string {
	if c.computed {
		return fmt.Sprintf("computed(%v)", c.calc)
	}
	return fmt.Sprintf("value(%v)", c.value)
}

// Named choices for each composable calculator.
type (
	SandUsedChoice        = Choice[SandUsed]
	WetDensityChoice      = Choice[WetDensity]
	MoistureContentChoice = Choice[MoistureContent]
	DryDensityChoice      = Choice[DryDensity]
	RockCorrectionChoice  = Choice[RockCorrection]
)

// SandUsedValue wraps a known sand-used value.
func SandUsedValue(v float64) SandUsedChoice { return Literal[SandUsed](v) }

// SandUsedOf defers to s.
func SandUsedOf(s SandUsed) SandUsedChoice { return Computed(s) }

// WetDensityValue wraps a known wet density.
func WetDensityValue(v float64) WetDensityChoice { return Literal[WetDensity](v) }

// WetDensityOf defers to w.
func WetDensityOf(w WetDensity) WetDensityChoice { return Computed(w) }

// MoistureContentValue wraps a known moisture content.
func MoistureContentValue(v float64) MoistureContentChoice { return Literal[MoistureContent](v) }

// MoistureContentOf defers to m.
func MoistureContentOf(m MoistureContent) MoistureContentChoice { return Computed(m) }

// DryDensityValue wraps a known dry density.
func DryDensityValue(v float64) DryDensityChoice { return Literal[DryDensity](v) }

// DryDensityOf defers to d.
func DryDensityOf(d DryDensity) DryDensityChoice { return Computed(d) }

// RockCorrectionValue wraps a known rock correction.
func RockCorrectionValue(v float64) RockCorrectionChoice { return Literal[RockCorrection](v) }

// RockCorrectionOf defers to r.
func RockCorrectionOf(r RockCorrection) RockCorrectionChoice { return Computed(r) }
