package fieldtest

// Default calibration constants.
const (
	// DefaultSandInCone is the mass of sand (lb) that fills the cone.
	DefaultSandInCone = 3.59
	// DefaultSandDensity is the calibrated bulk density of the test sand (pcf).
	DefaultSandDensity = 88.0
	// DefaultSpecificGravity is the specific gravity of the oversize rock.
	DefaultSpecificGravity = 2.7
)

// unitWeightOfWater is the unit weight of water in pcf.
const unitWeightOfWater = 62.4

// Calibration holds the constants a calculator falls back to when the caller
// does not override them.
type Calibration struct {
	SandInCone      float64 `json:"sand_in_cone" yaml:"sand_in_cone" mapstructure:"sand_in_cone"`
	SandDensity     float64 `json:"sand_density" yaml:"sand_density" mapstructure:"sand_density"`
	SpecificGravity float64 `json:"specific_gravity" yaml:"specific_gravity" mapstructure:"specific_gravity"`
}

// DefaultCalibration returns the calibration built from the package defaults.
func DefaultCalibration() Calibration {
	return Calibration{
		SandInCone:      DefaultSandInCone,
		SandDensity:     DefaultSandDensity,
		SpecificGravity: DefaultSpecificGravity,
	}
}

// Merge returns c with every zero constant taken from base. A stored or
// decoded calibration that names only some constants keeps the others.
func (c Calibration) Merge(base Calibration) Calibration {
	if c.SandInCone == 0 {
		c.SandInCone = base.SandInCone
	}
	if c.SandDensity == 0 {
		c.SandDensity = base.SandDensity
	}
	if c.SpecificGravity == 0 {
		c.SpecificGravity = base.SpecificGravity
	}
	return c
}

// Option overrides a calibration constant for a single calculator.
// Options that do not apply to a calculator are ignored by it.
type Option func(*Calibration)

// WithSandInCone overrides the sand-in-cone constant used by SandUsed.
func WithSandInCone(v float64) Option {
	return func(c *Calibration) { c.SandInCone = v }
}

// WithSandDensity overrides the sand density used by WetDensity.
func WithSandDensity(v float64) Option {
	return func(c *Calibration) { c.SandDensity = v }
}

// WithSpecificGravity overrides the specific gravity used by LabMaxCorrection.
func WithSpecificGravity(v float64) Option {
	return func(c *Calibration) { c.SpecificGravity = v }
}

// WithCalibration replaces every constant at once, typically with values
// loaded from configuration.
func WithCalibration(cal Calibration) Option {
	return func(c *Calibration) { *c = cal }
}

func applyOptions(opts []Option) Calibration {
	cal := DefaultCalibration()
	for _, opt := range opts {
		if opt != nil {
			opt(&cal)
		}
	}
	return cal
}
