package fieldtest

// SandUsed is the mass of sand that filled the test hole: the jar weight
// before the test, less the weight after the test and the sand left in the
// cone.
type SandUsed struct {
	conePreTest  float64
	conePostTest float64
	sandInCone   float64
}

// NewSandUsed returns a SandUsed for the given jar weights. The sand in the
// cone defaults to DefaultSandInCone; override it with WithSandInCone.
func NewSandUsed(conePreTest, conePostTest float64, opts ...Option) SandUsed {
	cal := applyOptions(opts)
	return SandUsed{
		conePreTest:  conePreTest,
		conePostTest: conePostTest,
		sandInCone:   cal.SandInCone,
	}
}

// Calculate returns the sand used, rounded to 2 decimal places.
func (s SandUsed) Calculate() float64 {
	return roundN(s.conePreTest-(s.conePostTest+s.sandInCone), sandUsedPlaces)
}

// ConePreTest returns the jar weight before the test.
func (s SandUsed) ConePreTest() float64 { return s.conePreTest }

// ConePostTest returns the jar weight after the test.
func (s SandUsed) ConePostTest() float64 { return s.conePostTest }

// SandInCone returns the sand-in-cone constant in effect.
func (s SandUsed) SandInCone() float64 { return s.sandInCone }

// WetDensity is the in-place density of the soil including its water,
// derived from the mass of soil dug out and the volume of sand that
// replaced it.
type WetDensity struct {
	soil        float64
	sandUsed    SandUsedChoice
	sandDensity float64
}

// NewWetDensity returns a WetDensity for the excavated soil mass and the sand
// used. The sand density defaults to DefaultSandDensity; override it with
// WithSandDensity.
func NewWetDensity(soil float64, sandUsed SandUsedChoice, opts ...Option) WetDensity {
	cal := applyOptions(opts)
	return WetDensity{
		soil:        soil,
		sandUsed:    sandUsed,
		sandDensity: cal.SandDensity,
	}
}

// Calculate returns the wet density, rounded to 4 decimal places.
func (w WetDensity) Calculate() float64 {
	return roundN((w.soil/w.SandUsed())*w.sandDensity, wetDensityPlaces)
}

// Soil returns the excavated soil mass.
func (w WetDensity) Soil() float64 { return w.soil }

// SandUsed resolves and returns the sand used.
func (w WetDensity) SandUsed() float64 { return w.sandUsed.Resolve() }

// SandUsedChoice returns the unresolved sand-used input.
func (w WetDensity) SandUsedChoice() SandUsedChoice { return w.sandUsed }

// SandDensity returns the sand density constant in effect.
func (w WetDensity) SandDensity() float64 { return w.sandDensity }
