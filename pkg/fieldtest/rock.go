package fieldtest

// RockCorrection is the oversize fraction of a sample: the weight retained
// on the sieve over the weight of the whole sample before sieving.
type RockCorrection struct {
	leftOnSieveWeight float64
	preSieveWeight    float64
}

// NewRockCorrection returns a RockCorrection for the sieve weights.
func NewRockCorrection(leftOnSieveWeight, preSieveWeight float64) RockCorrection {
	return RockCorrection{
		leftOnSieveWeight: leftOnSieveWeight,
		preSieveWeight:    preSieveWeight,
	}
}

// Calculate returns the oversize fraction, rounded to 1 decimal place.
func (r RockCorrection) Calculate() float64 {
	return roundN(r.leftOnSieveWeight/r.preSieveWeight, rockCorrectionPlaces)
}

func (r RockCorrection) LeftOnSieveWeight() float64 { return r.leftOnSieveWeight }
func (r RockCorrection) PreSieveWeight() float64    { return r.preSieveWeight }

// LabMaxCorrection adjusts the laboratory maximum dry density for the
// oversize rock in the field sample.
type LabMaxCorrection struct {
	rockCorrection  RockCorrectionChoice
	labMax          float64
	specificGravity float64
}

// NewLabMaxCorrection returns a LabMaxCorrection. The specific gravity of the
// rock defaults to DefaultSpecificGravity; override it with
// WithSpecificGravity.
func NewLabMaxCorrection(rockCorrection RockCorrectionChoice, labMax float64, opts ...Option) LabMaxCorrection {
	cal := applyOptions(opts)
	return LabMaxCorrection{
		rockCorrection:  rockCorrection,
		labMax:          labMax,
		specificGravity: cal.SpecificGravity,
	}
}

// Calculate returns the corrected lab maximum, rounded to 1 decimal place.
func (l LabMaxCorrection) Calculate() float64 {
	rc := l.RockCorrection()
	result := (1 - 0.05*rc) / (rc/(unitWeightOfWater*l.specificGravity) + (1-rc)/l.labMax)
	return roundN(result, labMaxCorrectionPlaces)
}

// RockCorrection resolves and returns the oversize fraction.
func (l LabMaxCorrection) RockCorrection() float64 { return l.rockCorrection.Resolve() }

// RockCorrectionChoice returns the unresolved rock correction input.
func (l LabMaxCorrection) RockCorrectionChoice() RockCorrectionChoice { return l.rockCorrection }

// LabMax returns the uncorrected laboratory maximum.
func (l LabMaxCorrection) LabMax() float64 { return l.labMax }

// SpecificGravity returns the specific gravity constant in effect.
func (l LabMaxCorrection) SpecificGravity() float64 { return l.specificGravity }
