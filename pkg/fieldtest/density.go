package fieldtest

// DryDensity is the density of the soil solids alone.
type DryDensity struct {
	wetDensity      WetDensityChoice
	moistureContent MoistureContentChoice
}

// NewDryDensity returns a DryDensity from a wet density and a moisture
// content, each given as a value or as a nested calculator.
func NewDryDensity(wetDensity WetDensityChoice, moistureContent MoistureContentChoice) DryDensity {
	return DryDensity{
		wetDensity:      wetDensity,
		moistureContent: moistureContent,
	}
}

// Calculate resolves both inputs and returns wet / (1 + moisture), rounded to
// a whole number.
func (d DryDensity) Calculate() float64 {
	return roundN(d.WetDensity()/(1+d.MoistureContent()), dryDensityPlaces)
}

// WetDensity resolves and returns the wet density input.
func (d DryDensity) WetDensity() float64 { return d.wetDensity.Resolve() }

// MoistureContent resolves and returns the moisture content input.
func (d DryDensity) MoistureContent() float64 { return d.moistureContent.Resolve() }

// WetDensityChoice returns the unresolved wet density input.
func (d DryDensity) WetDensityChoice() WetDensityChoice { return d.wetDensity }

// MoistureContentChoice returns the unresolved moisture content input.
func (d DryDensity) MoistureContentChoice() MoistureContentChoice { return d.moistureContent }

// Compaction is the field dry density as a percentage of the laboratory
// maximum dry density.
type Compaction struct {
	dryDensity DryDensityChoice
	labMax     float64
}

// NewCompaction returns a Compaction for a dry density and the lab maximum.
func NewCompaction(dryDensity DryDensityChoice, labMax float64) Compaction {
	return Compaction{dryDensity: dryDensity, labMax: labMax}
}

// Calculate returns the percent compaction, rounded to 1 decimal place.
func (c Compaction) Calculate() float64 {
	return roundN((c.DryDensity()/c.labMax)*100, compactionPlaces)
}

// DryDensity resolves and returns the dry density input.
func (c Compaction) DryDensity() float64 { return c.dryDensity.Resolve() }

// DryDensityChoice returns the unresolved dry density input.
func (c Compaction) DryDensityChoice() DryDensityChoice { return c.dryDensity }

// LabMax returns the laboratory maximum dry density.
func (c Compaction) LabMax() float64 { return c.labMax }
