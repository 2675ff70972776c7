package fieldtest

// MoistureContent is the ratio of water mass to dry soil mass, measured by
// weighing a sample in a pan before and after drying.
type MoistureContent struct {
	wetWeight float64
	dryWeight float64
	tarePan   float64
}

// NewMoistureContent returns a MoistureContent for the sample weights. Both
// wetWeight and dryWeight include the pan; tarePan is the empty pan.
func NewMoistureContent(wetWeight, dryWeight, tarePan float64) MoistureContent {
	return MoistureContent{
		wetWeight: wetWeight,
		dryWeight: dryWeight,
		tarePan:   tarePan,
	}
}

// Calculate returns the moisture content as a fraction, rounded to 8 decimal
// places.
func (m MoistureContent) Calculate() float64 {
	return roundN((m.wetWeight-m.dryWeight)/(m.dryWeight-m.tarePan), moistureContentPlaces)
}

func (m MoistureContent) WetWeight() float64 { return m.wetWeight }
func (m MoistureContent) DryWeight() float64 { return m.dryWeight }
func (m MoistureContent) TarePan() float64   { return m.tarePan }
