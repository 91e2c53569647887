package dive

import "github.com/chrissnell/decoplan/pkg/decompression"

// ProfilePoint is one sample of the simulated dive, taken at the end of a step.
// Time and Interval are seconds, Depth meters, pressures bar. Phase is the state the
// step moved into.
type ProfilePoint struct {
	Time           float64  `json:"time"`
	Interval       float64  `json:"interval"`
	Depth          float64  `json:"depth"`
	Pressure       float64  `json:"pressure"`
	Phase          Phase    `json:"phase"`
	Tank           TankRole `json:"tank"`
	TankName       string   `json:"tank_name"`
	Oxygen         float64  `json:"o2"`
	Helium         float64  `json:"he"`
	Nitrogen       float64  `json:"n2"`
	TankPressure   float64  `json:"tank_bar"`
	PPOxygen       float64  `json:"pp_o2"`
	PPHelium       float64  `json:"pp_he"`
	PPNitrogen     float64  `json:"pp_n2"`
	GradientFactor float64  `json:"gf"`
	GFSet          bool     `json:"gf_set"`
	Ascending      bool     `json:"ascending"`
	DepthRunAvg    float64  `json:"depth_avg"`

	// Model is a snapshot of the tissue state after the step
	Model decompression.ModelPoint `json:"model"`
}

// CeilingMargin returns how far below the exact ceiling the point is, in meters
func (p ProfilePoint) CeilingMargin() float64 {
	return p.Depth - p.Model.LeadCeiling
}
