// Package decompression defines the contract between the dive profile engine and a
// tissue loading model. Models are advanced in place; the engine keeps history by taking
// value snapshots that never share memory with the live model.
package decompression

// Segment describes one interval of the dive fed to a model
type Segment struct {
	BeginDepth       float64 // meters
	EndDepth         float64 // meters
	Minutes          float64 // elapsed time
	HeliumFraction   float64 // 0-1
	NitrogenFraction float64 // 0-1
	GradientFactor   float64 // 0-1, conservatism used for the ceilings
}

// Model is a swappable decompression algorithm
type Model interface {
	// Name identifies the algorithm, e.g. "ZHL16C"
	Name() string

	// InitSurface saturates every compartment with air at surface pressure and clears
	// the running maxima
	InitSurface()

	// Advance loads the tissues over the segment and recomputes the ceilings
	Advance(seg Segment)

	// Snapshot returns a deep copy of the current state
	Snapshot() ModelPoint
}

// TissueLoad is the inert gas pressure in one compartment, in bar
type TissueLoad struct {
	Nitrogen float64 `json:"n2" msgpack:"n2"`
	Helium   float64 `json:"he" msgpack:"he"`
}

// Total returns the combined inert gas pressure
func (t TissueLoad) Total() float64 {
	return t.Nitrogen + t.Helium
}

// ModelPoint is an immutable snapshot of a model taken after a segment
type ModelPoint struct {
	Tissues         []TissueLoad `json:"tissues" msgpack:"tissues"`
	Ceilings        []float64    `json:"ceilings" msgpack:"ceilings"` // meters per compartment, may be negative
	Ambient         float64      `json:"ambient" msgpack:"ambient"`   // bar
	LeadCeiling     float64      `json:"lead_ceiling" msgpack:"lead_ceiling"`
	LeadCeilingStop float64      `json:"lead_ceiling_stop" msgpack:"lead_ceiling_stop"` // rounded up to the stop grid, never negative
	LeadTissue      int          `json:"lead_tissue" msgpack:"lead_tissue"`
	GradientFactor  float64      `json:"gf" msgpack:"gf"`
	MaxNitrogen     float64      `json:"max_n2" msgpack:"max_n2"`
	MaxHelium       float64      `json:"max_he" msgpack:"max_he"`
}

// Clone returns a copy of p that shares no slices with it
func (p ModelPoint) Clone() ModelPoint {
	out := p
	out.Tissues = append([]TissueLoad(nil), p.Tissues...)
	out.Ceilings = append([]float64(nil), p.Ceilings...)
	return out
}

// StopGrid is the spacing of decompression stops in meters
const StopGrid = 3.0
