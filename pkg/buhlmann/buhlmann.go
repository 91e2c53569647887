// Package buhlmann implements the Bühlmann tissue loading model with gradient factor
// ceilings. Inert gas uptake over a segment with a linear depth change uses the Schreiner
// equation; a constant depth segment is the special case with a zero rate.
package buhlmann

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/decoplan/pkg/decompression"
	"github.com/chrissnell/decoplan/pkg/pressure"
)

// Model is a live Bühlmann tissue state. It is advanced in place and is not safe for
// concurrent use.
type Model struct {
	name         string
	compartments []Compartment

	nitrogen []float64
	helium   []float64
	ceilings []float64

	ambient         float64
	gf              float64
	leadCeiling     float64
	leadCeilingStop float64
	leadTissue      int
	maxNitrogen     float64
	maxHelium       float64
}

// New creates a model over the given coefficient set, saturated at the surface
func New(name string, compartments []Compartment) *Model {
	m := &Model{
		name:         name,
		compartments: compartments,
		nitrogen:     make([]float64, len(compartments)),
		helium:       make([]float64, len(compartments)),
		ceilings:     make([]float64, len(compartments)),
	}
	m.InitSurface()
	return m
}

// NewZHL16C creates a ZH-L16C model
func NewZHL16C() *Model {
	return New("ZHL16C", ZHL16C)
}

// Name returns the coefficient set name
func (m *Model) Name() string {
	return m.name
}

// InitSurface saturates every compartment with air at surface pressure
func (m *Model) InitSurface() {
	inspired := (pressure.SurfacePressure - pressure.WaterVapor) * airNitrogen
	for i := range m.compartments {
		m.nitrogen[i] = inspired
		m.helium[i] = 0
	}
	m.ambient = pressure.SurfacePressure
	m.gf = 1.0
	m.maxNitrogen = 0
	m.maxHelium = 0
	m.updateCeilings()
}

// Advance loads all compartments over seg and recomputes the ceilings with
// seg.GradientFactor
func (m *Model) Advance(seg decompression.Segment) {
	if seg.Minutes > 0 {
		beginAmbient := pressure.AbsoluteFromDepth(seg.BeginDepth)
		rate := (seg.EndDepth - seg.BeginDepth) * pressure.BarPerMeter / seg.Minutes

		for i, c := range m.compartments {
			m.nitrogen[i] = schreiner(m.nitrogen[i], beginAmbient, rate, seg.NitrogenFraction, c.N2HalfTime, seg.Minutes)
			m.helium[i] = schreiner(m.helium[i], beginAmbient, rate, seg.HeliumFraction, c.HeHalfTime, seg.Minutes)
			m.maxNitrogen = math.Max(m.maxNitrogen, m.nitrogen[i])
			m.maxHelium = math.Max(m.maxHelium, m.helium[i])
		}
	}

	m.ambient = pressure.AbsoluteFromDepth(seg.EndDepth)
	m.gf = seg.GradientFactor
	m.updateCeilings()
}

// Snapshot returns a deep copy of the current state
func (m *Model) Snapshot() decompression.ModelPoint {
	tissues := make([]decompression.TissueLoad, len(m.compartments))
	for i := range tissues {
		tissues[i] = decompression.TissueLoad{Nitrogen: m.nitrogen[i], Helium: m.helium[i]}
	}

	return decompression.ModelPoint{
		Tissues:         tissues,
		Ceilings:        append([]float64(nil), m.ceilings...),
		Ambient:         m.ambient,
		LeadCeiling:     m.leadCeiling,
		LeadCeilingStop: m.leadCeilingStop,
		LeadTissue:      m.leadTissue,
		GradientFactor:  m.gf,
		MaxNitrogen:     m.maxNitrogen,
		MaxHelium:       m.maxHelium,
	}
}

// Ceiling returns the exact leading ceiling in meters
func (m *Model) Ceiling() float64 {
	return m.leadCeiling
}

func (m *Model) updateCeilings() {
	for i, c := range m.compartments {
		m.ceilings[i] = pressure.DepthFromAbsolute(toleratedAmbient(c, m.nitrogen[i], m.helium[i], m.gf))
	}

	m.leadTissue = floats.MaxIdx(m.ceilings)
	m.leadCeiling = m.ceilings[m.leadTissue]
	m.leadCeilingStop = StopDepth(m.leadCeiling)
}

// schreiner returns the inert gas pressure after minutes of breathing fraction while the
// ambient pressure changes linearly from beginAmbient at rate bar/min
func schreiner(p0, beginAmbient, rate, fraction, halfTime, minutes float64) float64 {
	k := math.Ln2 / halfTime
	inspired := (beginAmbient - pressure.WaterVapor) * fraction
	r := rate * fraction
	return inspired + r*(minutes-1/k) - (inspired-p0-r/k)*math.Exp(-k*minutes)
}

// toleratedAmbient returns the lowest ambient pressure the compartment tolerates with
// gradient factor gf
func toleratedAmbient(c Compartment, n2, he, gf float64) float64 {
	total := n2 + he
	if total <= 0 {
		return 0
	}
	a := (c.N2A*n2 + c.HeA*he) / total
	b := (c.N2B*n2 + c.HeB*he) / total
	return (total - a*gf) / (gf/b + 1 - gf)
}

// StopDepth rounds a ceiling up to the decompression stop grid. Ceilings at or above
// the surface give zero.
func StopDepth(ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return math.Ceil(ceiling/decompression.StopGrid) * decompression.StopGrid
}
