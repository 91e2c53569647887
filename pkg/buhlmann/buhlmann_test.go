package buhlmann

import (
	"math"
	"testing"

	"github.com/chrissnell/decoplan/pkg/decompression"
	"github.com/chrissnell/decoplan/pkg/pressure"
)

func air(begin, end, minutes, gf float64) decompression.Segment {
	return decompression.Segment{
		BeginDepth:       begin,
		EndDepth:         end,
		Minutes:          minutes,
		NitrogenFraction: 0.79,
		GradientFactor:   gf,
	}
}

func TestInitSurfaceHasNoCeiling(t *testing.T) {
	m := NewZHL16C()
	p := m.Snapshot()

	if len(p.Tissues) != 16 || len(p.Ceilings) != 16 {
		t.Fatalf("expected 16 compartments, got %d tissues and %d ceilings", len(p.Tissues), len(p.Ceilings))
	}
	if p.LeadCeiling >= 0 {
		t.Errorf("saturated surface diver has ceiling %.2f m", p.LeadCeiling)
	}
	if p.LeadCeilingStop != 0 {
		t.Errorf("LeadCeilingStop = %.1f, expected 0", p.LeadCeilingStop)
	}
	if p.Ambient != pressure.SurfacePressure {
		t.Errorf("Ambient = %.5f, expected surface pressure", p.Ambient)
	}
}

func TestSaturationAtConstantDepth(t *testing.T) {
	m := NewZHL16C()
	m.Advance(air(30, 30, 2000, 1.0))
	p := m.Snapshot()

	expected := (pressure.AbsoluteFromDepth(30) - pressure.WaterVapor) * 0.79
	if math.Abs(p.Tissues[0].Nitrogen-expected) > 1e-6 {
		t.Errorf("fast compartment = %.6f bar, expected saturation at %.6f", p.Tissues[0].Nitrogen, expected)
	}
	if p.Tissues[0].Helium != 0 {
		t.Errorf("helium loaded while breathing air: %.6f", p.Tissues[0].Helium)
	}
}

func TestConstantDepthMatchesHaldane(t *testing.T) {
	m := NewZHL16C()
	start := m.Snapshot().Tissues[4].Nitrogen
	m.Advance(air(20, 20, 15, 1.0))

	inspired := (pressure.AbsoluteFromDepth(20) - pressure.WaterVapor) * 0.79
	k := math.Ln2 / ZHL16C[4].N2HalfTime
	expected := start + (inspired-start)*(1-math.Exp(-k*15))

	if got := m.Snapshot().Tissues[4].Nitrogen; math.Abs(got-expected) > 1e-9 {
		t.Errorf("compartment 5 = %.9f, expected %.9f", got, expected)
	}
}

func TestLinearSegmentSplitsExactly(t *testing.T) {
	whole := NewZHL16C()
	whole.Advance(air(0, 40, 4, 1.0))

	halves := NewZHL16C()
	halves.Advance(air(0, 20, 2, 1.0))
	halves.Advance(air(20, 40, 2, 1.0))

	a, b := whole.Snapshot(), halves.Snapshot()
	for i := range a.Tissues {
		if math.Abs(a.Tissues[i].Nitrogen-b.Tissues[i].Nitrogen) > 1e-9 {
			t.Errorf("compartment %d: whole %.9f vs halves %.9f", i, a.Tissues[i].Nitrogen, b.Tissues[i].Nitrogen)
		}
	}
}

func TestDecoObligationAfterDeepDive(t *testing.T) {
	m := NewZHL16C()
	m.Advance(air(0, 50, 2.5, 0.3))
	m.Advance(air(50, 50, 20, 0.3))
	p := m.Snapshot()

	if p.LeadCeiling <= 0 {
		t.Fatalf("expected a decompression ceiling after 50 m / 20 min, got %.2f", p.LeadCeiling)
	}
	if p.LeadCeilingStop < p.LeadCeiling || p.LeadCeilingStop-p.LeadCeiling >= decompression.StopGrid {
		t.Errorf("stop %.1f is not the grid rounding of ceiling %.2f", p.LeadCeilingStop, p.LeadCeiling)
	}
	if p.Ceilings[p.LeadTissue] != p.LeadCeiling {
		t.Errorf("lead tissue %d ceiling %.2f differs from lead ceiling %.2f", p.LeadTissue, p.Ceilings[p.LeadTissue], p.LeadCeiling)
	}
	if p.MaxNitrogen < p.Tissues[0].Nitrogen {
		t.Errorf("MaxNitrogen %.3f below current fast tissue %.3f", p.MaxNitrogen, p.Tissues[0].Nitrogen)
	}
}

func TestLowerGradientFactorGivesDeeperCeiling(t *testing.T) {
	conservative := NewZHL16C()
	liberal := NewZHL16C()
	for _, m := range []*Model{conservative, liberal} {
		m.Advance(air(0, 45, 2.25, 1.0))
		m.Advance(air(45, 45, 25, 1.0))
	}
	conservative.Advance(air(45, 45, 0, 0.3))
	liberal.Advance(air(45, 45, 0, 0.9))

	if conservative.Ceiling() <= liberal.Ceiling() {
		t.Errorf("GF 0.3 ceiling %.2f not deeper than GF 0.9 ceiling %.2f", conservative.Ceiling(), liberal.Ceiling())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	m := NewZHL16C()
	before := m.Snapshot()
	m.Advance(air(0, 30, 1.5, 1.0))

	if before.Tissues[0].Nitrogen == m.Snapshot().Tissues[0].Nitrogen {
		t.Error("snapshot changed when the model advanced")
	}
}

func TestStopDepth(t *testing.T) {
	tests := []struct {
		ceiling  float64
		expected float64
	}{
		{-4.2, 0},
		{0, 0},
		{0.1, 3},
		{3, 3},
		{3.01, 6},
		{17.9, 18},
	}

	for _, tt := range tests {
		if got := StopDepth(tt.ceiling); got != tt.expected {
			t.Errorf("StopDepth(%.2f) = %.1f, expected %.1f", tt.ceiling, got, tt.expected)
		}
	}
}
