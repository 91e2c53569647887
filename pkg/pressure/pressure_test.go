package pressure

import (
	"math"
	"testing"
)

func TestAbsoluteFromDepth(t *testing.T) {
	tests := []struct {
		name     string
		depth    float64
		expected float64
	}{
		{"surface", 0, 1.01325},
		{"10 meters", 10, 2.01325},
		{"40 meters", 40, 5.01325},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbsoluteFromDepth(tt.depth)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("AbsoluteFromDepth(%.1f) = %.5f, expected %.5f", tt.depth, got, tt.expected)
			}
		})
	}
}

func TestDepthRoundTrip(t *testing.T) {
	for depth := 0.0; depth <= 100; depth += 7.5 {
		got := DepthFromAbsolute(AbsoluteFromDepth(depth))
		if math.Abs(got-depth) > 1e-9 {
			t.Errorf("round trip of %.1f m gave %.6f m", depth, got)
		}
	}

	if d := DepthFromAbsolute(1.0); d >= 0 {
		t.Errorf("expected negative depth below surface pressure, got %.3f", d)
	}
}

func TestPartial(t *testing.T) {
	// Air at 30 m: 4.01325 bar * 0.21
	got := Partial(30, 0.21)
	if math.Abs(got-0.8427825) > 1e-6 {
		t.Errorf("Partial(30, 0.21) = %.6f", got)
	}
}
