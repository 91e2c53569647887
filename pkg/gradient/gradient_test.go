package gradient

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestGetBeforeSet(t *testing.T) {
	c := New(0.3, 0.8)
	for _, depth := range []float64{0, 3, 21, 60} {
		if got := c.Get(depth); got != 0.3 {
			t.Errorf("Get(%.0f) before Set = %.3f, expected GFLow 0.3", depth, got)
		}
	}
	if c.IsSet() {
		t.Error("controller reports set before any Set call")
	}
}

func TestSetAnchorsSlope(t *testing.T) {
	c := New(0.3, 0.8)

	if got := c.Set(21); got != 0.3 {
		t.Fatalf("first Set returned %.3f, expected GFLow", got)
	}
	if !c.IsSet() {
		t.Fatal("controller not set after Set")
	}

	if got := c.Get(21); math.Abs(got-0.3) > epsilon {
		t.Errorf("Get at anchor depth = %.6f, expected 0.3", got)
	}
	if got := c.Get(0); math.Abs(got-0.8) > epsilon {
		t.Errorf("Get(0) = %.6f, expected GFHigh 0.8", got)
	}
	if got := c.Get(10.5); math.Abs(got-0.55) > epsilon {
		t.Errorf("Get(10.5) = %.6f, expected midpoint 0.55", got)
	}
}

func TestSlopeFixedAfterFirstSet(t *testing.T) {
	c := New(0.3, 0.8)
	c.Set(30)
	slope := c.Slope()

	// a later stop at a different depth must not move the slope
	got := c.Set(9)
	if c.Slope() != slope {
		t.Errorf("slope changed from %.6f to %.6f", slope, c.Slope())
	}
	expected := 0.8 - slope*9
	if math.Abs(got-expected) > epsilon {
		t.Errorf("second Set(9) = %.6f, expected %.6f", got, expected)
	}
	if math.Abs(c.Current()-expected) > epsilon {
		t.Errorf("Current() = %.6f, expected %.6f", c.Current(), expected)
	}
}

func TestSetAtSurface(t *testing.T) {
	c := New(0.4, 0.85)
	if got := c.Set(0); got != 0.4 {
		t.Errorf("Set(0) = %.3f, expected GFLow", got)
	}
	if got := c.Get(0); math.Abs(got-0.85) > epsilon {
		t.Errorf("Get(0) = %.3f, expected GFHigh", got)
	}
}
