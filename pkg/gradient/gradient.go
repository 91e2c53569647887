// Package gradient tracks the gradient factor used to relax decompression ceilings.
//
// Before the first ceiling violation the controller returns GFLow. The first call to
// Set fixes a slope so the factor rises linearly from GFLow at that depth to GFHigh at
// the surface. The slope is never recomputed afterwards.
package gradient

// Controller holds the gradient factor bounds and the slope fixed at the first stop
type Controller struct {
	GFLow  float64
	GFHigh float64

	set     bool
	slope   float64
	current float64
}

// New creates a controller with gradient factors given as fractions (0-1)
func New(gfLow, gfHigh float64) *Controller {
	return &Controller{
		GFLow:   gfLow,
		GFHigh:  gfHigh,
		current: gfLow,
	}
}

// Get returns the gradient factor in effect at depth
func (c *Controller) Get(depth float64) float64 {
	if !c.set {
		return c.GFLow
	}
	c.current = c.GFHigh - c.slope*depth
	return c.current
}

// Set is called on every stop entry. The first call anchors the slope at depth and
// returns GFLow; later calls behave like Get.
func (c *Controller) Set(depth float64) float64 {
	if c.set {
		return c.Get(depth)
	}
	if depth > 0 {
		c.slope = (c.GFHigh - c.GFLow) / depth
	}
	c.current = c.GFLow
	c.set = true
	return c.GFLow
}

// IsSet reports whether the first violation has been recorded
func (c *Controller) IsSet() bool {
	return c.set
}

// Slope returns the fixed slope, zero until Set has been called
func (c *Controller) Slope() float64 {
	return c.slope
}

// Current returns the last factor handed out
func (c *Controller) Current() float64 {
	return c.current
}
