// Package pressure converts between depth in sea water and absolute ambient pressure.
package pressure

// SurfacePressure is the absolute pressure at sea level in bar
const SurfacePressure = 1.01325

// BarPerMeter is the pressure gradient of sea water in bar per meter of depth
const BarPerMeter = 0.1

// WaterVapor is the alveolar water vapour pressure in bar, subtracted from inspired gas
const WaterVapor = 0.0627

// AbsoluteFromDepth returns the absolute ambient pressure in bar at a depth in meters
func AbsoluteFromDepth(depth float64) float64 {
	return SurfacePressure + depth*BarPerMeter
}

// DepthFromAbsolute returns the depth in meters for an absolute ambient pressure in bar.
// Pressures below the surface pressure yield negative depths.
func DepthFromAbsolute(bar float64) float64 {
	return (bar - SurfacePressure) / BarPerMeter
}

// Partial returns the partial pressure of a gas fraction at a depth
func Partial(depth, fraction float64) float64 {
	return AbsoluteFromDepth(depth) * fraction
}
