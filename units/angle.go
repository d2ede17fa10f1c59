// Package units holds the small value types shared across the datagram
// pipeline: angles, frequencies, phase/intensity/drive, pulse width,
// segments, loop behavior, sampling configuration, EtherCAT system time,
// transition modes, and the host-side GPIO selectors.
package units

import "math"

// Angle is a radian measure stored as a 32-bit float, matching the
// firmware's single-precision trig tables.
type Angle float32

// Deg constructs an Angle from a value in degrees.
func Deg(v float64) Angle {
	return Angle(v * math.Pi / 180)
}

// Rad constructs an Angle from a value already in radians.
func Rad(v float64) Angle {
	return Angle(v)
}

// Radians returns the angle in radians.
func (a Angle) Radians() float32 {
	return float32(a)
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}
