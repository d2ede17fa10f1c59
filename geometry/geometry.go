// Package geometry models the ordered set of devices and transducers that
// make up an AUTD3 array, plus the optional acoustic environment (sound
// speed) used by a handful of datagrams.
package geometry

import "math"

// Vector3 is a 3D point or direction in millimeters.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns the vector sum.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the vector difference.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns the vector scaled by s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Norm returns the Euclidean length.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Quaternion is a unit rotation, {w, x, y, z}.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{W: 1}

// Rotate applies the rotation to v.
func (q Quaternion) Rotate(v Vector3) Vector3 {
	// Standard quaternion-vector rotation: v' = q v q*.
	ux, uy, uz := q.X, q.Y, q.Z
	s := q.W
	dot := ux*v.X + uy*v.Y + uz*v.Z
	crossX := uy*v.Z - uz*v.Y
	crossY := uz*v.X - ux*v.Z
	crossZ := ux*v.Y - uy*v.X
	return Vector3{
		X: 2*dot*ux + (s*s-ux*ux-uy*uy-uz*uz)*v.X + 2*s*crossX,
		Y: 2*dot*uy + (s*s-ux*ux-uy*uy-uz*uz)*v.Y + 2*s*crossY,
		Z: 2*dot*uz + (s*s-ux*ux-uy*uy-uz*uz)*v.Z + 2*s*crossZ,
	}
}

// Transducer is a single ultrasound element with a position and an axial
// direction inherited from its owning device's rotation.
type Transducer struct {
	LocalIdx int
	position Vector3
	axis     Vector3
}

// Position returns the transducer's position in world space.
func (t Transducer) Position() Vector3 { return t.position }

// Axis returns the transducer's axial (emission) direction.
func (t Transducer) Axis() Vector3 { return t.axis }

// Device is one FPGA-backed ultrasound board carrying an ordered list of
// transducers.
type Device struct {
	Idx         int
	enabled     bool
	rotation    Quaternion
	translation Vector3
	transducers []Transducer
}

// NewDevice builds a Device at the given pose, placing transducers at the
// supplied local (pre-rotation) positions.
func NewDevice(idx int, translation Vector3, rotation Quaternion, localPositions []Vector3) *Device {
	d := &Device{
		Idx:         idx,
		enabled:     true,
		rotation:    rotation,
		translation: translation,
	}
	axis := rotation.Rotate(Vector3{Z: 1})
	d.transducers = make([]Transducer, len(localPositions))
	for i, p := range localPositions {
		d.transducers[i] = Transducer{
			LocalIdx: i,
			position: translation.Add(rotation.Rotate(p)),
			axis:     axis,
		}
	}
	return d
}

// NumTransducers returns the number of transducers on the device.
func (d *Device) NumTransducers() int { return len(d.transducers) }

// Transducers returns the device's ordered transducers.
func (d *Device) Transducers() []Transducer { return d.transducers }

// Transducer returns the i-th transducer.
func (d *Device) Transducer(i int) Transducer { return d.transducers[i] }

// Enabled reports whether the device's mask bit is set. Disabled devices
// are excluded from a send the same way an OperationGenerator returning
// no pair excludes a device.
func (d *Device) Enabled() bool { return d.enabled }

// SetEnabled toggles the device's mask bit between sends.
func (d *Device) SetEnabled(v bool) { d.enabled = v }

// Rotation returns the device's rotation quaternion.
func (d *Device) Rotation() Quaternion { return d.rotation }

// Center returns the centroid of the device's transducers.
func (d *Device) Center() Vector3 {
	if len(d.transducers) == 0 {
		return d.translation
	}
	var sum Vector3
	for _, tr := range d.transducers {
		sum = sum.Add(tr.position)
	}
	return sum.Scale(1 / float64(len(d.transducers)))
}

// Geometry is the ordered set of devices in a chain.
type Geometry struct {
	devices []*Device
}

// NewGeometry builds a Geometry from an ordered list of devices.
func NewGeometry(devices []*Device) *Geometry {
	return &Geometry{devices: devices}
}

// Devices returns the ordered device list.
func (g *Geometry) Devices() []*Device { return g.devices }

// NumDevices returns the number of devices in the chain.
func (g *Geometry) NumDevices() int { return len(g.devices) }

// Device returns the i-th device.
func (g *Geometry) Device(i int) *Device { return g.devices[i] }

// Environment carries the acoustic properties (sound speed) used by a
// handful of datagrams; it is optional and has a sane dry-air default.
type Environment struct {
	SoundSpeed float64 // meters/second
}

// DefaultEnvironment is dry air at 20°C, 1 atm.
var DefaultEnvironment = Environment{SoundSpeed: 343.0}
