package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIdentityQuaternionPreservesVector(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := Vector3{
			X: rapid.Float64Range(-1000, 1000).Draw(t, "x"),
			Y: rapid.Float64Range(-1000, 1000).Draw(t, "y"),
			Z: rapid.Float64Range(-1000, 1000).Draw(t, "z"),
		}
		got := IdentityQuaternion.Rotate(v)
		assert.InDelta(t, v.X, got.X, 1e-9)
		assert.InDelta(t, v.Y, got.Y, 1e-9)
		assert.InDelta(t, v.Z, got.Z, 1e-9)
	})
}

func TestNewDeviceTranslatesLocalPositions(t *testing.T) {
	local := []Vector3{{X: 0, Y: 0, Z: 0}, {X: 10.16, Y: 0, Z: 0}}
	d := NewDevice(0, Vector3{X: 100, Y: 0, Z: 0}, IdentityQuaternion, local)

	assert.Equal(t, 2, d.NumTransducers())
	assert.Equal(t, Vector3{X: 100, Y: 0, Z: 0}, d.Transducer(0).Position())
	assert.Equal(t, Vector3{X: 110.16, Y: 0, Z: 0}, d.Transducer(1).Position())
	assert.InDelta(t, 0.0, d.Transducer(0).Axis().Sub(Vector3{Z: 1}).Norm(), 1e-9)
}

func TestDeviceEnabledDefaultsTrue(t *testing.T) {
	d := NewDevice(0, Vector3{}, IdentityQuaternion, nil)
	assert.True(t, d.Enabled())
	d.SetEnabled(false)
	assert.False(t, d.Enabled())
}

func TestGeometryOrdersDevices(t *testing.T) {
	d0 := NewDevice(0, Vector3{}, IdentityQuaternion, nil)
	d1 := NewDevice(1, Vector3{X: 1}, IdentityQuaternion, nil)
	g := NewGeometry([]*Device{d0, d1})
	assert.Equal(t, 2, g.NumDevices())
	assert.Same(t, d0, g.Device(0))
	assert.Same(t, d1, g.Device(1))
}

func TestCenterIsCentroid(t *testing.T) {
	local := []Vector3{{X: 0}, {X: 10}}
	d := NewDevice(0, Vector3{}, IdentityQuaternion, local)
	c := d.Center()
	assert.InDelta(t, 5.0, c.X, 1e-9)
}

func TestRotateNinetyDegreesAboutZ(t *testing.T) {
	half := math.Pi / 4
	q := Quaternion{W: math.Cos(half), Z: math.Sin(half)}
	got := q.Rotate(Vector3{X: 1})
	assert.InDelta(t, 0.0, got.X, 1e-9)
	assert.InDelta(t, 1.0, got.Y, 1e-9)
}
