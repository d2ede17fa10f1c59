package datagram

import (
	"testing"
	"time"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/units"
	"github.com/stretchr/testify/assert"
)

func oneDeviceGeometry(n int) (*geometry.Geometry, *geometry.Device) {
	local := make([]geometry.Vector3, n)
	for i := range local {
		local[i] = geometry.Vector3{X: float64(i) * 10.16}
	}
	d := geometry.NewDevice(0, geometry.Vector3{}, geometry.IdentityQuaternion, local)
	return geometry.NewGeometry([]*geometry.Device{d}), d
}

func TestStaticModulationMatchesS1(t *testing.T) {
	g, d := oneDeviceGeometry(1)
	dg := Static(0xFF)
	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)

	pair, ok := gen.Generate(d)
	assert.True(t, ok)
	buf := make([]byte, 622)
	n, err := pair.First.Pack(d, buf)
	assert.NoError(t, err)
	assert.True(t, pair.First.IsDone())
	_, isNull := pair.Second.(operation.Null)
	assert.True(t, isNull)
	assert.Equal(t, byte(operation.TagModulation), buf[0])
	assert.Equal(t, []byte{0xFF, 0xFF}, buf[n-2:n])
}

func TestUniformGainMatchesS2(t *testing.T) {
	g, d0 := oneDeviceGeometry(249)
	d1 := geometry.NewDevice(1, geometry.Vector3{X: 1000}, geometry.IdentityQuaternion, make([]geometry.Vector3, 249))
	g = geometry.NewGeometry([]*geometry.Device{d0, d1})

	dg := Uniform(units.Drive{Phase: 0x80, Intensity: 0x81})
	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)

	for _, d := range g.Devices() {
		pair, ok := gen.Generate(d)
		assert.True(t, ok)
		buf := make([]byte, 622)
		_, err := pair.First.Pack(d, buf)
		assert.NoError(t, err)
		assert.True(t, pair.First.IsDone())
		assert.Equal(t, byte(operation.TagGain), buf[0])
		assert.Equal(t, byte(0x80), buf[2])
		assert.Equal(t, byte(0x81), buf[3])
	}
}

func TestForceFanToggleMatchesS3(t *testing.T) {
	d0 := geometry.NewDevice(0, geometry.Vector3{}, geometry.IdentityQuaternion, nil)
	d1 := geometry.NewDevice(1, geometry.Vector3{X: 1}, geometry.IdentityQuaternion, nil)
	g := geometry.NewGeometry([]*geometry.Device{d0, d1})

	dg := ForceFan(func(d *geometry.Device) bool { return d.Idx == 0 })
	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)

	pair0, _ := gen.Generate(d0)
	buf0 := make([]byte, 622)
	pair0.First.Pack(d0, buf0)
	assert.Equal(t, []byte{0x60, 0x01}, buf0[:2])

	pair1, _ := gen.Generate(d1)
	buf1 := make([]byte, 622)
	pair1.First.Pack(d1, buf1)
	assert.Equal(t, []byte{0x60, 0x00}, buf1[:2])
}

func TestCombinedProducesDualSlotFrame(t *testing.T) {
	g, d := oneDeviceGeometry(4)
	sine, err := Sine(150, 256)
	assert.NoError(t, err)
	focus := Focus(geometry.Vector3{Z: 150}, units.IntensityMax)
	combined := NewCombined(sine, focus)

	gen, err := combined.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)
	pair, ok := gen.Generate(d)
	assert.True(t, ok)
	_, firstIsNull := pair.First.(operation.Null)
	_, secondIsNull := pair.Second.(operation.Null)
	assert.False(t, firstIsNull)
	assert.False(t, secondIsNull)
}

func TestGroupExcludesDeviceWithNoKey(t *testing.T) {
	d0 := geometry.NewDevice(0, geometry.Vector3{}, geometry.IdentityQuaternion, nil)
	d1 := geometry.NewDevice(1, geometry.Vector3{X: 1}, geometry.IdentityQuaternion, nil)
	g := geometry.NewGeometry([]*geometry.Device{d0, d1})

	grouped := NewGroup(func(d *geometry.Device) (string, bool) {
		if d.Idx == 0 {
			return "a", true
		}
		return "", false
	}, map[string]Datagram{"a": Clear()})

	gen, err := grouped.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)

	_, ok0 := gen.Generate(d0)
	assert.True(t, ok0)
	_, ok1 := gen.Generate(d1)
	assert.False(t, ok1)
}

func TestMergeOptionTakesMaxTimeoutMinThreshold(t *testing.T) {
	a := Option{Timeout: 100 * time.Millisecond, ParallelThreshold: 10}
	b := Option{Timeout: 200 * time.Millisecond, ParallelThreshold: 5}
	m := Merge(a, b)
	assert.Equal(t, 200*time.Millisecond, m.Timeout)
	assert.Equal(t, 5, m.ParallelThreshold)
}

func TestStaticWithTransitionCarriesTransitionTrailer(t *testing.T) {
	g, d := oneDeviceGeometry(1)
	dg := StaticWithTransition(0xFF, units.Immediate())
	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)

	pair, ok := gen.Generate(d)
	assert.True(t, ok)
	buf := make([]byte, 622)
	_, err = pair.First.Pack(d, buf)
	assert.NoError(t, err)
	flags := operation.ControlFlags(buf[1])
	assert.NotZero(t, flags&operation.FlagTransition)
}

func TestGainSTMProducesGainSTMOperation(t *testing.T) {
	g, d := oneDeviceGeometry(2)
	cfg, err := units.SamplingConfigFromFreq(units.UltrasoundFreq)
	assert.NoError(t, err)
	steps := [][]units.Drive{
		{{Phase: 0x10, Intensity: 0xFF}, {Phase: 0x20, Intensity: 0xFF}},
		{{Phase: 0x30, Intensity: 0xFF}, {Phase: 0x40, Intensity: 0xFF}},
	}
	dg := GainSTM(steps, operation.GainSTMPhaseIntensityFull, cfg, units.SegmentS0)

	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)
	pair, ok := gen.Generate(d)
	assert.True(t, ok)
	_, isGainSTM := pair.First.(*operation.GainSTM)
	assert.True(t, isGainSTM)

	buf := make([]byte, 622)
	n, err := pair.First.Pack(d, buf)
	assert.NoError(t, err)
	assert.Equal(t, byte(operation.TagGainSTM), buf[0])
	assert.True(t, n > 0)
}

func TestFociSTMProducesFociSTMOperation(t *testing.T) {
	g, d := oneDeviceGeometry(1)
	cfg, err := units.SamplingConfigFromFreq(units.UltrasoundFreq)
	assert.NoError(t, err)
	steps := [][]operation.Focus{
		{{X: 0, Y: 0, Z: 100, Intensity: 0xFF}},
		{{X: 10, Y: 0, Z: 100, Intensity: 0xFF}},
	}
	dg := FociSTM(steps, cfg, units.SegmentS0)

	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)
	pair, ok := gen.Generate(d)
	assert.True(t, ok)
	_, isFociSTM := pair.First.(*operation.FociSTM)
	assert.True(t, isFociSTM)

	buf := make([]byte, 622)
	n, err := pair.First.Pack(d, buf)
	assert.NoError(t, err)
	assert.Equal(t, byte(operation.TagFociSTM), buf[0])
	assert.True(t, n > 0)
}

func TestSilencerFixedCompletionStepsReachableFromDatagram(t *testing.T) {
	g, d := oneDeviceGeometry(1)
	dg, err := SilencerFixedCompletionSteps(10, 10, true, operation.SilencerTargetIntensityPhase)
	assert.NoError(t, err)

	gen, err := dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
	assert.NoError(t, err)
	pair, ok := gen.Generate(d)
	assert.True(t, ok)
	buf := make([]byte, 622)
	_, err = pair.First.Pack(d, buf)
	assert.NoError(t, err)
	assert.Equal(t, byte(operation.TagSilencer), buf[0])
}

func TestSilencerFixedCompletionStepsRejectsInvalidSettingsUpFront(t *testing.T) {
	_, err := SilencerFixedCompletionSteps(10, 20, true, operation.SilencerTargetIntensityPhase)
	assert.ErrorIs(t, err, operation.ErrInvalidSilencerSettings)
}

func TestPhaseCorrectionDebugAndGPIODatagramsReachTheirOps(t *testing.T) {
	g, d := oneDeviceGeometry(4)

	cases := []struct {
		dg  Datagram
		tag operation.Tag
	}{
		{PhaseCorrection([]byte{1, 2, 3, 4}), operation.TagPhaseCorrection},
		{PulseWidthEncoder([256]byte{}), operation.TagConfigPulseWidthEncoder},
		{Debug(0, 1, 42), operation.TagDebug},
		{EmulateGPIOIn([4]bool{true, false, true, false}), operation.TagEmulateGPIOIn},
		{CpuGPIOOut([4]bool{true, true, false, false}), operation.TagCpuGPIOOut},
		{GPIOOutputs(map[units.GPIOOut]bool{}), operation.TagOutputMask},
	}
	for _, c := range cases {
		gen, err := c.dg.OperationGenerator(g, geometry.DefaultEnvironment, nil, firmware.V11Plus)
		assert.NoError(t, err)
		pair, ok := gen.Generate(d)
		assert.True(t, ok)
		buf := make([]byte, 622)
		_, err = pair.First.Pack(d, buf)
		assert.NoError(t, err)
		assert.Equal(t, byte(c.tag), buf[0])
	}
}
