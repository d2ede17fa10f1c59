package datagram

import (
	"math"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/units"
)

// Uniform drives every transducer on every device with the same
// (phase, intensity) pair.
func Uniform(drive units.Drive) Datagram {
	return newSingleSlot(func(d *geometry.Device) operation.Operation {
		drives := make([]units.Drive, d.NumTransducers())
		for i := range drives {
			drives[i] = drive
		}
		return operation.NewGain(drives)
	})
}

// Focus drives every transducer to phase-focus acoustic output onto a
// single point in space, at a fixed intensity, using the configured
// sound speed to compute each transducer's propagation delay.
func Focus(point geometry.Vector3, intensity units.Intensity) Datagram {
	return focusDatagram{point: point, intensity: intensity, opt: DefaultOption()}
}

type focusDatagram struct {
	opt       Option
	point     geometry.Vector3
	intensity units.Intensity
}

func (f focusDatagram) DatagramOption() Option { return f.opt }

func (f focusDatagram) OperationGenerator(_ *geometry.Geometry, env geometry.Environment, _ []bool, _ firmware.Limits) (Generator, error) {
	return GeneratorFunc(func(d *geometry.Device) (operation.Pair, bool) {
		drives := make([]units.Drive, d.NumTransducers())
		for i, tr := range d.Transducers() {
			dist := f.point.Sub(tr.Position()).Norm()
			phase := focusPhase(dist, env.SoundSpeed, units.UltrasoundFreq)
			drives[i] = units.Drive{Phase: phase, Intensity: f.intensity}
		}
		return operation.Pair{First: operation.NewGain(drives), Second: operation.Null{}}, true
	}), nil
}

// focusPhase converts a propagation distance (millimeters) and sound
// speed (meters/second) into the phase delay, relative to zero, that
// would bring a wave arriving at that distance back in step with one
// arriving at distance zero.
func focusPhase(distanceMM float64, soundSpeedMPS float64, ultrasoundFreqHz float64) units.Phase {
	wavelengthMM := soundSpeedMPS * 1000 / ultrasoundFreqHz
	cycles := distanceMM / wavelengthMM
	return units.FromRadians(-cycles * 2 * math.Pi)
}

// GainSwapSegment swaps a device's active gain segment at the given
// transition point. The transition is validated immediately.
func GainSwapSegment(current, target units.Segment, mode units.TransitionMode) (Datagram, error) {
	if _, err := operation.NewGainSwapSegment(current, target, mode); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewGainSwapSegment(current, target, mode)
		return op
	}), nil
}

// FociSTMSwapSegment swaps a device's active FociSTM segment. The
// transition is validated immediately.
func FociSTMSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) (Datagram, error) {
	if _, err := operation.NewFociSTMSwapSegment(current, target, currentLoop, mode); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewFociSTMSwapSegment(current, target, currentLoop, mode)
		return op
	}), nil
}

// GainSTMSwapSegment swaps a device's active GainSTM segment. The
// transition is validated immediately.
func GainSTMSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) (Datagram, error) {
	if _, err := operation.NewGainSTMSwapSegment(current, target, currentLoop, mode); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewGainSTMSwapSegment(current, target, currentLoop, mode)
		return op
	}), nil
}
