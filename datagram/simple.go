package datagram

import (
	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/units"
)

// singleSlot wraps a per-device operation factory as a Datagram that
// always produces a single-slot (Op1, Null) pair, the shape every
// fixed/small catalog op (Clear, Sync, ForceFan, ReadsFPGAState,
// EmulateGPIOIn, CpuGPIOOut, Debug, FirmwareInfoQuery,
// PulseWidthEncoder, PhaseCorrection, Silencer) shares; their
// construction-time validation already lives in the operation
// constructors, so no datagram-level wrapper type is needed per op.
type singleSlot struct {
	opt     Option
	factory func(d *geometry.Device) operation.Operation
}

func newSingleSlot(factory func(d *geometry.Device) operation.Operation) singleSlot {
	return singleSlot{opt: DefaultOption(), factory: factory}
}

func (s singleSlot) DatagramOption() Option { return s.opt }

func (s singleSlot) OperationGenerator(*geometry.Geometry, geometry.Environment, []bool, firmware.Limits) (Generator, error) {
	return GeneratorFunc(func(d *geometry.Device) (operation.Pair, bool) {
		return operation.Pair{First: s.factory(d), Second: operation.Null{}}, true
	}), nil
}

// Clear resets every device to its power-on state.
func Clear() Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation { return operation.NewClear() })
}

// Sync aligns every device's FPGA clock to the distributed clock.
func Sync() Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation { return operation.NewSync() })
}

// ForceFan forces the cooling fan per device according to f.
func ForceFan(f func(d *geometry.Device) bool) Datagram {
	return newSingleSlot(func(d *geometry.Device) operation.Operation {
		return operation.NewForceFan(f(d))
	})
}

// ReadsFPGAState toggles FPGA-state reporting per device according to f.
func ReadsFPGAState(f func(d *geometry.Device) bool) Datagram {
	return newSingleSlot(func(d *geometry.Device) operation.Operation {
		return operation.NewReadsFPGAState(f(d))
	})
}

// FirmwareInfoQuery requests one piece of firmware identity information
// from every device.
func FirmwareInfoQuery(infoType byte) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewFirmwareInfoQuery(infoType)
	})
}

// PhaseCorrection uploads a per-transducer phase correction table,
// indexed the same way as the device's transducers.
func PhaseCorrection(values []byte) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewPhaseCorrection(values)
	})
}

// PulseWidthEncoder uploads a 256-entry pulse-width lookup table.
func PulseWidthEncoder(table [256]byte) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewPulseWidthEncoder(table)
	})
}

// Debug drives one of the device's debug pins to a fixed type/value.
func Debug(pin, typ byte, value uint16) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewDebug(pin, typ, value)
	})
}

// EmulateGPIOIn drives the device's four emulated GPIO input pins from
// host-supplied levels, indexed by units.GPIOIn.
func EmulateGPIOIn(levels [4]bool) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewEmulateGPIOIn(levels)
	})
}

// CpuGPIOOut drives the host-CPU-controlled GPIO output pins.
func CpuGPIOOut(levels [4]bool) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewCpuGPIOOut(levels)
	})
}

// GPIOOutputs drives each GPIOOut pin named in levels to the given
// on/off state.
func GPIOOutputs(levels map[units.GPIOOut]bool) Datagram {
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		return operation.NewGPIOOutputs(levels)
	})
}

// SilencerFixedCompletionSteps configures the silencer to complete each
// intensity/phase transition over a fixed number of update steps. The
// settings are validated immediately.
func SilencerFixedCompletionSteps(intensitySteps, phaseSteps uint16, strict bool, target operation.SilencerTarget) (Datagram, error) {
	if _, err := operation.NewSilencerFixedCompletionSteps(intensitySteps, phaseSteps, strict, target); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewSilencerFixedCompletionSteps(intensitySteps, phaseSteps, strict, target)
		return op
	}), nil
}

// SilencerFixedCompletionTime configures the silencer the same way as
// SilencerFixedCompletionSteps, but expressed as steps already derived
// from a target duration. The settings are validated immediately.
func SilencerFixedCompletionTime(intensityStepsFromDuration, phaseStepsFromDuration uint16, strict bool, target operation.SilencerTarget) (Datagram, error) {
	if _, err := operation.NewSilencerFixedCompletionTime(intensityStepsFromDuration, phaseStepsFromDuration, strict, target); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewSilencerFixedCompletionTime(intensityStepsFromDuration, phaseStepsFromDuration, strict, target)
		return op
	}), nil
}

// SilencerFixedUpdateRate configures the silencer to step intensity and
// phase at a fixed rate rather than a fixed completion time. The
// settings are validated immediately.
func SilencerFixedUpdateRate(intensityRate, phaseRate uint16) (Datagram, error) {
	if _, err := operation.NewSilencerFixedUpdateRate(intensityRate, phaseRate); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewSilencerFixedUpdateRate(intensityRate, phaseRate)
		return op
	}), nil
}
