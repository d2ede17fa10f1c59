package operation

import (
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
)

// ForceFan forces the device's cooling fan on or off, overriding the
// thermal-driven default, per the result of a per-device predicate
// evaluated once at generation time.
type ForceFan struct {
	fixedOp
}

// NewForceFan builds a ForceFan operation; on reports whether the fan
// should be forced on for this device.
func NewForceFan(on bool) *ForceFan {
	arg := byte(0)
	if on {
		arg = 1
	}
	return &ForceFan{fixedOp{tag: TagForceFan, arg: arg}}
}

// ReadsFPGAState toggles whether RxMessage.Data carries an embedded
// FPGA state snapshot.
type ReadsFPGAState struct {
	fixedOp
}

// NewReadsFPGAState builds a ReadsFPGAState operation.
func NewReadsFPGAState(enable bool) *ReadsFPGAState {
	arg := byte(0)
	if enable {
		arg = 1
	}
	return &ReadsFPGAState{fixedOp{tag: TagReadsFPGAState, arg: arg}}
}

// EmulateGPIOIn drives the device's four emulated GPIO input pins from
// host-supplied levels, rather than physical input.
type EmulateGPIOIn struct {
	fixedOp
}

// NewEmulateGPIOIn builds an EmulateGPIOIn operation; levels[i]
// corresponds to units.GPIOIn(i).
func NewEmulateGPIOIn(levels [4]bool) *EmulateGPIOIn {
	var arg byte
	for i, v := range levels {
		if v {
			arg |= 1 << i
		}
	}
	return &EmulateGPIOIn{fixedOp{tag: TagEmulateGPIOIn, arg: arg}}
}

// CpuGPIOOut drives the host-CPU-controlled GPIO output pins.
type CpuGPIOOut struct {
	fixedOp
}

// NewCpuGPIOOut builds a CpuGPIOOut operation.
func NewCpuGPIOOut(levels [4]bool) *CpuGPIOOut {
	var arg byte
	for i, v := range levels {
		if v {
			arg |= 1 << i
		}
	}
	return &CpuGPIOOut{fixedOp{tag: TagCpuGPIOOut, arg: arg}}
}

// GPIOOutputs drives each GPIOOut pin on or off from a fixed level map,
// packed as a single flag byte (bit i for GPIOOut(i)), mirroring the
// EmulateGPIOIn/CpuGPIOOut shape but addressed by the GPIOOut enum.
type GPIOOutputs struct {
	fixedOp
}

// NewGPIOOutputs builds a GPIOOutputs operation from a per-pin level
// map.
func NewGPIOOutputs(levels map[units.GPIOOut]bool) *GPIOOutputs {
	var arg byte
	for pin, v := range levels {
		if v {
			arg |= 1 << byte(pin)
		}
	}
	return &GPIOOutputs{fixedOp{tag: TagOutputMask, arg: arg}}
}
