package operation

import "github.com/shinolab/autd3-driver-go/geometry"

// fixedOp is the shape shared by the fixed 2-byte, single-frame,
// no-payload ops: tag + one argument byte, done after the first pack.
type fixedOp struct {
	tag  Tag
	arg  byte
	done bool
}

func (o *fixedOp) RequiredSize(*geometry.Device) int { return 2 }

func (o *fixedOp) IsDone() bool { return o.done }

func (o *fixedOp) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if o.done {
		return 0, ErrDone
	}
	n := writeTag(buf, o.tag, o.arg)
	o.done = true
	return n, nil
}

// Clear resets a device to its power-on state.
type Clear struct{ fixedOp }

// NewClear builds a Clear operation.
func NewClear() *Clear {
	return &Clear{fixedOp{tag: TagClear}}
}

// Sync aligns a device's FPGA clock to the EtherCAT distributed clock.
type Sync struct{ fixedOp }

// NewSync builds a Sync operation.
func NewSync() *Sync {
	return &Sync{fixedOp{tag: TagSync}}
}

// Nop is a no-op frame, used to keep per-device indexing aligned to
// geometry when a device is excluded or already finished.
type Nop struct{ fixedOp }

// NewNop builds a Nop operation.
func NewNop() *Nop {
	return &Nop{fixedOp{tag: TagNop}}
}

// FirmwareInfoQuery is a request for one piece of firmware identity
// information (CPU version major/minor, FPGA version major/minor,
// function bits), selected by InfoType.
type FirmwareInfoQuery struct{ fixedOp }

// Firmware info types, matching autd3's FPGAInfo/CPUInfo query codes.
const (
	InfoTypeCPUVersionMajor byte = iota
	InfoTypeCPUVersionMinor
	InfoTypeFPGAVersionMajor
	InfoTypeFPGAVersionMinor
	InfoTypeFPGAFunctions
	InfoTypeClear
)

// NewFirmwareInfoQuery builds a FirmwareInfoQuery for the given info
// type.
func NewFirmwareInfoQuery(infoType byte) *FirmwareInfoQuery {
	return &FirmwareInfoQuery{fixedOp{tag: TagFirmwareVersion, arg: infoType}}
}
