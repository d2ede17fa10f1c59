package operation

import "github.com/shinolab/autd3-driver-go/geometry"

// byteUpload is the shared chunked-transfer state machine for ops that
// stream an opaque byte buffer: tag, BEGIN/END control byte, then as
// many payload bytes as fit. PhaseCorrection and PulseWidthEncoder both
// reduce to this shape; Modulation follows the same shape with its own
// state, a longer header on the BEGIN frame, and an optional transition
// trailer on the END frame.
type byteUpload struct {
	tag    Tag
	data   []byte
	offset int
}

// byteUploadHeaderSize is the number of bytes consumed by tag + control flags,
// present in every frame of the transfer.
const byteUploadHeaderSize = 2

func (u *byteUpload) IsDone() bool { return u.offset >= len(u.data) }

func (u *byteUpload) RequiredSize(*geometry.Device) int {
	if u.IsDone() {
		return 0
	}
	return byteUploadHeaderSize + 1
}

// pack writes as many remaining bytes as fit in buf, returning the
// flags that applied to this frame (BEGIN iff this is the first call,
// END iff it drains the buffer) and the number of bytes written.
func (u *byteUpload) pack(buf []byte) (ControlFlags, int) {
	flags := ControlFlags(0)
	if u.offset == 0 {
		flags |= FlagBegin
	}
	buf[0] = byte(u.tag)
	avail := len(buf) - byteUploadHeaderSize
	if avail < 0 {
		avail = 0
	}
	remaining := len(u.data) - u.offset
	n := remaining
	if n > avail {
		n = avail
	}
	copy(buf[byteUploadHeaderSize:], u.data[u.offset:u.offset+n])
	u.offset += n
	if u.IsDone() {
		flags |= FlagEnd
	}
	buf[1] = byte(flags)
	return flags, byteUploadHeaderSize + n
}

// PhaseCorrection uploads a per-transducer phase-shift table, one byte
// per transducer, chunked across frames if it does not fit in one.
type PhaseCorrection struct {
	byteUpload
}

// NewPhaseCorrection builds a PhaseCorrection from one phase-offset
// byte per transducer, already resolved for the target device.
func NewPhaseCorrection(values []byte) *PhaseCorrection {
	return &PhaseCorrection{byteUpload{tag: TagPhaseCorrection, data: values}}
}

func (p *PhaseCorrection) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if p.IsDone() {
		return 0, ErrDone
	}
	_, n := p.pack(buf)
	return n, nil
}

// pulseWidthEncoderTableSize is the fixed lookup-table length the
// device expects, independent of firmware.Limits.PWEBufSize (which
// bounds table *values*, not the table's own length).
const pulseWidthEncoderTableSize = 256

// PulseWidthEncoder uploads the 256-entry pulse-width lookup table used
// to linearize intensity into pulse width.
type PulseWidthEncoder struct {
	byteUpload
}

// NewPulseWidthEncoder builds a PulseWidthEncoder from a 256-entry
// table of raw pulse-width byte values.
func NewPulseWidthEncoder(table [pulseWidthEncoderTableSize]byte) *PulseWidthEncoder {
	return &PulseWidthEncoder{byteUpload{tag: TagConfigPulseWidthEncoder, data: table[:]}}
}

func (p *PulseWidthEncoder) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if p.IsDone() {
		return 0, ErrDone
	}
	_, n := p.pack(buf)
	return n, nil
}
