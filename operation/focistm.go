package operation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
)

// ErrFociSTMBufferSize is returned when a FociSTM's step count exceeds
// limits.FociSTMBufSizeMax.
var ErrFociSTMBufferSize = errors.New("operation: foci stm buffer size out of range")

// ErrFociCount is returned when a step names more foci than
// limits.FociSTMFociNumMax.
var ErrFociCount = errors.New("operation: too many foci in one step")

// ErrFocusOutOfRange is returned when a focus coordinate does not fit
// the 18-bit signed fixed-point range on some axis.
var ErrFocusOutOfRange = errors.New("operation: focus coordinate out of fixed-point range")

// fociFixedNumHalfRange is the magnitude of the signed 18-bit range:
// values must satisfy -fociFixedNumHalfRange <= v < fociFixedNumHalfRange.
const fociFixedNumHalfRange = 1 << (firmware.FociSTMFixedNumWidth - 1)

// EncodeFociFixedPoint converts a millimeter coordinate to the device's
// fixed-point representation (units of 0.025 mm), validating it fits
// the 18-bit signed range.
func EncodeFociFixedPoint(mm float64) (int32, error) {
	raw := int32(math.Round(mm / firmware.FociSTMFixedNumUnit))
	if raw < -fociFixedNumHalfRange || raw >= fociFixedNumHalfRange {
		return 0, fmt.Errorf("%w: %g mm -> %d", ErrFocusOutOfRange, mm, raw)
	}
	return raw, nil
}

// Focus is one focal point in fixed-point device coordinates plus its
// drive intensity.
type Focus struct {
	X, Y, Z   int32
	Intensity units.Intensity
}

// focusSize is x(4) + y(4) + z(4) + intensity(1) + pad(1), 2-byte
// aligned per the wire-format rule.
const focusSize = 14

// FociSTM uploads a timed sequence of focal-point sets, chunked across
// frames, with a segment/loop/transition header on the BEGIN frame and
// an optional transition trailer on the END frame.
type FociSTM struct {
	buf        []byte
	offset     int
	cfg        units.SamplingConfig
	loop       units.LoopBehavior
	segment    units.Segment
	transition *units.TransitionMode
	update     bool
}

// fociSTMBeginHeaderSize is tag + flags + reserved(1) + divide(2) + loop(2).
const fociSTMBeginHeaderSize = 7

// NewFociSTM builds a FociSTM upload from K steps of up to
// limits.FociSTMFociNumMax foci each; every step must carry the same
// focus count.
func NewFociSTM(steps [][]Focus, limits firmware.Limits, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment, transition *units.TransitionMode, update bool) (*FociSTM, error) {
	if len(steps) == 0 || len(steps) > limits.FociSTMBufSizeMax {
		return nil, fmt.Errorf("%w: steps=%d max=%d", ErrFociSTMBufferSize, len(steps), limits.FociSTMBufSizeMax)
	}
	fociPerStep := len(steps[0])
	if fociPerStep == 0 || fociPerStep > limits.FociSTMFociNumMax {
		return nil, fmt.Errorf("%w: foci=%d max=%d", ErrFociCount, fociPerStep, limits.FociSTMFociNumMax)
	}
	buf := make([]byte, 0, len(steps)*fociPerStep*focusSize)
	for _, step := range steps {
		if len(step) != fociPerStep {
			return nil, fmt.Errorf("%w: inconsistent focus count across steps", ErrFociCount)
		}
		for _, f := range step {
			var rec [focusSize]byte
			putInt32LE(rec[0:4], f.X)
			putInt32LE(rec[4:8], f.Y)
			putInt32LE(rec[8:12], f.Z)
			rec[12] = byte(f.Intensity)
			buf = append(buf, rec[:]...)
		}
	}
	f := &FociSTM{buf: buf, cfg: cfg, loop: loop, segment: segment, update: update}
	if !update {
		f.transition = transition
	}
	return f, nil
}

func putInt32LE(buf []byte, v int32) {
	u := uint32(v)
	buf[0] = byte(u)
	buf[1] = byte(u >> 8)
	buf[2] = byte(u >> 16)
	buf[3] = byte(u >> 24)
}

func (f *FociSTM) IsDone() bool { return f.offset >= len(f.buf) }

func (f *FociSTM) headerSize() int {
	if f.offset == 0 {
		return fociSTMBeginHeaderSize
	}
	return byteUploadHeaderSize
}

func (f *FociSTM) RequiredSize(*geometry.Device) int {
	if f.IsDone() {
		return 0
	}
	if f.transition != nil {
		return f.headerSize() + focusSize + transitionTrailerSize
	}
	return f.headerSize() + focusSize
}

func (f *FociSTM) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if f.IsDone() {
		return 0, ErrDone
	}
	begin := f.offset == 0
	header := f.headerSize()

	buf[0] = byte(TagFociSTM)
	flags := ControlFlags(0)
	if begin {
		flags |= FlagBegin
		if f.segment == units.SegmentS1 {
			flags |= FlagSegment
		}
	}

	reserve := 0
	if f.transition != nil {
		reserve = transitionTrailerSize
	}
	avail := len(buf) - header - reserve
	if avail < 0 {
		avail = 0
	}
	// Only whole focus records are written; a focus never splits
	// across frames.
	availRecords := avail / focusSize
	remainingRecords := (len(f.buf) - f.offset) / focusSize
	n := remainingRecords
	if n > availRecords {
		n = availRecords
	}
	nBytes := n * focusSize

	w := header
	copy(buf[w:], f.buf[f.offset:f.offset+nBytes])
	w += nBytes
	f.offset += nBytes

	if begin {
		buf[2] = 0 // reserved; foci-per-step is implied by firmware state
		binaryLEPutUint16(buf[3:5], f.cfg.Divide())
		binaryLEPutUint16(buf[5:7], f.loop.Wire())
	}

	if f.IsDone() {
		flags |= FlagEnd
		if f.update {
			flags |= FlagUpdate
		} else if f.transition != nil {
			flags |= FlagTransition
			modeByte, value := f.transition.Encode()
			buf[w] = modeByte
			for i := 1; i < 8; i++ {
				buf[w+i] = 0
			}
			for i := 0; i < 8; i++ {
				buf[w+8+i] = byte(value >> (8 * i))
			}
			w += transitionTrailerSize
		}
	}
	buf[1] = byte(flags)
	return w, nil
}
