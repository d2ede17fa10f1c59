package operation

import (
	"errors"
	"fmt"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
)

// ErrModulationBufferSize is returned when a modulation buffer's length
// falls outside [2, limits.ModBufSizeMax].
var ErrModulationBufferSize = errors.New("operation: modulation buffer size out of range")

// modBeginHeaderSize is tag + flags + divide(2) + loop(2); the target
// segment rides in the flags byte as FlagSegment.
const modBeginHeaderSize = 6

// transitionTrailerSize is mode(1) + pad(7) + value(8).
const transitionTrailerSize = 16

// Modulation uploads a time-varying amplitude envelope to one of the
// device's two modulation segments, chunked across frames as needed.
type Modulation struct {
	buf        []byte
	offset     int
	cfg        units.SamplingConfig
	loop       units.LoopBehavior
	segment    units.Segment
	transition *units.TransitionMode
}

// NewModulation builds a Modulation upload. transition may be nil: the
// device keeps running whatever segment is currently active once this
// upload lands.
func NewModulation(buf []byte, limits firmware.Limits, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment, transition *units.TransitionMode) (*Modulation, error) {
	if len(buf) < 2 || len(buf) > limits.ModBufSizeMax {
		return nil, fmt.Errorf("%w: len=%d max=%d", ErrModulationBufferSize, len(buf), limits.ModBufSizeMax)
	}
	return &Modulation{buf: buf, cfg: cfg, loop: loop, segment: segment, transition: transition}, nil
}

func (m *Modulation) IsDone() bool { return m.offset >= len(m.buf) }

func (m *Modulation) headerSize() int {
	n := byteUploadHeaderSize
	if m.offset == 0 {
		n = modBeginHeaderSize
	}
	return n
}

func (m *Modulation) RequiredSize(*geometry.Device) int {
	if m.IsDone() {
		return 0
	}
	if m.transition != nil {
		return m.headerSize() + 1 + transitionTrailerSize
	}
	return m.headerSize() + 1
}

func (m *Modulation) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if m.IsDone() {
		return 0, ErrDone
	}
	begin := m.offset == 0
	header := m.headerSize()
	if len(buf) < header+1 {
		panic("operation: Modulation.Pack called with buf smaller than RequiredSize")
	}

	buf[0] = byte(TagModulation)
	flags := ControlFlags(0)
	if begin {
		flags |= FlagBegin
		if m.segment == units.SegmentS1 {
			flags |= FlagSegment
		}
	}

	// Reserve room for a transition trailer on what might be the final
	// frame; if it doesn't end up being final, the trailer bytes simply
	// go unused by this pack and are attempted again next frame.
	reserve := 0
	if m.transition != nil {
		reserve = transitionTrailerSize
	}
	avail := len(buf) - header - reserve
	if avail < 0 {
		avail = 0
	}
	remaining := len(m.buf) - m.offset
	n := remaining
	if n > avail {
		n = avail
	}

	w := header
	copy(buf[w:], m.buf[m.offset:m.offset+n])
	w += n
	m.offset += n

	if begin {
		binaryLEPutUint16(buf[2:4], m.cfg.Divide())
		binaryLEPutUint16(buf[4:6], m.loop.Wire())
	}

	done := m.IsDone()
	if done {
		flags |= FlagEnd
		if m.transition != nil {
			flags |= FlagTransition
			modeByte, value := m.transition.Encode()
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

func binaryLEPutUint16(buf []byte, v uint16) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
}
