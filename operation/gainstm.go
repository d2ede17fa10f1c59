package operation

import (
	"errors"
	"fmt"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
)

// ErrGainSTMBufferSize is returned when a GainSTM's step count exceeds
// limits.GainSTMBufSizeMax.
var ErrGainSTMBufferSize = errors.New("operation: gain stm buffer size out of range")

// GainSTMMode selects how densely each step's per-transducer drive is
// packed onto the wire.
type GainSTMMode byte

const (
	// GainSTMPhaseIntensityFull packs both phase and intensity, 2
	// bytes/transducer/step.
	GainSTMPhaseIntensityFull GainSTMMode = iota
	// GainSTMPhaseFull packs phase only, 1 byte/transducer/step;
	// intensity is implied (full scale) on the device.
	GainSTMPhaseFull
	// GainSTMPhaseHalf packs a 4-bit phase, two transducers/byte/step.
	GainSTMPhaseHalf
)

// GainSTM uploads a timed sequence of K per-transducer drive patterns,
// chunked across frames, with a segment/loop/transition header on the
// BEGIN frame and an optional transition trailer on the END frame.
type GainSTM struct {
	buf        []byte
	offset     int
	mode       GainSTMMode
	numSteps   int
	cfg        units.SamplingConfig
	loop       units.LoopBehavior
	segment    units.Segment
	transition *units.TransitionMode
	update     bool
}

// gainSTMBeginHeaderSize is tag + flags + mode + divide(2) + loop(2).
const gainSTMBeginHeaderSize = 7

// NewGainSTM builds a GainSTM upload from K steps of per-transducer
// drives, already resolved for the target device. update requests an
// in-place latch (no segment swap) once the upload completes;
// transition is ignored when update is true.
func NewGainSTM(steps [][]units.Drive, mode GainSTMMode, limits firmware.Limits, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment, transition *units.TransitionMode, update bool) (*GainSTM, error) {
	if len(steps) == 0 || len(steps) > limits.GainSTMBufSizeMax {
		return nil, fmt.Errorf("%w: steps=%d max=%d", ErrGainSTMBufferSize, len(steps), limits.GainSTMBufSizeMax)
	}
	buf := encodeGainSTM(steps, mode)
	g := &GainSTM{buf: buf, mode: mode, numSteps: len(steps), cfg: cfg, loop: loop, segment: segment, update: update}
	if !update {
		g.transition = transition
	}
	return g, nil
}

func encodeGainSTM(steps [][]units.Drive, mode GainSTMMode) []byte {
	var out []byte
	for _, drives := range steps {
		switch mode {
		case GainSTMPhaseIntensityFull:
			for _, d := range drives {
				p := d.Pack()
				out = append(out, byte(p), byte(p>>8))
			}
		case GainSTMPhaseFull:
			for _, d := range drives {
				out = append(out, byte(d.Phase))
			}
		case GainSTMPhaseHalf:
			for i := 0; i < len(drives); i += 2 {
				lo := byte(drives[i].Phase) >> 4
				hi := byte(0)
				if i+1 < len(drives) {
					hi = byte(drives[i+1].Phase) >> 4
				}
				out = append(out, lo|(hi<<4))
			}
		}
	}
	return out
}

func (g *GainSTM) IsDone() bool { return g.offset >= len(g.buf) }

func (g *GainSTM) headerSize() int {
	if g.offset == 0 {
		return gainSTMBeginHeaderSize
	}
	return byteUploadHeaderSize
}

func (g *GainSTM) RequiredSize(*geometry.Device) int {
	if g.IsDone() {
		return 0
	}
	if g.transition != nil {
		return g.headerSize() + 1 + transitionTrailerSize
	}
	return g.headerSize() + 1
}

func (g *GainSTM) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if g.IsDone() {
		return 0, ErrDone
	}
	begin := g.offset == 0
	header := g.headerSize()

	buf[0] = byte(TagGainSTM)
	flags := ControlFlags(0)
	if begin {
		flags |= FlagBegin
		if g.segment == units.SegmentS1 {
			flags |= FlagSegment
		}
	}

	reserve := 0
	if g.transition != nil {
		reserve = transitionTrailerSize
	}
	avail := len(buf) - header - reserve
	if avail < 0 {
		avail = 0
	}
	remaining := len(g.buf) - g.offset
	n := remaining
	if n > avail {
		n = avail
		if n < 0 {
			n = 0
		}
	}

	w := header
	copy(buf[w:], g.buf[g.offset:g.offset+n])
	w += n
	g.offset += n

	if begin {
		buf[2] = byte(g.mode)
		binaryLEPutUint16(buf[3:5], g.cfg.Divide())
		binaryLEPutUint16(buf[5:7], g.loop.Wire())
	}

	if g.IsDone() {
		flags |= FlagEnd
		if g.update {
			flags |= FlagUpdate
		} else if g.transition != nil {
			flags |= FlagTransition
			modeByte, value := g.transition.Encode()
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
