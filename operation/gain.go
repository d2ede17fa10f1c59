package operation

import (
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
)

// Gain drives each transducer on a device with its own (phase,
// intensity) pair, uploaded as 2 bytes/transducer. Chunked across
// frames if the device's transducer count does not fit one payload.
type Gain struct {
	tag    Tag
	drives []units.Drive
	offset int
}

// NewGain builds a Gain from one Drive per transducer, already resolved
// for the target device.
func NewGain(drives []units.Drive) *Gain {
	return &Gain{tag: TagGain, drives: drives}
}

func (g *Gain) IsDone() bool { return g.offset >= len(g.drives) }

func (g *Gain) RequiredSize(*geometry.Device) int {
	if g.IsDone() {
		return 0
	}
	return 2 + 2
}

func (g *Gain) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if g.IsDone() {
		return 0, ErrDone
	}
	buf[0] = byte(g.tag)
	flags := ControlFlags(0)
	if g.offset == 0 {
		flags |= FlagBegin
	}
	avail := (len(buf) - 2) / 2
	remaining := len(g.drives) - g.offset
	n := remaining
	if n > avail {
		n = avail
	}
	w := 2
	for i := 0; i < n; i++ {
		d := g.drives[g.offset+i]
		packed := d.Pack()
		buf[w] = byte(packed)
		buf[w+1] = byte(packed >> 8)
		w += 2
	}
	g.offset += n
	if g.IsDone() {
		flags |= FlagEnd
	}
	buf[1] = byte(flags)
	return w, nil
}

// newGainSwapSegment swaps the device's active gain segment, sharing the
// SwapSegment wire layout but under its own tag.
func newGainSwapSegment(seg units.Segment, mode units.TransitionMode) *SwapSegment {
	return newSwapSegment(TagGainSwapSegment, seg, mode)
}
