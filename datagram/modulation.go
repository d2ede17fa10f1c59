package datagram

import (
	"math"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/units"
)

// modulationDatagram uploads a precomputed buffer to every device's
// modulation segment.
type modulationDatagram struct {
	opt        Option
	buf        []byte
	cfg        units.SamplingConfig
	loop       units.LoopBehavior
	segment    units.Segment
	transition *units.TransitionMode
}

func (m modulationDatagram) DatagramOption() Option { return m.opt }

func (m modulationDatagram) OperationGenerator(_ *geometry.Geometry, _ geometry.Environment, _ []bool, limits firmware.Limits) (Generator, error) {
	// Validate once against this firmware's limits; every device gets an
	// identical buffer, so a fresh per-device instance below can never
	// fail the same check.
	if _, err := operation.NewModulation(m.buf, limits, m.cfg, m.loop, m.segment, m.transition); err != nil {
		return nil, err
	}
	return GeneratorFunc(func(*geometry.Device) (operation.Pair, bool) {
		op, _ := operation.NewModulation(m.buf, limits, m.cfg, m.loop, m.segment, m.transition)
		return operation.Pair{First: op, Second: operation.Null{}}, true
	}), nil
}

func staticDatagram(intensity units.Intensity, transition *units.TransitionMode) Datagram {
	divide, _ := units.NewSamplingConfigDivide(0xFFFF)
	return modulationDatagram{
		opt:        DefaultOption(),
		buf:        []byte{byte(intensity), byte(intensity)},
		cfg:        divide,
		loop:       units.LoopInfinite,
		segment:    units.SegmentS0,
		transition: transition,
	}
}

// Static uploads a constant-amplitude modulation buffer (the degenerate
// two-sample case every Modulation buffer must be at least as long as),
// looping forever.
func Static(intensity units.Intensity) Datagram {
	return staticDatagram(intensity, nil)
}

// StaticWithTransition is Static plus a transition point applied once
// the upload's final frame completes.
func StaticWithTransition(intensity units.Intensity, transition units.TransitionMode) Datagram {
	return staticDatagram(intensity, &transition)
}

func sineDatagram(freqHz int, samples int, transition *units.TransitionMode) (Datagram, error) {
	cfg, err := units.SamplingConfigFromFreq(freqHz)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, samples)
	for i := range buf {
		phase := 2 * math.Pi * float64(i) / float64(samples)
		buf[i] = byte(math.Round((math.Sin(phase) + 1) / 2 * 255))
	}
	return modulationDatagram{
		opt:        DefaultOption(),
		buf:        buf,
		cfg:        cfg,
		loop:       units.LoopInfinite,
		segment:    units.SegmentS0,
		transition: transition,
	}, nil
}

// Sine uploads one period of a sine wave as samples buffer entries,
// played back at a sampling rate of freqHz and looping forever, so the
// resulting sine frequency is freqHz/samples. freqHz must evenly divide
// the ultrasound clock, matching SamplingConfigFromFreq's contract.
func Sine(freqHz int, samples int) (Datagram, error) {
	return sineDatagram(freqHz, samples, nil)
}

// SineWithTransition is Sine plus a transition point applied once the
// upload's final frame completes.
func SineWithTransition(freqHz int, samples int, transition units.TransitionMode) (Datagram, error) {
	return sineDatagram(freqHz, samples, &transition)
}

// ModulationSwapSegment swaps a device's active modulation segment at
// the given transition point. The transition is validated immediately;
// an invalid one is rejected here rather than at send time.
func ModulationSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) (Datagram, error) {
	if _, err := operation.NewModulationSwapSegment(current, target, currentLoop, mode); err != nil {
		return nil, err
	}
	return newSingleSlot(func(*geometry.Device) operation.Operation {
		op, _ := operation.NewModulationSwapSegment(current, target, currentLoop, mode)
		return op
	}), nil
}
