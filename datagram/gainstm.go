package datagram

import (
	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/units"
)

// gainSTMDatagram uploads a timed sequence of per-transducer drive
// patterns, identical across every device, to every device's GainSTM
// segment.
type gainSTMDatagram struct {
	opt        Option
	steps      [][]units.Drive
	mode       operation.GainSTMMode
	cfg        units.SamplingConfig
	loop       units.LoopBehavior
	segment    units.Segment
	transition *units.TransitionMode
	update     bool
}

func (g gainSTMDatagram) DatagramOption() Option { return g.opt }

func (g gainSTMDatagram) OperationGenerator(_ *geometry.Geometry, _ geometry.Environment, _ []bool, limits firmware.Limits) (Generator, error) {
	// Validate once against this firmware's limits; every device gets an
	// identical step sequence, so a fresh per-device instance below can
	// never fail the same check.
	if _, err := operation.NewGainSTM(g.steps, g.mode, limits, g.cfg, g.loop, g.segment, g.transition, g.update); err != nil {
		return nil, err
	}
	return GeneratorFunc(func(*geometry.Device) (operation.Pair, bool) {
		op, _ := operation.NewGainSTM(g.steps, g.mode, limits, g.cfg, g.loop, g.segment, g.transition, g.update)
		return operation.Pair{First: op, Second: operation.Null{}}, true
	}), nil
}

// GainSTM uploads a timed sequence of K per-transducer drive patterns
// to every device's GainSTM segment, looping forever once started.
func GainSTM(steps [][]units.Drive, mode operation.GainSTMMode, cfg units.SamplingConfig, segment units.Segment) Datagram {
	return gainSTMDatagram{
		opt:     DefaultOption(),
		steps:   steps,
		mode:    mode,
		cfg:     cfg,
		loop:    units.LoopInfinite,
		segment: segment,
	}
}

// GainSTMWithTransition is GainSTM plus a transition point applied once
// the final step's frame completes.
func GainSTMWithTransition(steps [][]units.Drive, mode operation.GainSTMMode, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment, transition units.TransitionMode) Datagram {
	return gainSTMDatagram{
		opt:        DefaultOption(),
		steps:      steps,
		mode:       mode,
		cfg:        cfg,
		loop:       loop,
		segment:    segment,
		transition: &transition,
	}
}

// GainSTMUpdate uploads a new step sequence onto the currently active
// GainSTM segment in place, without swapping segments.
func GainSTMUpdate(steps [][]units.Drive, mode operation.GainSTMMode, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment) Datagram {
	return gainSTMDatagram{
		opt:     DefaultOption(),
		steps:   steps,
		mode:    mode,
		cfg:     cfg,
		loop:    loop,
		segment: segment,
		update:  true,
	}
}
