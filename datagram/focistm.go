package datagram

import (
	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/units"
)

// fociSTMDatagram uploads a timed sequence of focal-point sets,
// identical across every device, to every device's FociSTM segment.
type fociSTMDatagram struct {
	opt        Option
	steps      [][]operation.Focus
	cfg        units.SamplingConfig
	loop       units.LoopBehavior
	segment    units.Segment
	transition *units.TransitionMode
	update     bool
}

func (f fociSTMDatagram) DatagramOption() Option { return f.opt }

func (f fociSTMDatagram) OperationGenerator(_ *geometry.Geometry, _ geometry.Environment, _ []bool, limits firmware.Limits) (Generator, error) {
	if _, err := operation.NewFociSTM(f.steps, limits, f.cfg, f.loop, f.segment, f.transition, f.update); err != nil {
		return nil, err
	}
	return GeneratorFunc(func(*geometry.Device) (operation.Pair, bool) {
		op, _ := operation.NewFociSTM(f.steps, limits, f.cfg, f.loop, f.segment, f.transition, f.update)
		return operation.Pair{First: op, Second: operation.Null{}}, true
	}), nil
}

// FociSTM uploads a timed sequence of focal-point sets to every
// device's FociSTM segment, looping forever once started.
func FociSTM(steps [][]operation.Focus, cfg units.SamplingConfig, segment units.Segment) Datagram {
	return fociSTMDatagram{
		opt:     DefaultOption(),
		steps:   steps,
		cfg:     cfg,
		loop:    units.LoopInfinite,
		segment: segment,
	}
}

// FociSTMWithTransition is FociSTM plus a transition point applied once
// the final step's frame completes.
func FociSTMWithTransition(steps [][]operation.Focus, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment, transition units.TransitionMode) Datagram {
	return fociSTMDatagram{
		opt:        DefaultOption(),
		steps:      steps,
		cfg:        cfg,
		loop:       loop,
		segment:    segment,
		transition: &transition,
	}
}

// FociSTMUpdate uploads a new focal-point sequence onto the currently
// active FociSTM segment in place, without swapping segments.
func FociSTMUpdate(steps [][]operation.Focus, cfg units.SamplingConfig, loop units.LoopBehavior, segment units.Segment) Datagram {
	return fociSTMDatagram{
		opt:     DefaultOption(),
		steps:   steps,
		cfg:     cfg,
		loop:    loop,
		segment: segment,
		update:  true,
	}
}
