package operation

import (
	"errors"
	"fmt"

	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
)

// ErrInvalidTransitionMode is returned when a SwapSegment's
// TransitionMode is not permitted given the current/target segments and
// the current program's loop behavior.
var ErrInvalidTransitionMode = errors.New("operation: invalid transition mode for this segment swap")

// ValidateSwapSegment applies the segment-swap transition rules: same
// segment only allows SyncIdx/SysTime/GPIO; a cross-segment swap of an
// infinite-loop program also only allows those three; a cross-segment
// swap of a finite-loop program (which will run to completion and then
// sit idle) only allows Immediate/Ext, since there is no "next loop
// boundary" to synchronize on.
func ValidateSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) error {
	syncFamily := mode.RequiresSync()

	switch {
	case current == target:
		if !syncFamily {
			return fmt.Errorf("%w: same-segment swap requires SyncIdx/SysTime/GPIO", ErrInvalidTransitionMode)
		}
	case currentLoop.IsInfinite():
		if !syncFamily {
			return fmt.Errorf("%w: cross-segment swap of an infinite loop requires SyncIdx/SysTime/GPIO", ErrInvalidTransitionMode)
		}
	default:
		if syncFamily {
			return fmt.Errorf("%w: cross-segment swap of a finite loop requires Immediate/Ext", ErrInvalidTransitionMode)
		}
	}
	return nil
}

// SwapSegment requests the device switch a program slot (Modulation,
// Gain, FociSTM, or GainSTM) to a different memory segment at the given
// transition point.
type SwapSegment struct {
	tag     Tag
	segment units.Segment
	mode    units.TransitionMode
	done    bool
}

func newSwapSegment(tag Tag, segment units.Segment, mode units.TransitionMode) *SwapSegment {
	return &SwapSegment{tag: tag, segment: segment, mode: mode}
}

// NewModulationSwapSegment builds a SwapSegment for the Modulation
// slot, validating the transition against the currently-running
// program's segment and loop behavior.
func NewModulationSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) (*SwapSegment, error) {
	if err := ValidateSwapSegment(current, target, currentLoop, mode); err != nil {
		return nil, err
	}
	return newSwapSegment(TagModulationSwapSegment, target, mode), nil
}

// NewFociSTMSwapSegment builds a SwapSegment for the FociSTM slot.
func NewFociSTMSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) (*SwapSegment, error) {
	if err := ValidateSwapSegment(current, target, currentLoop, mode); err != nil {
		return nil, err
	}
	return newSwapSegment(TagFociSTMSwapSegment, target, mode), nil
}

// NewGainSTMSwapSegment builds a SwapSegment for the GainSTM slot.
func NewGainSTMSwapSegment(current, target units.Segment, currentLoop units.LoopBehavior, mode units.TransitionMode) (*SwapSegment, error) {
	if err := ValidateSwapSegment(current, target, currentLoop, mode); err != nil {
		return nil, err
	}
	return newSwapSegment(TagGainSTMSwapSegment, target, mode), nil
}

// NewGainSwapSegment builds a SwapSegment for the Gain slot. Gain has
// no loop concept (it is a single static drive, not a program), so any
// segment swap behaves like an infinite-loop swap: only SyncIdx/SysTime/
// GPIO are accepted when swapping segments, matching the device's
// always-looping interpretation of a static gain.
func NewGainSwapSegment(current, target units.Segment, mode units.TransitionMode) (*SwapSegment, error) {
	if err := ValidateSwapSegment(current, target, units.LoopInfinite, mode); err != nil {
		return nil, err
	}
	return newGainSwapSegment(target, mode), nil
}

func (s *SwapSegment) RequiredSize(*geometry.Device) int { return 16 }

func (s *SwapSegment) IsDone() bool { return s.done }

func (s *SwapSegment) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if s.done {
		return 0, ErrDone
	}
	buf[0] = byte(s.tag)
	buf[1] = byte(s.segment)
	modeByte, value := s.mode.Encode()
	buf[2] = modeByte
	for i := 3; i < 8; i++ {
		buf[i] = 0
	}
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(value >> (8 * i))
	}
	s.done = true
	return 16, nil
}
