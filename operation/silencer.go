package operation

import (
	"errors"
	"fmt"

	"github.com/shinolab/autd3-driver-go/geometry"
)

// ErrInvalidSilencerSettings is returned by the Silencer constructors
// when the requested steps/rates violate the strict-mode ordering rule
// or are non-positive.
var ErrInvalidSilencerSettings = errors.New("operation: invalid silencer settings")

const (
	silencerFlagFixedUpdateRate = 1 << 0
	silencerFlagPulseWidth      = 1 << 1
	silencerFlagStrict          = 1 << 2
)

// SilencerTarget selects which signal a FixedCompletionSteps/Time
// silencer smooths: intensity/phase (the default) or the pulse-width
// encoder's output.
type SilencerTarget byte

const (
	SilencerTargetIntensityPhase SilencerTarget = iota
	SilencerTargetPulseWidth
)

// Silencer is a low-pass smoothing stage applied to phase and/or
// intensity updates. Exactly one of the three constructors below
// produces a valid instance; the wire flag byte records whether it is
// the fixed-update-rate form (the two completion forms pack identically).
type Silencer struct {
	fixed          bool
	flags          byte
	intensityValue uint16
	phaseValue     uint16
	done           bool
}

// NewSilencerFixedCompletionSteps builds a Silencer that completes a
// transition in a fixed number of update steps.
func NewSilencerFixedCompletionSteps(intensitySteps, phaseSteps uint16, strict bool, target SilencerTarget) (*Silencer, error) {
	if intensitySteps == 0 || phaseSteps == 0 {
		return nil, fmt.Errorf("%w: steps must be >= 1", ErrInvalidSilencerSettings)
	}
	if strict && intensitySteps < phaseSteps {
		return nil, fmt.Errorf("%w: intensity_steps must be >= phase_steps under strict mode", ErrInvalidSilencerSettings)
	}
	flags := byte(0)
	if strict {
		flags |= silencerFlagStrict
	}
	if target == SilencerTargetPulseWidth {
		flags |= silencerFlagPulseWidth
	}
	return &Silencer{flags: flags, intensityValue: intensitySteps, phaseValue: phaseSteps}, nil
}

// NewSilencerFixedCompletionTime builds a Silencer from step counts
// already derived from wall-clock completion times. It does not convert
// durations itself: the arguments are validated and packed exactly as
// NewSilencerFixedCompletionSteps does.
func NewSilencerFixedCompletionTime(intensityStepsFromDuration, phaseStepsFromDuration uint16, strict bool, target SilencerTarget) (*Silencer, error) {
	return NewSilencerFixedCompletionSteps(intensityStepsFromDuration, phaseStepsFromDuration, strict, target)
}

// NewSilencerFixedUpdateRate builds a Silencer that updates at a fixed
// rate (ticks between updates) rather than targeting a fixed number of
// completion steps.
func NewSilencerFixedUpdateRate(intensityRate, phaseRate uint16) (*Silencer, error) {
	if intensityRate == 0 || phaseRate == 0 {
		return nil, fmt.Errorf("%w: rates must be >= 1", ErrInvalidSilencerSettings)
	}
	return &Silencer{
		fixed:          true,
		flags:          silencerFlagFixedUpdateRate,
		intensityValue: intensityRate,
		phaseValue:     phaseRate,
	}, nil
}

func (s *Silencer) RequiredSize(*geometry.Device) int { return 6 }

func (s *Silencer) IsDone() bool { return s.done }

func (s *Silencer) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if s.done {
		return 0, ErrDone
	}
	buf[0] = byte(TagSilencer)
	buf[1] = s.flags
	buf[2] = byte(s.intensityValue)
	buf[3] = byte(s.intensityValue >> 8)
	buf[4] = byte(s.phaseValue)
	buf[5] = byte(s.phaseValue >> 8)
	s.done = true
	return 6, nil
}
