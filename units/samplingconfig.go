package units

import (
	"fmt"
	"time"
)

// UltrasoundFreq is the fixed ultrasound sampling rate of the platform.
const UltrasoundFreq = 40000 // Hz

// UltrasoundPeriod is the period corresponding to UltrasoundFreq.
const UltrasoundPeriod = 25 * time.Microsecond

// SamplingConfig is a sampling rate expressed as a divider over the
// ultrasound clock (40 kHz / 25 µs period).
type SamplingConfig struct {
	divide uint16
}

// NewSamplingConfigDivide builds a SamplingConfig directly from a divider.
// The divider must be non-zero.
func NewSamplingConfigDivide(divide uint16) (SamplingConfig, error) {
	if divide == 0 {
		return SamplingConfig{}, fmt.Errorf("units: sampling divide must be non-zero")
	}
	return SamplingConfig{divide: divide}, nil
}

// SamplingConfigFromFreq builds a SamplingConfig from a frequency that must
// cleanly divide the ultrasound clock.
func SamplingConfigFromFreq(hz int) (SamplingConfig, error) {
	if hz <= 0 || UltrasoundFreq%hz != 0 {
		return SamplingConfig{}, fmt.Errorf("units: %d Hz does not evenly divide the %d Hz ultrasound clock", hz, UltrasoundFreq)
	}
	return NewSamplingConfigDivide(uint16(UltrasoundFreq / hz))
}

// SamplingConfigFromDuration builds a SamplingConfig from a period that
// must be an exact multiple of the ultrasound period.
func SamplingConfigFromDuration(d time.Duration) (SamplingConfig, error) {
	if d <= 0 || d%UltrasoundPeriod != 0 {
		return SamplingConfig{}, fmt.Errorf("units: %s does not evenly divide the %s ultrasound period", d, UltrasoundPeriod)
	}
	return NewSamplingConfigDivide(uint16(d / UltrasoundPeriod))
}

// Divide returns the sampling divider.
func (s SamplingConfig) Divide() uint16 {
	return s.divide
}

// Freq returns the effective sampling frequency in Hz.
func (s SamplingConfig) Freq() float64 {
	return float64(UltrasoundFreq) / float64(s.divide)
}

// Period returns the effective sampling period.
func (s SamplingConfig) Period() time.Duration {
	return UltrasoundPeriod * time.Duration(s.divide)
}
