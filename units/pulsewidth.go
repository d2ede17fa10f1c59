package units

import "fmt"

// PulseWidth is a 9-bit quantity (0..=511) carried in a wider integer.
type PulseWidth uint16

const pulseWidthMax = 0x1FF // 9 bits.

// NewPulseWidth validates v fits in 9 bits before constructing a PulseWidth.
func NewPulseWidth(v uint16) (PulseWidth, error) {
	if v > pulseWidthMax {
		return 0, fmt.Errorf("units: pulse width %d exceeds 9-bit range (max %d)", v, pulseWidthMax)
	}
	return PulseWidth(v), nil
}

// Value returns the underlying 9-bit value.
func (p PulseWidth) Value() uint16 {
	return uint16(p)
}
