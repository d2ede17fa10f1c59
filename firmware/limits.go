// Package firmware carries the per-firmware-version hardware limits that
// the operation catalog validates against (buffer sizes, focal-point
// counts, fixed-point width). It holds no behavior — version.Table
// selects a Limits value per dialect.
package firmware

// Limits bounds the buffers and wire constants accepted by a given
// firmware dialect.
type Limits struct {
	ModBufSizeMax             int
	FociSTMBufSizeMax         int
	GainSTMBufSizeMax         int
	FociSTMFociNumMax         int
	UltrasoundPeriodCountBits int
	PWEBufSize                int
}

// FociSTMFixedNumWidth is the bit width of the fixed-point coordinate
// packed into a FociSTM focus, unchanged across dialects.
const FociSTMFixedNumWidth = 18

// FociSTMFixedNumUnit is the physical unit (millimeters) of one
// fixed-point LSB, unchanged across dialects.
const FociSTMFixedNumUnit = 0.025

// V10 is the limit set for the original (V10) firmware dialect.
var V10 = Limits{
	ModBufSizeMax:             32768,
	FociSTMBufSizeMax:         8192,
	GainSTMBufSizeMax:         1024,
	FociSTMFociNumMax:         8,
	UltrasoundPeriodCountBits: 8,
	PWEBufSize:                256,
}

// V11Plus is the limit set shared by V11, V12, and V12.1 — all three
// widened the modulation, FociSTM, and ultrasound-period-count ceilings
// over V10 but did not change anything else the registry tracks.
var V11Plus = Limits{
	ModBufSizeMax:             65536,
	FociSTMBufSizeMax:         65536,
	GainSTMBufSizeMax:         1024,
	FociSTMFociNumMax:         8,
	UltrasoundPeriodCountBits: 9,
	PWEBufSize:                256,
}
