package operation

import (
	"testing"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/units"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func packAll(t *testing.T, op Operation, d *geometry.Device, frameSize int) [][]byte {
	t.Helper()
	var frames [][]byte
	for !op.IsDone() {
		need := op.RequiredSize(d)
		if need > frameSize {
			t.Fatalf("op needs %d bytes, frame only holds %d", need, frameSize)
		}
		buf := make([]byte, frameSize)
		n, err := op.Pack(d, buf)
		assert.NoError(t, err)
		frames = append(frames, buf[:n])
	}
	return frames
}

func TestClearSingleFrame(t *testing.T) {
	op := NewClear()
	frames := packAll(t, op, nil, 622)
	assert.Len(t, frames, 1)
	assert.Equal(t, byte(TagClear), frames[0][0])
	assert.True(t, op.IsDone())
	_, err := op.Pack(nil, make([]byte, 622))
	assert.ErrorIs(t, err, ErrDone)
}

func TestPhaseCorrectionChunkedReconstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 2000).Draw(t, "n")
		data := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "data")
		frameSize := rapid.IntRange(byteUploadHeaderSize+1, 64).Draw(t, "frameSize")

		op := NewPhaseCorrection(data)
		var reconstructed []byte
		frameCount := 0
		for !op.IsDone() {
			buf := make([]byte, frameSize)
			nw, err := op.Pack(nil, buf)
			assert.NoError(t, err)
			assert.Equal(t, byte(TagPhaseCorrection), buf[0])
			reconstructed = append(reconstructed, buf[byteUploadHeaderSize:nw]...)
			frameCount++
			if frameCount > len(data)+2 {
				t.Fatal("pack loop did not converge")
			}
		}
		assert.Equal(t, data, reconstructed)
	})
}

func TestModulationSingleFrameStatic(t *testing.T) {
	cfg, err := units.SamplingConfigFromFreq(units.UltrasoundFreq)
	assert.NoError(t, err)
	m, err := NewModulation([]byte{0xFF, 0xFF}, firmware.V11Plus, cfg, units.LoopInfinite, units.SegmentS0, nil)
	assert.NoError(t, err)

	buf := make([]byte, 622)
	n, err := m.Pack(nil, buf)
	assert.NoError(t, err)
	assert.True(t, m.IsDone())
	assert.Equal(t, byte(TagModulation), buf[0])
	assert.NotZero(t, buf[1]&byte(FlagBegin))
	assert.NotZero(t, buf[1]&byte(FlagEnd))
	assert.Equal(t, []byte{0xFF, 0xFF}, buf[modBeginHeaderSize:n])
}

func TestModulationChunkedReconstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 3000).Draw(t, "n")
		data := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "data")
		frameSize := rapid.IntRange(modBeginHeaderSize+1, 80).Draw(t, "frameSize")

		cfg, err := units.SamplingConfigFromFreq(units.UltrasoundFreq)
		assert.NoError(t, err)
		m, err := NewModulation(data, firmware.V11Plus, cfg, units.LoopInfinite, units.SegmentS0, nil)
		assert.NoError(t, err)

		var reconstructed []byte
		var lastFlags ControlFlags
		frameCount := 0
		for !m.IsDone() {
			buf := make([]byte, frameSize)
			nw, err := m.Pack(nil, buf)
			assert.NoError(t, err)
			flags := ControlFlags(buf[1])
			lastFlags = flags
			header := byteUploadHeaderSize
			if flags&FlagBegin != 0 {
				header = modBeginHeaderSize
			}
			reconstructed = append(reconstructed, buf[header:nw]...)
			frameCount++
			if frameCount > len(data)+2 {
				t.Fatal("pack loop did not converge")
			}
		}
		assert.Equal(t, data, reconstructed)
		assert.NotZero(t, lastFlags&FlagEnd, "final frame must carry END")
	})
}

func TestModulationWithTransitionNeverOverrunsBuffer(t *testing.T) {
	// Regression for a fallback path that discarded the trailer
	// reservation and wrote the 16-byte trailer past buf's end. Shape
	// chosen to land exactly on the reported repro: a continuation
	// frame (header=2) with 5 bytes of modulation data remaining but
	// only 7 bytes of buffer, too little to also fit the 16-byte
	// trailer reservation.
	cfg, err := units.SamplingConfigFromFreq(units.UltrasoundFreq)
	assert.NoError(t, err)
	transition := units.Immediate()
	data := make([]byte, 25)
	m, err := NewModulation(data, firmware.V11Plus, cfg, units.LoopInfinite, units.SegmentS0, &transition)
	assert.NoError(t, err)

	// BEGIN frame: header=6, reserve=16, buf=42 => avail=20, consumes
	// 20 of 25 bytes, leaving 5 remaining.
	n, err := m.Pack(nil, make([]byte, 42))
	assert.NoError(t, err)
	assert.Equal(t, 26, n)
	assert.False(t, m.IsDone())

	// Continuation frame too small to fit the 5 remaining bytes
	// alongside the trailer reservation: must make zero progress, not
	// panic or silently drop the pending trailer.
	small := make([]byte, 7)
	var nSmall int
	assert.NotPanics(t, func() {
		nSmall, err = m.Pack(nil, small)
	})
	assert.NoError(t, err)
	assert.LessOrEqual(t, nSmall, len(small))
	assert.False(t, m.IsDone())

	// A properly sized continuation frame finishes it with the
	// trailer intact.
	final := make([]byte, 622)
	nFinal, err := m.Pack(nil, final)
	assert.NoError(t, err)
	assert.True(t, m.IsDone())
	flags := ControlFlags(final[1])
	assert.NotZero(t, flags&FlagEnd)
	assert.NotZero(t, flags&FlagTransition)
}

func TestModulationChunkedReconstructionWithTransition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 200).Draw(t, "n")
		data := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "data")
		// The BEGIN frame only makes progress once it holds its header,
		// the reserved transition trailer, and at least one data byte.
		frameSize := rapid.IntRange(modBeginHeaderSize+transitionTrailerSize+1, 40).Draw(t, "frameSize")

		cfg, err := units.SamplingConfigFromFreq(units.UltrasoundFreq)
		assert.NoError(t, err)
		transition := units.Immediate()
		m, err := NewModulation(data, firmware.V11Plus, cfg, units.LoopInfinite, units.SegmentS0, &transition)
		assert.NoError(t, err)

		var reconstructed []byte
		var lastFlags ControlFlags
		frameCount := 0
		for !m.IsDone() {
			buf := make([]byte, frameSize)
			nw, err := m.Pack(nil, buf)
			assert.NoError(t, err)
			flags := ControlFlags(buf[1])
			lastFlags = flags
			header := byteUploadHeaderSize
			if flags&FlagBegin != 0 {
				header = modBeginHeaderSize
			}
			dataEnd := nw
			if flags&FlagTransition != 0 {
				dataEnd = nw - transitionTrailerSize
			}
			reconstructed = append(reconstructed, buf[header:dataEnd]...)
			frameCount++
			if frameCount > len(data)+2 {
				t.Fatal("pack loop did not converge")
			}
		}
		assert.Equal(t, data, reconstructed)
		assert.NotZero(t, lastFlags&FlagEnd, "final frame must carry END")
		assert.NotZero(t, lastFlags&FlagTransition, "final frame must carry the transition trailer")
	})
}

func TestSilencerStrictRejectsIntensityLessThanPhase(t *testing.T) {
	_, err := NewSilencerFixedCompletionSteps(1, 2, true, SilencerTargetIntensityPhase)
	assert.ErrorIs(t, err, ErrInvalidSilencerSettings)

	s, err := NewSilencerFixedCompletionSteps(2, 1, true, SilencerTargetIntensityPhase)
	assert.NoError(t, err)
	buf := make([]byte, 6)
	_, err = s.Pack(nil, buf)
	assert.NoError(t, err)
	assert.Equal(t, byte(TagSilencer), buf[0])
}

func TestSwapSegmentSameSegmentRequiresSyncFamily(t *testing.T) {
	err := ValidateSwapSegment(units.SegmentS0, units.SegmentS0, units.LoopInfinite, units.Immediate())
	assert.ErrorIs(t, err, ErrInvalidTransitionMode)

	err = ValidateSwapSegment(units.SegmentS0, units.SegmentS0, units.LoopInfinite, units.SyncIdx())
	assert.NoError(t, err)
}

func TestSwapSegmentInfiniteLoopRejectsImmediate(t *testing.T) {
	err := ValidateSwapSegment(units.SegmentS0, units.SegmentS1, units.LoopInfinite, units.Immediate())
	assert.ErrorIs(t, err, ErrInvalidTransitionMode)

	_, err = NewFociSTMSwapSegment(units.SegmentS0, units.SegmentS1, units.LoopInfinite, units.SyncIdx())
	assert.NoError(t, err)
}

func TestSwapSegmentFiniteLoopRejectsSync(t *testing.T) {
	loop, err := units.LoopFinite(10)
	assert.NoError(t, err)
	err = ValidateSwapSegment(units.SegmentS0, units.SegmentS1, loop, units.SyncIdx())
	assert.ErrorIs(t, err, ErrInvalidTransitionMode)

	err = ValidateSwapSegment(units.SegmentS0, units.SegmentS1, loop, units.Immediate())
	assert.NoError(t, err)
}

func TestFociSTMSwapSegmentWireLayout(t *testing.T) {
	op, err := NewFociSTMSwapSegment(units.SegmentS0, units.SegmentS1, units.LoopInfinite, units.SyncIdx())
	assert.NoError(t, err)
	buf := make([]byte, 16)
	n, err := op.Pack(nil, buf)
	assert.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, byte(TagFociSTMSwapSegment), buf[0])
	assert.Equal(t, byte(units.SegmentS1), buf[1])
	assert.Equal(t, byte(0x00), buf[2]) // SyncIdx mode
}

func TestEncodeFociFixedPointRangeCheck(t *testing.T) {
	_, err := EncodeFociFixedPoint(0)
	assert.NoError(t, err)

	raw, err := EncodeFociFixedPoint(150)
	assert.NoError(t, err)
	assert.Equal(t, int32(6000), raw) // 150 / 0.025

	_, err = EncodeFociFixedPoint(1e9)
	assert.ErrorIs(t, err, ErrFocusOutOfRange)
}

func TestDecodeV12FirmwareErrorMapsSilencerCode(t *testing.T) {
	err := DecodeV12FirmwareError(7)
	assert.NotNil(t, err)
	assert.Equal(t, "invalid silencer settings", err.Name)

	assert.Nil(t, DecodeV12FirmwareError(0))

	retrySafe := DecodeV12FirmwareError(ErrInvalidMessageID)
	assert.NotNil(t, retrySafe)
	assert.Equal(t, byte(2), retrySafe.Code)
}

func TestDecodeLegacyFirmwareError(t *testing.T) {
	assert.Nil(t, DecodeLegacyFirmwareError(0x0F))
	err := DecodeLegacyFirmwareError(0x8F)
	assert.NotNil(t, err)
	assert.Equal(t, byte(0x0F), err.Code)
}
