package ecat

import "github.com/shinolab/autd3-driver-go/units"

// FPGAState is the decoded form of RxMessage.Data when HasFPGAState is
// true.
type FPGAState struct {
	IsThermalAssert   bool
	CurrentModSegment units.Segment
	CurrentSTMSegment units.Segment
	IsGainMode        bool
}

const (
	fpgaThermalBit  = 1 << 0
	fpgaModSegBit   = 1 << 1
	fpgaSTMSegBit   = 1 << 2
	fpgaGainModeBit = 1 << 3
)

// DecodeFPGAState decodes the lower bits of Data into an FPGAState. It is
// only meaningful when HasFPGAState reports true.
func (r RxMessage) DecodeFPGAState() FPGAState {
	d := r.Data
	seg := func(bit byte) units.Segment {
		if d&bit != 0 {
			return units.SegmentS1
		}
		return units.SegmentS0
	}
	return FPGAState{
		IsThermalAssert:   d&fpgaThermalBit != 0,
		CurrentModSegment: seg(fpgaModSegBit),
		CurrentSTMSegment: seg(fpgaSTMSegBit),
		IsGainMode:        d&fpgaGainModeBit != 0,
	}
}
