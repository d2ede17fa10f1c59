// Package version arbitrates the firmware-version dialects (V10, V11,
// V12, V12.1) behind one dispatch surface. Later versions are modeled
// as composition over earlier ones: a Table holds closures for the
// handful of behaviors that actually change across versions, and a
// later version's constructor starts from the earlier version's Table
// and overrides only those entries.
package version

import (
	"github.com/shinolab/autd3-driver-go/ecat"
	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/operation"
)

// Firmware identifies a dialect.
type Firmware int

const (
	V10 Firmware = iota
	V11
	V12
	V121
)

// String names the dialect.
func (f Firmware) String() string {
	switch f {
	case V10:
		return "v10"
	case V11:
		return "v11"
	case V12:
		return "v12"
	case V121:
		return "v12.1"
	default:
		return "unknown"
	}
}

// AckResult is the decoded meaning of one device's RxMessage for the
// current cycle.
type AckResult struct {
	// MsgID is the message id the device reports having last
	// processed. V12+ only carries the low 4 bits of it on the wire;
	// callers matching against a 7-bit ecat.MsgId must compare
	// accordingly (see Table.AckMatches).
	MsgID byte
	Err   *operation.FirmwareError
}

// Table is the per-version dispatch surface: the bits of behavior that
// differ across dialects.
type Table struct {
	Version Firmware
	Limits  firmware.Limits
	// DecodeAck interprets one device's RxMessage.Ack for this dialect.
	DecodeAck func(ack ecat.Ack) AckResult
	// AckMatches reports whether a decoded ack corresponds to the
	// given 7-bit MsgId, accounting for V12+'s narrower 4-bit field on
	// the wire.
	AckMatches func(result AckResult, want ecat.MsgId) bool
}

func decodeAckLegacy(ack ecat.Ack) AckResult {
	return AckResult{
		MsgID: ack.LegacyMsgID(),
		Err:   operation.DecodeLegacyFirmwareError(byte(ack)),
	}
}

func ackMatchesLegacy(result AckResult, want ecat.MsgId) bool {
	return result.MsgID == want.Byte()
}

func decodeAckV12(ack ecat.Ack) AckResult {
	return AckResult{
		MsgID: ack.V12MsgID(),
		Err:   operation.DecodeV12FirmwareError(ack.V12Err()),
	}
}

func ackMatchesV12(result AckResult, want ecat.MsgId) bool {
	return result.MsgID == want.Byte()&0x0F
}

// NewTable builds the dispatch Table for a dialect.
func NewTable(fw Firmware) Table {
	v10 := Table{
		Version:    V10,
		Limits:     firmware.V10,
		DecodeAck:  decodeAckLegacy,
		AckMatches: ackMatchesLegacy,
	}
	switch fw {
	case V10:
		return v10
	case V11:
		// V11 widens the buffer limits but keeps V10's legacy ack
		// encoding; everything else is inherited unchanged.
		v11 := v10
		v11.Version = V11
		v11.Limits = firmware.V11Plus
		return v11
	case V12:
		// V12 keeps V11's limits but switches the ack encoding to the
		// low-nibble scheme.
		v12 := NewTable(V11)
		v12.Version = V12
		v12.DecodeAck = decodeAckV12
		v12.AckMatches = ackMatchesV12
		return v12
	case V121:
		// V12.1 is a bugfix release over V12 with no wire-layout
		// changes the driver core needs to know about.
		v121 := NewTable(V12)
		v121.Version = V121
		return v121
	default:
		return v10
	}
}
