// Package operation implements the wire-level operation protocol: the
// Operation contract, the closed catalog of concrete operations, and the
// chunked multi-frame packing rules each of them follows.
package operation

import (
	"errors"
	"fmt"

	"github.com/shinolab/autd3-driver-go/geometry"
)

// ErrDone is returned by Pack when called on an operation that already
// reports IsDone; callers must check IsDone first, mirroring the
// teacher's own "don't call me again" contracts.
var ErrDone = errors.New("operation: pack called after completion")

// Operation is a state-bearing packer for one device. An instance is
// created fresh per device per send and discarded once IsDone reports
// true.
type Operation interface {
	// RequiredSize returns the minimum number of payload bytes needed to
	// make forward progress on d in the current frame.
	RequiredSize(d *geometry.Device) int
	// Pack writes at most len(buf) bytes into buf, advances internal
	// state, and returns the number of bytes written.
	Pack(d *geometry.Device, buf []byte) (int, error)
	// IsDone reports whether the operation has packed everything it
	// intends to.
	IsDone() bool
}

// Pair is the (Op1, Op2) tuple a Generator produces for one device.
type Pair struct {
	First  Operation
	Second Operation
}

// Null is the unit element of Pair: zero size, already done, and a
// caller bug to pack.
type Null struct{}

// RequiredSize always returns 0.
func (Null) RequiredSize(*geometry.Device) int { return 0 }

// IsDone always returns true.
func (Null) IsDone() bool { return true }

// Pack panics: packing a null op is a caller bug, there is nothing to
// write.
func (Null) Pack(*geometry.Device, []byte) (int, error) {
	panic("operation: Pack called on Null")
}

// writeTag writes a tag byte followed by one argument byte and reports
// bytes written, the
// shape every fixed 2-byte op (Clear/Sync/Nop/FirmwareInfo) shares.
func writeTag(buf []byte, tag Tag, arg byte) int {
	buf[0] = byte(tag)
	buf[1] = arg
	return 2
}

// FirmwareError is the decoded form of a nonzero ack.err.
type FirmwareError struct {
	Code byte
	Name string
}

func (e *FirmwareError) Error() string {
	return fmt.Sprintf("operation: firmware error %#02x (%s)", e.Code, e.Name)
}

// v12ErrorNames maps the V12+ low-nibble ack.err taxonomy to a name.
var v12ErrorNames = map[byte]string{
	0: "no error",
	1: "not supported tag",
	2: "invalid message id",
	3: "invalid info type",
	4: "invalid gain stm mode",
	5: "invalid segment transition",
	6: "miss transition time",
	7: "invalid silencer settings",
	8: "invalid transition mode",
}

// ErrInvalidMessageID is the retry-safe V12+ error code: the device lost
// track of the previous cycle's id and is asking the host to resend with
// the current one.
const ErrInvalidMessageID byte = 2

// DecodeV12FirmwareError maps a V12+ ack.err nibble to a FirmwareError,
// or nil if the code is zero (no error).
func DecodeV12FirmwareError(code byte) *FirmwareError {
	if code == 0 {
		return nil
	}
	name, ok := v12ErrorNames[code]
	if !ok {
		name = "unknown"
	}
	return &FirmwareError{Code: code, Name: name}
}

// DecodeLegacyFirmwareError maps a V10/V11 ack byte (error bit + 7-bit
// code) to a FirmwareError, or nil if the error bit is clear.
func DecodeLegacyFirmwareError(ackByte byte) *FirmwareError {
	if ackByte&0x80 == 0 {
		return nil
	}
	code := ackByte &^ 0x80
	return &FirmwareError{Code: code, Name: "legacy error"}
}
