// Package diagnostics captures the array's acknowledgement and error
// history for export or logging. It is a host-side tooling format,
// never the wire format: the wire stays the raw fixed-size binary
// frames the operation/handler/sender packages define.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/shinolab/autd3-driver-go/ecat"
	"github.com/shinolab/autd3-driver-go/version"
)

// historyDepth bounds how many recent acks each device retains.
const historyDepth = 16

// AckRecord is one decoded acknowledgement kept in a device's history.
type AckRecord struct {
	MsgID   byte   `cbor:"1,keyasint"`
	ErrCode byte   `cbor:"2,keyasint,omitempty"`
	ErrName string `cbor:"3,keyasint,omitempty"`
}

// DeviceDiagnostics accumulates one device's recent ack history and a
// running per-error-code tally.
type DeviceDiagnostics struct {
	Idx       int           `cbor:"1,keyasint"`
	History   []AckRecord   `cbor:"2,keyasint"`
	ErrTally  map[byte]int  `cbor:"3,keyasint,omitempty"`
}

func newDeviceDiagnostics(idx int) *DeviceDiagnostics {
	return &DeviceDiagnostics{Idx: idx, ErrTally: map[byte]int{}}
}

func (d *DeviceDiagnostics) record(result version.AckResult) {
	rec := AckRecord{MsgID: result.MsgID}
	if result.Err != nil {
		rec.ErrCode = result.Err.Code
		rec.ErrName = result.Err.Name
		d.ErrTally[result.Err.Code]++
	}
	d.History = append(d.History, rec)
	if len(d.History) > historyDepth {
		d.History = d.History[len(d.History)-historyDepth:]
	}
}

// Snapshot is the exportable diagnostic state for the whole array: the
// firmware dialect, the current msg-id cursor, and each device's
// recent ack history and error tally.
type Snapshot struct {
	Firmware string               `cbor:"1,keyasint"`
	MsgID    byte                 `cbor:"2,keyasint"`
	Devices  []*DeviceDiagnostics `cbor:"3,keyasint"`
}

// Recorder accumulates Snapshot state across many sends, so a support
// bundle can include more than one cycle's worth of ack history.
type Recorder struct {
	table   version.Table
	devices []*DeviceDiagnostics
}

// NewRecorder builds a Recorder for numDevices devices under table's
// ack-decoding rules.
func NewRecorder(table version.Table, numDevices int) *Recorder {
	devices := make([]*DeviceDiagnostics, numDevices)
	for i := range devices {
		devices[i] = newDeviceDiagnostics(i)
	}
	return &Recorder{table: table, devices: devices}
}

// Observe decodes one poll's rx frames and folds them into each
// device's history.
func (r *Recorder) Observe(rx []ecat.RxMessage) {
	for i, msg := range rx {
		if i >= len(r.devices) {
			break
		}
		r.devices[i].record(r.table.DecodeAck(msg.Ack))
	}
}

// Snapshot returns the current diagnostic state as of the last
// Observe call, tagged with msgID as the cycle's cursor value.
func (r *Recorder) Snapshot(msgID byte) Snapshot {
	return Snapshot{
		Firmware: r.table.Version.String(),
		MsgID:    msgID,
		Devices:  r.devices,
	}
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode writes the snapshot to w in deterministic CBOR form.
func (s Snapshot) Encode(w io.Writer) error {
	b, err := encMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("diagnostics: marshaling snapshot: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("diagnostics: writing snapshot: %w", err)
	}
	return nil
}

// Decode reads a snapshot previously produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("diagnostics: unmarshaling snapshot: %w", err)
	}
	return s, nil
}
