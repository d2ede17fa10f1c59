// Package link defines the transport contract the Sender drives.
// Concrete transports (EtherCAT, an in-process emulator, a TCP bridge,
// a null sink) are external collaborators and out of scope here; this
// package carries only the interface plus a minimal in-memory double
// used by the sender package's own tests.
package link

import "github.com/shinolab/autd3-driver-go/ecat"

// Link is the transport contract the Sender depends on. A concrete
// Link is exclusively owned by one Sender for the duration of a send.
// The Sender never calls Open or Close: the caller opens the Link
// before the first Send and closes it when done.
type Link interface {
	// Open prepares the transport for use.
	Open() error
	// Close releases the transport. Safe to call more than once.
	Close() error
	// IsOpen reports whether the transport is currently usable.
	IsOpen() bool
	// Send transmits one frame per device, in device order.
	Send(tx []ecat.TxMessage) error
	// Receive reads the most recent acknowledgement per device, in
	// device order, into rx. It must not block waiting for a frame
	// that hasn't arrived yet — the Sender supplies its own polling
	// cadence and timeout around repeated Receive calls.
	Receive(rx []ecat.RxMessage) error
}
