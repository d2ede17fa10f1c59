package link

import (
	"errors"
	"sync"

	"github.com/shinolab/autd3-driver-go/ecat"
)

// ErrClosed is returned by Send/Receive on a Fake that isn't open.
var ErrClosed = errors.New("link: not open")

// Fake is an in-memory Link double for tests: by default it echoes
// back whatever msg_id it was just sent as the raw ack byte. Under the
// V10/V11 decoding that reads as ack.err = 0; under the V12+ decoding
// ids of 0x10 and above carry a nonzero high nibble. Tests can
// override RespondWith to simulate lost acks, stale ids, or firmware
// errors (scenario S5: ack mismatch).
type Fake struct {
	mu          sync.Mutex
	open        bool
	lastSent    []ecat.TxMessage
	RespondWith func(lastSent []ecat.TxMessage) []ecat.RxMessage
}

// NewFake builds an unopened Fake link.
func NewFake() *Fake { return &Fake{} }

// Open marks the link usable.
func (f *Fake) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	return nil
}

// Close marks the link unusable. Safe to call repeatedly.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	return nil
}

// IsOpen reports the link's current state.
func (f *Fake) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Send records the frames sent, for the next Receive to react to.
func (f *Fake) Send(tx []ecat.TxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	f.lastSent = append([]ecat.TxMessage(nil), tx...)
	return nil
}

// Receive fills rx according to RespondWith, or echoes the last sent
// msg_id with no error if RespondWith is nil.
func (f *Fake) Receive(rx []ecat.RxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	if f.RespondWith != nil {
		copy(rx, f.RespondWith(f.lastSent))
		return nil
	}
	for i := range rx {
		msgID := byte(0)
		if i < len(f.lastSent) {
			msgID = f.lastSent[i].Header.MsgID
		}
		rx[i] = ecat.RxMessage{Data: 0, Ack: ecat.Ack(msgID)}
	}
	return nil
}
