package ecat

// PayloadSize is the number of payload bytes available after the header
// within one EtherCAT output frame.
const PayloadSize = 622

// FrameSize is the total size of one TxMessage: Header + Payload.
const FrameSize = HeaderSize + PayloadSize

// TxMessage is one fixed-size host-to-device frame.
type TxMessage struct {
	Header  Header
	Payload [PayloadSize]byte
}

// Marshal serializes the frame into buf, which must be at least FrameSize
// bytes long.
func (t *TxMessage) Marshal(buf []byte) {
	_ = buf[FrameSize-1]
	t.Header.Marshal(buf[:HeaderSize])
	copy(buf[HeaderSize:FrameSize], t.Payload[:])
}

// Reset clears the frame to an all-zero, "no second slot" state, ready for
// reuse across sends without reallocating.
func (t *TxMessage) Reset() {
	t.Header = Header{}
	for i := range t.Payload {
		t.Payload[i] = 0
	}
}

// NewBuffer allocates a reusable slice of n TxMessages, one per device, so
// the Sender never allocates per-Send.
func NewBuffer(n int) []TxMessage {
	return make([]TxMessage, n)
}
