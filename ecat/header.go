// Package ecat implements the EtherCAT process-data wire frame model: the
// fixed-size TxMessage/RxMessage pair, their Header, and the MsgId cursor
// used to correlate a sent frame with its acknowledgement.
package ecat

import "encoding/binary"

// HeaderSize is the fixed size of a TxMessage header in bytes.
const HeaderSize = 4

// Header is the 4-byte, 2-byte-aligned prefix of every TxMessage.
type Header struct {
	MsgID byte
	// pad is reserved and always written as zero.
	Slot2Offset uint16
}

// Marshal writes the header's wire representation into buf, which must be
// at least HeaderSize bytes long.
func (h Header) Marshal(buf []byte) {
	_ = buf[HeaderSize-1]
	buf[0] = h.MsgID
	buf[1] = 0
	binary.LittleEndian.PutUint16(buf[2:4], h.Slot2Offset)
}

// UnmarshalHeader reads a Header from its wire representation.
func UnmarshalHeader(buf []byte) Header {
	_ = buf[HeaderSize-1]
	return Header{
		MsgID:       buf[0],
		Slot2Offset: binary.LittleEndian.Uint16(buf[2:4]),
	}
}
