package ecat

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFrameSizes(t *testing.T) {
	assert.Equal(t, 4, HeaderSize)
	assert.Equal(t, 2, int(unsafe.Sizeof(RxMessage{})))
	assert.Equal(t, 626, FrameSize)

	var tx TxMessage
	buf := make([]byte, FrameSize)
	tx.Marshal(buf)
	assert.Len(t, buf, FrameSize)
}

func TestHeaderRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := Header{
			MsgID:       byte(rapid.IntRange(0, 0x7F).Draw(t, "msgid")),
			Slot2Offset: uint16(rapid.IntRange(0, 621).Draw(t, "slot2")),
		}
		buf := make([]byte, HeaderSize)
		h.Marshal(buf)
		back := UnmarshalHeader(buf)
		assert.Equal(t, h, back)
	})
}

func TestMsgIdWraparoundVisitsEveryValueOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := MsgId(rapid.IntRange(0, 0x7F).Draw(t, "start"))

		seen := map[MsgId]bool{}
		id := start
		for i := 0; i < 0x80; i++ {
			id = id.Next()
			assert.False(t, seen[id], "value %d repeated before full cycle", id)
			seen[id] = true
			assert.LessOrEqual(t, uint8(id), uint8(0x7F))
		}
		assert.Len(t, seen, 0x80)
		assert.Equal(t, start, id, "a full 0x80-step cycle returns to start")
	})
}

func TestRxMessageFPGAStateBit(t *testing.T) {
	r := RxMessage{Data: 0x80, Ack: 0}
	assert.True(t, r.HasFPGAState())

	r2 := RxMessage{Data: 0x00}
	assert.False(t, r2.HasFPGAState())
}

func TestAckDecodingV12AndLegacy(t *testing.T) {
	a := Ack(0x27) // err=2, msg_id=7
	assert.Equal(t, byte(7), a.V12MsgID())
	assert.Equal(t, byte(2), a.V12Err())

	legacy := Ack(0x8F) // error bit set, id=0x0F
	assert.True(t, legacy.LegacyErrFlag())
	assert.Equal(t, byte(0x0F), legacy.LegacyMsgID())
}
