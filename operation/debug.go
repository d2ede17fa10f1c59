package operation

import "github.com/shinolab/autd3-driver-go/geometry"

// Debug routes one of the device's debug-output pins to a diagnostic
// signal (e.g. "toggle on every ultrasound cycle") identified by a
// firmware-defined type byte plus a 16-bit parameter.
type Debug struct {
	pin   byte
	typ   byte
	value uint16
	done  bool
}

// NewDebug builds a Debug operation for the given pin/type/value triple.
func NewDebug(pin, typ byte, value uint16) *Debug {
	return &Debug{pin: pin, typ: typ, value: value}
}

func (d *Debug) RequiredSize(*geometry.Device) int { return 5 }

func (d *Debug) IsDone() bool { return d.done }

func (d *Debug) Pack(_ *geometry.Device, buf []byte) (int, error) {
	if d.done {
		return 0, ErrDone
	}
	buf[0] = byte(TagDebug)
	buf[1] = d.pin
	buf[2] = d.typ
	binaryLEPutUint16(buf[3:5], d.value)
	d.done = true
	return 5, nil
}
