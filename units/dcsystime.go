package units

import "time"

// dcEpoch is the EtherCAT distributed-clock epoch: 2000-01-01 00:00 UTC.
var dcEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// DcSysTime is an EtherCAT distributed-clock timestamp: nanoseconds since
// dcEpoch.
type DcSysTime uint64

// DcSysTimeFromTime converts a wall-clock time to a DcSysTime. Times before
// the epoch saturate to zero.
func DcSysTimeFromTime(t time.Time) DcSysTime {
	d := t.Sub(dcEpoch)
	if d < 0 {
		return 0
	}
	return DcSysTime(d.Nanoseconds())
}

// Time converts a DcSysTime back to a wall-clock time.
func (d DcSysTime) Time() time.Time {
	return dcEpoch.Add(time.Duration(d))
}

// Nanoseconds returns the raw nanosecond count since the epoch.
func (d DcSysTime) Nanoseconds() uint64 {
	return uint64(d)
}

// Now returns the current time as a DcSysTime.
func Now() DcSysTime {
	return DcSysTimeFromTime(time.Now())
}
