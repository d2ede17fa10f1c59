//go:build linux

package timing

import (
	"time"

	"golang.org/x/sys/unix"
)

// HighResSleeper waits using the nanosleep syscall, avoiding the extra
// scheduling slack time.Sleep can add on Linux for sub-millisecond
// durations.
type HighResSleeper struct{}

// Sleep waits d using unix.Nanosleep, restarting on EINTR.
func (HighResSleeper) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	req := unix.NsecToTimespec(d.Nanoseconds())
	for {
		rem := unix.Timespec{}
		err := unix.Nanosleep(&req, &rem)
		if err == nil {
			return
		}
		if err == unix.EINTR {
			req = rem
			continue
		}
		return
	}
}
