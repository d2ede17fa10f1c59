//go:build !linux

package timing

import "time"

// HighResSleeper falls back to OSSleeper on platforms without a
// nanosleep syscall binding wired up.
type HighResSleeper struct{}

// Sleep waits using time.Sleep.
func (HighResSleeper) Sleep(d time.Duration) {
	OSSleeper{}.Sleep(d)
}
