// Package interlock gates sends behind a physical safety interlock,
// such as an enclosure switch or emergency-stop loop, checked by a
// Sender before it lets a transmission reach the bus. This is
// distinct from the FPGA-side GPIOIn inputs the units package models;
// it guards the host's decision to send at all.
package interlock

import "context"

// Gate reports whether the physical interlock is currently engaged
// (tripped: the enclosure is open, the e-stop is pressed). A Sender
// checks it once before the first frame of a Send and aborts the call
// if Engaged reports true.
type Gate interface {
	Engaged(ctx context.Context) (bool, error)
}

// AlwaysClear is a Gate that never trips, for setups with no physical
// interlock wired in. It is the zero-value behavior when
// sender.Options.Interlock is left nil.
type AlwaysClear struct{}

// Engaged always reports false, nil.
func (AlwaysClear) Engaged(ctx context.Context) (bool, error) { return false, nil }
