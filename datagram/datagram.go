// Package datagram implements the operation-generator layer: turning a
// user-facing command into a per-device (Op1, Op2) pair, and the
// combinators (Combined, Group, Boxed) that compose those commands.
package datagram

import (
	"math"
	"time"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
)

// DefaultTimeout is the per-send budget used when neither the caller nor
// the datagram overrides it.
const DefaultTimeout = 200 * time.Millisecond

// Option carries the per-datagram send budget and the device-count
// threshold above which the handler should pack in parallel.
type Option struct {
	Timeout           time.Duration
	ParallelThreshold int
}

// DefaultOption is DefaultTimeout with parallel packing left to the
// handler's own judgment (effectively unbounded threshold).
func DefaultOption() Option {
	return Option{Timeout: DefaultTimeout, ParallelThreshold: math.MaxInt}
}

// Merge combines two datagrams' options the way Combined does: the more
// conservative choice on each axis — the longer timeout, the lower
// parallel threshold — wins.
func Merge(a, b Option) Option {
	out := Option{Timeout: a.Timeout, ParallelThreshold: a.ParallelThreshold}
	if b.Timeout > out.Timeout {
		out.Timeout = b.Timeout
	}
	if b.ParallelThreshold < out.ParallelThreshold {
		out.ParallelThreshold = b.ParallelThreshold
	}
	return out
}

// Generator produces one device's operation pair. Returning ok=false
// excludes the device from this send entirely (its ack is not waited
// on and a Nop frame is sent in its place).
type Generator interface {
	Generate(d *geometry.Device) (operation.Pair, bool)
}

// GeneratorFunc adapts a plain function to a Generator.
type GeneratorFunc func(d *geometry.Device) (operation.Pair, bool)

// Generate calls f.
func (f GeneratorFunc) Generate(d *geometry.Device) (operation.Pair, bool) { return f(d) }

// Datagram is a user-facing command: something that knows how to build
// a per-device operation Generator against a concrete geometry, and
// carries its own timing/parallelism preferences.
type Datagram interface {
	OperationGenerator(g *geometry.Geometry, env geometry.Environment, mask []bool, limits firmware.Limits) (Generator, error)
	DatagramOption() Option
}

// Mask is the per-device enable mask passed alongside a Geometry; index
// i corresponds to g.Device(i). A nil Mask means every device is
// enabled.
type Mask []bool

// Enabled reports whether device i is enabled under this mask.
func (m Mask) Enabled(i int) bool {
	if m == nil {
		return true
	}
	return m[i]
}
