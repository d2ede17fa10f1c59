// Package sender drives the transmission loop: resolving a Datagram
// into per-device operation pairs, repeatedly packing and sending
// frames through a Link, polling for acknowledgements, and surfacing
// firmware errors, until every enabled device's pair reports done or
// the per-send timeout elapses.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shinolab/autd3-driver-go/datagram"
	"github.com/shinolab/autd3-driver-go/ecat"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/handler"
	"github.com/shinolab/autd3-driver-go/interlock"
	"github.com/shinolab/autd3-driver-go/link"
	"github.com/shinolab/autd3-driver-go/operation"
	"github.com/shinolab/autd3-driver-go/timing"
	"github.com/shinolab/autd3-driver-go/version"
)

// ErrLinkClosed is returned when the Link is not open at the start of
// a Send, or closes partway through it.
var ErrLinkClosed = errors.New("sender: link closed")

// ErrConfirmResponseFailed is returned when the per-send timeout
// elapses before every enabled device has acknowledged the current
// cycle's MsgId.
var ErrConfirmResponseFailed = errors.New("sender: confirm response failed")

// ErrInterlockEngaged is returned when an Options.Interlock gate is
// wired in and reports tripped, refusing to let a send reach the bus.
var ErrInterlockEngaged = errors.New("sender: interlock is engaged")

// Options tunes the transmission loop's timing, parallelism, and error
// tolerance.
type Options struct {
	// SendInterval is the minimum wait between successive frame sends.
	SendInterval time.Duration
	// ReceiveInterval is the minimum wait between successive poll
	// receives while waiting for acks.
	ReceiveInterval time.Duration
	// TimeoutOverride, if non-nil, replaces the datagram's own
	// DatagramOption().Timeout for every Send call.
	TimeoutOverride *time.Duration
	// Parallel selects the handler's packing concurrency policy.
	Parallel handler.ParallelMode
	// Strict, if true, returns a firmware error immediately instead of
	// logging and tolerating it.
	Strict bool
	// Interlock, if non-nil, is consulted before every Send.
	Interlock interlock.Gate
	// Sleeper is the wait capability used between sends and receives.
	Sleeper timing.Sleeper
	// Logger receives non-fatal firmware errors and resync notices.
	// A nil Logger is treated as a no-op sink.
	Logger *log.Logger
}

// DefaultOptions matches the wire protocol's documented defaults: 1ms
// send/receive pacing, auto parallelism, non-strict firmware errors.
func DefaultOptions() Options {
	return Options{
		SendInterval:    time.Millisecond,
		ReceiveInterval: time.Millisecond,
		Parallel:        handler.ParallelAuto,
		Sleeper:         timing.OSSleeper{},
	}
}

func (o Options) logf(format string, args ...any) {
	if o.Logger == nil {
		return
	}
	o.Logger.Printf(format, args...)
}

// Sender owns a Link exclusively for the duration of each Send, plus
// the persistent MsgId cursor and the Tx/Rx buffer pair reused across
// sends to avoid per-send allocation.
type Sender struct {
	link  link.Link
	geo   *geometry.Geometry
	env   geometry.Environment
	table version.Table
	opts  Options

	msgID ecat.MsgId
	tx    []ecat.TxMessage
	rx    []ecat.RxMessage
}

// New builds a Sender over an already-constructed Link. The caller is
// responsible for calling Link.Open before the first Send and
// Link.Close when done.
func New(l link.Link, geo *geometry.Geometry, env geometry.Environment, table version.Table, opts Options) *Sender {
	if opts.Sleeper == nil {
		opts.Sleeper = timing.OSSleeper{}
	}
	n := geo.NumDevices()
	return &Sender{
		link:  l,
		geo:   geo,
		env:   env,
		table: table,
		opts:  opts,
		tx:    ecat.NewBuffer(n),
		rx:    ecat.NewRxBuffer(n),
	}
}

// Send resolves d against the sender's geometry and drives frames
// through the link until every enabled device's operation pair is
// done, or the effective timeout elapses.
func (s *Sender) Send(d datagram.Datagram) error {
	if !s.link.IsOpen() {
		return ErrLinkClosed
	}
	if s.opts.Interlock != nil {
		tripped, err := s.opts.Interlock.Engaged(context.Background())
		if err != nil {
			return fmt.Errorf("sender: checking interlock: %w", err)
		}
		if tripped {
			return ErrInterlockEngaged
		}
	}

	opt := d.DatagramOption()
	timeout := opt.Timeout
	if s.opts.TimeoutOverride != nil {
		timeout = *s.opts.TimeoutOverride
	}

	devices := s.geo.Devices()
	gen, err := d.OperationGenerator(s.geo, s.env, nil, s.table.Limits)
	if err != nil {
		return fmt.Errorf("sender: building operation generator: %w", err)
	}

	pairs := make([]operation.Pair, len(devices))
	included := make([]bool, len(devices))
	numEnabled := 0
	for i, dev := range devices {
		if !dev.Enabled() {
			pairs[i] = operation.Pair{First: operation.Null{}, Second: operation.Null{}}
			continue
		}
		p, ok := gen.Generate(dev)
		if !ok {
			pairs[i] = operation.Pair{First: operation.Null{}, Second: operation.Null{}}
			continue
		}
		pairs[i] = p
		included[i] = true
		numEnabled++
	}
	parallel := handler.ResolveParallel(s.opts.Parallel, numEnabled, opt.ParallelThreshold)

	remaining := numEnabled
	done := make([]bool, len(devices))

	for remaining > 0 {
		s.msgID = s.msgID.Next()
		for i := range s.tx {
			s.tx[i].Reset()
			s.tx[i].Header.MsgID = s.msgID.Byte()
		}

		if _, err := handler.Pack(devices, pairs, s.tx, parallel); err != nil {
			return fmt.Errorf("sender: packing frame: %w", err)
		}

		if err := s.link.Send(s.tx); err != nil {
			return fmt.Errorf("%w: %v", ErrLinkClosed, err)
		}
		s.opts.Sleeper.Sleep(s.opts.SendInterval)

		deadline := time.Now().Add(timeout)
		for {
			if err := s.link.Receive(s.rx); err != nil {
				return fmt.Errorf("%w: %v", ErrLinkClosed, err)
			}

			allAcked := true
			for i, dev := range devices {
				if !included[i] || done[i] {
					continue
				}
				result := s.table.DecodeAck(s.rx[i].Ack)
				if result.Err != nil {
					if result.Err.Code == operation.ErrInvalidMessageID {
						s.opts.logf("sender: device %d reported invalid message id, resyncing", dev.Idx)
						// The device saw this frame; counting it as acked lets
						// the next frame carry the advanced id to resync on.
						continue
					} else if s.opts.Strict {
						return fmt.Errorf("sender: device %d: %w", dev.Idx, result.Err)
					} else {
						s.opts.logf("sender: device %d firmware error: %v", dev.Idx, result.Err)
					}
				}
				if !s.table.AckMatches(result, s.msgID) {
					allAcked = false
				}
			}
			if allAcked {
				break
			}
			if time.Now().After(deadline) {
				return ErrConfirmResponseFailed
			}
			s.opts.Sleeper.Sleep(s.opts.ReceiveInterval)
		}

		for i, dev := range devices {
			if !included[i] || done[i] {
				continue
			}
			if pairs[i].First.IsDone() && pairs[i].Second.IsDone() {
				done[i] = true
				remaining--
				_ = dev
			}
		}
	}
	return nil
}
