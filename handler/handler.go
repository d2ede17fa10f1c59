// Package handler implements the dual-slot per-device frame packer: for
// each device, it writes Op1 then Op2 into one TxMessage's payload,
// recording where Op2 starts in Header.Slot2Offset, optionally
// parallelizing across devices.
package handler

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/shinolab/autd3-driver-go/ecat"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
)

// ParallelMode selects whether Pack packs devices concurrently.
type ParallelMode int

const (
	// ParallelAuto packs concurrently iff the enabled device count
	// exceeds the datagram's parallel threshold.
	ParallelAuto ParallelMode = iota
	// ParallelOn always packs concurrently.
	ParallelOn
	// ParallelOff always packs serially.
	ParallelOff
)

// ResolveParallel applies the ParallelMode policy.
func ResolveParallel(mode ParallelMode, numEnabled, threshold int) bool {
	switch mode {
	case ParallelOn:
		return true
	case ParallelOff:
		return false
	default:
		return numEnabled > threshold
	}
}

// ErrOversizeOperation is returned when neither Op1 nor Op2 can make
// forward progress because its required size exceeds the entire
// payload; this is a caller/configuration bug (an operation built too
// large for the wire), not a runtime condition.
var ErrOversizeOperation = fmt.Errorf("handler: operation required_size exceeds payload capacity")

// alignUp2 rounds n up to the nearest even number, the 2-byte alignment
// every record in the payload must start on.
func alignUp2(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// packOne applies the dual-slot rule (spec 4.4 steps 1-5) for a single
// device into tx.Payload, returning whether the pair is now fully done.
func packOne(d *geometry.Device, pair operation.Pair, tx *ecat.TxMessage) (bool, error) {
	op1, op2 := pair.First, pair.Second
	if op1.IsDone() && op2.IsDone() {
		tx.Header.Slot2Offset = 0
		return true, nil
	}

	payload := tx.Payload[:]
	written1 := 0
	if !op1.IsDone() {
		need := op1.RequiredSize(d)
		if need > len(payload) {
			return false, ErrOversizeOperation
		}
		n, err := op1.Pack(d, payload)
		if err != nil {
			return false, err
		}
		written1 = n
	}

	tx.Header.Slot2Offset = 0
	if !op2.IsDone() {
		offset := alignUp2(written1)
		need := op2.RequiredSize(d)
		if offset+need <= len(payload) {
			n, err := op2.Pack(d, payload[offset:])
			if err != nil {
				return false, err
			}
			if n > 0 {
				tx.Header.Slot2Offset = uint16(offset)
			}
		} else if written1 == 0 {
			// Op1 made no progress (already done) and Op2 alone
			// cannot fit: this is only reachable if Op2's own
			// RequiredSize exceeds the full payload.
			return false, ErrOversizeOperation
		}
		// Otherwise Op2 simply waits for a future frame once Op1
		// stops needing the space it used this time.
	}

	return op1.IsDone() && op2.IsDone(), nil
}

// Pack writes pairs[i] into tx[i] for every device, in device order.
// len(devices), len(pairs), and len(tx) must match. It returns whether
// every device's pair is now fully done.
func Pack(devices []*geometry.Device, pairs []operation.Pair, tx []ecat.TxMessage, parallel bool) (bool, error) {
	if len(devices) != len(pairs) || len(devices) != len(tx) {
		panic("handler: devices/pairs/tx length mismatch")
	}
	if !parallel {
		allDone := true
		for i, d := range devices {
			done, err := packOne(d, pairs[i], &tx[i])
			if err != nil {
				return false, fmt.Errorf("handler: device %d: %w", d.Idx, err)
			}
			allDone = allDone && done
		}
		return allDone, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(devices) {
		workers = len(devices)
	}
	if workers < 1 {
		workers = 1
	}

	type result struct {
		done bool
		err  error
	}
	results := make([]result, len(devices))
	jobs := make(chan int, len(devices))
	for i := range devices {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				done, err := packOne(devices[i], pairs[i], &tx[i])
				results[i] = result{done: done, err: err}
			}
		}()
	}
	wg.Wait()

	allDone := true
	for i, r := range results {
		if r.err != nil {
			return false, fmt.Errorf("handler: device %d: %w", devices[i].Idx, r.err)
		}
		allDone = allDone && r.done
	}
	return allDone, nil
}
