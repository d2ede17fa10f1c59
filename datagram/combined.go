package datagram

import (
	"errors"

	"github.com/shinolab/autd3-driver-go/firmware"
	"github.com/shinolab/autd3-driver-go/geometry"
	"github.com/shinolab/autd3-driver-go/operation"
)

// ErrCombinedRequiresSingleSlot is the panic value raised by a Combined
// generator when either operand produces a pair whose Second slot is
// already occupied: Combined can only merge two single-slot datagrams
// into one dual-slot pair.
var ErrCombinedRequiresSingleSlot = errors.New("datagram: Combined operand must produce a single-slot (Op1, Null) pair")

// Combined packs two single-slot datagrams into one device pair,
// putting A's operation in slot 1 and B's in slot 2. It is how a
// Modulation and a Gain reach a device in the same frame (scenario S6).
type Combined struct {
	A, B Datagram
}

// NewCombined builds a Combined datagram.
func NewCombined(a, b Datagram) Combined { return Combined{A: a, B: b} }

func (c Combined) DatagramOption() Option {
	return Merge(c.A.DatagramOption(), c.B.DatagramOption())
}

func (c Combined) OperationGenerator(g *geometry.Geometry, env geometry.Environment, mask []bool, limits firmware.Limits) (Generator, error) {
	genA, err := c.A.OperationGenerator(g, env, mask, limits)
	if err != nil {
		return nil, err
	}
	genB, err := c.B.OperationGenerator(g, env, mask, limits)
	if err != nil {
		return nil, err
	}
	return GeneratorFunc(func(d *geometry.Device) (operation.Pair, bool) {
		pairA, okA := genA.Generate(d)
		pairB, okB := genB.Generate(d)
		if !okA || !okB {
			return operation.Pair{}, false
		}
		if _, isNull := pairA.Second.(operation.Null); !isNull {
			panic(ErrCombinedRequiresSingleSlot)
		}
		if _, isNull := pairB.Second.(operation.Null); !isNull {
			panic(ErrCombinedRequiresSingleSlot)
		}
		return operation.Pair{First: pairA.First, Second: pairB.First}, true
	}), nil
}

// Group dispatches to a different Datagram per device, selected by a
// key function; devices with no matching key are excluded from the
// send, the same as a mask bit of false.
type Group[K comparable] struct {
	Key func(d *geometry.Device) (K, bool)
	Map map[K]Datagram
}

// NewGroup builds a Group datagram.
func NewGroup[K comparable](key func(d *geometry.Device) (K, bool), byKey map[K]Datagram) Group[K] {
	return Group[K]{Key: key, Map: byKey}
}

func (g Group[K]) DatagramOption() Option {
	opt := DefaultOption()
	first := true
	for _, d := range g.Map {
		if first {
			opt = d.DatagramOption()
			first = false
			continue
		}
		opt = Merge(opt, d.DatagramOption())
	}
	return opt
}

func (g Group[K]) OperationGenerator(geo *geometry.Geometry, env geometry.Environment, mask []bool, limits firmware.Limits) (Generator, error) {
	gens := make(map[K]Generator, len(g.Map))
	for k, d := range g.Map {
		gen, err := d.OperationGenerator(geo, env, mask, limits)
		if err != nil {
			return nil, err
		}
		gens[k] = gen
	}
	return GeneratorFunc(func(d *geometry.Device) (operation.Pair, bool) {
		key, ok := g.Key(d)
		if !ok {
			return operation.Pair{}, false
		}
		gen, ok := gens[key]
		if !ok {
			return operation.Pair{}, false
		}
		return gen.Generate(d)
	}), nil
}

// Boxed erases a concrete Datagram's type for heterogeneous
// collections (e.g. a []Boxed queued for sequential send).
type Boxed struct {
	inner Datagram
}

// Box wraps d as a Boxed datagram.
func Box(d Datagram) Boxed { return Boxed{inner: d} }

func (b Boxed) DatagramOption() Option { return b.inner.DatagramOption() }

func (b Boxed) OperationGenerator(g *geometry.Geometry, env geometry.Environment, mask []bool, limits firmware.Limits) (Generator, error) {
	return b.inner.OperationGenerator(g, env, mask, limits)
}
