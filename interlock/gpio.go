package interlock

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
)

// GPIO reads a periph.io input pin to decide whether a physical
// interlock is tripped. TrippedLevel is the pin level observed when
// the interlock is engaged (open enclosure, e-stop pressed).
type GPIO struct {
	Pin          gpio.PinIn
	TrippedLevel gpio.Level
}

// OpenGPIO initializes the host drivers and configures pin as a pulled
// input, returning a GPIO gate over it.
func OpenGPIO(pin gpio.PinIn, pull gpio.Pull, trippedLevel gpio.Level) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("interlock: initializing host drivers: %w", err)
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("interlock: configuring pin %s: %w", pin, err)
	}
	return &GPIO{Pin: pin, TrippedLevel: trippedLevel}, nil
}

// Engaged reads the pin and reports whether the interlock is tripped.
func (g *GPIO) Engaged(ctx context.Context) (bool, error) {
	return g.Pin.Read() == g.TrippedLevel, nil
}
