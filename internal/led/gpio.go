package led

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// gpioLEDs drives LED channels wired straight to GPIO lines.
type gpioLEDs struct {
	pins map[Channel]gpio.PinOut
}

// newGPIO initialises the periph host drivers and resolves pin names such
// as "GPIO17" or "P1_11".
func newGPIO(names map[Channel]string) (*gpioLEDs, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise GPIO host: %w", err)
	}

	pins := make(map[Channel]gpio.PinOut, len(names))
	for ch, name := range names {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("GPIO pin %q for %s channel not found", name, ch)
		}
		pins[ch] = pin
	}
	return newGPIOPins(pins), nil
}

func newGPIOPins(pins map[Channel]gpio.PinOut) *gpioLEDs {
	return &gpioLEDs{pins: pins}
}

func (g *gpioLEDs) Init(ch Channel) error {
	return g.Set(ch, false)
}

func (g *gpioLEDs) Set(ch Channel, on bool) error {
	pin, ok := g.pins[ch]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, ch)
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := pin.Out(level); err != nil {
		return fmt.Errorf("failed to drive %s: %w", pin, err)
	}
	return nil
}

func (g *gpioLEDs) Available() []Channel {
	return sortedChannels(g.pins)
}
