package deviceio

/*------------------------------------------------------------------
 *
 * Purpose:	Optional GPIO enable/mute line for a hardware sink, driven
 *		by github.com/warthog618/go-gpiocdev: assert a line for the
 *		duration the sink is actively producing audio, release it
 *		otherwise. Gates a downstream amplifier or relay so nothing
 *		hums while the graph is stopped.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOKeyer asserts a GPIO output line while a hardware sink is Running
// and releases it on Stop.
type GPIOKeyer struct {
	chip string
	line int
	l    *gpiocdev.Line
}

// NewGPIOKeyer opens (but does not yet assert) a GPIO output line.
func NewGPIOKeyer(chip string, line int) (*GPIOKeyer, error) {
	l, err := gpiocdev.RequestLine(chip, line, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("deviceio: requesting gpio line %s:%d: %w", chip, line, err)
	}
	return &GPIOKeyer{chip: chip, line: line, l: l}, nil
}

func (k *GPIOKeyer) Assert() error {
	return k.l.SetValue(1)
}

func (k *GPIOKeyer) Release() error {
	return k.l.SetValue(0)
}

func (k *GPIOKeyer) Close() error {
	return k.l.Close()
}
