package tlcsim

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Pin is one control input of a Chain. Pin implements gpio.PinOut.
type Pin struct {
	c      *Chain
	name   string
	number int
	level  gpio.Level
	rise   func()
	pwm    bool
	duty   gpio.Duty
	freq   physic.Frequency
	edges  int
}

func (p *Pin) Name() string {
	return p.name
}

func (p *Pin) Number() int {
	return p.number
}

func (p *Pin) String() string {
	return fmt.Sprintf("tlcsim Pin: Name: %s Number %d", p.name, p.number)
}

func (p *Pin) Halt() error {
	return nil
}

func (p *Pin) Function() string {
	if p.pwm && p.running() {
		return "PWM"
	}
	return "Out"
}

// Out drives the pin. A rising edge triggers the input's action.
func (p *Pin) Out(l gpio.Level) error {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.duty, p.freq = 0, 0
	if l == gpio.High && p.level == gpio.Low {
		p.edges++
		if p.rise != nil {
			p.rise()
		}
	}
	p.level = l
	return nil
}

// PWM is only supported by GSCLK.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if !p.pwm {
		return errors.New("tlcsim: PWM not supported on " + p.name)
	}
	if duty < 0 || duty > gpio.DutyMax {
		return fmt.Errorf("tlcsim: invalid duty %v", duty)
	}
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.duty, p.freq = duty, f
	return nil
}

// Edges returns the number of rising edges seen on the pin.
func (p *Pin) Edges() int {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.edges
}

func (p *Pin) running() bool {
	return p.freq > 0 && p.duty > 0
}

var _ gpio.PinOut = &Pin{}
