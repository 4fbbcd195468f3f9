package tlc5940

import (
	"errors"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ClockGenerator emits the grayscale reference clock (GSCLK).
//
// Once started the clock runs in hardware; every pulse advances the chip's
// 12-bit grayscale counter.
type ClockGenerator interface {
	// Start emits a square wave of period timer ticks, high for duty ticks.
	Start(period, duty int) error
	// Stop halts the wave and leaves the line low.
	Stop() error
}

const (
	// DefaultTickHz is the timer tick the clock period is counted in.
	DefaultTickHz = 16 * physic.MegaHertz
	// DefaultClockPeriod gives a GSCLK of about 484.8kHz at DefaultTickHz.
	DefaultClockPeriod = 33
	// DefaultClockDuty is close to a 50% duty cycle at DefaultClockPeriod.
	DefaultClockDuty = 16

	// GrayscaleSteps is the number of GSCLK pulses in one grayscale cycle.
	GrayscaleSteps = 4096
)

// NewPWMClock returns a ClockGenerator using the hardware PWM of pin.
// Periods are counted in ticks of tick.
func NewPWMClock(pin gpio.PinOut, tick physic.Frequency) (ClockGenerator, error) {
	if pin == nil {
		return nil, errPinMissing
	}
	if tick < physic.Hertz {
		return nil, errTickRange
	}
	return &pwmClock{pin: pin, tick: tick}, nil
}

type pwmClock struct {
	pin  gpio.PinOut
	tick physic.Frequency
}

func (c *pwmClock) Start(period, duty int) error {
	if err := validateClock(period, duty); err != nil {
		return err
	}
	d := gpio.Duty(int64(gpio.DutyMax) * int64(duty) / int64(period))
	f := c.tick / physic.Frequency(period)
	if err := c.pin.PWM(d, f); err != nil {
		return fmt.Errorf("tlc5940: failed to start GSCLK: %w", err)
	}
	return nil
}

func (c *pwmClock) Stop() error {
	return c.pin.Out(gpio.Low)
}

func (c *pwmClock) String() string {
	return fmt.Sprintf("pwm(%s, %s)", c.pin, c.tick)
}

func validateClock(period, duty int) error {
	if period < 2 {
		return errors.New("tlc5940: clock period must be at least 2 ticks")
	}
	if duty <= 0 || duty >= period {
		return errors.New("tlc5940: clock duty must be between 1 and period-1 ticks")
	}
	return nil
}

var errTickRange = errors.New("tlc5940: clock tick must be at least 1Hz")

// maxClockPeriod keeps a grayscale cycle within time.Duration.
const maxClockPeriod = math.MaxInt64 / int64(time.Second) / GrayscaleSteps

// CycleDuration returns the length of one grayscale cycle: GrayscaleSteps
// periods of period ticks at tick. It returns 0 when the cycle cannot be
// represented.
func CycleDuration(tick physic.Frequency, period int) time.Duration {
	d, _ := cycleDuration(tick, period)
	return d
}

func cycleDuration(tick physic.Frequency, period int) (time.Duration, error) {
	if tick < physic.Hertz {
		return 0, errTickRange
	}
	if period <= 0 || int64(period) > maxClockPeriod {
		return 0, fmt.Errorf("tlc5940: clock period must be between 1 and %d ticks", maxClockPeriod)
	}
	d := time.Duration(int64(time.Second) * int64(period) * GrayscaleSteps / int64(tick/physic.Hertz))
	if d <= 0 {
		return 0, errors.New("tlc5940: grayscale cycle too short")
	}
	return d, nil
}
