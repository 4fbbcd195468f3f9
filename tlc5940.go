// Package tlc5940 controls a chain of TLC5940 16-channel LED drivers.
//
// The TLC5940 is a constant-current sink with a 12-bit grayscale PWM
// register per output. Grayscale data is shifted in over SIN/SCLK, copied
// to the active register by a pulse on XLAT and compared against a counter
// advanced by GSCLK. BLANK turns all outputs off and resets the counter.
//
// See the examples for how to use this package.
package tlc5940

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/tlc5940/gray12"
)

var (
	// ErrHalted is returned by operations on a halted device.
	ErrHalted = errors.New("tlc5940: halted")
	// ErrChannelRange is returned for a channel outside [0, Channels()).
	ErrChannelRange = errors.New("tlc5940: channel out of range")

	errPinMissing = errors.New("tlc5940: pin must not be nil")
)

// Opts is the configuration for a TLC5940 chain.
type Opts struct {
	Chips   int    // Daisy-chained chips (default: 1)
	Initial uint16 // Value of every channel after initialization (0-4095)

	// SPI clock (default: 10MHz, at most MaxSPIHz). Only used by NewSPI.
	SPIHz physic.Frequency

	// Grayscale clock, in timer ticks. The tick also sets the cycle length
	// used by Run.
	TickHz      physic.Frequency // Timer tick (default: 16MHz)
	ClockPeriod int              // GSCLK period in ticks (default: 33)
	ClockDuty   int              // GSCLK high time in ticks (default: 16)

	// Interval between refreshes in Run, at most one grayscale cycle
	// (default: 7/8 of a cycle).
	Refresh time.Duration
}

// DefaultOpts is used when nil is passed to New or NewSPI.
var DefaultOpts = Opts{
	Chips:       1,
	SPIHz:       10 * physic.MegaHertz,
	TickHz:      DefaultTickHz,
	ClockPeriod: DefaultClockPeriod,
	ClockDuty:   DefaultClockDuty,
}

// Dev is a handle to a chain of TLC5940 chips.
//
// Dev is safe for concurrent use.
type Dev struct {
	mu sync.Mutex

	// Communication
	s     Shifter
	clk   ClockGenerator
	xlat  gpio.PinOut
	blank gpio.PinOut

	// Grayscale data, in wire order
	buf *gray12.Buffer

	// Grayscale clock
	period, duty int
	cycle        time.Duration
	refresh      time.Duration

	halted bool
}

// NewSPI creates a chain driven by an SPI port.
//
// The SPI port is configured in Mode0, 8-bit transfers. xlat and blank are
// plain outputs; gsclk must support hardware PWM.
//
// opts can be nil to use DefaultOpts.
func NewSPI(p spi.Port, xlat, blank, gsclk gpio.PinOut, opts *Opts) (*Dev, error) {
	if p == nil || xlat == nil || blank == nil || gsclk == nil {
		return nil, errPinMissing
	}
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	s, err := NewSPIShifter(p, o.SPIHz)
	if err != nil {
		return nil, err
	}
	clk, err := NewPWMClock(gsclk, o.TickHz)
	if err != nil {
		return nil, err
	}
	return newDev(s, clk, xlat, blank, &o)
}

// New creates a chain from an already configured Shifter and ClockGenerator.
//
// opts can be nil to use DefaultOpts. SPIHz is ignored.
func New(s Shifter, clk ClockGenerator, xlat, blank gpio.PinOut, opts *Opts) (*Dev, error) {
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	return newDev(s, clk, xlat, blank, &o)
}

func newDev(s Shifter, clk ClockGenerator, xlat, blank gpio.PinOut, o *Opts) (*Dev, error) {
	if s == nil || clk == nil || xlat == nil || blank == nil {
		return nil, errPinMissing
	}
	d := &Dev{
		s:      s,
		clk:    clk,
		xlat:   xlat,
		blank:  blank,
		buf:    gray12.New(o.Chips),
		period: o.ClockPeriod,
		duty:   o.ClockDuty,
		cycle:  CycleDuration(o.TickHz, o.ClockPeriod),
	}
	d.refresh = o.Refresh
	if err := d.init(o.Initial); err != nil {
		return nil, err
	}
	return d, nil
}

// resolve applies defaults to zero fields and validates the result.
func (opts *Opts) resolve() (Opts, error) {
	o := DefaultOpts
	if opts != nil {
		o.Initial = opts.Initial
		o.Refresh = opts.Refresh
		if opts.Chips != 0 {
			o.Chips = opts.Chips
		}
		if opts.SPIHz != 0 {
			o.SPIHz = opts.SPIHz
		}
		if opts.TickHz != 0 {
			o.TickHz = opts.TickHz
		}
		if opts.ClockPeriod != 0 {
			o.ClockPeriod = opts.ClockPeriod
		}
		if opts.ClockDuty != 0 {
			o.ClockDuty = opts.ClockDuty
		}
	}

	if o.Chips < 1 {
		return o, errors.New("tlc5940: chips must be positive")
	}
	if o.Initial > gray12.Max {
		return o, errors.New("tlc5940: initial value must be between 0 and 4095")
	}
	if o.SPIHz < 0 || o.SPIHz > MaxSPIHz {
		return o, fmt.Errorf("tlc5940: SPI frequency must be at most %s", MaxSPIHz)
	}
	if err := validateClock(o.ClockPeriod, o.ClockDuty); err != nil {
		return o, err
	}
	cycle, err := cycleDuration(o.TickHz, o.ClockPeriod)
	if err != nil {
		return o, err
	}
	switch {
	case o.Refresh < 0:
		return o, errors.New("tlc5940: refresh interval must not be negative")
	case o.Refresh > cycle:
		return o, fmt.Errorf("tlc5940: refresh interval must be at most one grayscale cycle (%s)", cycle)
	case o.Refresh == 0:
		o.Refresh = cycle - cycle/8
	}
	return o, nil
}

// init seeds the grayscale registers and starts GSCLK.
//
// BLANK is held high until the clock runs so no output turns on with a
// stopped counter.
func (d *Dev) init(initial uint16) error {
	if err := d.xlat.Out(gpio.Low); err != nil {
		return fmt.Errorf("tlc5940: failed to pull XLAT low: %w", err)
	}
	if err := d.blank.Out(gpio.High); err != nil {
		return fmt.Errorf("tlc5940: failed to pull BLANK high: %w", err)
	}

	d.buf.SetAll(initial)
	if err := d.shift(); err != nil {
		return err
	}
	if err := pulse(d.xlat); err != nil {
		return fmt.Errorf("tlc5940: failed to pulse XLAT: %w", err)
	}

	if err := d.clk.Start(d.period, d.duty); err != nil {
		return err
	}
	if err := d.blank.Out(gpio.Low); err != nil {
		return fmt.Errorf("tlc5940: failed to pull BLANK low: %w", err)
	}
	return nil
}

// Chips returns the number of chips in the chain.
func (d *Dev) Chips() int {
	return d.buf.Chips
}

// Channels returns the number of channels in the chain.
func (d *Dev) Channels() int {
	return d.buf.Channels()
}

// CycleDuration returns the length of one grayscale cycle.
func (d *Dev) CycleDuration() time.Duration {
	return d.cycle
}

// Set sets channel to the low 12 bits of value.
//
// Channel 0 is OUT0 of the chip nearest to the controller, channel 16 is
// OUT0 of the next chip. Nothing is sent until Update is called.
func (d *Dev) Set(channel int, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if channel < 0 || channel >= d.buf.Channels() {
		return ErrChannelRange
	}
	d.buf.Set(channel, value)
	return nil
}

// Get returns the value of channel as last set.
func (d *Dev) Get(channel int) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	if channel < 0 || channel >= d.buf.Channels() {
		return 0, ErrChannelRange
	}
	return d.buf.Get(channel), nil
}

// SetAll sets every channel to the low 12 bits of value.
func (d *Dev) SetAll(value uint16) {
	d.mu.Lock()
	d.buf.SetAll(value)
	d.mu.Unlock()
}

// Clear sets every channel to 0. Call Update to turn the outputs off.
func (d *Dev) Clear() {
	d.SetAll(0)
}

// Buffer returns a copy of the packed grayscale data in wire order.
func (d *Dev) Buffer() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.buf.Pix...)
}

// Update shifts the grayscale data into the chain and latches it.
//
// It reports whether data is still waiting to be shifted. Shifting is
// synchronous so a successful call always returns false; callers polling
// until it returns false keep working unchanged.
func (d *Dev) Update() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return false, ErrHalted
	}
	if err := d.shift(); err != nil {
		return false, err
	}
	return false, d.latch()
}

// Latch copies the chain's shift registers into the grayscale registers.
//
// XLAT is pulsed while BLANK is high. BLANK resets the grayscale counter,
// so the new values take effect at the start of a fresh cycle instead of
// in the middle of one.
func (d *Dev) Latch() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.latch()
}

// Out sets channels 0 to len(intensities)-1 and updates the chain.
func (d *Dev) Out(intensities ...display.Intensity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if len(intensities) > d.buf.Channels() {
		return ErrChannelRange
	}
	for ch, i := range intensities {
		d.buf.Set(ch, gray12.FromIntensity(i))
	}
	if err := d.shift(); err != nil {
		return err
	}
	return d.latch()
}

// Write replaces the packed grayscale data and updates the chain.
// The data must be exactly Chips()*24 bytes.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	if len(p) != len(d.buf.Pix) {
		return 0, errors.New("tlc5940: invalid buffer size")
	}
	copy(d.buf.Pix, p)
	if err := d.shift(); err != nil {
		return 0, err
	}
	if err := d.latch(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Run refreshes the chain until ctx is canceled.
//
// Without a BLANK pulse the grayscale counter stops after 4096 GSCLK pulses
// and every output stays off, so Run updates at least once per cycle.
func (d *Dev) Run(ctx context.Context) error {
	t := time.NewTicker(d.refresh)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := d.Update(); err != nil {
				return err
			}
		}
	}
}

// Halt stops GSCLK and blanks every output.
// After calling Halt, every method returning an error returns ErrHalted.
// SetAll and Clear only change the buffer, which is never sent again.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	return errors.Join(
		wrap(d.clk.Stop()),
		wrap(d.blank.Out(gpio.High)),
	)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("tlc5940.Dev{chips=%d}", d.buf.Chips)
}

// shift sends the whole buffer, farthest chip first.
func (d *Dev) shift() error {
	if err := d.s.Begin(); err != nil {
		return fmt.Errorf("tlc5940: failed to begin shift: %w", err)
	}
	for _, b := range d.buf.Pix {
		if err := d.s.ShiftByte(b); err != nil {
			return fmt.Errorf("tlc5940: failed to shift: %w", err)
		}
	}
	return nil
}

func (d *Dev) latch() error {
	if err := d.blank.Out(gpio.High); err != nil {
		return wrap(err)
	}
	if err := pulse(d.xlat); err != nil {
		return wrap(err)
	}
	return wrap(d.blank.Out(gpio.Low))
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("tlc5940: %w", err)
}
