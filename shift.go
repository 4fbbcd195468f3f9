package tlc5940

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Shifter shifts grayscale data into the chain's SIN/SCLK inputs.
//
// Each call blocks until the byte has left the controller. There is no
// acknowledgement on the wire.
type Shifter interface {
	// Begin marks the start of a new shift sequence.
	Begin() error
	// ShiftByte shifts b out, most significant bit first.
	ShiftByte(b byte) error
}

// MaxSPIHz is the fastest SCLK the TLC5940 accepts.
const MaxSPIHz = 30 * physic.MegaHertz

// NewSPIShifter connects to an SPI port at hz in Mode0, 8 bits per word.
//
// The SPI controller owns SIN and SCLK; Begin is a no-op.
func NewSPIShifter(p spi.Port, hz physic.Frequency) (Shifter, error) {
	if hz <= 0 || hz > MaxSPIHz {
		return nil, fmt.Errorf("tlc5940: SPI frequency %s out of range", hz)
	}
	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("tlc5940: failed to connect SPI: %w", err)
	}
	return &spiShifter{c: c}, nil
}

type spiShifter struct {
	c spi.Conn
	w [1]byte
}

func (s *spiShifter) Begin() error {
	// The extra SCLK pulse is only needed after dot-correction (VPRG) input, which is never sent.
	return nil
}

func (s *spiShifter) ShiftByte(b byte) error {
	s.w[0] = b
	return s.c.Tx(s.w[:], nil)
}

func (s *spiShifter) String() string {
	return fmt.Sprintf("spi(%s)", s.c)
}

// NewBitBangShifter drives SIN and SCLK directly from two GPIO outputs.
//
// Both lines are driven low. Data is sampled by the chip on the rising
// edge of SCLK.
func NewBitBangShifter(sin, sclk gpio.PinOut) (Shifter, error) {
	if sin == nil || sclk == nil {
		return nil, errPinMissing
	}
	if err := sin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("tlc5940: failed to pull SIN low: %w", err)
	}
	if err := sclk.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("tlc5940: failed to pull SCLK low: %w", err)
	}
	return &bitBangShifter{sin: sin, sclk: sclk}, nil
}

type bitBangShifter struct {
	sin  gpio.PinOut
	sclk gpio.PinOut
}

// Begin pulses SCLK once with SIN untouched.
func (s *bitBangShifter) Begin() error {
	return pulse(s.sclk)
}

func (s *bitBangShifter) ShiftByte(b byte) error {
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		if err := s.sin.Out(b&mask != 0); err != nil {
			return err
		}
		if err := pulse(s.sclk); err != nil {
			return err
		}
	}
	return nil
}

func (s *bitBangShifter) String() string {
	return fmt.Sprintf("bitbang(%s, %s)", s.sin, s.sclk)
}

// pulse drives p high then low.
func pulse(p gpio.PinOut) error {
	if err := p.Out(gpio.High); err != nil {
		return err
	}
	return p.Out(gpio.Low)
}
