// Package tlcsim is a software model of a chain of TLC5940 chips.
//
// A Chain acts as the SPI port and the XLAT, BLANK and GSCLK lines of the
// real hardware, so a tlc5940.Dev can run without any chip attached. Data
// shifted in over SPI (or over the SIN and SCLK pins) fills a shift register
// of 192 bits per chip; a rising edge on XLAT copies it into the grayscale
// registers.
package tlcsim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/tlc5940/gray12"
)

// Chain models daisy-chained TLC5940 chips.
type Chain struct {
	mu sync.Mutex

	chips int
	shift []byte // Shift register, first byte is the far end of the chain
	gs    []byte // Latched grayscale registers, same layout as shift
	bits  int    // Bits shifted since the last latch

	sin, sclk, xlat, blank, gsclk *Pin

	hz      physic.Frequency
	conns   int
	latches int
	resets  int
	closed  bool
}

// New returns a Chain of chips TLC5940s with every register zeroed and
// BLANK high.
func New(chips int) *Chain {
	if chips < 1 {
		chips = 1
	}
	c := &Chain{
		chips: chips,
		shift: make([]byte, chips*gray12.BytesPerChip),
		gs:    make([]byte, chips*gray12.BytesPerChip),
	}
	c.sin = &Pin{c: c, name: "SIN", number: 0}
	c.sclk = &Pin{c: c, name: "SCLK", number: 1, rise: c.clockIn}
	c.xlat = &Pin{c: c, name: "XLAT", number: 2, rise: c.latch}
	c.blank = &Pin{c: c, name: "BLANK", number: 3, level: gpio.High, rise: c.reset}
	c.gsclk = &Pin{c: c, name: "GSCLK", number: 4, pwm: true}
	return c
}

// Chips returns the number of chips in the chain.
func (c *Chain) Chips() int {
	return c.chips
}

// SIN returns the serial data input.
func (c *Chain) SIN() *Pin { return c.sin }

// SCLK returns the serial clock input. Data is sampled on the rising edge.
func (c *Chain) SCLK() *Pin { return c.sclk }

// XLAT returns the latch input.
func (c *Chain) XLAT() *Pin { return c.xlat }

// BLANK returns the blanking input.
func (c *Chain) BLANK() *Pin { return c.blank }

// GSCLK returns the grayscale clock input. It accepts PWM.
func (c *Chain) GSCLK() *Pin { return c.gsclk }

// Value returns the latched grayscale value of channel.
func (c *Chain) Value(channel int) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gray12.Unpack(c.gs, gray12.Reverse(c.chips, channel))
}

// Values returns the latched grayscale value of every channel.
func (c *Chain) Values() []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint16, c.chips*gray12.ChannelsPerChip)
	for ch := range out {
		out[ch] = gray12.Unpack(c.gs, gray12.Reverse(c.chips, ch))
	}
	return out
}

// Output returns the effective brightness of channel: 0 while blanked or
// while GSCLK is stopped.
func (c *Chain) Output(channel int) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blank.level == gpio.High || !c.gsclk.running() {
		return 0
	}
	return gray12.Unpack(c.gs, gray12.Reverse(c.chips, channel))
}

// ShiftRegister returns a copy of the shift register contents.
func (c *Chain) ShiftRegister() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.shift...)
}

// Blanked reports whether BLANK is high.
func (c *Chain) Blanked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blank.level == gpio.High
}

// Latches returns the number of XLAT rising edges seen.
func (c *Chain) Latches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latches
}

// Resets returns the number of grayscale counter resets caused by BLANK.
func (c *Chain) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// BitsSinceLatch returns the number of bits shifted since the last latch.
func (c *Chain) BitsSinceLatch() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bits
}

// Clock returns the duty cycle and frequency last applied to GSCLK.
func (c *Chain) Clock() (gpio.Duty, physic.Frequency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gsclk.duty, c.gsclk.freq
}

// String implements spi.Port.
func (c *Chain) String() string {
	return fmt.Sprintf("tlcsim.Chain{chips=%d}", c.chips)
}

// Connect implements spi.Port.
func (c *Chain) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("tlcsim: port closed")
	}
	if bits != 8 {
		return nil, fmt.Errorf("tlcsim: %d bits per word not supported", bits)
	}
	if mode&3 != spi.Mode0 {
		return nil, fmt.Errorf("tlcsim: mode %v not supported", mode)
	}
	if f > 30*physic.MegaHertz {
		return nil, fmt.Errorf("tlcsim: SCLK %s too fast", f)
	}
	c.hz = f
	c.conns++
	return &simConn{c: c}, nil
}

// LimitSpeed implements spi.Port.
func (c *Chain) LimitSpeed(f physic.Frequency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hz == 0 || f < c.hz {
		c.hz = f
	}
	return nil
}

// Close implements spi.PortCloser.
func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// shiftBit moves every bit of the shift register one position toward the
// far end of the chain and inserts bit at the near end.
func (c *Chain) shiftBit(bit bool) {
	n := len(c.shift)
	for i := 0; i < n-1; i++ {
		c.shift[i] = c.shift[i]<<1 | c.shift[i+1]>>7
	}
	c.shift[n-1] <<= 1
	if bit {
		c.shift[n-1] |= 1
	}
	c.bits++
}

func (c *Chain) shiftByte(b byte) {
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		c.shiftBit(b&mask != 0)
	}
}

func (c *Chain) clockIn() {
	c.shiftBit(c.sin.level == gpio.High)
}

func (c *Chain) latch() {
	copy(c.gs, c.shift)
	c.latches++
	c.bits = 0
}

func (c *Chain) reset() {
	c.resets++
}

type simConn struct {
	c *Chain
}

func (s *simConn) String() string {
	return s.c.String()
}

func (s *simConn) Duplex() conn.Duplex {
	return conn.Full
}

func (s *simConn) Tx(w, r []byte) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.closed {
		return errors.New("tlcsim: port closed")
	}
	for _, b := range w {
		s.c.shiftByte(b)
	}
	// SOUT is not modeled; reads return zeros.
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (s *simConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := s.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ spi.PortCloser = &Chain{}
var _ spi.Conn = &simConn{}
