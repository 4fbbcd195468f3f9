// Package gray12 provides the packed 12-bit grayscale buffer used by the TLC5940.
//
// The TLC5940 shifts 16 channels of 12 bits per chip, MSB first, starting
// with the last chip of the chain. This package stores the values in that
// wire order so the buffer can be shifted out byte by byte.
package gray12

import (
	"periph.io/x/conn/v3/display"
)

const (
	// Max is the largest grayscale value.
	Max = 4095
	// ChannelsPerChip is the number of outputs of one TLC5940.
	ChannelsPerChip = 16
	// BytesPerChip is the packed size of one chip's grayscale data.
	BytesPerChip = ChannelsPerChip * 12 / 8
)

// Buffer is the packed grayscale data of a chain of chips.
//
// Two channels share three bytes. For chips A and B with A nearest to the
// controller:
//
//	byte 0:  upper 8 bits of B.15
//	byte 1:  lower 4 bits of B.15 | upper 4 bits of B.14
//	byte 2:  lower 8 bits of B.14
//	...
//	byte 47: lower 8 bits of A.0
type Buffer struct {
	Pix   []byte // Packed data, Chips*BytesPerChip bytes
	Chips int    // Number of daisy-chained chips
}

// New creates a zeroed Buffer for chips daisy-chained chips.
func New(chips int) *Buffer {
	if chips < 0 {
		chips = 0
	}
	return &Buffer{
		Pix:   make([]byte, chips*BytesPerChip),
		Chips: chips,
	}
}

// Channels returns the number of channels in the buffer.
func (b *Buffer) Channels() int {
	return b.Chips * ChannelsPerChip
}

// Set stores the low 12 bits of v for channel.
// channel must be in [0, Channels()).
func (b *Buffer) Set(channel int, v uint16) {
	Pack(b.Pix, Reverse(b.Chips, channel), v)
}

// Get returns the value of channel.
// channel must be in [0, Channels()).
func (b *Buffer) Get(channel int) uint16 {
	return Unpack(b.Pix, Reverse(b.Chips, channel))
}

// SetAll sets every channel to v.
func (b *Buffer) SetAll(v uint16) {
	pattern := Pattern(v)
	for i := 0; i+2 < len(b.Pix); i += 3 {
		b.Pix[i] = pattern[0]
		b.Pix[i+1] = pattern[1]
		b.Pix[i+2] = pattern[2]
	}
}

// Clear sets every channel to 0.
func (b *Buffer) Clear() {
	b.SetAll(0)
}

// Reverse maps a logical channel to its position in wire order.
// Channel 0 is output 0 of the chip nearest to the controller, which is
// shifted out last.
func Reverse(chips, channel int) int {
	return chips*ChannelsPerChip - 1 - channel
}

// Offset returns the byte offset of the value at reversed position r.
// When odd is true the value starts in the low nibble of that byte.
func Offset(r int) (offset int, odd bool) {
	return r * 3 / 2, r&1 == 1
}

// Pack writes the low 12 bits of v at reversed position r, preserving the
// nibble shared with the neighboring channel.
func Pack(pix []byte, r int, v uint16) {
	v &= Max
	o, odd := Offset(r)
	if odd {
		// High nibble belongs to the previous channel.
		pix[o] = pix[o]&0xF0 | byte(v>>8)
		pix[o+1] = byte(v)
		return
	}
	// Low nibble of the next byte belongs to the next channel.
	pix[o] = byte(v >> 4)
	pix[o+1] = byte(v<<4) | pix[o+1]&0x0F
}

// Unpack reads the 12-bit value at reversed position r.
func Unpack(pix []byte, r int) uint16 {
	o, odd := Offset(r)
	if odd {
		return uint16(pix[o]&0x0F)<<8 | uint16(pix[o+1])
	}
	return uint16(pix[o])<<4 | uint16(pix[o+1]>>4)
}

// Pattern returns the three bytes holding two channels of value v.
func Pattern(v uint16) [3]byte {
	v &= Max
	return [3]byte{byte(v >> 4), byte(v<<4) | byte(v>>8), byte(v)}
}

// FromIntensity scales an 8-bit display intensity to 12 bits.
// 0 maps to 0 and 255 maps to Max.
func FromIntensity(i display.Intensity) uint16 {
	v := uint16(i)
	return v<<4 | v>>4
}
