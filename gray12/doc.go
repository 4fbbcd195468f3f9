// Package gray12 provides the packed 12-bit grayscale buffer used by the TLC5940.
//
// Each TLC5940 has 16 outputs with a 12-bit brightness value. Two values are
// packed into three bytes, so the data for one chip is 24 bytes. The buffer is
// kept in wire order: the chip farthest from the controller comes first and
// each chip starts with output 15.
//
// Addressing example for one chip, channel 0 (reversed position 15, odd):
//
//	b := gray12.New(1)
//	b.Set(0, 0xABC)
//	// b.Pix[22] low nibble = 0xA, b.Pix[23] = 0xBC
//
// Channel 15 (reversed position 0, even):
//
//	b.Set(15, 0x123)
//	// b.Pix[0] = 0x12, b.Pix[1] high nibble = 0x3
//
// Writing one channel never disturbs the nibble that belongs to its
// neighbor. SetAll writes a repeating three byte pattern instead of packing
// every channel.
//
// Channel indices are not checked here; the tlc5940 package validates them.
package gray12
