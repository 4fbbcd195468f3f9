// Package tlc5940 controls a chain of TLC5940 LED drivers.
//
// The TLC5940 is a 16-channel constant-current sink LED driver. Every output
// has a 12-bit grayscale PWM register (0-4095). Chips can be daisy-chained
// by connecting SOUT of one chip to SIN of the next.
//
// # Hardware Connection
//
// Connect the first chip of the chain to your system:
//
//	Chip Pin → System Pin
//	GND      → GND
//	VCC      → 3.3V or 5V
//	SIN      → SPI Data (MOSI)
//	SCLK     → SPI Clock (SCLK)
//	XLAT     → GPIO (any available pin)
//	BLANK    → GPIO (any available pin)
//	GSCLK    → GPIO with hardware PWM
//	VPRG     → GND (grayscale mode)
//	IREF     → resistor to GND, sets the output current
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/tlc5940"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		p, _ := spireg.Open("")
//		defer p.Close()
//
//		dev, _ := tlc5940.NewSPI(p,
//			gpioreg.ByName("GPIO25"), // XLAT
//			gpioreg.ByName("GPIO24"), // BLANK
//			gpioreg.ByName("GPIO18"), // GSCLK
//			&tlc5940.Opts{Chips: 2},
//		)
//		defer dev.Halt()
//
//		dev.Set(5, 4095)
//		dev.Update()
//	}
//
// # Grayscale Data
//
// Channel 0 is OUT0 of the chip nearest to the controller, channel 16 is
// OUT0 of the second chip and so on. Values are kept in a packed buffer in
// the order they are shifted out (see package gray12). Set, SetAll and Clear
// only change the buffer; Update shifts it into the chain and latches it.
//
// Update returns whether data is still pending. Shifting is synchronous so it
// always returns false, and the usual polling loop works unchanged:
//
//	for {
//		pending, err := dev.Update()
//		if err != nil || !pending {
//			break
//		}
//	}
//
// # Latching
//
// Shifted data sits in the chips' shift registers until XLAT is pulsed.
// Latch pulses XLAT while BLANK is high. BLANK turns all outputs off and
// resets the grayscale counter, so new values always start a fresh PWM cycle
// instead of tearing the current one. Update calls Latch after shifting.
//
// # Grayscale Clock
//
// GSCLK is generated by a hardware PWM (ClockGenerator) and runs without any
// software involvement. Each pulse advances the chips' 12-bit counter; after
// 4096 pulses the outputs stay off until BLANK resets the counter. Run calls
// Update a little more often than once per cycle to keep the outputs lit:
//
//	go dev.Run(ctx)
//
// With the defaults (16MHz tick, 33 ticks per period) GSCLK runs at about
// 484.8kHz and one cycle lasts 8.448ms.
//
// # Bit-banged SIN/SCLK
//
// Without an SPI port, NewBitBangShifter drives SIN and SCLK from two GPIO
// outputs and New builds the Dev from it:
//
//	s, _ := tlc5940.NewBitBangShifter(sin, sclk)
//	clk, _ := tlc5940.NewPWMClock(gsclk, tlc5940.DefaultTickHz)
//	dev, _ := tlc5940.New(s, clk, xlat, blank, nil)
//
// # Concurrency
//
// Dev serializes its methods. A Set that returns before Update is called is
// included in that Update.
// While Run is active, Update may land between two Set calls; use Write to
// replace a whole frame at once.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/tlc5940.pdf
package tlc5940
