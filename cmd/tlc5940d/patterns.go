package main

import (
	"fmt"

	"periph.io/x/devices/v3/tlc5940"
	"periph.io/x/devices/v3/tlc5940/gray12"
)

// pattern fills buf with the frame for animation step n.
type pattern func(buf *gray12.Buffer, n int)

var patterns = map[string]pattern{
	"none":  nil,
	"chase": chase,
	"fade":  fade,
	"ramp":  ramp,
}

func lookupPattern(name string) (pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q", name)
	}
	return p, nil
}

// step shows frame n of p on dev. The frame is written in one call so a
// background refresh never latches it half built. A nil pattern refreshes
// the current values.
func step(dev *tlc5940.Dev, p pattern, n int) error {
	if p == nil {
		_, err := dev.Update()
		return err
	}
	buf := gray12.New(dev.Chips())
	p(buf, n)
	_, err := dev.Write(buf.Pix)
	return err
}

// chase lights one channel at a time with a dimmer tail behind it.
func chase(buf *gray12.Buffer, n int) {
	count := buf.Channels()
	head := n % count
	for i, v := range []uint16{gray12.Max, gray12.Max / 4, gray12.Max / 16} {
		buf.Set((head-i+count)%count, v)
	}
}

// fade ramps every channel up and back down.
func fade(buf *gray12.Buffer, n int) {
	const steps = 64
	i := n % (2 * steps)
	if i >= steps {
		i = 2*steps - 1 - i
	}
	buf.SetAll(uint16(i * gray12.Max / (steps - 1)))
}

// ramp spreads brightness across the chain, rotating by one channel per step.
func ramp(buf *gray12.Buffer, n int) {
	count := buf.Channels()
	for ch := 0; ch < count; ch++ {
		buf.Set(ch, uint16(((ch+n)%count)*gray12.Max/(count-1)))
	}
}
