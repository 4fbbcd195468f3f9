package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/urfave/cli"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/tlc5940"
	"periph.io/x/devices/v3/tlc5940/tlcsim"
	"periph.io/x/host/v3"
)

// hardware is an initialized chain and what is needed to release it.
type hardware struct {
	dev   *tlc5940.Dev
	chain *tlcsim.Chain // nil on real hardware
	close func() error
}

// level returns what channel currently emits, or what the driver last set
// when the chain is real.
func (h *hardware) level(channel int) uint16 {
	if h.chain != nil {
		return h.chain.Output(channel)
	}
	v, _ := h.dev.Get(channel)
	return v
}

// refresh keeps the grayscale cycle running in the background until the
// returned func is called.
func (h *hardware) refresh() func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := h.dev.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			glog.Errorf("refresh: %v", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (h *hardware) Close() error {
	return errors.Join(h.dev.Halt(), h.close())
}

func openHardware(c *cli.Context) (*hardware, error) {
	opts := &tlc5940.Opts{
		Chips: c.GlobalInt("chips"),
		SPIHz: physic.Frequency(c.GlobalInt("hz")) * physic.Hertz,
	}

	if c.GlobalBool("sim") {
		chain := tlcsim.New(opts.Chips)
		dev, err := tlc5940.NewSPI(chain, chain.XLAT(), chain.BLANK(), chain.GSCLK(), opts)
		if err != nil {
			return nil, err
		}
		glog.Infof("simulating %s", chain)
		return &hardware{dev: dev, chain: chain, close: chain.Close}, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io: %w", err)
	}
	p, err := spireg.Open(c.GlobalString("spi"))
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}
	var pins [3]gpio.PinIO
	for i, name := range []string{"xlat", "blank", "gsclk"} {
		pinName := c.GlobalString(name)
		if pins[i] = gpioreg.ByName(pinName); pins[i] == nil {
			p.Close()
			return nil, fmt.Errorf("GPIO pin %s not found", pinName)
		}
	}
	dev, err := tlc5940.NewSPI(p, pins[0], pins[1], pins[2], opts)
	if err != nil {
		p.Close()
		return nil, err
	}
	glog.Infof("initialized %s on %s", dev, p)
	return &hardware{dev: dev, close: p.Close}, nil
}
