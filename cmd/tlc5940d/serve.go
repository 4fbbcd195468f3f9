package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/urfave/cli"
	"periph.io/x/devices/v3/tlc5940/tlcmqtt"
)

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "Bridge the chain to an MQTT broker",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "broker",
			Usage: "Broker URL, the path is used as topic prefix",
			Value: "mqtt://localhost:1883/tlc5940/",
		},
	},
	Action: runServe,
}

func runServe(c *cli.Context) error {
	hw, err := openHardware(c)
	if err != nil {
		return err
	}
	defer hw.Close()

	bridge, err := tlcmqtt.New(hw.dev, c.String("broker"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	glog.Infof("serving %s on %q, refresh every %s", hw.dev, bridge.TopicPrefix, hw.dev.CycleDuration())
	return runAll(ctx, hw.dev.Run, bridge.Run)
}

// runAll runs every fn until ctx is canceled or one of them fails.
func runAll(ctx context.Context, fns ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(fns))
	for _, fn := range fns {
		go func(fn func(context.Context) error) {
			errCh <- fn(ctx)
		}(fn)
	}

	var errs []error
	for range fns {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
			cancel()
		}
	}
	if len(errs) == 0 {
		glog.Info("stopped")
	}
	return errors.Join(errs...)
}
