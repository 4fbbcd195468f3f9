// Command tlc5940d drives a chain of TLC5940 LED drivers.
//
// It can bridge the chain to MQTT, offer an interactive shell or show the
// channel values in the terminal. With --sim the chain is simulated and no
// hardware is needed.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "tlc5940d"
	app.Usage = "drive a chain of TLC5940 LED drivers"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "chips",
			Usage: "Number of daisy-chained chips",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "spi",
			Usage: "SPI port name (empty for default)",
		},
		cli.IntFlag{
			Name:  "hz",
			Usage: "SPI clock in Hz (0 for default)",
		},
		cli.StringFlag{
			Name:  "xlat",
			Usage: "XLAT pin name",
			Value: "GPIO25",
		},
		cli.StringFlag{
			Name:  "blank",
			Usage: "BLANK pin name",
			Value: "GPIO24",
		},
		cli.StringFlag{
			Name:  "gsclk",
			Usage: "GSCLK pin name, must support PWM",
			Value: "GPIO18",
		},
		cli.BoolFlag{
			Name:  "sim",
			Usage: "Use a simulated chain instead of hardware",
		},
		cli.IntFlag{
			Name:  "verbose",
			Usage: "glog verbosity level",
		},
	}
	app.Before = setupLogging
	app.Commands = []cli.Command{
		serveCommand,
		shellCommand,
		viewCommand,
	}

	err := app.Run(os.Args)
	glog.Flush()
	if err != nil {
		glog.Errorf("tlc5940d: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}

// setupLogging routes glog to stderr with the requested verbosity.
func setupLogging(c *cli.Context) error {
	if err := flag.CommandLine.Parse(nil); err != nil {
		return err
	}
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	return flag.Set("v", strconv.Itoa(c.GlobalInt("verbose")))
}
