package main

import (
	"errors"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/urfave/cli"
	"periph.io/x/devices/v3/tlc5940"
	"periph.io/x/devices/v3/tlc5940/tlcmqtt"
)

var shellCommand = cli.Command{
	Name:   "shell",
	Usage:  "Set channels interactively",
	Action: runShell,
}

func runShell(c *cli.Context) error {
	hw, err := openHardware(c)
	if err != nil {
		return err
	}
	defer hw.Close()

	stop := hw.refresh()
	defer stop()

	sh := ishell.New()
	sh.Printf("%s, %d channels\n", hw.dev, hw.dev.Channels())
	addShellCmds(sh, hw)
	sh.Run()
	return nil
}

func addShellCmds(sh *ishell.Shell, hw *hardware) {
	dev := hw.dev
	sh.AddCmd(&ishell.Cmd{
		Name: "set",
		Help: "set <channel> <value>: set a channel (0-4095) and update",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errors.New("usage: set <channel> <value>"))
				return
			}
			ch, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			v, err := tlcmqtt.ParseValue(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err := dev.Set(ch, v); err != nil {
				c.Err(err)
				return
			}
			report(c, update(dev))
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "get",
		Help: "get [channel]: print one or every channel",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				for ch := 0; ch < dev.Channels(); ch++ {
					c.Printf("%3d: %4d (out %4d)\n", ch, value(dev, ch), hw.level(ch))
				}
				return
			}
			ch, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			v, err := dev.Get(ch)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(v)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "setall",
		Help: "setall <value>: set every channel and update",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("usage: setall <value>"))
				return
			}
			v, err := tlcmqtt.ParseValue(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			dev.SetAll(v)
			report(c, update(dev))
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "clear",
		Help: "turn every channel off",
		Func: func(c *ishell.Context) {
			dev.Clear()
			report(c, update(dev))
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "update",
		Help: "shift and latch the current values",
		Func: func(c *ishell.Context) {
			report(c, update(dev))
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "dump",
		Help: "print the packed grayscale data",
		Func: func(c *ishell.Context) {
			c.Printf("% X\n", dev.Buffer())
		},
	})
}

// update shifts until nothing is pending.
func update(dev *tlc5940.Dev) error {
	for {
		pending, err := dev.Update()
		if err != nil || !pending {
			return err
		}
	}
}

func report(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
	}
}

func value(dev *tlc5940.Dev, ch int) uint16 {
	v, _ := dev.Get(ch)
	return v
}
