package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/glog"
	"github.com/urfave/cli"
	"periph.io/x/devices/v3/tlc5940/gray12"
)

var viewCommand = cli.Command{
	Name:  "view",
	Usage: "Show channel levels in the terminal, optionally animated",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "pattern",
			Usage: "Animation: none, chase, fade, ramp",
			Value: "chase",
		},
		cli.DurationFlag{
			Name:  "interval",
			Usage: "Time between animation steps",
			Value: 50 * time.Millisecond,
		},
	},
	Action: runView,
}

func runView(c *cli.Context) error {
	p, err := lookupPattern(c.String("pattern"))
	if err != nil {
		return err
	}
	interval := c.Duration("interval")
	if interval <= 0 {
		return errors.New("interval must be positive")
	}

	hw, err := openHardware(c)
	if err != nil {
		return err
	}
	defer hw.Close()
	stop := hw.refresh()
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	quit := make(chan struct{})
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					close(quit)
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	t := time.NewTicker(interval)
	defer t.Stop()
	for n := 0; ; n++ {
		if err := step(hw.dev, p, n); err != nil {
			return err
		}
		drawLevels(screen, hw)
		select {
		case <-quit:
			glog.V(1).Infof("view stopped after %d steps", n)
			return nil
		case <-t.C:
		}
	}
}

// drawLevels draws one horizontal bar per channel.
func drawLevels(s tcell.Screen, hw *hardware) {
	s.Clear()
	w, h := s.Size()
	title := fmt.Sprintf("%s  cycle %s  (q to quit)", hw.dev, hw.dev.CycleDuration())
	drawText(s, 0, 0, tcell.StyleDefault.Bold(true), title)

	barStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	width := w - 12
	for ch := 0; ch < hw.dev.Channels() && ch+1 < h; ch++ {
		v := hw.level(ch)
		drawText(s, 0, ch+1, tcell.StyleDefault, fmt.Sprintf("%3d %4d", ch, v))
		if width <= 0 {
			continue
		}
		n := int(v) * width / gray12.Max
		for x := 0; x < n; x++ {
			s.SetContent(10+x, ch+1, '█', nil, barStyle)
		}
	}
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
