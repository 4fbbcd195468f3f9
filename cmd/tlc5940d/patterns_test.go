package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/tlc5940"
	"periph.io/x/devices/v3/tlc5940/gray12"
	"periph.io/x/devices/v3/tlc5940/tlcsim"
)

func newSimDev(t *testing.T) (*tlc5940.Dev, *tlcsim.Chain) {
	t.Helper()
	chain := tlcsim.New(1)
	dev, err := tlc5940.NewSPI(chain, chain.XLAT(), chain.BLANK(), chain.GSCLK(), nil)
	require.NoError(t, err)
	return dev, chain
}

func TestLookupPattern(t *testing.T) {
	for name := range patterns {
		_, err := lookupPattern(name)
		assert.NoError(t, err, name)
	}
	_, err := lookupPattern("strobe")
	assert.Error(t, err)
}

func TestChase(t *testing.T) {
	buf := gray12.New(1)
	chase(buf, 17)

	want := map[int]uint16{1: gray12.Max, 0: gray12.Max / 4, 15: gray12.Max / 16}
	for ch := 0; ch < buf.Channels(); ch++ {
		assert.Equal(t, want[ch], buf.Get(ch), "channel %d", ch)
	}
}

func TestFade(t *testing.T) {
	tests := []struct {
		n    int
		want uint16
	}{
		{0, 0},
		{63, gray12.Max},
		{64, gray12.Max}, // top of the ramp is held for one step
		{127, 0},
	}
	for _, tt := range tests {
		buf := gray12.New(1)
		fade(buf, tt.n)
		assert.Equal(t, tt.want, buf.Get(3), "step %d", tt.n)
	}
}

func TestRamp(t *testing.T) {
	buf := gray12.New(1)
	ramp(buf, 0)
	assert.Equal(t, uint16(0), buf.Get(0))
	assert.Equal(t, uint16(gray12.Max), buf.Get(15))

	ramp(buf, 1)
	assert.Equal(t, uint16(0), buf.Get(15))
}

func TestStepReplacesFrame(t *testing.T) {
	dev, chain := newSimDev(t)
	dev.SetAll(gray12.Max)

	require.NoError(t, step(dev, chase, 0))
	want := map[int]uint16{0: gray12.Max, 15: gray12.Max / 4, 14: gray12.Max / 16}
	for ch := 0; ch < dev.Channels(); ch++ {
		assert.Equal(t, want[ch], chain.Value(ch), "channel %d", ch)
	}
}

func TestStepNoPattern(t *testing.T) {
	dev, chain := newSimDev(t)
	require.NoError(t, dev.Set(3, 100))
	assert.Equal(t, uint16(0), chain.Value(3))

	require.NoError(t, step(dev, nil, 0))
	assert.Equal(t, uint16(100), chain.Value(3))
}

// frameShifter records every shifted frame.
type frameShifter struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *frameShifter) Begin() error {
	s.mu.Lock()
	s.frames = append(s.frames, nil)
	s.mu.Unlock()
	return nil
}

func (s *frameShifter) ShiftByte(b byte) error {
	s.mu.Lock()
	last := len(s.frames) - 1
	s.frames[last] = append(s.frames[last], b)
	s.mu.Unlock()
	return nil
}

func TestStepDuringRefresh(t *testing.T) {
	chain := tlcsim.New(1)
	clk, err := tlc5940.NewPWMClock(chain.GSCLK(), tlc5940.DefaultTickHz)
	require.NoError(t, err)
	s := &frameShifter{}
	dev, err := tlc5940.New(s, clk, chain.XLAT(), chain.BLANK(), &tlc5940.Opts{Refresh: 100 * time.Microsecond})
	require.NoError(t, err)
	require.NoError(t, step(dev, chase, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- dev.Run(ctx) }()
	for n := 1; n < 200; n++ {
		require.NoError(t, step(dev, chase, n))
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	s.mu.Lock()
	defer s.mu.Unlock()
	// The first frame is the initial value shifted by New.
	require.Greater(t, len(s.frames), 200)
	for i, f := range s.frames[1:] {
		require.Len(t, f, gray12.BytesPerChip)
		buf := &gray12.Buffer{Pix: f, Chips: 1}
		lit := 0
		for ch := 0; ch < buf.Channels(); ch++ {
			if buf.Get(ch) != 0 {
				lit++
			}
		}
		assert.Equal(t, 3, lit, "frame %d", i+1)
	}
}

func TestRunAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wait := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.NoError(t, runAll(ctx, wait, wait))

	boom := errors.New("boom")
	err := runAll(context.Background(), wait, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
