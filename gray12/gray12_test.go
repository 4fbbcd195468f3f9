package gray12

import (
	"testing"

	"periph.io/x/conn/v3/display"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		chips        int
		wantLen      int
		wantChannels int
	}{
		{"one chip", 1, 24, 16},
		{"two chips", 2, 48, 32},
		{"eight chips", 8, 192, 128},
		{"zero chips", 0, 0, 0},
		{"negative chips", -3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.chips)
			if len(b.Pix) != tt.wantLen {
				t.Errorf("len(Pix) = %d, want %d", len(b.Pix), tt.wantLen)
			}
			if got := b.Channels(); got != tt.wantChannels {
				t.Errorf("Channels() = %d, want %d", got, tt.wantChannels)
			}
		})
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		chips, channel, want int
	}{
		{1, 0, 15},
		{1, 15, 0},
		{1, 5, 10},
		{2, 0, 31},
		{2, 16, 15},
		{2, 31, 0},
	}

	for _, tt := range tests {
		if got := Reverse(tt.chips, tt.channel); got != tt.want {
			t.Errorf("Reverse(%d, %d) = %d, want %d", tt.chips, tt.channel, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		r      int
		offset int
		odd    bool
	}{
		{0, 0, false},
		{1, 1, true},
		{2, 3, false},
		{3, 4, true},
		{10, 15, false},
		{15, 22, true},
		{31, 46, true},
	}

	for _, tt := range tests {
		offset, odd := Offset(tt.r)
		if offset != tt.offset || odd != tt.odd {
			t.Errorf("Offset(%d) = (%d, %v), want (%d, %v)", tt.r, offset, odd, tt.offset, tt.odd)
		}
	}
}

func TestPackOddLayout(t *testing.T) {
	b := New(1)
	b.Pix[22] = 0x50

	// Channel 0 is reversed position 15.
	b.Set(0, 0xABC)

	if b.Pix[22] != 0x5A {
		t.Errorf("Pix[22] = 0x%02X, want 0x5A", b.Pix[22])
	}
	if b.Pix[23] != 0xBC {
		t.Errorf("Pix[23] = 0x%02X, want 0xBC", b.Pix[23])
	}
}

func TestPackEvenLayout(t *testing.T) {
	b := New(1)
	b.Pix[1] = 0x07

	// Channel 15 is reversed position 0.
	b.Set(15, 0x123)

	if b.Pix[0] != 0x12 {
		t.Errorf("Pix[0] = 0x%02X, want 0x12", b.Pix[0])
	}
	if b.Pix[1] != 0x37 {
		t.Errorf("Pix[1] = 0x%02X, want 0x37", b.Pix[1])
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	values := []uint16{0, 1, 0x0F, 0xF0, 0x800, 0xABC, 0x555, 0xAAA, Max}

	for _, chips := range []int{1, 2, 3} {
		b := New(chips)
		for c := 0; c < b.Channels(); c++ {
			for _, v := range values {
				// Fill neighbors with a sentinel so clobbered nibbles show up.
				b.SetAll(0xFFF)
				b.Set(c, v)
				if got := b.Get(c); got != v {
					t.Fatalf("chips=%d: Get(%d) = 0x%03X after Set 0x%03X", chips, c, got, v)
				}
				for _, n := range []int{c - 1, c + 1} {
					if n < 0 || n >= b.Channels() {
						continue
					}
					if got := b.Get(n); got != 0xFFF {
						t.Fatalf("chips=%d: neighbor %d of %d = 0x%03X, want 0xFFF", chips, n, c, got)
					}
				}
			}
		}
	}
}

func TestSetPreservesNeighbors(t *testing.T) {
	b := New(1)
	for c := 0; c < b.Channels(); c++ {
		b.Set(c, uint16(c*0x111)&Max)
	}
	b.Set(7, 0)
	for c := 0; c < b.Channels(); c++ {
		want := uint16(c*0x111) & Max
		if c == 7 {
			want = 0
		}
		if got := b.Get(c); got != want {
			t.Errorf("Get(%d) = 0x%03X, want 0x%03X", c, got, want)
		}
	}
}

func TestSetTruncates(t *testing.T) {
	b := New(1)
	b.Set(3, 0xF123)
	if got := b.Get(3); got != 0x123 {
		t.Errorf("Get(3) = 0x%03X, want 0x123", got)
	}
}

func TestSetAll(t *testing.T) {
	tests := []struct {
		name string
		v    uint16
	}{
		{"zero", 0},
		{"max", Max},
		{"pattern", 0xABC},
		{"truncated", 0x1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(2)
			b.Set(4, 0x777)
			b.SetAll(tt.v)
			want := tt.v & Max
			for c := 0; c < b.Channels(); c++ {
				if got := b.Get(c); got != want {
					t.Errorf("Get(%d) = 0x%03X, want 0x%03X", c, got, want)
				}
			}
			if len(b.Pix) != 2*BytesPerChip {
				t.Errorf("len(Pix) = %d, want %d", len(b.Pix), 2*BytesPerChip)
			}
		})
	}
}

func TestSetAllMatchesSet(t *testing.T) {
	a, b := New(2), New(2)
	a.SetAll(0x9C3)
	for c := 0; c < b.Channels(); c++ {
		b.Set(c, 0x9C3)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestClear(t *testing.T) {
	b := New(1)
	b.SetAll(Max)
	b.Clear()
	for i, p := range b.Pix {
		if p != 0 {
			t.Errorf("Pix[%d] = 0x%02X, want 0", i, p)
		}
	}
}

func TestPattern(t *testing.T) {
	got := Pattern(0xABC)
	want := [3]byte{0xAB, 0xCA, 0xBC}
	if got != want {
		t.Errorf("Pattern(0xABC) = % X, want % X", got, want)
	}
}

func TestFromIntensity(t *testing.T) {
	tests := []struct {
		in   display.Intensity
		want uint16
	}{
		{0, 0},
		{255, Max},
		{0x80, 0x808},
		{1, 0x010},
	}

	for _, tt := range tests {
		if got := FromIntensity(tt.in); got != tt.want {
			t.Errorf("FromIntensity(%d) = 0x%03X, want 0x%03X", tt.in, got, tt.want)
		}
	}
}
