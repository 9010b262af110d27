package timex

import (
	"testing"
	"time"
)

func TestTicksFromMs(t *testing.T) {
	cases := []struct {
		ms, tick uint32
		want     int
	}{
		{0, 250, 0},
		{1, 250, 4},
		{5, 250, 20},
		{500, 1000, 500},
		{1, 3000, 1},
		{10, 0, 10},
		{1, 167, 6},
	}
	for _, tc := range cases {
		if got := TicksFromMs(tc.ms, tc.tick); got != tc.want {
			t.Errorf("TicksFromMs(%d,%d)=%d want %d", tc.ms, tc.tick, got, tc.want)
		}
	}
}

func TestTickPeriod(t *testing.T) {
	if TickPeriod(250) != 250*time.Microsecond {
		t.Fatal("tick period")
	}
}
