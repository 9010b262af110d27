package timex

import (
	"time"

	"camkernel-go/x/mathx"
)

// TicksFromMs converts a delay in milliseconds to a whole number of scheduler
// ticks of tickUS microseconds, rounding up. Any non-zero delay is at least
// one tick; zero stays zero.
func TicksFromMs(ms, tickUS uint32) int {
	if ms == 0 {
		return 0
	}
	if tickUS == 0 {
		tickUS = 1000
	}
	t := mathx.CeilDiv(uint64(ms)*1000, uint64(tickUS))
	if t == 0 {
		t = 1
	}
	return int(t)
}

// TickPeriod returns the duration of a tick of tickUS microseconds.
func TickPeriod(tickUS uint32) time.Duration {
	return time.Duration(tickUS) * time.Microsecond
}
