//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin is an in-memory digital line for host builds and tests.
type FakePin struct {
	mu      sync.RWMutex
	level   bool
	toggles int
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	if p.level != level {
		p.toggles++
	}
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

// Toggles returns the number of level changes seen so far.
func (p *FakePin) Toggles() int {
	p.mu.RLock()
	n := p.toggles
	p.mu.RUnlock()
	return n
}

// ------------------------- clock / watchdog (host) ---------------------------

// FakeClock records the requested pixel clock.
type FakeClock struct {
	hz atomic.Uint32
}

func (c *FakeClock) Start(hz uint32) error { c.hz.Store(hz); return nil }
func (c *FakeClock) Stop()                 { c.hz.Store(0) }
func (c *FakeClock) Hz() uint32            { return c.hz.Load() }

// FakeWatchdog counts feeds.
type FakeWatchdog struct {
	fed atomic.Uint64
}

func (w *FakeWatchdog) Feed()       { w.fed.Add(1) }
func (w *FakeWatchdog) Fed() uint64 { return w.fed.Load() }

// ----------------------------- UART (host) -----------------------------------

// StdoutPort writes to standard output and never receives.
type StdoutPort struct{}

func (StdoutPort) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (StdoutPort) RecvSomeContext(ctx context.Context, _ []byte) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

// ----------------------------- board (host) ----------------------------------

// NewSimBoard wires a simulated camera and fake peripherals into a Board.
func NewSimBoard(cam *SimCamera) *Board {
	leds := []Pin{&FakePin{}, &FakePin{}, &FakePin{}}
	return &Board{
		Name:         "sim",
		I2C:          cam,
		Camera:       CameraLines{Reset: cam.ResetPin(), VSync: cam.VSyncPin(), HSync: cam.HSyncPin()},
		Capture:      cam,
		PixelClock:   cam.Clock(),
		Watchdog:     &FakeWatchdog{},
		FaultLED:     &FakePin{},
		HeartbeatLED: &FakePin{},
		CameraLEDs:   leds,
		Serial:       NewSerialLink(64, 256),
	}
}

// Default returns a simulated QQVGA board streaming colour bars.
func Default() *Board {
	return NewSimBoard(NewSimCamera(160, 120, ColorBars))
}

// StartSerial starts the serial pumps with output on stdout.
func (b *Board) StartSerial(ctx context.Context, _ uint32) {
	b.Serial.Start(ctx, StdoutPort{})
}
