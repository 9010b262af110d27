//go:build !rp2040 && !rp2350

package platform

import (
	"strconv"
	"sync"

	"camkernel-go/drivers/tcm8230"
)

// Pattern returns the RGB565 components of pixel (x, y) in the given frame.
type Pattern func(x, y, frame int) (r5, g6, b5 uint8)

// ColorBars is the classic eight-bar test card with 20-pixel-wide bars.
func ColorBars(x, _, _ int) (uint8, uint8, uint8) {
	bars := [8][3]uint8{
		{31, 63, 31}, // white
		{31, 63, 0},  // yellow
		{0, 63, 31},  // cyan
		{0, 63, 0},   // green
		{31, 0, 31},  // magenta
		{31, 0, 0},   // red
		{0, 0, 31},   // blue
		{0, 0, 0},    // black
	}
	b := bars[(x/20)&7]
	return b[0], b[1], b[2]
}

// Solid returns a single-colour pattern.
func Solid(r5, g6, b5 uint8) Pattern {
	return func(int, int, int) (uint8, uint8, uint8) { return r5, g6, b5 }
}

// I2CError is returned by simulated I2C transfers.
type I2CError struct {
	Addr uint16
}

func (e *I2CError) Error() string {
	return "i2c: nack from 0x" + strconv.FormatUint(uint64(e.Addr), 16)
}
func (e *I2CError) Nack() bool { return true }

// SimCamera models a TCM8230 on the host: an I2C register file, an
// active-low reset line, VSYNC/HSYNC framing and a line capture DMA. It only
// streams once reset is released, the pixel clock runs and the format
// register has been written.
//
// Each VSYNC poll during vertical blanking counts as elapsed time; after
// BlankPolls polls the sensor starts a frame and every Done poll completes
// one scanline.
type SimCamera struct {
	mu sync.Mutex

	width, height int
	pattern       Pattern
	BlankPolls    int

	regs      [256]byte
	formatSet bool
	reset     bool // asserted
	clock     FakeClock
	nackNext  int
	writes    []tcm8230.RegWrite

	active bool
	polls  int
	row    int
	frame  int
	armed  []uint16
	done   bool
}

// NewSimCamera returns a simulated sensor producing width x height frames.
func NewSimCamera(width, height int, p Pattern) *SimCamera {
	if p == nil {
		p = ColorBars
	}
	return &SimCamera{
		width:      width,
		height:     height,
		pattern:    p,
		BlankPolls: 2,
		reset:      true,
	}
}

func (c *SimCamera) streaming() bool {
	return !c.reset && c.formatSet && c.clock.Hz() != 0
}

// ---- I2C ----

func (c *SimCamera) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nackNext > 0 {
		c.nackNext--
		return &I2CError{Addr: addr}
	}
	if addr != tcm8230.Address || len(w) == 0 {
		return &I2CError{Addr: addr}
	}
	reg := int(w[0])
	for _, v := range w[1:] {
		c.regs[reg&0xFF] = v
		c.writes = append(c.writes, tcm8230.RegWrite{Reg: byte(reg), Value: v})
		if reg == tcm8230.RegFormat {
			c.formatSet = true
		}
		reg++
	}
	for i := range r {
		r[i] = c.regs[(reg+i)&0xFF]
	}
	return nil
}

// NackNext makes the next n transfers fail with a NACK.
func (c *SimCamera) NackNext(n int) {
	c.mu.Lock()
	c.nackNext = n
	c.mu.Unlock()
}

// Writes returns every register write received so far.
func (c *SimCamera) Writes() []tcm8230.RegWrite {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tcm8230.RegWrite(nil), c.writes...)
}

// Frames returns the number of frames fully streamed.
func (c *SimCamera) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// ---- control and sync lines ----

type simReset struct{ c *SimCamera }

func (p simReset) Set(level bool) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.c.reset = !level
	if p.c.reset {
		p.c.regs = [256]byte{}
		p.c.formatSet = false
		p.c.active = false
		p.c.polls = 0
		p.c.row = 0
	}
}

func (p simReset) Get() bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return !p.c.reset
}

type simSync struct {
	c     *SimCamera
	vsync bool
}

func (simSync) Set(bool) {}

func (p simSync) Get() bool {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.streaming() {
		return false
	}
	if !p.vsync {
		return c.active
	}
	if c.active {
		return false
	}
	c.polls++
	if c.polls > c.BlankPolls {
		c.active = true
		c.row = 0
		return false
	}
	return true
}

func (c *SimCamera) ResetPin() Pin     { return simReset{c} }
func (c *SimCamera) VSyncPin() Pin     { return simSync{c: c, vsync: true} }
func (c *SimCamera) HSyncPin() Pin     { return simSync{c: c} }
func (c *SimCamera) Clock() *FakeClock { return &c.clock }

// ---- capture ----

func (c *SimCamera) Configure() error { return nil }

func (c *SimCamera) Arm(buf []uint16) {
	c.mu.Lock()
	c.armed = buf
	c.done = false
	c.mu.Unlock()
}

func (c *SimCamera) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return true
	}
	if c.armed == nil || !c.streaming() || !c.active {
		return false
	}
	n := len(c.armed)
	if n > c.width {
		n = c.width
	}
	for x := 0; x < n; x++ {
		r, g, b := c.pattern(x, c.row, c.frame)
		v := uint16(r&0x1F)<<11 | uint16(g&0x3F)<<5 | uint16(b&0x1F)
		// High byte arrives first on the bus, so it lands in the low byte.
		c.armed[x] = v>>8 | v<<8
	}
	c.armed = nil
	c.done = true
	c.row++
	if c.row == c.height {
		c.active = false
		c.polls = 0
		c.frame++
	}
	return true
}
