// Package indicator drives the board LEDs: a heartbeat blink and the camera
// illumination/eye LEDs with software PWM.
package indicator

import (
	"camkernel-go/errcode"
	"camkernel-go/kernel"
	"camkernel-go/platform"
	"camkernel-go/x/mathx"
)

// Heartbeat toggles a pin every period.
type Heartbeat struct {
	pin    platform.Pin
	period int
	on     bool
}

func NewHeartbeat(pin platform.Pin, periodTicks int) *Heartbeat {
	return &Heartbeat{pin: pin, period: mathx.Max(periodTicks, 1)}
}

func (h *Heartbeat) Step(ctx *kernel.Context) {
	h.on = !h.on
	h.pin.Set(h.on)
	ctx.Set(0, h.period)
}

// ReadyFlag is satisfied by the camera task.
type ReadyFlag interface {
	Ready() bool
}

const (
	// Intensity levels 0..MaxLevel; add Blink to flash at that level.
	MaxLevel = 6
	Blink    = 8

	blinkTicks = 3000
)

// CameraLEDs states.
const (
	StateInit = iota
	StateWaitReady
	StateDrive
)

// CameraLEDs drives a set of LEDs once the camera is ready. Each LED has a
// level: the low three bits set the on-time out of MaxLevel PWM steps, and
// Blink turns it off during the first half of every blink cycle.
type CameraLEDs struct {
	leds    []platform.Pin
	levels  []uint8
	cam     ReadyFlag
	startup int

	pwm   int
	blink int
}

func NewCameraLEDs(leds []platform.Pin, cam ReadyFlag, startupTicks int) *CameraLEDs {
	return &CameraLEDs{
		leds:    leds,
		levels:  make([]uint8, len(leds)),
		cam:     cam,
		startup: startupTicks,
	}
}

// SetLevel sets the level of LED i.
func (c *CameraLEDs) SetLevel(i int, level uint8) error {
	if i < 0 || i >= len(c.levels) || level&7 > MaxLevel || level > Blink|MaxLevel {
		return errcode.InvalidParams
	}
	c.levels[i] = level
	return nil
}

func (c *CameraLEDs) Level(i int) uint8 { return c.levels[i] }

func (c *CameraLEDs) Step(ctx *kernel.Context) {
	switch ctx.State {
	case StateInit:
		for _, p := range c.leds {
			p.Set(false)
		}
		c.pwm, c.blink = 0, 0
		ctx.Set(StateWaitReady, c.startup)

	case StateWaitReady:
		if !c.cam.Ready() {
			ctx.Set(StateWaitReady, 1)
			return
		}
		ctx.Set(StateDrive, 1)

	case StateDrive:
		c.pwm = (c.pwm + 1) % MaxLevel
		c.blink = (c.blink + 1) % blinkTicks
		for i, p := range c.leds {
			p.Set(c.lit(c.levels[i]))
		}
		ctx.Set(StateDrive, 1)

	default:
		ctx.Set(StateInit, 1)
	}
}

func (c *CameraLEDs) lit(level uint8) bool {
	if level&Blink != 0 && c.blink < blinkTicks/2 {
		return false
	}
	return int(level&7) > c.pwm
}
