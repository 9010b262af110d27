package i2c

import (
	"camkernel-go/errcode"
	"camkernel-go/kernel"

	"tinygo.org/x/drivers"
)

// Task states.
const (
	StateInit = iota
	StateSettle
	StateDispatch
	StateSend
	StateReceive
	StateDone
)

// Task completes descriptor requests on a drivers.I2C bus, one step per
// phase: dispatch, transfer, tidy.
type Task struct {
	sh  *Shared
	bus drivers.I2C

	settle int // ticks
	wbuf   [MaxData + 1]byte

	LastErr error
}

// NewTask returns the I2C task for sh. settleTicks is how long the bus is
// held busy after start-up.
func NewTask(sh *Shared, bus drivers.I2C, settleTicks int) *Task {
	return &Task{sh: sh, bus: bus, settle: settleTicks}
}

func (t *Task) Step(ctx *kernel.Context) {
	d := &t.sh.d
	switch ctx.State {
	case StateInit:
		// Request bits survive a restart and are served after the settle.
		t.sh.up = false
		d.Status.Busy = true
		d.Status.CommError = false
		ctx.Set(StateSettle, t.settle)

	case StateSettle:
		t.sh.up = true
		d.Status.Busy = false
		println("[i2c] ready")
		ctx.Set(StateDispatch, 0)

	case StateDispatch:
		switch {
		case d.Status.ReadRequested:
			d.Status.Busy = true
			d.Status.CommError = false
			ctx.Set(StateReceive, 0)
		case d.Status.SendRequested:
			d.Status.Busy = true
			d.Status.CommError = false
			ctx.Set(StateSend, 0)
		default:
			ctx.Set(StateDispatch, 1)
		}

	case StateSend:
		n := int(d.Count)
		t.wbuf[0] = d.RegAddr
		copy(t.wbuf[1:], d.TX[:n])
		t.finish(t.bus.Tx(uint16(d.SlaveAddr), t.wbuf[:n+1], nil))
		ctx.Set(StateDone, 0)

	case StateReceive:
		t.wbuf[0] = d.RegAddr
		t.finish(t.bus.Tx(uint16(d.SlaveAddr), t.wbuf[:1], d.RX[:d.Count]))
		ctx.Set(StateDone, 0)

	case StateDone:
		d.Status.Busy = false
		d.Status.SendRequested = false
		d.Status.ReadRequested = false
		ctx.Set(StateDispatch, 1)

	default:
		ctx.Set(StateInit, 1)
	}
}

func (t *Task) finish(err error) {
	if err == nil {
		return
	}
	t.LastErr = errcode.Wrap("i2c.tx", err)
	t.sh.d.Status.CommError = true
}
