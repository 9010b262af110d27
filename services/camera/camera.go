// Package camera runs the TCM8230 capture pipeline as a cooperative task:
// sensor bring-up and register programming, frame and line synchronisation,
// and per-pixel preprocessing of every captured scanline into a frame of
// packed attribute words.
package camera

import (
	"camkernel-go/bus"
	"camkernel-go/drivers/tcm8230"
	"camkernel-go/errcode"
	"camkernel-go/kernel"
	"camkernel-go/platform"
	"camkernel-go/services/i2c"
	"camkernel-go/types"
	"camkernel-go/x/mathx"
	"camkernel-go/x/timex"
)

var (
	TopicState = bus.T("camera", "state")
	TopicFrame = bus.T("camera", "frame")
)

// State labels of the camera task.
const (
	StateInit = iota
	StatePixelClock
	StateReleaseReset
	StateProgram
	StateReadyWait
	StateFrameSync
	StateLine
	StateEndOfFrame
)

// Config controls the pipeline. Zero fields take defaults.
type Config struct {
	Width, Height int     // default 160x120
	Mode          LumMode // default LumWeighted
	Address       uint8   // default tcm8230.Address
	// InitRepeat runs the register sequence this many times, 1 to 16.
	InitRepeat    int
	GradientNoise uint8  // default DefaultGradientNoise
	PixelClockHz  uint32 // default 8 MHz
	TickUS        uint32 // scheduler tick, default 1000
}

func (c *Config) defaults() {
	if c.Width == 0 {
		c.Width = 160
	}
	if c.Height == 0 {
		c.Height = 120
	}
	if c.Address == 0 {
		c.Address = tcm8230.Address
	}
	c.InitRepeat = mathx.Clamp(c.InitRepeat, 1, maxInitRepeat)
	if c.GradientNoise == 0 {
		c.GradientNoise = DefaultGradientNoise
	}
	if c.PixelClockHz == 0 {
		c.PixelClockHz = 8_000_000
	}
	if c.TickUS == 0 {
		c.TickUS = 1000
	}
}

const maxInitRepeat = 16

// Bring-up delays in milliseconds.
const (
	resetMs    = 100
	clockMs    = 10
	registerMs = 5
)

// Camera is the capture task. Its frame buffer, counters and ready flag are
// read by other tasks between invocations.
type Camera struct {
	cfg     Config
	lines   platform.CameraLines
	capture platform.Capture
	clock   platform.ClockOut
	i2c     *i2c.Shared
	conn    *bus.Connection

	resetTicks, clockTicks, regTicks int

	seq    []tcm8230.RegWrite
	step   int
	repeat int

	// Single line buffer: the DMA is re-armed on it before the previous line
	// is processed.
	line []uint16
	fb   *FrameBuffer
	pre  Preprocessor

	lineCount  int
	frames     uint32
	avg        uint8
	ready      bool
	commErrors uint32
}

// New builds the camera task on board b. conn may be nil.
func New(b *platform.Board, sh *i2c.Shared, conn *bus.Connection, cfg Config) (*Camera, error) {
	cfg.defaults()
	size, ok := tcm8230.SizeFor(cfg.Width, cfg.Height)
	if !ok {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "camera.new", Err: tcm8230.ErrSize}
	}
	return &Camera{
		cfg:        cfg,
		lines:      b.Camera,
		capture:    b.Capture,
		clock:      b.PixelClock,
		i2c:        sh,
		conn:       conn,
		resetTicks: timex.TicksFromMs(resetMs, cfg.TickUS),
		clockTicks: timex.TicksFromMs(clockMs, cfg.TickUS),
		regTicks:   timex.TicksFromMs(registerMs, cfg.TickUS),
		seq:        tcm8230.InitSequence(size),
		line:       make([]uint16, cfg.Width),
		fb:         NewFrameBuffer(cfg.Width, cfg.Height),
		pre:        Preprocessor{Mode: cfg.Mode, Noise: cfg.GradientNoise},
	}, nil
}

func (c *Camera) Step(ctx *kernel.Context) {
	switch ctx.State {
	case StateInit:
		c.lines.Reset.Set(false)
		c.clock.Stop()
		if err := c.capture.Configure(); err != nil {
			println("[camera] capture configure:", err.Error())
			ctx.Set(StateInit, c.resetTicks)
			return
		}
		c.frames = 0
		c.ready = false
		c.step, c.repeat = 0, 0
		ctx.Set(StatePixelClock, c.resetTicks)

	case StatePixelClock:
		if err := c.clock.Start(c.cfg.PixelClockHz); err != nil {
			println("[camera] pixel clock:", err.Error())
			ctx.Set(StateInit, c.resetTicks)
			return
		}
		ctx.Set(StateReleaseReset, c.clockTicks)

	case StateReleaseReset:
		c.lines.Reset.Set(true)
		ctx.Set(StateProgram, c.resetTicks)

	case StateProgram:
		if !c.i2c.Idle() {
			ctx.Set(StateProgram, 1)
			return
		}
		c.noteCommError()
		w := c.seq[c.step]
		if err := c.i2c.Write(c.cfg.Address, w.Reg, w.Value); err != nil {
			ctx.Set(StateProgram, 1)
			return
		}
		c.step++
		if c.step == len(c.seq) {
			c.step = 0
			c.repeat++
			if c.repeat >= c.cfg.InitRepeat {
				ctx.Set(StateReadyWait, c.regTicks)
				return
			}
		}
		ctx.Set(StateProgram, c.regTicks)

	case StateReadyWait:
		if !c.ready {
			// Wait for the last register write to complete.
			if !c.i2c.Idle() {
				ctx.Set(StateReadyWait, 1)
				return
			}
			c.noteCommError()
			c.ready = true
			println("[camera] ready")
			c.publish(TopicState, types.CameraState{Ready: true, CommErrors: c.commErrors})
		}
		if c.lines.VSync.Get() && !c.lines.HSync.Get() {
			ctx.Set(StateFrameSync, 1)
			return
		}
		ctx.Set(StateReadyWait, 1)

	case StateFrameSync:
		if c.lines.VSync.Get() {
			ctx.Set(StateFrameSync, 1)
			return
		}
		c.capture.Arm(c.line)
		c.lineCount = 0
		c.pre.Reset()
		ctx.Set(StateLine, 1)

	case StateLine:
		if !c.capture.Done() {
			ctx.Set(StateLine, 1)
			return
		}
		c.lineCount++
		c.capture.Arm(c.line)
		c.pre.Line(c.fb, c.lineCount-1, c.line)
		if c.lineCount >= c.cfg.Height {
			ctx.Set(StateEndOfFrame, 1)
			return
		}
		ctx.Set(StateLine, 1)

	case StateEndOfFrame:
		c.frames++
		c.avg = c.pre.Average(c.cfg.Width * c.cfg.Height)
		c.pre.Reset()
		c.publish(TopicFrame, types.FrameStats{
			Frame:        c.frames,
			AvgLuminance: c.avg,
			Width:        c.cfg.Width,
			Height:       c.cfg.Height,
			Centre:       uint32(c.fb.At(c.cfg.Width/2, c.cfg.Height/2)),
		})
		ctx.Set(StateFrameSync, 1)

	default:
		ctx.Set(StateInit, 1)
	}
}

func (c *Camera) noteCommError() {
	if c.i2c.Status().CommError {
		c.commErrors++
	}
}

func (c *Camera) publish(t bus.Topic, payload any) {
	if c.conn == nil {
		return
	}
	c.conn.Publish(&bus.Message{Topic: t, Payload: payload, Retained: true})
}

// Ready reports whether sensor programming has finished.
func (c *Camera) Ready() bool { return c.ready }

// Frame returns the live frame buffer.
func (c *Camera) Frame() *FrameBuffer { return c.fb }

// FrameCount returns the number of completed frames since bring-up.
func (c *Camera) FrameCount() uint32 { return c.frames }

// AverageLuminance returns the mean luminance of the last completed frame.
func (c *Camera) AverageLuminance() uint8 { return c.avg }

// LineCount returns the number of lines captured in the current frame.
func (c *Camera) LineCount() int { return c.lineCount }

// Histogram returns the luminance histogram of the frame in progress.
func (c *Camera) Histogram() [HistogramBins]uint32 { return c.pre.Histogram() }

// LuminanceSum returns the luminance sum of the frame in progress.
func (c *Camera) LuminanceSum() uint32 { return c.pre.Sum() }

// CommErrors counts register writes that were not acknowledged.
func (c *Camera) CommErrors() uint32 { return c.commErrors }
