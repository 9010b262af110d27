// Package firmware assembles the task table: heartbeat, I2C master, UART,
// camera pipeline, camera LEDs and the frame statistics stream, in that
// execution order.
package firmware

import (
	"context"

	"camkernel-go/bus"
	"camkernel-go/kernel"
	"camkernel-go/platform"
	"camkernel-go/services/camera"
	"camkernel-go/services/config"
	"camkernel-go/services/i2c"
	"camkernel-go/services/indicator"
	"camkernel-go/services/serial"
	"camkernel-go/x/timex"
)

// System is a fully registered firmware image.
type System struct {
	Board  *platform.Board
	Config config.Config
	Bus    *bus.Bus
	Kernel *kernel.Kernel

	I2C    *i2c.Shared
	Camera *camera.Camera
	Serial *serial.Serial
	LEDs   *indicator.CameraLEDs
	Stream *serial.Stream
}

// Build registers every task on a new kernel. A nil ticks source means a
// periodic clock at the configured tick period.
func Build(board *platform.Board, cfg config.Config, ticks kernel.TickSource) (*System, error) {
	board.Normalize()
	if ticks == nil {
		ticks = kernel.NewClock(timex.TickPeriod(cfg.TickUS))
	}
	s := &System{
		Board:  board,
		Config: cfg,
		Bus:    bus.NewBus(4),
		Kernel: kernel.New(cfg.MaxTasks, ticks, board.Watchdog, board.FaultLED),
		I2C:    i2c.NewShared(),
	}

	cam, err := camera.New(board, s.I2C, s.Bus.NewConnection("camera"), camera.Config{
		Width:         cfg.Camera.Width,
		Height:        cfg.Camera.Height,
		Mode:          camera.LumMode(cfg.Camera.LuminanceMode),
		Address:       cfg.Camera.Address,
		InitRepeat:    cfg.Camera.InitRepeat,
		GradientNoise: cfg.Camera.GradientNoise,
		PixelClockHz:  cfg.Camera.PixelClockHz,
		TickUS:        cfg.TickUS,
	})
	if err != nil {
		return nil, err
	}
	s.Camera = cam
	s.Serial = serial.New(board.Serial, serial.Config{TXBuf: cfg.Serial.TXBuf, RXBuf: cfg.Serial.RXBuf})
	s.LEDs = indicator.NewCameraLEDs(board.CameraLEDs, cam, cfg.Ticks(cfg.LEDDelay))
	s.Stream = serial.NewStream(s.Bus.NewConnection("stream"), camera.TopicFrame, s.Serial)

	tasks := []kernel.Task{
		indicator.NewHeartbeat(board.HeartbeatLED, cfg.Ticks(cfg.Heartbeat.PeriodMs)),
		i2c.NewTask(s.I2C, board.I2C, cfg.Ticks(cfg.I2CSettle)),
		s.Serial,
		cam,
		s.LEDs,
		s.Stream,
	}
	for _, t := range tasks {
		if _, err := s.Kernel.Create(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run starts the serial pumps and the scheduler. It returns only when ctx
// is cancelled and never after a fatal overrun.
func (s *System) Run(ctx context.Context) {
	s.Board.StartSerial(ctx, s.Config.Serial.Baud)
	println("[firmware] running on", s.Board.Name, "with", s.Kernel.Len(), "tasks")
	s.Kernel.Run(ctx)
}
