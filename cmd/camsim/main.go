//go:build !rp2040 && !rp2350

// camsim runs the firmware task table against the simulated sensor in
// lockstep (one tick per pass) and prints each frame's statistics.
package main

import (
	"flag"
	"os"

	"camkernel-go/bus"
	"camkernel-go/kernel"
	"camkernel-go/platform"
	"camkernel-go/services/camera"
	"camkernel-go/services/config"
	"camkernel-go/services/firmware"
	"camkernel-go/services/serial"
	"camkernel-go/types"
)

func main() {
	frames := flag.Int("frames", 3, "frames to capture")
	pattern := flag.String("pattern", "bars", "test pattern: bars|white|black")
	mode := flag.Int("lum", 0, "luminance mode: 0 weighted, 1 red, 2 green")
	flag.Parse()

	p := platform.ColorBars
	switch *pattern {
	case "white":
		p = platform.Solid(31, 63, 31)
	case "black":
		p = platform.Solid(0, 0, 0)
	}

	cfg, err := config.Load("sim")
	if err != nil {
		println("[camsim] config:", err.Error())
		os.Exit(1)
	}
	cfg.Camera.LuminanceMode = uint8(*mode)

	sim := platform.NewSimCamera(cfg.Camera.Width, cfg.Camera.Height, p)
	sys, err := firmware.Build(platform.NewSimBoard(sim), cfg, kernel.Lockstep{})
	if err != nil {
		println("[camsim] build:", err.Error())
		os.Exit(1)
	}
	sub := sys.Bus.NewConnection("camsim").Subscribe(bus.T("camera", bus.Multi))

	budget := 1000 + *frames*(cfg.Camera.Height+16)
	for i := 0; i < budget && int(sys.Camera.FrameCount()) < *frames; i++ {
		if err := sys.Kernel.Pass(); err != nil {
			println("[camsim] fatal:", err.Error())
			os.Exit(2)
		}
		for {
			m, ok := sub.TryRecv()
			if !ok {
				break
			}
			report(m)
		}
	}

	st := sys.Kernel.Stats()
	println("[camsim] ticks", st.Ticks, "invocations", st.Invocations, "missed yields", st.NoYield)
	if int(sys.Camera.FrameCount()) < *frames {
		println("[camsim] only", sys.Camera.FrameCount(), "frames captured")
		os.Exit(1)
	}
}

func report(m *bus.Message) {
	switch v := m.Payload.(type) {
	case types.CameraState:
		println("[camsim] camera ready, comm errors", v.CommErrors)
	case types.FrameStats:
		var line [48]byte
		b := serial.AppendFrameStats(line[:0], v)
		a := camera.Attr(v.Centre)
		println("[camsim]", string(b[:len(b)-1]),
			"lum", a.Luminance(), "hue", a.Hue(), "sat", a.Saturation(), "grad", a.Gradient())
	}
}
