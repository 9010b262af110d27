// Package platform describes the board the firmware runs on: camera control
// and sync lines, the parallel capture peripheral, the pixel clock output,
// indicator LEDs, the I2C bus, the UART link and the watchdog.
//
// Each build target supplies Default. On RP2040/RP2350 it returns the
// machine-backed board; on the host it returns a simulated board driven by
// SimCamera.
package platform

import (
	"tinygo.org/x/drivers"
)

// Pin is a digital line. Outputs honour Set; inputs report Get.
type Pin interface {
	Set(level bool)
	Get() bool
}

// Capture is a line-oriented parallel capture peripheral with a single DMA
// descriptor. Arm starts a transfer of len(buf) samples into buf; Done
// reports the end-of-transfer flag for the last armed buffer.
type Capture interface {
	Configure() error
	Arm(buf []uint16)
	Done() bool
}

// ClockOut is a programmable clock output used as the sensor's pixel clock.
type ClockOut interface {
	Start(hz uint32) error
	Stop()
}

// Watchdog must be fed regularly or the device resets.
type Watchdog interface {
	Feed()
}

// CameraLines groups the sensor control and sync signals.
type CameraLines struct {
	Reset Pin // active low
	VSync Pin
	HSync Pin
}

// Board is the set of peripherals the firmware uses.
type Board struct {
	Name string

	I2C        drivers.I2C
	Camera     CameraLines
	Capture    Capture
	PixelClock ClockOut
	Watchdog   Watchdog

	FaultLED     Pin
	HeartbeatLED Pin
	CameraLEDs   []Pin

	Serial *SerialLink
}

// Normalize substitutes inert stand-ins for peripherals a board leaves
// unset, so tasks never test for nil.
func (b *Board) Normalize() {
	if b.Watchdog == nil {
		b.Watchdog = nopWatchdog{}
	}
	if b.FaultLED == nil {
		b.FaultLED = nopPin{}
	}
	if b.HeartbeatLED == nil {
		b.HeartbeatLED = nopPin{}
	}
	for i, p := range b.CameraLEDs {
		if p == nil {
			b.CameraLEDs[i] = nopPin{}
		}
	}
	if b.Serial == nil {
		b.Serial = NewSerialLink(64, 256)
	}
}

type nopPin struct{}

func (nopPin) Set(bool)  {}
func (nopPin) Get() bool { return false }

type nopWatchdog struct{}

func (nopWatchdog) Feed() {}
