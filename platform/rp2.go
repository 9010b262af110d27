//go:build rp2040 || rp2350

package platform

import (
	"context"
	"device/rp"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

// Pico wiring.
const (
	pinData0   = machine.GP0 // D0..D7 on GP0..GP7
	pinXCLK    = machine.GP8 // pixel clock to the sensor (PWM4 A)
	pinDCLK    = machine.GP10
	pinVSync   = machine.GP11
	pinHSync   = machine.GP12
	pinCamRst  = machine.GP13
	pinLEDCam  = machine.GP14
	pinLEDEye1 = machine.GP15
	pinLEDEye2 = machine.GP18
	pinUARTTX  = machine.GP16
	pinUARTRX  = machine.GP17
	pinSDA     = machine.GP20
	pinSCL     = machine.GP21
	pinFault   = machine.GP22
)

// ---- GPIO ----

type rp2Pin struct{ p machine.Pin }

func outPin(p machine.Pin, initial bool) *rp2Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(initial)
	return &rp2Pin{p: p}
}

func inPin(p machine.Pin) *rp2Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
	return &rp2Pin{p: p}
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }

// ---- pixel clock ----

type pwmClock struct {
	pin machine.Pin
	ch  uint8
	on  bool
}

func (c *pwmClock) Start(hz uint32) error {
	if hz == 0 {
		hz = 1
	}
	if err := machine.PWM4.Configure(machine.PWMConfig{Period: 1_000_000_000 / uint64(hz)}); err != nil {
		return err
	}
	ch, err := machine.PWM4.Channel(c.pin)
	if err != nil {
		return err
	}
	c.ch = ch
	machine.PWM4.Set(ch, machine.PWM4.Top()/2)
	c.on = true
	return nil
}

func (c *pwmClock) Stop() {
	if c.on {
		machine.PWM4.Set(c.ch, 0)
		c.on = false
	}
}

// ---- capture ----

// gpioCapture samples the 8-bit data bus from the SIO input register on
// rising DCLK edges. There is no hardware DMA behind it. Done returns false
// while HSYNC is high, since that poll landed mid-line. From HSYNC low it
// waits for the rising edge and reads the line while HSYNC stays high. The
// read blocks for a whole line, so it keeps up only with slow pixel clocks
// and a tick long enough to hold one line plus its processing. Lines that
// pass between two polls are skipped.
type gpioCapture struct {
	buf  []uint16
	done bool
}

const (
	dclkMask  = 1 << 10
	hsyncMask = 1 << 12
	spinLimit = 1 << 12
)

func (c *gpioCapture) Configure() error {
	for i := machine.Pin(0); i < 8; i++ {
		(pinData0 + i).Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	pinDCLK.Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (c *gpioCapture) Arm(buf []uint16) {
	c.buf = buf
	c.done = false
}

func (c *gpioCapture) Done() bool {
	if c.done {
		return true
	}
	if c.buf == nil || rp.SIO.GPIO_IN.Get()&hsyncMask != 0 {
		return false
	}
	// HSYNC low: wait for the start of the next line.
	for n := 0; rp.SIO.GPIO_IN.Get()&hsyncMask == 0; n++ {
		if n > spinLimit {
			return false
		}
	}
	for i := range c.buf {
		lo, ok := sampleByte()
		if !ok {
			return false
		}
		hi, ok := sampleByte()
		if !ok {
			return false
		}
		c.buf[i] = uint16(lo) | uint16(hi)<<8
	}
	c.buf = nil
	c.done = true
	return true
}

// sampleByte waits for a rising DCLK edge within the line and latches
// D0..D7. It fails if HSYNC drops or the clock stalls.
func sampleByte() (byte, bool) {
	n := 0
	for {
		in := rp.SIO.GPIO_IN.Get()
		if in&hsyncMask == 0 {
			return 0, false
		}
		if in&dclkMask == 0 {
			break
		}
		if n++; n > spinLimit {
			return 0, false
		}
	}
	for {
		in := rp.SIO.GPIO_IN.Get()
		if in&hsyncMask == 0 {
			return 0, false
		}
		if in&dclkMask != 0 {
			return byte(in), true
		}
		if n++; n > spinLimit {
			return 0, false
		}
	}
}

// ---- watchdog ----

type rp2Watchdog struct{}

func (rp2Watchdog) Feed() { machine.Watchdog.Update() }

// ---- UART ----

type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *rp2SerialPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, buf)
}

// Default configures the Pico peripherals and returns the board.
func Default() *Board {
	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       pinSDA,
		SCL:       pinSCL,
	})

	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1000})
	machine.Watchdog.Start()

	return &Board{
		Name: "pico",
		I2C:  i2c,
		Camera: CameraLines{
			Reset: outPin(pinCamRst, false),
			VSync: inPin(pinVSync),
			HSync: inPin(pinHSync),
		},
		Capture:      &gpioCapture{},
		PixelClock:   &pwmClock{pin: pinXCLK},
		Watchdog:     rp2Watchdog{},
		FaultLED:     outPin(pinFault, false),
		HeartbeatLED: outPin(machine.LED, false),
		CameraLEDs: []Pin{
			outPin(pinLEDCam, false),
			outPin(pinLEDEye1, false),
			outPin(pinLEDEye2, false),
		},
		Serial: NewSerialLink(64, 256),
	}
}

// StartSerial configures UART0 and starts the serial pumps.
func (b *Board) StartSerial(ctx context.Context, baud uint32) {
	hw := uartx.UART0
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       pinUARTTX,
		RX:       pinUARTRX,
	})
	b.Serial.Start(ctx, &rp2SerialPort{u: hw})
}
