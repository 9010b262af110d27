// Package tcm8230 holds register definitions and the power-up sequence for
// the Toshiba TCM8230MD CMOS camera module.
//
// The sensor is programmed over I2C with single-register writes of the form
// [reg, value] and streams pixels on an 8-bit parallel bus with VSYNC/HSYNC
// framing, two bus cycles per RGB565 pixel (high byte first).
//
// Sequencing the writes against reset and the pixel clock is the caller's
// job; Write is only a blocking convenience for bring-up tools.
package tcm8230

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C address (7-bit).
const Address = 0x3C

// Registers.
const (
	RegFrameRate = 0x02 // FPS, ACF
	RegFormat    = 0x03 // DOUTSW, DATAHZ, PICSIZ, PICFMT, CODESW
	RegSync      = 0x1E // sync code and blanking control
)

// Register values used at power-up.
const (
	FrameRate30 = 0x00
	SyncDefault = 0x68
)

// Size is the PICSIZ field of RegFormat.
type Size uint8

const (
	SizeVGA   Size = 0x0
	SizeQVGA  Size = 0x1
	SizeQQVGA Size = 0x3
	SizeCIF   Size = 0x5
	SizeQCIF  Size = 0x6
)

// Dimensions returns the output width and height for s, or 0, 0 if unknown.
func (s Size) Dimensions() (w, h int) {
	switch s {
	case SizeVGA:
		return 640, 480
	case SizeQVGA:
		return 320, 240
	case SizeQQVGA:
		return 160, 120
	case SizeCIF:
		return 352, 288
	case SizeQCIF:
		return 176, 144
	}
	return 0, 0
}

// SizeFor returns the picture size producing w x h.
func SizeFor(w, h int) (Size, bool) {
	for _, s := range []Size{SizeVGA, SizeQVGA, SizeQQVGA, SizeCIF, SizeQCIF} {
		if sw, sh := s.Dimensions(); sw == w && sh == h {
			return s, true
		}
	}
	return 0, false
}

const formatRGB = 1 << 1

// Format builds a RegFormat value with outputs enabled and RGB565 data when
// rgb is true (YUV422 otherwise).
func Format(s Size, rgb bool) byte {
	v := byte(s&0xF) << 2
	if rgb {
		v |= formatRGB
	}
	return v
}

// RegWrite is one register assignment.
type RegWrite struct {
	Reg   byte
	Value byte
}

// InitSequence returns the writes that bring the sensor out of power-down
// streaming RGB565 at the given size. The format write turns the outputs on
// and must come last.
func InitSequence(s Size) []RegWrite {
	return []RegWrite{
		{RegSync, SyncDefault},
		{RegFrameRate, FrameRate30},
		{RegFormat, Format(s, true)},
	}
}

// ErrSize is returned for a resolution the sensor cannot produce.
var ErrSize = errors.New("tcm8230: unsupported size")

// Write performs a single register write.
func Write(bus drivers.I2C, addr uint16, w RegWrite) error {
	if addr == 0 {
		addr = Address
	}
	return bus.Tx(addr, []byte{w.Reg, w.Value}, nil)
}

// Init runs the whole register sequence, blocking on the bus.
func Init(bus drivers.I2C, addr uint16, width, height int) error {
	s, ok := SizeFor(width, height)
	if !ok {
		return ErrSize
	}
	for _, w := range InitSequence(s) {
		if err := Write(bus, addr, w); err != nil {
			return err
		}
	}
	return nil
}
