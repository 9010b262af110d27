package camera

import "camkernel-go/x/mathx"

// Attr is the packed per-pixel attribute word.
//
//	bits  0-6   luminance (0-127)
//	bit   7     marker
//	bits  8-16  hue (0-359, or HueDark / HueBright)
//	bits 17-22  saturation (0-63)
//	bits 23-30  gradient magnitude
//	bit  31     reserved
type Attr uint32

const (
	lumShift  = 0
	lumMask   = 0x7F
	markerBit = 1 << 7
	hueShift  = 8
	hueMask   = 0x1FF
	satShift  = 17
	satMask   = 0x3F
	gradShift = 23
	gradMask  = 0xFF
)

// Hue sentinels for pixels too grey to carry a hue.
const (
	HueDark   = 400
	HueBright = 420
)

// Pack builds an attribute word. Each field is clamped to its width.
func Pack(lum uint8, hue uint16, sat, grad uint8) Attr {
	l := uint32(mathx.Min(lum, lumMask))
	h := uint32(mathx.Min(hue, hueMask))
	s := uint32(mathx.Min(sat, satMask))
	return Attr(l<<lumShift | h<<hueShift | s<<satShift | uint32(grad)<<gradShift)
}

func (a Attr) Luminance() uint8  { return uint8(uint32(a) >> lumShift & lumMask) }
func (a Attr) Hue() uint16       { return uint16(uint32(a) >> hueShift & hueMask) }
func (a Attr) Saturation() uint8 { return uint8(uint32(a) >> satShift & satMask) }
func (a Attr) Gradient() uint8   { return uint8(uint32(a) >> gradShift & gradMask) }
func (a Attr) Marked() bool      { return a&markerBit != 0 }

// WithGradient replaces the gradient field.
func (a Attr) WithGradient(g uint8) Attr {
	return a&^(gradMask<<gradShift) | Attr(g)<<gradShift
}

// WithMarker sets or clears the marker bit.
func (a Attr) WithMarker(on bool) Attr {
	if on {
		return a | markerBit
	}
	return a &^ markerBit
}

// HasHue reports whether the hue field holds an angle rather than a sentinel.
func (a Attr) HasHue() bool { return a.Hue() < 360 }
