package camera

import "camkernel-go/x/mathx"

// LumMode selects the luminance approximation.
type LumMode uint8

const (
	LumWeighted LumMode = iota // (4R + 5G + 2B) / 4 on 5/6/5-bit channels
	LumRed                     // 4R
	LumGreen                   // 2G
)

const (
	// Below this max-min spread on 6-bit channels a pixel has no usable hue.
	hueMinDelta = 5
	// Grey pixels whose brightest channel is below this are HueDark.
	hueDarkMax = 13

	GradientMax = 127
	// DefaultGradientNoise suppresses sensor noise; 10 suits clean sensors.
	DefaultGradientNoise = 20

	// HistogramBins covers every 7-bit luminance value.
	HistogramBins = 128
)

// Decode unpacks a raw capture sample. The bus delivers the high byte first,
// so the sample is byte-swapped before the 5/6/5 split.
func Decode(raw uint16) (r5, g6, b5 uint8) {
	v := raw<<8 | raw>>8
	return uint8(v >> 11 & 0x1F), uint8(v >> 5 & 0x3F), uint8(v & 0x1F)
}

// Luminance computes a 7-bit brightness. Unknown modes fall back to LumRed.
func Luminance(mode LumMode, r5, g6, b5 uint8) uint8 {
	r, g, b := uint16(r5), uint16(g6), uint16(b5)
	switch mode {
	case LumWeighted:
		return uint8(((r << 2) + (g << 2) + (b << 1) + g) >> 2)
	case LumGreen:
		return uint8(g << 1)
	default:
		return uint8(r << 2)
	}
}

// Saturation is max-min over 6-bit channels.
func Saturation(r6, g6, b6 uint8) uint8 {
	return mathx.Max(r6, mathx.Max(g6, b6)) - mathx.Min(r6, mathx.Min(g6, b6))
}

// Hue returns the hue angle in degrees over 6-bit channels, or HueDark /
// HueBright when the channels are too close together.
func Hue(r6, g6, b6 uint8) uint16 {
	hi := mathx.Max(r6, mathx.Max(g6, b6))
	lo := mathx.Min(r6, mathx.Min(g6, b6))
	delta := int(hi) - int(lo)
	if delta < hueMinDelta {
		if hi < hueDarkMax {
			return HueDark
		}
		return HueBright
	}
	r, g, b := int(r6), int(g6), int(b6)
	var h int
	switch hi {
	case r6:
		h = 60 * (g - b) / delta
	case g6:
		h = 120 + 60*(b-r)/delta
	default:
		h = 240 + 60*(r-g)/delta
	}
	if h < 0 {
		h += 360
	}
	return uint16(h)
}

// Window is a 3x3 block of luminance values, w[row][col], top row first.
type Window [3][3]uint8

// Gradient is the Sobel magnitude |gx|+|gy| of the window centre, clamped to
// GradientMax and zeroed below noise. gx is right column minus left column
// and gy is bottom row minus top row, each with the middle tap doubled; gy
// is computed on its own, so horizontal edges register.
func Gradient(w *Window, noise uint8) uint8 {
	l := func(r, c int) int { return int(w[r][c]) }
	gx := l(0, 2) + l(2, 2) - l(0, 0) - l(2, 0) + 2*(l(1, 2)-l(1, 0))
	gy := l(2, 0) + l(2, 2) - l(0, 0) - l(0, 2) + 2*(l(2, 1)-l(0, 1))
	m := mathx.Min(mathx.Abs(gx)+mathx.Abs(gy), GradientMax)
	if m < int(noise) {
		return 0
	}
	return uint8(m)
}

// Preprocessor turns raw scanlines into attribute words and keeps the
// per-frame luminance histogram and sum.
type Preprocessor struct {
	Mode  LumMode
	Noise uint8

	hist [HistogramBins]uint32
	sum  uint32
}

// Pixel converts one raw sample and accounts its luminance. The gradient
// field is left zero.
func (p *Preprocessor) Pixel(raw uint16) Attr {
	r5, g6, b5 := Decode(raw)
	lum := Luminance(p.Mode, r5, g6, b5)
	p.hist[lum&lumMask]++
	p.sum += uint32(lum)

	r6, b6 := r5<<1, b5<<1
	return Pack(lum, Hue(r6, g6, b6), Saturation(r6, g6, b6), 0)
}

// Line converts a scanline into row y of fb. The gradient of each pixel is
// filled in one row and one column behind, once its full neighbourhood is
// known; border pixels keep gradient 0.
func (p *Preprocessor) Line(fb *FrameBuffer, y int, raw []uint16) {
	if y < 0 || y >= fb.Height {
		return
	}
	n := mathx.Min(len(raw), fb.Width)
	var w Window
	for x := 0; x < n; x++ {
		fb.Set(x, y, p.Pixel(raw[x]))
		if x < 2 || y < 2 {
			continue
		}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				w[r][c] = fb.At(x-2+c, y-2+r).Luminance()
			}
		}
		fb.SetGradient(x-1, y-1, Gradient(&w, p.Noise))
	}
}

// Reset clears the histogram and the luminance sum.
func (p *Preprocessor) Reset() {
	p.hist = [HistogramBins]uint32{}
	p.sum = 0
}

// Sum returns the luminance sum accumulated since the last Reset.
func (p *Preprocessor) Sum() uint32 { return p.sum }

// Histogram returns a copy of the current histogram.
func (p *Preprocessor) Histogram() [HistogramBins]uint32 { return p.hist }

// Average returns sum / pixels (integer division).
func (p *Preprocessor) Average(pixels int) uint8 {
	if pixels <= 0 {
		return 0
	}
	return uint8(p.sum / uint32(pixels))
}
