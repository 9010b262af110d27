package camera

import "testing"

// rgb builds a raw capture sample: RGB565 with the bytes swapped as the
// parallel bus delivers them.
func rgb(r5, g6, b5 uint8) uint16 {
	v := uint16(r5)<<11 | uint16(g6)<<5 | uint16(b5)
	return v<<8 | v>>8
}

func TestDecodeSwapsBytes(t *testing.T) {
	r, g, b := Decode(0x00F8) // 0xF800 on the wire
	if r != 31 || g != 0 || b != 0 {
		t.Fatalf("red: %d %d %d", r, g, b)
	}
	r, g, b = Decode(rgb(3, 45, 17))
	if r != 3 || g != 45 || b != 17 {
		t.Fatalf("round trip: %d %d %d", r, g, b)
	}
}

func TestLuminanceModes(t *testing.T) {
	cases := []struct {
		mode    LumMode
		r, g, b uint8
		want    uint8
	}{
		{LumWeighted, 31, 63, 31, 125},
		{LumWeighted, 0, 0, 0, 0},
		{LumWeighted, 10, 20, 5, 37}, // (40+80+10+20)>>2
		{LumRed, 31, 0, 0, 124},
		{LumGreen, 0, 63, 0, 126},
		{LumMode(9), 5, 60, 30, 20},
	}
	for _, tc := range cases {
		if got := Luminance(tc.mode, tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("Luminance(%d, %d,%d,%d)=%d want %d", tc.mode, tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestLuminanceFitsSevenBits(t *testing.T) {
	for _, m := range []LumMode{LumWeighted, LumRed, LumGreen} {
		if l := Luminance(m, 31, 63, 31); l > 127 {
			t.Fatalf("mode %d: %d", m, l)
		}
	}
}

func TestHueRangeOverAllColours(t *testing.T) {
	for r := 0; r < 64; r++ {
		for g := 0; g < 64; g++ {
			for b := 0; b < 64; b++ {
				h := Hue(uint8(r), uint8(g), uint8(b))
				if h < 360 || h == HueDark || h == HueBright {
					continue
				}
				t.Fatalf("Hue(%d,%d,%d)=%d", r, g, b, h)
			}
		}
	}
}

func TestHueValues(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint16
	}{
		{62, 0, 0, 0},
		{0, 62, 0, 120},
		{0, 0, 62, 240},
		{62, 62, 0, 60},
		{62, 0, 62, 300},
		{62, 0, 31, 330},
		{10, 12, 8, HueDark},
		{40, 42, 38, HueBright},
		{12, 14, 10, HueBright},
	}
	for _, tc := range cases {
		if got := Hue(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("Hue(%d,%d,%d)=%d want %d", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestSaturation(t *testing.T) {
	if s := Saturation(62, 10, 30); s != 52 {
		t.Fatalf("sat=%d", s)
	}
	if s := Saturation(7, 7, 7); s != 0 {
		t.Fatalf("grey sat=%d", s)
	}
}

func TestGradientClampAndThreshold(t *testing.T) {
	edge := Window{{0, 0, 125}, {0, 0, 125}, {0, 0, 125}}
	if g := Gradient(&edge, DefaultGradientNoise); g != GradientMax {
		t.Fatalf("edge=%d want %d", g, GradientMax)
	}

	// gx = 2*(L4-L3) only
	weak := Window{{0, 0, 0}, {50, 0, 59}, {0, 0, 0}}
	if g := Gradient(&weak, 20); g != 0 {
		t.Fatalf("18 below threshold -> %d", g)
	}
	weak[1][2] = 60
	if g := Gradient(&weak, 20); g != 20 {
		t.Fatalf("threshold=%d want 20", g)
	}

	// vertical change only feeds gy
	horiz := Window{{10, 10, 10}, {10, 10, 10}, {20, 20, 20}}
	if g := Gradient(&horiz, 20); g != 40 {
		t.Fatalf("gy=%d want 40", g)
	}
}

func TestGradientAlwaysInRange(t *testing.T) {
	vals := []uint8{0, 1, 19, 20, 64, 126, 127}
	var w Window
	for _, a := range vals {
		for _, b := range vals {
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					if (r+c)%2 == 0 {
						w[r][c] = a
					} else {
						w[r][c] = b
					}
				}
			}
			if g := Gradient(&w, DefaultGradientNoise); g > GradientMax || (g != 0 && g < DefaultGradientNoise) {
				t.Fatalf("a=%d b=%d g=%d", a, b, g)
			}
		}
	}
}

func TestLineMatchesHandComputed4x4(t *testing.T) {
	img := [][]uint16{
		{rgb(0, 0, 0), rgb(4, 9, 2), rgb(31, 63, 31), rgb(31, 0, 0)},
		{rgb(2, 4, 8), rgb(10, 30, 20), rgb(20, 40, 10), rgb(0, 63, 0)},
		{rgb(31, 63, 0), rgb(5, 5, 5), rgb(0, 0, 31), rgb(16, 32, 16)},
		{rgb(8, 50, 3), rgb(31, 63, 31), rgb(1, 2, 3), rgb(30, 10, 20)},
	}
	// luminance, hue, saturation, gradient per pixel, row-major
	want := [16][4]int{
		{0, HueDark, 0, 0}, {16, 72, 5, 0}, {125, HueBright, 1, 0}, {31, 0, 62, 0},
		{11, 240, 12, 0}, {57, 210, 20, 127}, {75, 60, 20, 127}, {78, 120, 63, 0},
		{109, 61, 63, 0}, {13, 300, 5, 127}, {15, 240, 62, 127}, {64, HueBright, 0, 0},
		{72, 107, 44, 0}, {125, HueBright, 1, 0}, {5, HueDark, 4, 0}, {52, 324, 50, 0},
	}
	fb := NewFrameBuffer(4, 4)
	p := Preprocessor{Mode: LumWeighted, Noise: DefaultGradientNoise}
	for y, row := range img {
		p.Line(fb, y, row)
	}
	for i, w := range want {
		a := fb.Pix[i]
		got := [4]int{int(a.Luminance()), int(a.Hue()), int(a.Saturation()), int(a.Gradient())}
		if got != w {
			t.Errorf("pixel (%d,%d): got %v want %v", i%4, i/4, got, w)
		}
		if a.Marked() {
			t.Errorf("pixel (%d,%d) marked", i%4, i/4)
		}
	}
}

func TestLineVerticalEdge(t *testing.T) {
	white, black := rgb(31, 63, 31), rgb(0, 0, 0)
	fb := NewFrameBuffer(4, 3)
	var p Preprocessor
	p.Noise = DefaultGradientNoise
	for y := 0; y < 3; y++ {
		p.Line(fb, y, []uint16{black, black, white, white})
	}
	if g := fb.At(1, 1).Gradient(); g != 127 {
		t.Fatalf("edge gradient=%d", g)
	}
	if g := fb.At(2, 1).Gradient(); g != 127 {
		t.Fatalf("edge gradient=%d", g)
	}
	if h := fb.At(3, 2).Hue(); h != HueBright {
		t.Fatalf("white hue=%d", h)
	}
	if h := fb.At(0, 0).Hue(); h != HueDark {
		t.Fatalf("black hue=%d", h)
	}
}

func TestHistogramSumAndAverage(t *testing.T) {
	var p Preprocessor
	fb := NewFrameBuffer(2, 2)
	white := rgb(31, 63, 31)
	p.Line(fb, 0, []uint16{white, 0})
	p.Line(fb, 1, []uint16{white, white})
	if p.Sum() != 375 {
		t.Fatalf("sum=%d", p.Sum())
	}
	h := p.Histogram()
	if h[125] != 3 || h[0] != 1 {
		t.Fatalf("hist[125]=%d hist[0]=%d", h[125], h[0])
	}
	if avg := p.Average(4); avg != 93 {
		t.Fatalf("avg=%d", avg)
	}
	p.Reset()
	if p.Sum() != 0 || p.Histogram() != [HistogramBins]uint32{} {
		t.Fatal("reset left state")
	}
}

func TestLineIgnoresOutOfRangeRow(t *testing.T) {
	var p Preprocessor
	fb := NewFrameBuffer(2, 2)
	p.Line(fb, 2, []uint16{rgb(31, 63, 31), rgb(31, 63, 31)})
	p.Line(fb, -1, []uint16{rgb(31, 63, 31)})
	if p.Sum() != 0 {
		t.Fatal("out-of-range row processed")
	}
}
