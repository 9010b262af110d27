package camera

// FrameBuffer holds one frame of attribute words in row-major order.
//
// It is overwritten in place as lines arrive and has no lock: a reader
// running between two camera steps sees a mix of the current and previous
// frame.
type FrameBuffer struct {
	Width, Height int
	Pix           []Attr
}

func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]Attr, width*height),
	}
}

func (f *FrameBuffer) At(x, y int) Attr     { return f.Pix[y*f.Width+x] }
func (f *FrameBuffer) Set(x, y int, a Attr) { f.Pix[y*f.Width+x] = a }

// SetGradient replaces the gradient field of (x, y).
func (f *FrameBuffer) SetGradient(x, y int, g uint8) {
	i := y*f.Width + x
	f.Pix[i] = f.Pix[i].WithGradient(g)
}

// Clear zeroes every pixel.
func (f *FrameBuffer) Clear() {
	for i := range f.Pix {
		f.Pix[i] = 0
	}
}
