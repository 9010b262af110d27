package serial

import (
	"camkernel-go/bus"
	"camkernel-go/kernel"
	"camkernel-go/types"
)

// Stream sends one line per completed frame:
//
//	F:<frame> L:<avg luminance> C:<centre attribute, hex>
type Stream struct {
	sub *bus.Subscription
	out *Serial

	line    [48]byte
	pending []byte
	Dropped uint32
}

// NewStream subscribes to frame statistics on topic.
func NewStream(conn *bus.Connection, topic bus.Topic, out *Serial) *Stream {
	return &Stream{sub: conn.Subscribe(topic), out: out}
}

func (s *Stream) Step(ctx *kernel.Context) {
	if m, ok := s.sub.TryRecv(); ok {
		if fs, ok := m.Payload.(types.FrameStats); ok {
			if s.pending != nil {
				s.Dropped++
			}
			s.pending = s.format(fs)
		}
	}
	if s.pending != nil && s.out.Send(s.pending) == nil {
		s.pending = nil
	}
	ctx.Set(0, 1)
}

func (s *Stream) format(fs types.FrameStats) []byte {
	return AppendFrameStats(s.line[:0], fs)
}

// AppendFrameStats appends the stream line for fs to b.
func AppendFrameStats(b []byte, fs types.FrameStats) []byte {
	b = append(b, "F:"...)
	b = appendUint(b, fs.Frame)
	b = append(b, " L:"...)
	b = appendUint(b, uint32(fs.AvgLuminance))
	b = append(b, " C:"...)
	b = appendHex32(b, fs.Centre)
	return append(b, '\n')
}

func appendUint(b []byte, n uint32) []byte {
	var d [10]byte
	i := len(d)
	for {
		i--
		d[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(b, d[i:]...)
}

// appendHex32 appends n as eight upper-case hex digits.
func appendHex32(b []byte, n uint32) []byte {
	const digits = "0123456789ABCDEF"
	for shift := 28; shift >= 0; shift -= 4 {
		b = append(b, digits[n>>uint(shift)&0xF])
	}
	return b
}
