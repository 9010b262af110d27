// Package serial provides the UART task, which moves bytes between the
// platform's serial rings and fixed message buffers, and a stream task that
// reports frame statistics over it.
package serial

import (
	"camkernel-go/errcode"
	"camkernel-go/kernel"
	"camkernel-go/x/shmring"
)

// Status flags.
type Status struct {
	TXReady    bool // a message is waiting to be transmitted
	RXReady    bool // RX buffer holds unread bytes
	RXOverflow bool // bytes were lost to a full buffer or a line error
}

// Link is the platform side of a UART.
type Link interface {
	RXRing() *shmring.Ring
	TXRing() *shmring.Ring
	TakeError() bool
}

type Config struct {
	TXBuf int // default 200
	RXBuf int // default 8
}

const (
	StateInit = iota
	StateRun
)

// Serial is the UART task.
type Serial struct {
	link Link

	tx     []byte
	txLen  int
	txPtr  int
	rx     []byte
	rxPtr  int
	status Status
}

func New(link Link, cfg Config) *Serial {
	if cfg.TXBuf <= 0 {
		cfg.TXBuf = 200
	}
	if cfg.RXBuf <= 0 {
		cfg.RXBuf = 8
	}
	return &Serial{
		link: link,
		tx:   make([]byte, cfg.TXBuf),
		rx:   make([]byte, cfg.RXBuf),
	}
}

// Send queues p for transmission. It returns errcode.Busy while a previous
// message is still going out.
func (s *Serial) Send(p []byte) error {
	if len(p) == 0 || len(p) > len(s.tx) {
		return errcode.InvalidParams
	}
	if s.status.TXReady {
		return errcode.Busy
	}
	s.txLen = copy(s.tx, p)
	s.txPtr = 0
	s.status.TXReady = true
	return nil
}

func (s *Serial) Status() Status { return s.status }

// Received returns the unread RX bytes. The slice aliases the buffer.
func (s *Serial) Received() []byte { return s.rx[:s.rxPtr] }

// ClearRX empties the RX buffer and clears RXReady and RXOverflow.
func (s *Serial) ClearRX() {
	s.rxPtr = 0
	s.status.RXReady = false
	s.status.RXOverflow = false
}

func (s *Serial) Step(ctx *kernel.Context) {
	switch ctx.State {
	case StateInit:
		s.link.RXRing().Reset()
		s.link.TakeError()
		s.status = Status{}
		s.rxPtr, s.txLen, s.txPtr = 0, 0, 0
		ctx.Set(StateRun, 1)

	case StateRun:
		s.receive()
		s.transmit()
		ctx.Set(StateRun, 1)

	default:
		ctx.Set(StateInit, 1)
	}
}

func (s *Serial) receive() {
	ring := s.link.RXRing()
	if s.link.TakeError() {
		// Framing or overrun: drop whatever is buffered.
		ring.Reset()
		s.rxPtr = 0
		s.status.RXReady = false
		s.status.RXOverflow = true
		return
	}
	if ring.Available() == 0 {
		return
	}
	if s.rxPtr == len(s.rx) {
		s.rxPtr = 0
		s.status.RXOverflow = true
	}
	s.rxPtr += ring.ReadInto(s.rx[s.rxPtr:])
	s.status.RXReady = s.rxPtr > 0
}

func (s *Serial) transmit() {
	if !s.status.TXReady {
		return
	}
	s.txPtr += s.link.TXRing().WriteFrom(s.tx[s.txPtr:s.txLen])
	if s.txPtr == s.txLen {
		s.status.TXReady = false
	}
}
