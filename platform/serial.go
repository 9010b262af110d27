package platform

import (
	"context"
	"sync/atomic"
	"time"

	"camkernel-go/x/shmring"
)

// SerialPort is the byte-stream side of a UART.
type SerialPort interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// SerialLink couples a UART to the cooperative world through two SPSC rings.
// Pump goroutines move bytes between the port and the rings; tasks only touch
// the rings and the error flag.
type SerialLink struct {
	RX *shmring.Ring // port -> task
	TX *shmring.Ring // task -> port

	errs atomic.Uint32
}

// NewSerialLink allocates rings of the given power-of-two sizes.
func NewSerialLink(rxSize, txSize int) *SerialLink {
	return &SerialLink{
		RX: shmring.New(rxSize),
		TX: shmring.New(txSize),
	}
}

// ReportError records a framing, overrun or ring overflow condition.
func (l *SerialLink) ReportError() { l.errs.Add(1) }

// TakeError reports and clears any recorded error.
func (l *SerialLink) TakeError() bool { return l.errs.Swap(0) != 0 }

// Start launches the RX and TX pumps for port. They stop when ctx is done.
func (l *SerialLink) Start(ctx context.Context, port SerialPort) {
	go l.rxLoop(ctx, port)
	go l.txLoop(ctx, port)
}

func (l *SerialLink) rxLoop(ctx context.Context, port SerialPort) {
	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return
		}
		// Bound the blocking wait to assist shutdown.
		rctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		n, err := port.RecvSomeContext(rctx, buf)
		cancel()
		if err != nil && err != context.DeadlineExceeded && err != context.Canceled {
			l.ReportError()
		}
		if n <= 0 {
			continue
		}
		if w := l.RX.WriteFrom(buf[:n]); w < n {
			l.ReportError()
		}
	}
}

func (l *SerialLink) txLoop(ctx context.Context, port SerialPort) {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.TX.Readable():
		case <-time.After(50 * time.Millisecond):
		}
		for {
			n := l.TX.ReadInto(buf)
			if n == 0 {
				break
			}
			for off := 0; off < n; {
				w, err := port.Write(buf[off:n])
				if err != nil || w == 0 {
					l.ReportError()
					break
				}
				off += w
			}
		}
	}
}

func (l *SerialLink) RXRing() *shmring.Ring { return l.RX }
func (l *SerialLink) TXRing() *shmring.Ring { return l.TX }
