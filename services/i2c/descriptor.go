// Package i2c owns the shared I2C transaction descriptor and the task that
// completes requests posted to it.
//
// A requester posts one transaction at a time through Shared.Write or
// Shared.Read and then polls Status until Busy and the request bit clear.
// Only the I2C task marks a transaction busy or finished.
package i2c

import "camkernel-go/errcode"

// MaxData is the largest payload of one transaction.
const MaxData = 16

// Status flags of the descriptor.
type Status struct {
	Busy          bool // a transaction is in progress, or the bus is settling
	CommError     bool // the last transaction failed; cleared at the next dispatch
	ReadRequested bool
	SendRequested bool
}

// Descriptor is the single transaction record shared by requesters and the
// I2C task.
type Descriptor struct {
	SlaveAddr uint8
	RegAddr   uint8
	Count     uint8
	TX        [MaxData]byte
	RX        [MaxData]byte
	Status    Status
}

// Shared guards the descriptor. There is exactly one per bus.
//
// It refuses requests until the I2C task has finished its start-up settle,
// so the zero value is usable but not idle.
type Shared struct {
	d  Descriptor
	up bool
}

// NewShared returns a descriptor that reports Busy until the I2C task has
// initialised the bus.
func NewShared() *Shared {
	return &Shared{d: Descriptor{Status: Status{Busy: true}}}
}

// Idle reports whether a new request may be posted.
func (s *Shared) Idle() bool {
	st := s.d.Status
	return s.up && !st.Busy && !st.SendRequested && !st.ReadRequested
}

// Status returns a copy of the status flags.
func (s *Shared) Status() Status { return s.d.Status }

// Write posts a register write of data to slave. It returns errcode.Busy
// unless the descriptor is idle.
func (s *Shared) Write(slave, reg uint8, data ...byte) error {
	if len(data) == 0 || len(data) > MaxData {
		return errcode.InvalidParams
	}
	if !s.Idle() {
		return errcode.Busy
	}
	s.d.SlaveAddr = slave
	s.d.RegAddr = reg
	s.d.Count = uint8(len(data))
	copy(s.d.TX[:], data)
	s.d.Status.SendRequested = true
	return nil
}

// Read posts a read of n bytes starting at reg.
func (s *Shared) Read(slave, reg uint8, n int) error {
	if n <= 0 || n > MaxData {
		return errcode.InvalidParams
	}
	if !s.Idle() {
		return errcode.Busy
	}
	s.d.SlaveAddr = slave
	s.d.RegAddr = reg
	s.d.Count = uint8(n)
	s.d.Status.ReadRequested = true
	return nil
}

// Received returns the bytes of the last completed read. The slice aliases
// the descriptor and is valid until the next request.
func (s *Shared) Received() []byte { return s.d.RX[:s.d.Count] }
