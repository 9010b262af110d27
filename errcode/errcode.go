package errcode

import "errors"

// Code is a stable error identifier shared by the kernel and its tasks.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Busy          Code = "busy"
	InvalidParams Code = "invalid_params"
	NotReady      Code = "not_ready"
	Timeout       Code = "timeout"

	CapacityExceeded Code = "capacity_exceeded"
	UnknownTask      Code = "unknown_task"
	Overrun          Code = "overrun"

	Nack Code = "nack"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap attaches an operation name to a low-level error, mapping it to a Code.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: MapDriverErr(err), Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// nacker is implemented by bus errors that can tell an address or data NACK
// apart from other failures.
type nacker interface{ Nack() bool }

// MapDriverErr maps low-level driver errors to a Code.
// Extend the heuristics per platform/driver.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	var n nacker
	if errors.As(err, &n) && n.Nack() {
		return Nack
	}
	return Error
}
