package animation

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidRate     = errors.New("playback rate must be non-zero and finite")
	ErrOutOfRange      = errors.New("position out of range")
	ErrDestroyed       = errors.New("animation destroyed")
)

// ErrorHandler receives failures that must not abort a frame, such as a
// listener returning an error or panicking.
type ErrorHandler func(err error)

// ListenerError wraps a failure raised by an event listener.
type ListenerError struct {
	// Type is the event being dispatched.
	Type EventType
	// Err is the returned error, nil for panics.
	Err error
	// Panic is the recovered value, nil for returned errors.
	Panic any
	// StackTrace is captured for panics only.
	StackTrace string
}

func (e *ListenerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s listener panicked: %v", e.Type, e.Panic)
	}
	return fmt.Sprintf("%s listener: %v", e.Type, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// invoke runs fn and converts a returned error or a panic into a
// *ListenerError.
func invoke(typ EventType, fn Listener, ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ListenerError{
				Type:       typ,
				Panic:      r,
				StackTrace: string(debug.Stack()),
			}
		}
	}()
	if lerr := fn(ev); lerr != nil {
		return &ListenerError{Type: typ, Err: lerr}
	}
	return nil
}
