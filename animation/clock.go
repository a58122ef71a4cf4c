package animation

import "time"

// Clock provides time for animations. Tests inject a fake clock through
// WithClock to control frame lengths deterministically.
type Clock interface {
	Now() time.Time
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Host supplies the per-frame callback chain and one-shot timers. Both
// callbacks must be invoked on the goroutine that owns the animations.
type Host interface {
	// RequestFrame schedules fn to run once on the next frame.
	RequestFrame(fn func(now time.Time))
	// AfterFunc schedules fn to run once after d. The returned func cancels
	// it if it has not run yet.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}
