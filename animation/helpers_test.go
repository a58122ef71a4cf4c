package animation

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeTimer struct {
	at        time.Time
	fn        func()
	cancelled bool
}

// fakeHost queues frame callbacks and timers until the test advances it.
type fakeHost struct {
	clock  *fakeClock
	frames []func(time.Time)
	timers []*fakeTimer
}

func newFakeHost() *fakeHost {
	return &fakeHost{clock: &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
}

func (h *fakeHost) RequestFrame(fn func(time.Time)) {
	h.frames = append(h.frames, fn)
}

func (h *fakeHost) AfterFunc(d time.Duration, fn func()) func() {
	t := &fakeTimer{at: h.clock.now.Add(d), fn: fn}
	h.timers = append(h.timers, t)
	return func() { t.cancelled = true }
}

// advance moves the clock by d, fires due timers and runs one frame.
func (h *fakeHost) advance(d time.Duration) {
	h.clock.now = h.clock.now.Add(d)

	sort.SliceStable(h.timers, func(i, j int) bool { return h.timers[i].at.Before(h.timers[j].at) })
	var pending []*fakeTimer
	due := h.timers
	h.timers = nil
	for _, t := range due {
		if t.cancelled {
			continue
		}
		if t.at.After(h.clock.now) {
			pending = append(pending, t)
			continue
		}
		t.fn()
	}
	h.timers = append(pending, h.timers...)

	frames := h.frames
	h.frames = nil
	for _, fn := range frames {
		fn(h.clock.now)
	}
}

func (h *fakeHost) scheduler(opts ...Option) *Scheduler {
	return NewScheduler(h, append([]Option{WithClock(h.clock)}, opts...)...)
}

// recorder collects events by type in emission order.
type recorder struct {
	events []*Event
}

func (r *recorder) listen(a *Animation, types ...EventType) {
	if len(types) == 0 {
		types = EventTypes
	}
	for _, typ := range types {
		a.AddEventListener(typ, func(ev *Event) error {
			r.events = append(r.events, ev)
			return nil
		})
	}
}

func (r *recorder) types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) count(typ EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ EventType) *Event {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i]
		}
	}
	return nil
}

func linearX(t *testing.T, s *Scheduler, opts Options) *Animation {
	t.Helper()
	opts.Keyframes = []RawKeyframe{
		{Delta: 0, Props: map[string]*float64{"x": V(0)}},
		{Delta: 1, Props: map[string]*float64{"x": V(100)}},
	}
	if opts.Duration == 0 {
		opts.Duration = time.Second
	}
	a, err := New(s, opts)
	require.NoError(t, err)
	return a
}
