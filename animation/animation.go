package animation

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Forever makes an animation loop until it is stopped.
const Forever = 0

// ManualFrame is the fixed frame length applied by Update.
const ManualFrame = time.Second / 60

// Options configure an Animation. Zero values take the documented defaults.
type Options struct {
	Keyframes []RawKeyframe
	// Duration of one iteration at playback rate 1.
	Duration time.Duration
	// Iterations is the number of cycles to play; Forever loops.
	Iterations int
	// Delay before playback starts, re-applied before every iteration.
	Delay time.Duration
	// ManualMode keeps the animation off the scheduler; the owner calls
	// Update once per frame.
	ManualMode bool
	// PlaybackRate defaults to 1. Negative values play in reverse.
	PlaybackRate float64
}

// State is a coarse view of an animation's playback state.
type State string

const (
	StateIdle         State = "idle"
	StateDelayPending State = "delay"
	StatePlaying      State = "playing"
	StateStopped      State = "stopped"
)

// Animation interpolates keyframe props over time and reports progress to
// listeners. An Animation is not safe for concurrent use; drive it from the
// goroutine that runs its scheduler's Host.
type Animation struct {
	id         string
	keyframes  []Keyframe
	duration   time.Duration
	iterations int
	delay      time.Duration
	manual     bool

	playing          bool
	stopped          bool
	started          bool
	destroyed        bool
	currentDelta     float64
	playbackRate     float64
	currentIteration int
	lastFrame        time.Time
	currentKeyframe  string
	previousProps    Props
	cancelDelay      func()

	scheduler      *Scheduler
	listeners      map[EventType][]listenerEntry
	nextListenerID ListenerID
	log            zerolog.Logger
}

var animationSeq uint64

// New densifies opts.Keyframes and returns an idle Animation. Unless
// opts.ManualMode is set, the animation is registered with s.
func New(s *Scheduler, opts Options) (*Animation, error) {
	if s == nil {
		return nil, fmt.Errorf("animation: nil scheduler")
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("animation: %w: %v", ErrInvalidDuration, opts.Duration)
	}
	if opts.Iterations < 0 {
		return nil, fmt.Errorf("animation: iterations must not be negative: %d", opts.Iterations)
	}
	if opts.Delay < 0 {
		return nil, fmt.Errorf("animation: delay must not be negative: %v", opts.Delay)
	}
	rate := opts.PlaybackRate
	if rate == 0 {
		rate = 1
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("animation: %w: %v", ErrInvalidRate, rate)
	}

	keyframes, err := Densify(opts.Keyframes)
	if err != nil {
		return nil, fmt.Errorf("animation: %w", err)
	}

	id := "anim-" + strconv.FormatUint(atomic.AddUint64(&animationSeq, 1), 10)
	a := &Animation{
		id:           id,
		keyframes:    keyframes,
		duration:     opts.Duration,
		iterations:   opts.Iterations,
		delay:        opts.Delay,
		manual:       opts.ManualMode,
		playbackRate: rate,
		scheduler:    s,
		listeners:    make(map[EventType][]listenerEntry),
		log:          s.log.With().Str("animation", id).Logger(),
	}
	if rate < 0 {
		a.currentDelta = 1
	}

	if !a.manual {
		s.Add(a)
	}
	return a, nil
}

// ID returns the animation's opaque identity.
func (a *Animation) ID() string { return a.id }

// Keyframes returns the densified keyframes, sorted by delta.
func (a *Animation) Keyframes() []Keyframe { return a.keyframes }

// Duration returns the length of one iteration at playback rate 1.
func (a *Animation) Duration() time.Duration { return a.duration }

// Iterations returns the configured iteration count.
func (a *Animation) Iterations() int { return a.iterations }

// Delay returns the configured start delay.
func (a *Animation) Delay() time.Duration { return a.delay }

// ManualMode reports whether the owner drives the animation via Update.
func (a *Animation) ManualMode() bool { return a.manual }

// Playing reports whether the animation is advancing.
func (a *Animation) Playing() bool { return a.playing }

// CurrentDelta returns the position within the current iteration.
func (a *Animation) CurrentDelta() float64 { return a.currentDelta }

// CurrentIteration returns the number of completed iterations.
func (a *Animation) CurrentIteration() int { return a.currentIteration }

// PlaybackRate returns the signed speed multiplier.
func (a *Animation) PlaybackRate() float64 { return a.playbackRate }

// Props returns the last interpolated props, nil before the first frame.
func (a *Animation) Props() Props { return a.previousProps }

// EffectiveDuration is Duration scaled by the playback rate. It is negative
// when playing in reverse, and saturates for rates so small that the result
// does not fit a time.Duration.
func (a *Animation) EffectiveDuration() time.Duration {
	return saturate(float64(a.duration) / a.playbackRate)
}

// saturate converts nanoseconds to a Duration, clamping at the int64 range.
func saturate(ns float64) time.Duration {
	switch {
	case ns >= math.MaxInt64:
		return math.MaxInt64
	case ns <= math.MinInt64:
		return math.MinInt64
	}
	return time.Duration(ns)
}

// span is the unsigned length of one iteration at the current rate.
func (a *Animation) span() time.Duration {
	return saturate(math.Abs(float64(a.duration) / a.playbackRate))
}

// CurrentTime is the elapsed time within the current iteration at the current
// playback rate.
func (a *Animation) CurrentTime() time.Duration {
	return saturate(a.currentDelta * float64(a.span()))
}

// State summarises the playback flags.
func (a *Animation) State() State {
	switch {
	case a.playing:
		return StatePlaying
	case a.cancelDelay != nil:
		return StateDelayPending
	case a.stopped:
		return StateStopped
	default:
		return StateIdle
	}
}

// Play starts playback after the configured delay. It does nothing if the
// animation is already playing or waiting out its delay.
func (a *Animation) Play() {
	if a.destroyed || a.playing || a.cancelDelay != nil {
		return
	}

	wait := saturate(math.Abs(float64(a.delay) / a.playbackRate))
	if wait <= 0 {
		a.start()
		return
	}
	a.cancelDelay = a.scheduler.host.AfterFunc(wait, func() {
		a.cancelDelay = nil
		a.start()
	})
}

func (a *Animation) start() {
	if a.destroyed {
		return
	}
	a.playing = true
	a.stopped = false
	a.lastFrame = a.scheduler.clock.Now()
	a.emit(EventPlay, nil)
	if !a.started {
		a.started = true
		a.emit(EventAnimationStart, nil)
	}
}

func (a *Animation) clearDelay() {
	if a.cancelDelay != nil {
		a.cancelDelay()
		a.cancelDelay = nil
	}
}

// Pause halts playback and keeps the current position.
func (a *Animation) Pause() {
	if a.destroyed {
		return
	}
	a.clearDelay()
	a.playing = false
	a.emit(EventPause, nil)
}

// Stop halts playback and keeps the current position. Unlike Reset it does
// not rewind.
func (a *Animation) Stop() {
	if a.destroyed {
		return
	}
	a.clearDelay()
	a.playing = false
	a.stopped = true
	a.emit(EventStop, nil)
}

// Reset rewinds to the start of the timeline, or its end for a negative
// playback rate, and emits one frame at that position. The animation is left
// paused.
func (a *Animation) Reset() {
	a.reset(false)
}

// reset rewinds and, if replay is set, plays again so that the configured
// delay is applied between iterations.
func (a *Animation) reset(replay bool) {
	if a.destroyed {
		return
	}
	a.clearDelay()
	a.playing = false
	if a.playbackRate < 0 {
		a.currentDelta = 1
	} else {
		a.currentDelta = 0
	}
	if !replay {
		a.currentIteration = 0
		a.started = false
	}
	a.emit(EventReset, nil)
	a.update(time.Time{}, 0, true)
	if replay {
		a.Play()
	}
}

// SetCurrentTime moves playback to t within the current iteration and
// (re)starts playback.
func (a *Animation) SetCurrentTime(t time.Duration) error {
	span := a.span()
	if t < 0 || t > span {
		return fmt.Errorf("animation: %w: time %v not in [0, %v]", ErrOutOfRange, t, span)
	}
	if span == 0 {
		return a.SetCurrentDelta(0)
	}
	return a.SetCurrentDelta(float64(t) / float64(span))
}

// SetCurrentDelta moves playback to d in [0, 1] and (re)starts playback.
func (a *Animation) SetCurrentDelta(d float64) error {
	if a.destroyed {
		return ErrDestroyed
	}
	if math.IsNaN(d) || d < 0 || d > 1 {
		return fmt.Errorf("animation: %w: delta %v not in [0, 1]", ErrOutOfRange, d)
	}
	a.Play()
	a.currentDelta = d
	a.emit(EventScrub, nil)
	return nil
}

// SetPlaybackRate changes the speed multiplier without moving the current
// position.
func (a *Animation) SetPlaybackRate(rate float64) error {
	if a.destroyed {
		return ErrDestroyed
	}
	if rate == 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("animation: %w: %v", ErrInvalidRate, rate)
	}
	a.playbackRate = rate
	a.emit(EventPlaybackRateChange, nil)
	return nil
}

// Destroy stops playback, drops every listener and leaves the scheduler.
// Calling it again has no effect.
func (a *Animation) Destroy() {
	if a.destroyed {
		return
	}
	a.clearDelay()
	a.playing = false
	a.destroyed = true
	a.listeners = make(map[EventType][]listenerEntry)
	a.scheduler.Remove(a)
}
