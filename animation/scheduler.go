// Package animation drives keyframe animations over time.
//
// An [Animation] owns a densified keyframe timeline and playback state. Each
// frame it interpolates every property between the surrounding keyframes,
// shaped by the segment's easing curve, and emits a timeupdate [Event]
// carrying the result. Consumers read Event.Props and apply them to whatever
// they animate.
//
// A [Scheduler] drives every non-manual animation from a single per-frame
// callback supplied by a [Host]. Animations created with ManualMode are never
// scheduled; their owner calls [Animation.Update] once per frame instead.
//
// Animations are not safe for concurrent use. All calls, including listener
// dispatch, happen on the goroutine that runs the Host's callbacks.
package animation

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scheduler advances registered animations once per host frame. It requests
// frames only while at least one animation is registered.
type Scheduler struct {
	host     Host
	clock    Clock
	log      zerolog.Logger
	onError  ErrorHandler
	registry []*Animation
	running  bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the system clock used to stamp playback starts.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger used by the scheduler and its animations.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithErrorHandler sets the receiver of listener failures. By default they
// are logged.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Scheduler) { s.onError = h }
}

// NewScheduler returns an idle scheduler driven by host.
func NewScheduler(host Host, opts ...Option) *Scheduler {
	s := &Scheduler{
		host:  host,
		clock: realClock{},
		log:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a. The first registration starts the frame loop.
func (s *Scheduler) Add(a *Animation) {
	for _, existing := range s.registry {
		if existing == a {
			return
		}
	}
	s.registry = append(s.registry, a)
	if !s.running {
		s.running = true
		s.host.RequestFrame(s.loop)
	}
}

// Remove deregisters a. The frame loop stops at its next frame once the
// registry is empty.
func (s *Scheduler) Remove(a *Animation) {
	for i, existing := range s.registry {
		if existing == a {
			s.registry = append(s.registry[:i:i], s.registry[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered animations.
func (s *Scheduler) Len() int { return len(s.registry) }

// Running reports whether the frame loop is scheduled.
func (s *Scheduler) Running() bool { return s.running }

// Tick updates every registered, playing animation in registration order.
// Animations added or removed by listeners during the tick take effect on the
// next one.
func (s *Scheduler) Tick(now time.Time) {
	snapshot := make([]*Animation, len(s.registry))
	copy(snapshot, s.registry)
	for _, a := range snapshot {
		if a.playing {
			a.tick(now)
		}
	}
}

func (s *Scheduler) loop(now time.Time) {
	if len(s.registry) == 0 {
		s.running = false
		return
	}
	s.Tick(now)
	s.host.RequestFrame(s.loop)
}

func (s *Scheduler) report(err error) {
	if s.onError != nil {
		s.onError(err)
		return
	}
	s.log.Error().Err(err).Msg("animation listener failed")
}
