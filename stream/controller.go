package stream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledanim/animation"
)

var ErrUnknownAnimation = errors.New("unknown animation")

// Status describes one animation for remote clients.
type Status struct {
	Name         string          `json:"name"`
	State        animation.State `json:"state"`
	Delta        float64         `json:"delta"`
	Iteration    int             `json:"iteration"`
	PlaybackRate float64         `json:"playbackRate"`
	Manual       bool            `json:"manual"`
	Props        animation.Props `json:"props,omitempty"`
}

// Controller owns the frame loop. It is the animation.Host for its
// scheduler, so every animation callback runs on the goroutine in Run.
type Controller struct {
	frameRate  float64
	scheduler  *animation.Scheduler
	animations map[string]*animation.Animation
	names      []string
	pending    []func(time.Time)
	onRun      []func()
	commands   chan func()
	done       chan struct{}

	mu    sync.Mutex
	fired []func()
	wake  chan struct{}
	log        zerolog.Logger
}

// NewController creates an instance of a Controller ticking at frameRate.
func NewController(frameRate float64, logger zerolog.Logger) *Controller {
	c := new(Controller)
	c.frameRate = frameRate
	if c.frameRate <= 0 {
		c.frameRate = DefaultFrameRate
	}
	c.animations = make(map[string]*animation.Animation)
	c.commands = make(chan func())
	c.done = make(chan struct{})
	c.wake = make(chan struct{}, 1)
	c.log = logger
	c.scheduler = animation.NewScheduler(c, animation.WithLogger(logger))

	return c
}

// Scheduler returns the scheduler driven by the Controller.
func (c *Controller) Scheduler() *animation.Scheduler {
	return c.scheduler
}

// Add names a. Manual-mode animations are stepped once per frame by the
// Controller itself.
func (c *Controller) Add(name string, a *animation.Animation) error {
	if _, ok := c.animations[name]; ok {
		return fmt.Errorf("animation %q already exists", name)
	}
	c.animations[name] = a
	c.names = append(c.names, name)
	return nil
}

// Animation looks up an animation by name.
func (c *Controller) Animation(name string) (*animation.Animation, bool) {
	a, ok := c.animations[name]
	return a, ok
}

// Names lists animations in the order they were added.
func (c *Controller) Names() []string {
	return c.names
}

// OnRun registers fn to run on the loop goroutine when Run starts, before
// the first frame.
func (c *Controller) OnRun(fn func()) {
	c.onRun = append(c.onRun, fn)
}

// RequestFrame implements animation.Host.
func (c *Controller) RequestFrame(fn func(now time.Time)) {
	c.pending = append(c.pending, fn)
}

// AfterFunc implements animation.Host. fn runs on the loop goroutine, in Run
// or at the next Step.
func (c *Controller) AfterFunc(d time.Duration, fn func()) func() {
	cancelled := false
	t := time.AfterFunc(d, func() {
		c.post(func() {
			if !cancelled {
				fn()
			}
		})
	})
	return func() {
		cancelled = true
		t.Stop()
	}
}

// post queues fn for the loop without blocking the caller.
func (c *Controller) post(fn func()) {
	c.mu.Lock()
	c.fired = append(c.fired, fn)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Controller) runFired() {
	c.mu.Lock()
	fired := c.fired
	c.fired = nil
	c.mu.Unlock()
	for _, fn := range fired {
		fn()
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (c *Controller) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case c.commands <- wrapped:
	case <-c.done:
		return errors.New("controller stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Step runs one frame: expired timers, the scheduler's pending callbacks,
// then one Update for every manual-mode animation.
func (c *Controller) Step(now time.Time) {
	c.runFired()
	frames := c.pending
	c.pending = nil
	for _, fn := range frames {
		fn(now)
	}
	for _, name := range c.names {
		if a := c.animations[name]; a.ManualMode() {
			a.Update()
		}
	}
}

// Run drives frames until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	interval := time.Duration(float64(time.Second) / c.frameRate)
	publishTimer := time.NewTicker(interval)
	defer publishTimer.Stop()

	c.log.Info().Float64("fps", c.frameRate).Int("animations", len(c.names)).Msg("frame loop started")
	for _, fn := range c.onRun {
		fn()
	}
	for {
		select {
		case now := <-publishTimer.C:
			c.Step(now)
		case fn := <-c.commands:
			fn()
		case <-c.wake:
			c.runFired()
		case <-ctx.Done():
			for _, name := range c.names {
				c.animations[name].Destroy()
			}
			return ctx.Err()
		}
	}
}

// Command is a remote playback request.
type Command struct {
	Animation string  `json:"animation"`
	Action    string  `json:"action"`
	Value     float64 `json:"value,omitempty"`
}

// Apply executes cmd. It must run on the loop goroutine; use Do from
// elsewhere.
func (c *Controller) Apply(cmd Command) error {
	a, ok := c.animations[cmd.Animation]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAnimation, cmd.Animation)
	}

	switch cmd.Action {
	case "play":
		a.Play()
	case "pause":
		a.Pause()
	case "stop":
		a.Stop()
	case "reset":
		a.Reset()
	case "rate":
		return a.SetPlaybackRate(cmd.Value)
	case "seek":
		return a.SetCurrentDelta(cmd.Value)
	case "time":
		if math.IsNaN(cmd.Value) || math.IsInf(cmd.Value, 0) {
			return fmt.Errorf("invalid time %v", cmd.Value)
		}
		return a.SetCurrentTime(time.Duration(cmd.Value * float64(time.Millisecond)))
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	return nil
}

// Status reports every animation. It must run on the loop goroutine.
func (c *Controller) Status() []Status {
	out := make([]Status, 0, len(c.names))
	for _, name := range c.names {
		a := c.animations[name]
		out = append(out, Status{
			Name:         name,
			State:        a.State(),
			Delta:        a.CurrentDelta(),
			Iteration:    a.CurrentIteration(),
			PlaybackRate: a.PlaybackRate(),
			Manual:       a.ManualMode(),
			Props:        a.Props(),
		})
	}
	return out
}
