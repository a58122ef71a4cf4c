package animation

import (
	"time"

	"github.com/matt-g-everett/ledanim/util"
)

// Update advances a manual-mode animation by one fixed frame of ManualFrame.
// Call it once per rendered frame; the animation only tracks wall-clock
// duration if frames arrive at roughly 60 per second.
func (a *Animation) Update() {
	a.update(time.Time{}, ManualFrame, false)
}

// tick advances the animation by the wall-clock time since its previous frame.
func (a *Animation) tick(now time.Time) {
	frame := now.Sub(a.lastFrame)
	if frame < 0 {
		frame = 0
	}
	a.update(now, frame, false)
}

// update advances currentDelta by frame, interpolates props and emits the
// frame's events. A forced update renders the current position without
// advancing and without iteration handling.
func (a *Animation) update(now time.Time, frame time.Duration, forced bool) {
	if a.destroyed || (!a.playing && !forced) {
		return
	}

	if !forced {
		if !now.IsZero() {
			a.lastFrame = now
		}
		a.currentDelta += float64(frame) * a.playbackRate / float64(a.duration)
	}

	current, next := a.lookup(a.currentDelta)
	if current != nil && current.ID != a.currentKeyframe {
		a.currentKeyframe = current.ID
		a.emit(EventKeyframe, func(ev *Event) {
			ev.Keyframe = current
			ev.NextKeyframe = next
		})
	}

	props := a.interpolate(current, next)
	previous := a.previousProps
	a.previousProps = props
	a.emit(EventTimeUpdate, func(ev *Event) {
		ev.Keyframe = current
		ev.NextKeyframe = next
		ev.Props = props
		ev.PreviousProps = previous
	})

	if forced || a.destroyed {
		return
	}
	if a.crossed() {
		a.currentIteration++
		a.emit(EventIteration, nil)
		if a.iterations == Forever || a.currentIteration < a.iterations {
			a.reset(true)
			return
		}
		a.Stop()
		a.started = false
		a.emit(EventAnimationEnd, nil)
	}
}

// crossed reports whether playback ran off the end of the timeline in its
// direction of travel.
func (a *Animation) crossed() bool {
	if a.playbackRate < 0 {
		return a.currentDelta < 0
	}
	return a.currentDelta >= 1
}

// lookup returns the last keyframe at or before delta and the first one
// after it. Either may be nil.
func (a *Animation) lookup(delta float64) (current, next *Keyframe) {
	for i := range a.keyframes {
		k := &a.keyframes[i]
		if k.Delta <= delta {
			current = k
			continue
		}
		next = k
		break
	}
	return current, next
}

func (a *Animation) interpolate(current, next *Keyframe) Props {
	props := make(Props)
	switch {
	case current != nil && next != nil:
		t := (a.currentDelta - current.Delta) / (next.Delta - current.Delta)
		alpha := current.Ease(t)
		for name, from := range current.Props {
			props[name] = util.Lerp(from, next.Props[name], alpha)
		}
	case current != nil:
		for name, v := range current.Props {
			props[name] = v
		}
	case next != nil:
		// Reverse playback can run past the first keyframe; hold it.
		for name, v := range next.Props {
			props[name] = v
		}
	}
	return props
}
