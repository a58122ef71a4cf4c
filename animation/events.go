package animation

import (
	"time"
)

// EventType identifies an animation event.
type EventType string

const (
	EventPlay               EventType = "play"
	EventPause              EventType = "pause"
	EventStop               EventType = "stop"
	EventReset              EventType = "reset"
	EventScrub              EventType = "scrub"
	EventPlaybackRateChange EventType = "playbackratechange"
	EventTimeUpdate         EventType = "timeupdate"
	EventKeyframe           EventType = "keyframe"
	EventIteration          EventType = "iteration"
	EventAnimationStart     EventType = "animationstart"
	EventAnimationEnd       EventType = "animationend"
)

// EventTypes lists every event an Animation emits.
var EventTypes = []EventType{
	EventPlay,
	EventPause,
	EventStop,
	EventReset,
	EventScrub,
	EventPlaybackRateChange,
	EventTimeUpdate,
	EventKeyframe,
	EventIteration,
	EventAnimationStart,
	EventAnimationEnd,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Props maps property names to interpolated values.
type Props map[string]float64

// Event is passed to listeners. Keyframe, NextKeyframe and the props are only
// set on keyframe and timeupdate events.
type Event struct {
	Type         EventType
	Target       *Animation
	CurrentTime  time.Duration
	CurrentDelta float64
	PlaybackRate float64
	Iteration    int

	Keyframe      *Keyframe
	NextKeyframe  *Keyframe
	Props         Props
	PreviousProps Props
}

// Listener handles an event. A returned error is reported through the
// scheduler's ErrorHandler; it never interrupts other listeners.
type Listener func(ev *Event) error

// ListenerID identifies a registered listener. The zero value is never
// issued.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// AddEventListener appends fn to the listeners for typ. Unknown event types
// are logged and ignored, returning the zero ListenerID.
func (a *Animation) AddEventListener(typ EventType, fn Listener) ListenerID {
	if !typ.Valid() {
		a.log.Warn().Str("event", string(typ)).Msg("ignoring listener for unknown event type")
		return 0
	}
	if fn == nil || a.destroyed {
		return 0
	}
	a.nextListenerID++
	id := a.nextListenerID
	a.listeners[typ] = append(a.listeners[typ], listenerEntry{id: id, fn: fn})
	return id
}

// RemoveEventListener removes the listener registered as id for typ and
// reports whether one was found.
func (a *Animation) RemoveEventListener(typ EventType, id ListenerID) bool {
	if !typ.Valid() {
		a.log.Warn().Str("event", string(typ)).Msg("ignoring removal for unknown event type")
		return false
	}
	entries := a.listeners[typ]
	for i, entry := range entries {
		if entry.id == id {
			a.listeners[typ] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// emit dispatches an event of type typ to its listeners in registration
// order. Failures are reported and dispatch continues.
func (a *Animation) emit(typ EventType, fill func(ev *Event)) {
	entries := a.listeners[typ]
	if len(entries) == 0 {
		return
	}

	ev := &Event{
		Type:         typ,
		Target:       a,
		CurrentTime:  a.CurrentTime(),
		CurrentDelta: a.currentDelta,
		PlaybackRate: a.playbackRate,
		Iteration:    a.currentIteration,
	}
	if fill != nil {
		fill(ev)
	}

	// Listeners may add or remove listeners while we iterate.
	snapshot := make([]listenerEntry, len(entries))
	copy(snapshot, entries)
	for _, entry := range snapshot {
		if err := invoke(typ, entry.fn, ev); err != nil {
			a.scheduler.report(err)
		}
	}
}
