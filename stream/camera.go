package stream

import (
	"github.com/matt-g-everett/ledanim/animation"
)

// Props read by Follow.
const (
	PropLng     = "lng"
	PropLat     = "lat"
	PropZoom    = "zoom"
	PropBearing = "bearing"
	PropPitch   = "pitch"
)

// CameraOptions positions the map camera.
type CameraOptions struct {
	Center  [2]float64 `json:"center"`
	Zoom    float64    `json:"zoom"`
	Bearing float64    `json:"bearing"`
	Pitch   float64    `json:"pitch"`
}

// Camera is the map host's camera.
type Camera interface {
	JumpTo(opts CameraOptions) error
}

// CameraFromProps overlays any camera props onto base.
func CameraFromProps(props animation.Props, base CameraOptions) CameraOptions {
	opts := base
	if v, ok := props[PropLng]; ok {
		opts.Center[0] = v
	}
	if v, ok := props[PropLat]; ok {
		opts.Center[1] = v
	}
	if v, ok := props[PropZoom]; ok {
		opts.Zoom = v
	}
	if v, ok := props[PropBearing]; ok {
		opts.Bearing = v
	}
	if v, ok := props[PropPitch]; ok {
		opts.Pitch = v
	}
	return opts
}

// Follow moves cam on every timeupdate of a.
func Follow(a *animation.Animation, cam Camera) animation.ListenerID {
	var last CameraOptions
	return a.AddEventListener(animation.EventTimeUpdate, func(ev *animation.Event) error {
		last = CameraFromProps(ev.Props, last)
		return cam.JumpTo(last)
	})
}

// Attach renders layer on every timeupdate of a and sends the frame to sink.
func Attach(a *animation.Animation, layer Layer, sink FrameSink) animation.ListenerID {
	return a.AddEventListener(animation.EventTimeUpdate, func(ev *animation.Event) error {
		return sink.SendFrame(layer.CalculateFrame(ev))
	})
}
