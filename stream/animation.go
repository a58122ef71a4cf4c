package stream

import (
	"github.com/matt-g-everett/ledanim/animation"
)

// A Layer renders an animation frame onto the LED strip.
type Layer interface {
	CalculateFrame(ev *animation.Event) *Frame
}
