package stream

import (
	"github.com/matt-g-everett/ledanim/animation"
	"github.com/matt-g-everett/ledanim/stream/stripe"
)

// Props read by a StripeLayer.
const (
	StripeOffset  = "offset"
	StripeStretch = "stretch"
)

// A StripeLayer scrolls a band of coloured stripes along the strip. The
// offset prop positions the band in pixels; without it the band moves one
// full length per iteration. Stretch spreads the far end of the strip so
// stripes look even on a cone.
type StripeLayer struct {
	pixels  int
	band    stripe.Band
	stretch float64
}

// NewStripeLayer creates a StripeLayer for a strip of n pixels.
func NewStripeLayer(n int, band stripe.Band) *StripeLayer {
	s := new(StripeLayer)
	s.pixels = n
	s.band = band
	s.stretch = 1.4
	return s
}

// CalculateFrame creates a new Frame for the event's position and props.
func (s *StripeLayer) CalculateFrame(ev *animation.Event) *Frame {
	f := NewFrame(s.pixels)

	offset := ev.CurrentDelta * float64(s.band.Len())
	if v, ok := ev.Props[StripeOffset]; ok {
		offset = v
	}
	stretch := s.stretch
	if v, ok := ev.Props[StripeStretch]; ok {
		stretch = v
	}

	for i := range f.pixels {
		factor := 1.0 + stretch*(float64(i)/float64(s.pixels))
		f.pixels[i] = s.band.At(factor*float64(i) + offset)
	}

	return f
}
