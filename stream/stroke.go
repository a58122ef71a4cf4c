package stream

import (
	"math"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledanim/animation"
	"github.com/matt-g-everett/ledanim/util"
)

// Props read by a StrokeLayer.
const (
	StrokeColour = "stroke"
	TrailChroma  = "chroma"
	TrailLum     = "luminance"
)

// A StrokeLayer draws route progress along the strip: pixels up to the
// animation's current delta show the gradient, a glowing head marks the
// split and the rest shows the background.
type StrokeLayer struct {
	pixels     int
	gradient   GradientTable
	backColour colorful.Color
	headColour colorful.Color
	chroma     float64
	luminance  float64
	glow       []float64
}

// NewStrokeLayer creates a StrokeLayer for a strip of n pixels with a head
// glowWidth pixels either side of the split.
func NewStrokeLayer(n int, gradient GradientTable, backColour colorful.Color, glowWidth int) *StrokeLayer {
	s := new(StrokeLayer)
	s.pixels = n
	s.gradient = gradient
	s.backColour = backColour
	s.headColour, _ = colorful.Hex("#808080")
	s.chroma = 1.0
	s.luminance = 0.05
	if glowWidth > 0 {
		s.glow = util.GenerateLut(2*glowWidth+1, ease.InOutQuad)
	}

	return s
}

// Split returns the pixel index of the stroke head for delta.
func (s *StrokeLayer) Split(delta float64) int {
	if s.pixels < 2 {
		return 0
	}
	delta = math.Max(0, math.Min(1, delta))
	return int(math.Round(delta * float64(s.pixels-1)))
}

// CalculateFrame creates a new Frame for the event's position and props.
func (s *StrokeLayer) CalculateFrame(ev *animation.Event) *Frame {
	f := NewFrame(s.pixels)
	f.Fill(s.backColour)
	if s.pixels == 0 {
		return f
	}

	chroma, lum := s.chroma, s.luminance
	if v, ok := ev.Props[TrailChroma]; ok {
		chroma = v
	}
	if v, ok := ev.Props[TrailLum]; ok {
		lum = v
	}
	head, ok := ColourFromProps(ev.Props, StrokeColour)
	if !ok {
		head = s.headColour
	}

	split := s.Split(ev.CurrentDelta)
	span := math.Max(1, float64(s.pixels-1))
	for i := 0; i <= split; i++ {
		f.pixels[i] = s.gradient.GetColor(float64(i)/span, chroma, lum)
	}

	width := len(s.glow) / 2
	for k, gain := range s.glow {
		i := split - width + k
		if i < 0 || i >= s.pixels {
			continue
		}
		f.pixels[i] = f.pixels[i].BlendHcl(head, gain)
	}

	return f
}
