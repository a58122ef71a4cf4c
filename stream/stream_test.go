package stream

import (
	"encoding/binary"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledanim/animation"
	"github.com/matt-g-everett/ledanim/stream/stripe"
)

type fakeSink struct {
	frames []*Frame
	err    error
}

func (s *fakeSink) SendFrame(f *Frame) error {
	s.frames = append(s.frames, f)
	return s.err
}

type fakeCamera struct {
	moves []CameraOptions
}

func (c *fakeCamera) JumpTo(opts CameraOptions) error {
	c.moves = append(c.moves, opts)
	return nil
}

func TestFrameMarshalBinary(t *testing.T) {
	f := NewFrame(3)
	f.Fill(colorful.Color{R: 1, G: 0, B: 0})
	f.pixels[2] = colorful.Color{R: 0, G: 0, B: 2}

	data, err := f.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 2+3*3)
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(data))
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 0, 0, 255}, data[2:])
}

func TestGradientGetColor(t *testing.T) {
	g := GradientTable{{0, 0}, {100, 1}}
	want := colorful.Hcl(50, 1, 0.5)
	assert.True(t, want.AlmostEqualRgb(g.GetColor(0.5, 1, 0.5)))
	assert.True(t, colorful.Hcl(0, 1, 0.5).AlmostEqualRgb(g.GetColor(-1, 1, 0.5)))
	assert.True(t, colorful.Hcl(100, 1, 0.5).AlmostEqualRgb(g.GetColor(2, 1, 0.5)))
}

func TestColourPropsRoundTrip(t *testing.T) {
	c, err := colorful.Hex("#3366cc")
	require.NoError(t, err)

	raw := ColourProps("stroke", c)
	props := animation.Props{}
	for k, v := range raw {
		props[k] = *v
	}
	got, ok := ColourFromProps(props, "stroke")
	require.True(t, ok)
	assert.Equal(t, "#3366cc", got.Clamped().Hex())

	delete(props, "stroke.l")
	_, ok = ColourFromProps(props, "stroke")
	assert.False(t, ok)
}

func TestStrokeLayerSplit(t *testing.T) {
	black := colorful.Color{}
	s := NewStrokeLayer(11, GradientTable{{120, 0}, {120, 1}}, black, 0)

	f := s.CalculateFrame(&animation.Event{CurrentDelta: 0.5, Props: animation.Props{TrailLum: 0.5}})
	require.Equal(t, 11, f.Len())
	assert.Equal(t, 5, s.Split(0.5))
	for i := 0; i <= 5; i++ {
		assert.NotEqual(t, black, f.Pixel(i), "pixel %d should be lit", i)
	}
	for i := 6; i < 11; i++ {
		assert.Equal(t, black, f.Pixel(i), "pixel %d should be dark", i)
	}

	assert.Equal(t, 0, s.Split(-1))
	assert.Equal(t, 10, s.Split(3))
}

func TestStrokeLayerHeadUsesColourProps(t *testing.T) {
	black := colorful.Color{}
	s := NewStrokeLayer(21, RainbowGradient, black, 2)
	red, _ := colorful.Hex("#ff0000")
	props := animation.Props{}
	for k, v := range ColourProps(StrokeColour, red) {
		props[k] = *v
	}

	f := s.CalculateFrame(&animation.Event{CurrentDelta: 0.5, Props: props})
	assert.True(t, red.AlmostEqualRgb(f.Pixel(10)), "head should be the stroke colour")
	assert.NotEqual(t, black, f.Pixel(11), "glow reaches past the split")
	assert.Equal(t, black, f.Pixel(13))
}

func TestCameraFromProps(t *testing.T) {
	base := CameraOptions{Center: [2]float64{1, 2}, Zoom: 3, Pitch: 40}
	got := CameraFromProps(animation.Props{PropLng: -0.12, PropZoom: 14, PropBearing: 90}, base)
	assert.Equal(t, CameraOptions{Center: [2]float64{-0.12, 2}, Zoom: 14, Bearing: 90, Pitch: 40}, got)
}

func TestStripeLayerScrolls(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	s := NewStripeLayer(4, stripe.Band{{Colour: red, Length: 2}, {Colour: blue, Length: 2}})

	f := s.CalculateFrame(&animation.Event{Props: animation.Props{StripeStretch: 0}})
	assert.Equal(t, []colorful.Color{red, red, blue, blue}, f.pixels)

	f = s.CalculateFrame(&animation.Event{Props: animation.Props{StripeStretch: 0, StripeOffset: 1}})
	assert.Equal(t, []colorful.Color{red, blue, blue, red}, f.pixels)

	// Without an offset prop the band moves with the delta.
	f = s.CalculateFrame(&animation.Event{CurrentDelta: 0.5, Props: animation.Props{StripeStretch: 0}})
	assert.Equal(t, []colorful.Color{blue, blue, red, red}, f.pixels)
}

func TestInterpolateFrame(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	f1 := NewFrame(3)
	f1.Fill(red)
	f2 := NewFrame(2)
	f2.Fill(blue)

	start := f1.InterpolateFrame(f2, 0)
	assert.True(t, red.AlmostEqualRgb(start.Pixel(0)))
	assert.True(t, red.AlmostEqualRgb(start.Pixel(1)))

	out := f1.InterpolateFrame(f2, 1)
	require.Equal(t, 3, out.Len())
	assert.True(t, blue.AlmostEqualRgb(out.Pixel(0)))
	assert.True(t, blue.AlmostEqualRgb(out.Pixel(1)))
	assert.Equal(t, red, out.Pixel(2), "pixels past the shorter frame are kept")

	mid := f1.InterpolateFrame(f2, 0.5)
	assert.Equal(t, red.BlendHcl(blue, 0.5), mid.Pixel(0))
}

func TestMixSinkBlendsInputs(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	out := new(fakeSink)
	mix := NewMixSink(out)
	stroke, stripes := mix.Input(), mix.Input()

	f1 := NewFrame(2)
	f1.Fill(red)
	require.NoError(t, stroke.SendFrame(f1))
	require.Len(t, out.frames, 1)
	assert.Same(t, f1, out.frames[0], "a lone input passes through")

	f2 := NewFrame(2)
	f2.Fill(blue)
	require.NoError(t, stripes.SendFrame(f2))
	require.Len(t, out.frames, 2)
	assert.Equal(t, red.BlendHcl(blue, 0.5), out.frames[1].Pixel(0))

	// The newest frame of each input is kept.
	f3 := NewFrame(2)
	f3.Fill(blue)
	require.NoError(t, stroke.SendFrame(f3))
	assert.True(t, blue.AlmostEqualRgb(out.frames[2].Pixel(1)))
}
