package stream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
mqtt:
  url: tcp://broker:1883
  topics:
    stream: tree/stream
pixels: 50
glow: 3
animations:
  - name: route
    kind: camera
    duration: 30s
    iterations: 0
    delay: 500ms
    autoplay: true
    keyframes:
      - delta: 0
        easing: inOutQuad
        props: {lng: -0.12, lat: 51.5, zoom: 12, bearing: 0}
      - delta: 0.5
        props: {bearing: null, zoom: 14}
      - delta: 1
        props: {lng: -0.10, lat: 51.52, bearing: 90}
  - name: stroke
    kind: stroke
    duration: 1m
    iterations: 2
    playbackRate: -1
    manual: true
    keyframes:
      - delta: 0
        colours: {stroke: "#ff0000"}
      - delta: 1
        colours: {stroke: "#0000ff"}
        props: {luminance: 0.2}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", c.Mqtt.URL)
	assert.Equal(t, "tree/stream", c.Mqtt.Topics.Stream)
	assert.Equal(t, "home/xmastree/control", c.Mqtt.Topics.Control)
	assert.Equal(t, DefaultListen, c.Listen)
	assert.Equal(t, DefaultFrameRate, c.FrameRate)
	assert.Equal(t, 50, c.Pixels)
	assert.Equal(t, RainbowGradient, c.Gradient)
	assert.Equal(t, 150, c.Stripes.Min)
	assert.Equal(t, 400, c.Stripes.Max)
	assert.Equal(t, 20, c.Stripes.Count)
	require.Len(t, c.Animations, 2)

	route := c.Animations[0]
	assert.Equal(t, 30*time.Second, route.Duration)
	assert.Equal(t, 500*time.Millisecond, route.Delay)
	assert.True(t, route.Autoplay)
	require.Len(t, route.Keyframes, 3)
	assert.Nil(t, route.Keyframes[1].Props["bearing"])
	require.NotNil(t, route.Keyframes[1].Props["zoom"])
	assert.Equal(t, 14.0, *route.Keyframes[1].Props["zoom"])

	stroke := c.Animations[1]
	assert.Equal(t, time.Minute, stroke.Duration)
	assert.Equal(t, -1.0, stroke.PlaybackRate)
	assert.True(t, stroke.Manual)
}

func TestAnimationConfigOptions(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	opts, err := c.Animations[1].Options()
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Iterations)
	assert.True(t, opts.ManualMode)
	require.Len(t, opts.Keyframes, 2)
	assert.Contains(t, opts.Keyframes[0].Props, "stroke.h")
	assert.Contains(t, opts.Keyframes[0].Props, "stroke.c")
	assert.Contains(t, opts.Keyframes[0].Props, "stroke.l")
	assert.Contains(t, opts.Keyframes[1].Props, "luminance")

	route, err := c.Animations[0].Options()
	require.NoError(t, err)
	assert.Equal(t, "inOutQuad", route.Keyframes[0].Easing)
}

func TestAnimationConfigBadColour(t *testing.T) {
	ac := AnimationConfig{
		Name:      "bad",
		Kind:      KindStroke,
		Duration:  time.Second,
		Keyframes: []KeyframeConfig{{Colours: map[string]string{"stroke": "red"}}},
	}
	_, err := ac.Options()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
animations:
  - name: a
    kind: camera
  - name: a
    kind: stroke
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = LoadConfig(writeConfig(t, `
animations:
  - name: a
    kind: laser
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")

	_, err = LoadConfig(writeConfig(t, `
stripes:
  palette: ["#ff0000", "pink"]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "palette")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
