package stream

import (
	"fmt"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v2"

	"github.com/matt-g-everett/ledanim/animation"
)

// Defaults applied by LoadConfig.
const (
	DefaultFrameRate = 30.0
	DefaultListen    = ":3000"
)

// Animation kinds.
const (
	KindCamera  = "camera"
	KindStroke  = "stroke"
	KindStripes = "stripes"
)

// StripesConfig describes the band scrolled by stripes animations.
type StripesConfig struct {
	Palette []string `yaml:"palette"`
	Min     int      `yaml:"min"`
	Max     int      `yaml:"max"`
	Count   int      `yaml:"count"`
	Seed    int64    `yaml:"seed"`
}

type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		ClientID string `yaml:"clientID"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Camera  string `yaml:"camera"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Listen     string            `yaml:"listen"`
	FrameRate  float64           `yaml:"frameRate"`
	Pixels     int               `yaml:"pixels"`
	Background string            `yaml:"background"`
	Glow       int               `yaml:"glow"`
	Gradient   GradientTable     `yaml:"gradient"`
	Stripes    StripesConfig     `yaml:"stripes"`
	Animations []AnimationConfig `yaml:"animations"`
}

// AnimationConfig declares one animation and the consumer it drives.
type AnimationConfig struct {
	Name         string           `yaml:"name"`
	Kind         string           `yaml:"kind"`
	Duration     time.Duration    `yaml:"duration"`
	Iterations   int              `yaml:"iterations"`
	Delay        time.Duration    `yaml:"delay"`
	Manual       bool             `yaml:"manual"`
	PlaybackRate float64          `yaml:"playbackRate"`
	Autoplay     bool             `yaml:"autoplay"`
	Keyframes    []KeyframeConfig `yaml:"keyframes"`
}

// KeyframeConfig is a keyframe as written in YAML. Colours are hex strings
// expanded into HCL props.
type KeyframeConfig struct {
	Delta   float64             `yaml:"delta"`
	Easing  string              `yaml:"easing"`
	Props   map[string]*float64 `yaml:"props"`
	Colours map[string]string   `yaml:"colours"`
}

// LoadConfig reads a YAML config file and fills in defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&c); err != nil {
		return c, fmt.Errorf("decode %s: %w", path, err)
	}
	c.applyDefaults()
	return c, c.Validate()
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.Pixels <= 0 {
		c.Pixels = DefaultPixels
	}
	if c.Background == "" {
		c.Background = "#000005"
	}
	if len(c.Gradient) == 0 {
		c.Gradient = RainbowGradient
	}
	if c.Stripes.Min <= 0 {
		c.Stripes.Min = 150
	}
	if c.Stripes.Max <= c.Stripes.Min {
		c.Stripes.Max = c.Stripes.Min + 250
	}
	if c.Stripes.Count <= 0 {
		c.Stripes.Count = 20
	}
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = "ledanim"
	}
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = "home/xmastree/stream"
	}
	if c.Mqtt.Topics.Camera == "" {
		c.Mqtt.Topics.Camera = "home/xmastree/camera"
	}
	if c.Mqtt.Topics.Control == "" {
		c.Mqtt.Topics.Control = "home/xmastree/control"
	}
}

// Validate checks names and kinds; keyframe problems surface when the
// animations are built.
func (c Config) Validate() error {
	if _, err := colorful.Hex(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := c.Stripes.Colours(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i, a := range c.Animations {
		if a.Name == "" {
			return fmt.Errorf("animation %d: missing name", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("animation %q: duplicate name", a.Name)
		}
		seen[a.Name] = true
		switch a.Kind {
		case KindCamera, KindStroke, KindStripes:
		default:
			return fmt.Errorf("animation %q: unknown kind %q", a.Name, a.Kind)
		}
	}
	return nil
}

// Colours parses the palette.
func (s StripesConfig) Colours() ([]colorful.Color, error) {
	var palette []colorful.Color
	for _, hex := range s.Palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("stripes palette %q: %w", hex, err)
		}
		palette = append(palette, c)
	}
	return palette, nil
}

// Options converts the config into animation options.
func (a AnimationConfig) Options() (animation.Options, error) {
	keyframes := make([]animation.RawKeyframe, len(a.Keyframes))
	for i, k := range a.Keyframes {
		props := make(map[string]*float64, len(k.Props)+3*len(k.Colours))
		for name, v := range k.Props {
			props[name] = v
		}
		for name, hex := range k.Colours {
			c, err := colorful.Hex(hex)
			if err != nil {
				return animation.Options{}, fmt.Errorf("animation %q keyframe %d colour %q: %w", a.Name, i, name, err)
			}
			for prop, v := range ColourProps(name, c) {
				props[prop] = v
			}
		}
		keyframes[i] = animation.RawKeyframe{
			Delta:  k.Delta,
			Props:  props,
			Easing: k.Easing,
		}
	}

	return animation.Options{
		Keyframes:    keyframes,
		Duration:     a.Duration,
		Iterations:   a.Iterations,
		Delay:        a.Delay,
		ManualMode:   a.Manual,
		PlaybackRate: a.PlaybackRate,
	}, nil
}
