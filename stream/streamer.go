package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledanim/animation"
	"github.com/matt-g-everett/ledanim/stream/stripe"
)

const commandTimeout = 2 * time.Second

// Streamer builds the configured animations and connects them to the LED
// strip and the map camera.
type Streamer struct {
	config     Config
	controller *Controller
	sink       FrameSink
	camera     Camera
	autoplay   []*animation.Animation
	log        zerolog.Logger
}

// NewStreamer creates the configured animations on controller. It must be
// called before controller.Run, which starts the autoplay animations.
func NewStreamer(config Config, controller *Controller, sink FrameSink, camera Camera, logger zerolog.Logger) (*Streamer, error) {
	s := new(Streamer)
	s.config = config
	s.controller = controller
	s.sink = sink
	s.camera = camera
	s.log = logger

	backColour, err := colorful.Hex(config.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	palette, err := config.Stripes.Colours()
	if err != nil {
		return nil, err
	}
	var band stripe.Band

	// Strip layers share the sink through a mixer when there is more than one.
	strip := func() FrameSink { return sink }
	layers := 0
	for _, ac := range config.Animations {
		if ac.Kind == KindStroke || ac.Kind == KindStripes {
			layers++
		}
	}
	if layers > 1 {
		mix := NewMixSink(sink)
		strip = mix.Input
	}

	for _, ac := range config.Animations {
		opts, err := ac.Options()
		if err != nil {
			return nil, err
		}
		a, err := animation.New(controller.Scheduler(), opts)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", ac.Name, err)
		}
		if err := controller.Add(ac.Name, a); err != nil {
			a.Destroy()
			return nil, err
		}

		switch ac.Kind {
		case KindStroke:
			Attach(a, NewStrokeLayer(config.Pixels, config.Gradient, backColour, config.Glow), strip())
		case KindCamera:
			Follow(a, camera)
		case KindStripes:
			if band == nil {
				g := stripe.NewGenerator(palette, config.Stripes.Min, config.Stripes.Max, config.Stripes.Seed)
				band = stripe.Generate(g, config.Stripes.Count)
			}
			Attach(a, NewStripeLayer(config.Pixels, band), strip())
		}
		s.logEvents(ac.Name, a)

		if ac.Autoplay {
			s.autoplay = append(s.autoplay, a)
		}
		s.log.Info().
			Str("name", ac.Name).
			Str("kind", ac.Kind).
			Dur("duration", ac.Duration).
			Int("keyframes", len(a.Keyframes())).
			Bool("manual", ac.Manual).
			Msg("animation loaded")
	}

	controller.OnRun(s.Autoplay)
	return s, nil
}

// Autoplay starts every animation configured with autoplay. The controller
// calls it when Run starts.
func (s *Streamer) Autoplay() {
	for _, a := range s.autoplay {
		a.Play()
	}
}

func (s *Streamer) logEvents(name string, a *animation.Animation) {
	for _, typ := range []animation.EventType{
		animation.EventPlay,
		animation.EventPause,
		animation.EventStop,
		animation.EventReset,
		animation.EventIteration,
		animation.EventAnimationEnd,
	} {
		a.AddEventListener(typ, func(ev *animation.Event) error {
			s.log.Debug().
				Str("name", name).
				Str("event", string(ev.Type)).
				Float64("delta", ev.CurrentDelta).
				Int("iteration", ev.Iteration).
				Msg("animation event")
			return nil
		})
	}
}

// HandleCommand decodes a JSON Command and applies it on the loop goroutine.
func (s *Streamer) HandleCommand(ctx context.Context, payload []byte) error {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decode command: %w", err)
	}

	var applyErr error
	if err := s.controller.Do(ctx, func() { applyErr = s.controller.Apply(cmd) }); err != nil {
		return err
	}
	return applyErr
}

func (s *Streamer) handleControlMessage(client mqtt.Client, msg mqtt.Message) {
	s.log.Debug().Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("control message")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := s.HandleCommand(ctx, msg.Payload()); err != nil {
		s.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("control command rejected")
	}
}

// Subscribe listens for control commands on the configured topic.
func (s *Streamer) Subscribe(client mqtt.Client) error {
	topic := s.config.Mqtt.Topics.Control
	if token := client.Subscribe(topic, 0, s.handleControlMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	s.log.Info().Str("topic", topic).Msg("subscribed to control topic")
	return nil
}
