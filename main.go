package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matt-g-everett/ledanim/api"
	"github.com/matt-g-everett/ledanim/stream"
)

type app struct {
	Config     stream.Config
	Client     mqtt.Client
	Controller *stream.Controller
	Streamer   *stream.Streamer
	Api        *api.Api
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Info().Str("broker", a.Config.Mqtt.URL).Msg("connected")
	if err := a.Streamer.Subscribe(client); err != nil {
		log.Error().Err(err).Msg("subscribe failed")
	}
}

func (a *app) handleConnectionLost(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("connection lost")
}

func (a *app) run(ctx context.Context, listen string) error {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer a.Client.Disconnect(250)

	go func() {
		if err := a.Api.Serve(ctx, listen); err != nil {
			log.Error().Err(err).Msg("http server crashed")
		}
	}()

	err := a.Controller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	listen := flag.String("listen", "", "HTTP listen address, overrides the config.")
	debug := flag.Bool("debug", false, "Log every animation event.")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	mqtt.ERROR = stdlog.New(log.Logger.With().Str("component", "mqtt").Logger(), "", 0)

	config, err := stream.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	if *listen != "" {
		config.Listen = *listen
	}
	log.Info().
		Str("broker", config.Mqtt.URL).
		Float64("fps", config.FrameRate).
		Int("pixels", config.Pixels).
		Int("animations", len(config.Animations)).
		Msg("config loaded")

	a := &app{Config: config}
	options := mqtt.NewClientOptions().
		AddBroker(config.Mqtt.URL).
		SetClientID(config.Mqtt.ClientID).
		SetUsername(config.Mqtt.Username).
		SetPassword(config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect).
		SetConnectionLostHandler(a.handleConnectionLost)
	a.Client = mqtt.NewClient(options)

	a.Controller = stream.NewController(config.FrameRate, log.Logger)
	a.Streamer, err = stream.NewStreamer(
		config,
		a.Controller,
		stream.NewMqttSink(a.Client, config.Mqtt.Topics.Stream),
		stream.NewMqttCamera(a.Client, config.Mqtt.Topics.Camera),
		log.Logger,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("building animations failed")
	}

	a.Api = api.NewApi(a.Controller, log.Logger)
	for _, name := range a.Controller.Names() {
		anim, _ := a.Controller.Animation(name)
		a.Api.Watch(name, anim)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, config.Listen); err != nil {
		log.Fatal().Err(err).Msg("stopped")
	}
	log.Info().Msg("shutting down")
}
