package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = time.Second

// Publisher is the part of mqtt.Client used for output.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// FrameSink receives rendered frames.
type FrameSink interface {
	SendFrame(f *Frame) error
}

func publish(client Publisher, topic string, qos byte, payload []byte) error {
	token := client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

type mqttSink struct {
	client Publisher
	topic  string
}

// NewMqttSink sends frames as binary over MQTT to an ledrx device.
func NewMqttSink(client Publisher, topic string) FrameSink {
	return &mqttSink{client: client, topic: topic}
}

func (s *mqttSink) SendFrame(f *Frame) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	return publish(s.client, s.topic, 0, b)
}

type mqttCamera struct {
	client Publisher
	topic  string
}

// NewMqttCamera publishes camera positions as JSON for the map host.
func NewMqttCamera(client Publisher, topic string) Camera {
	return &mqttCamera{client: client, topic: topic}
}

func (c *mqttCamera) JumpTo(opts CameraOptions) error {
	b, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return publish(c.client, c.topic, 0, b)
}
