package stream

import (
	"sync"
)

// A MixSink lets several layers share one strip. Each layer sends to its own
// input; every frame received is blended with the latest frame of the other
// inputs, weighted equally, and forwarded.
type MixSink struct {
	out    FrameSink
	mu     sync.Mutex
	latest []*Frame
}

// NewMixSink creates a MixSink forwarding to out.
func NewMixSink(out FrameSink) *MixSink {
	m := new(MixSink)
	m.out = out
	return m
}

// Input adds a layer input.
func (m *MixSink) Input() FrameSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = append(m.latest, nil)
	return &mixInput{mix: m, slot: len(m.latest) - 1}
}

type mixInput struct {
	mix  *MixSink
	slot int
}

func (in *mixInput) SendFrame(f *Frame) error {
	return in.mix.send(in.slot, f)
}

func (m *MixSink) send(slot int, f *Frame) error {
	m.mu.Lock()
	m.latest[slot] = f
	var mixed *Frame
	n := 0
	for _, frame := range m.latest {
		if frame == nil {
			continue
		}
		n++
		if mixed == nil {
			mixed = frame
			continue
		}
		mixed = mixed.InterpolateFrame(frame, 1/float64(n))
	}
	m.mu.Unlock()

	return m.out.SendFrame(mixed)
}
