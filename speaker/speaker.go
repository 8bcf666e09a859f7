// Package speaker captures system audio output as a stream of float32
// samples for transcription.
package speaker

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

const (
	sampleRate = 16000
	channels   = 1

	// Samples buffered before the oldest are dropped. Thirty seconds at
	// 16 kHz mono.
	maxQueuedSamples = sampleRate * 30
)

// Input opens the system audio loopback device
type Input struct {
	malgoCtx *malgo.AllocatedContext
}

// NewInput initializes the audio backend
func NewInput() (*Input, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return &Input{malgoCtx: ctx}, nil
}

// Stream starts capturing system audio. The returned stream owns the
// device; Close stops capture and releases it.
func (in *Input) Stream() (*Stream, error) {
	s := &Stream{
		wake: make(chan struct{}, 1),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Loopback)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = channels
	deviceConfig.SampleRate = sampleRate
	deviceConfig.Alsa.NoMMap = 1

	onData := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		s.push(decodeSamples(pInputSamples))
	}

	device, err := malgo.InitDevice(in.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loopback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start loopback device: %w", err)
	}

	s.device = device
	return s, nil
}

// Close releases the audio backend
func (in *Input) Close() error {
	if in.malgoCtx != nil {
		_ = in.malgoCtx.Uninit()
		in.malgoCtx.Free()
		in.malgoCtx = nil
	}
	return nil
}

// Stream is a bounded queue of captured samples. The capture callback
// pushes, Read pops.
type Stream struct {
	device *malgo.Device

	mu     sync.Mutex
	queue  []float32
	closed bool
	wake   chan struct{}
}

// SampleRate returns the capture rate in Hz
func (s *Stream) SampleRate() uint32 {
	return sampleRate
}

// Read returns all buffered samples, blocking until at least one is
// available, the context is done, or the stream is closed. A closed
// stream returns nil, nil once drained.
func (s *Stream) Read(ctx context.Context) ([]float32, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			samples := s.queue
			s.queue = nil
			s.mu.Unlock()
			return samples, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.wake:
		}
	}
}

// Close stops capture and releases the device
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	device := s.device
	s.device = nil
	s.mu.Unlock()

	if device != nil {
		device.Stop()
		device.Uninit()
	}

	s.notify()
	return nil
}

func (s *Stream) push(samples []float32) {
	if len(samples) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, samples...)
	if over := len(s.queue) - maxQueuedSamples; over > 0 {
		s.queue = s.queue[over:]
	}
	s.mu.Unlock()

	s.notify()
}

func (s *Stream) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// decodeSamples converts little-endian float32 PCM bytes to samples
func decodeSamples(data []byte) []float32 {
	n := len(data) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}
