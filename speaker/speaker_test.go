package speaker

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func newTestStream() *Stream {
	return &Stream{wake: make(chan struct{}, 1)}
}

func TestDecodeSamples(t *testing.T) {
	want := []float32{0, 1, -0.5}
	data := make([]byte, len(want)*4)
	for i, v := range want {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	got := decodeSamples(data)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeSamplesIgnoresTrailingBytes(t *testing.T) {
	if got := decodeSamples([]byte{1, 2, 3}); len(got) != 0 {
		t.Errorf("got %v from short input", got)
	}
}

func TestReadReturnsPushedSamples(t *testing.T) {
	s := newTestStream()
	s.push([]float32{0.1, 0.2})

	got, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 || got[0] != 0.1 {
		t.Errorf("got %v", got)
	}
}

func TestReadBlocksUntilPush(t *testing.T) {
	s := newTestStream()

	done := make(chan []float32, 1)
	go func() {
		samples, _ := s.Read(context.Background())
		done <- samples
	}()

	time.Sleep(10 * time.Millisecond)
	s.push([]float32{0.5})

	select {
	case got := <-done:
		if len(got) != 1 || got[0] != 0.5 {
			t.Errorf("got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Read did not wake")
	}
}

func TestReadContextCancel(t *testing.T) {
	s := newTestStream()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Read(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestCloseDrainsThenEOF(t *testing.T) {
	s := newTestStream()
	s.push([]float32{0.3})
	s.Close()

	got, err := s.Read(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("drain read = %v, %v", got, err)
	}

	got, err = s.Read(context.Background())
	if err != nil || got != nil {
		t.Errorf("post-close read = %v, %v", got, err)
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 2, -2}
	data := EncodeWAV(samples, 16000)

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF header: % x", data[:12])
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d", rate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d", bits)
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(samples)*2 {
		t.Errorf("data size = %d, want %d", dataSize, len(samples)*2)
	}

	pcm := data[44:]
	if v := int16(binary.LittleEndian.Uint16(pcm[0:2])); v != 0 {
		t.Errorf("sample 0 = %d", v)
	}
	// Out-of-range samples clamp instead of wrapping
	if v := int16(binary.LittleEndian.Uint16(pcm[6:8])); v != 32767 {
		t.Errorf("sample 3 = %d, want 32767", v)
	}
	if v := int16(binary.LittleEndian.Uint16(pcm[8:10])); v != -32767 {
		t.Errorf("sample 4 = %d, want -32767", v)
	}
}

func TestQueueBounded(t *testing.T) {
	s := newTestStream()

	chunk := make([]float32, maxQueuedSamples/2)
	for i := 0; i < 3; i++ {
		s.push(chunk)
	}

	s.mu.Lock()
	n := len(s.queue)
	s.mu.Unlock()
	if n > maxQueuedSamples {
		t.Errorf("queue grew to %d, cap %d", n, maxQueuedSamples)
	}
}
