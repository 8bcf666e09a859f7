package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"deskhand/api"
	"deskhand/computeruse"
	"deskhand/config"
	"deskhand/license"
	"deskhand/shortcuts"
	"deskhand/speaker"
	"deskhand/storage"
	"deskhand/transcript"
	"deskhand/web"
)

// Agent coordinates the web server, the global shortcut and the audio
// capture pipeline.
type Agent struct {
	cfg      *config.Config
	db       *storage.DB
	server   *web.Server
	listener shortcuts.Listener
	input    *speaker.Input
	backend  *api.Client

	mu      sync.Mutex
	stream  *speaker.Stream
	samples []float32
	done    chan struct{}
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config) (*Agent, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	controller := computeruse.New()
	backend := api.NewClient(cfg.API.Endpoint, cfg.API.AccessKey)
	lic := license.NewClient(cfg.License.PaymentEndpoint, cfg.API.AccessKey, db)
	server := web.NewServer(db, cfg, controller, lic, cfg.Web.Port)

	return &Agent{
		cfg:      cfg,
		db:       db,
		server:   server,
		listener: shortcuts.New(),
		backend:  backend,
	}, nil
}

// Run starts the agent's main event loop
func (a *Agent) Run(ctx context.Context) error {
	defer a.db.Close()

	// Web server is the primary control surface
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start()
	}()

	events, err := a.listenShortcut(ctx)
	if err != nil {
		// The web API keeps working without a global shortcut
		slog.Warn("Global shortcut unavailable", "error", err)
	}

	slog.Info("deskhand started", "port", a.cfg.Web.Port, "shortcut", a.cfg.Shortcuts.ToggleVisibility)
	a.server.SetStatus("idle")

	for {
		select {
		case <-ctx.Done():
			a.stopCapture(context.Background())
			if a.input != nil {
				a.input.Close()
			}
			return nil

		case err := <-serverErr:
			return fmt.Errorf("web server stopped: %w", err)

		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if evt.Type != shortcuts.Pressed {
				continue
			}
			a.toggleCapture(ctx)
		}
	}
}

func (a *Agent) listenShortcut(ctx context.Context) (<-chan shortcuts.Event, error) {
	combo, err := config.ParseHotkey(a.cfg.Shortcuts.ToggleVisibility)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shortcut: %w", err)
	}
	return a.listener.Listen(ctx, combo)
}

// toggleCapture starts system audio capture, or stops it and hands the
// recording to the backend.
func (a *Agent) toggleCapture(ctx context.Context) {
	a.mu.Lock()
	capturing := a.stream != nil
	a.mu.Unlock()

	if capturing {
		a.stopCapture(ctx)
		return
	}
	if err := a.startCapture(ctx); err != nil {
		slog.Error("Failed to start audio capture", "error", err)
	}
}

func (a *Agent) startCapture(ctx context.Context) error {
	if a.input == nil {
		input, err := speaker.NewInput()
		if err != nil {
			return err
		}
		a.input = input
	}

	stream, err := a.input.Stream()
	if err != nil {
		return err
	}

	done := make(chan struct{})

	a.mu.Lock()
	a.stream = stream
	a.samples = nil
	a.done = done
	a.mu.Unlock()

	go func() {
		defer close(done)
		for {
			chunk, err := stream.Read(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("Audio read failed", "error", err)
				}
				return
			}
			if chunk == nil {
				return
			}
			a.mu.Lock()
			a.samples = append(a.samples, chunk...)
			a.mu.Unlock()
		}
	}()

	slog.Info("Audio capture started")
	a.server.SetStatus("listening")
	return nil
}

func (a *Agent) stopCapture(ctx context.Context) {
	a.mu.Lock()
	stream := a.stream
	done := a.done
	a.stream = nil
	a.mu.Unlock()

	if stream == nil {
		return
	}

	stream.Close()
	<-done

	a.mu.Lock()
	samples := a.samples
	a.samples = nil
	a.mu.Unlock()

	a.server.SetStatus("processing")

	minSamples := int(stream.SampleRate() / 10) // 100ms
	if len(samples) < minSamples {
		slog.Warn("Recording too short, ignoring", "samples", len(samples))
		a.server.SetStatus("idle")
		return
	}

	go a.process(ctx, samples, stream.SampleRate())
}

// process transcribes the recording and asks the backend for a reply
func (a *Agent) process(ctx context.Context, samples []float32, sampleRate uint32) {
	defer a.server.SetStatus("idle")
	start := time.Now()

	wavData := speaker.EncodeWAV(samples, sampleRate)
	text, err := a.backend.TranscribeAudio(ctx, wavData)
	if err != nil {
		slog.Error("Transcription failed", "error", err)
		a.logAction("transcribe", "", start, err)
		return
	}
	if cleaned, pErr := transcript.Default().Process(ctx, text); pErr == nil {
		text = cleaned
	}
	if text == "" {
		slog.Warn("Empty transcription")
		return
	}
	a.logAction("transcribe", text, start, nil)
	slog.Info("Transcribed", "text", text)

	start = time.Now()
	reply, err := a.backend.Chat(ctx, a.selectedModel(), []api.Message{
		{Role: "user", Content: text},
	})
	if err != nil {
		slog.Error("Chat request failed", "error", err)
		a.logAction("chat", text, start, err)
		return
	}
	a.logAction("chat", reply, start, nil)
	slog.Info("Assistant reply", "reply", reply)
}

// selectedModel prefers the model chosen in the dashboard over the config
func (a *Agent) selectedModel() string {
	model, err := a.db.SecureGet(storage.KeySelectedModel)
	if err == nil && model != "" {
		return model
	}
	return a.cfg.API.Model
}

func (a *Agent) logAction(kind, detail string, start time.Time, opErr error) {
	action := &storage.Action{
		Kind:       kind,
		Detail:     detail,
		DurationMs: time.Since(start).Milliseconds(),
		Success:    opErr == nil,
	}
	if opErr != nil {
		action.ErrorMessage = opErr.Error()
	}
	if err := a.db.SaveAction(action); err != nil {
		slog.Error("Failed to log action", "kind", kind, "error", err)
		return
	}
	action.Timestamp = time.Now()
	a.server.BroadcastAction(action)
}
