// Package transcript cleans up raw transcription output before it is
// handed to the chat backend.
package transcript

import (
	"context"
	"log/slog"
	"strings"
)

// Processor is a function that transforms text
type Processor func(ctx context.Context, text string) (string, error)

// Pipeline runs a series of processors in sequence
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a new processing pipeline
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs all processors in sequence. A processor error stops the
// pipeline and returns the text as it stood before the failing step.
func (p *Pipeline) Process(ctx context.Context, text string) (string, error) {
	result := text
	for i, proc := range p.processors {
		next, err := proc(ctx, result)
		if err != nil {
			slog.Warn("Transcript processor failed", "step", i, "error", err)
			return result, err
		}
		result = next
	}
	return result, nil
}

// Default returns the standard cleanup pipeline
func Default() *Pipeline {
	return NewPipeline(NormalizeWhitespace, StripFillers)
}

// NormalizeWhitespace collapses runs of whitespace and trims the ends
func NormalizeWhitespace(ctx context.Context, text string) (string, error) {
	return strings.Join(strings.Fields(text), " "), nil
}

// fillers are discourse markers transcription engines tend to keep
var fillers = map[string]bool{
	"um":   true,
	"uh":   true,
	"erm":  true,
	"hmm":  true,
	"mhm":  true,
	"uhm":  true,
	"like": false, // too ambiguous to strip
}

// StripFillers removes standalone filler words, preserving any trailing
// punctuation attachment by only matching whole tokens.
func StripFillers(ctx context.Context, text string) (string, error) {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		bare := strings.ToLower(strings.Trim(w, ".,!?"))
		if fillers[bare] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " "), nil
}
