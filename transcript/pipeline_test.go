package transcript

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	got, err := NormalizeWhitespace(context.Background(), "  hello   world \n again ")
	if err != nil {
		t.Fatalf("NormalizeWhitespace: %v", err)
	}
	if got != "hello world again" {
		t.Errorf("got %q", got)
	}
}

func TestStripFillers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"um hello uh world", "hello world"},
		{"Um, that is hmm fine", "that is fine"},
		{"I like this", "I like this"},
		{"no fillers here", "no fillers here"},
	}
	for _, tt := range tests {
		got, err := StripFillers(context.Background(), tt.in)
		if err != nil {
			t.Fatalf("StripFillers(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("StripFillers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPipeline(t *testing.T) {
	got, err := Default().Process(context.Background(), "  um   hello,  uh world  ")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got != "hello, world" {
		t.Errorf("got %q", got)
	}
}

func TestPipelineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline(
		func(ctx context.Context, text string) (string, error) { return text + " a", nil },
		func(ctx context.Context, text string) (string, error) { return "", boom },
		func(ctx context.Context, text string) (string, error) { return text + " never", nil },
	)

	got, err := p.Process(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if got != "x a" {
		t.Errorf("got %q, want text before failing step", got)
	}
}
