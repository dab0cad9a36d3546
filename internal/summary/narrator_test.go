package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/basket/chatdigest/internal/persistence"
)

func TestGenkitNarrator_DisabledWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	n := NewGenkitNarrator(context.Background(), NarratorConfig{Provider: "google"}, nil)
	if n.Enabled() {
		t.Fatal("narrator enabled without an API key")
	}

	records := []persistence.Message{{Author: "alice", Text: "hi", Timestamp: time.Now()}}
	_, err := n.Narrate(context.Background(), records, 24)
	if !errors.Is(err, ErrNarrationUnavailable) {
		t.Errorf("Narrate error = %v, want ErrNarrationUnavailable", err)
	}
}

func TestGenkitNarrator_UnknownProviderDisabled(t *testing.T) {
	n := NewGenkitNarrator(context.Background(), NarratorConfig{
		Provider: "mystery",
		APIKey:   "key-present",
	}, nil)
	if n.Enabled() {
		t.Error("narrator enabled for unknown provider")
	}
}

func TestGenkitNarrator_EmptyWindow(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	n := NewGenkitNarrator(context.Background(), NarratorConfig{Provider: "anthropic"}, nil)
	_, err := n.Narrate(context.Background(), nil, 24)
	if !errors.Is(err, ErrNarrationUnavailable) {
		t.Errorf("Narrate error = %v, want ErrNarrationUnavailable", err)
	}
}

func TestDefaultModelForProvider(t *testing.T) {
	for provider, want := range map[string]string{
		"anthropic": "claude-sonnet-4-5",
		"openai":    "gpt-4o-mini",
		"google":    "gemini-2.5-flash",
		"":          "gemini-2.5-flash",
	} {
		if got := defaultModelForProvider(provider); got != want {
			t.Errorf("defaultModelForProvider(%q) = %q, want %q", provider, got, want)
		}
	}
}

func TestFormatTranscript(t *testing.T) {
	ts := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)
	records := []persistence.Message{
		{Author: "alice", Text: "shipping today?", Timestamp: ts},
		{Author: "bob", Text: "after the deploy", Timestamp: ts.Add(time.Minute)},
	}

	got := formatTranscript(records)
	want := "[2026-08-29 14:30:05] alice: shipping today?\n" +
		"[2026-08-29 14:31:05] bob: after the deploy"
	if got != want {
		t.Errorf("formatTranscript =\n%q\nwant\n%q", got, want)
	}
}
