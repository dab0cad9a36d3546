package channels

import (
	"strings"
	"testing"
	"time"

	"github.com/basket/chatdigest/internal/summary"
)

func TestFormatSummary_Empty(t *testing.T) {
	got := formatSummary(summary.Summary{WindowHours: 24, Empty: true})
	want := "No messages found in the last 24 hours."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatSummary_Full(t *testing.T) {
	s := summary.Summary{
		WindowHours:     24,
		TotalMessages:   42,
		DistinctAuthors: 5,
		TopAuthors: []summary.AuthorCount{
			{Author: "alice", Count: 20},
			{Author: "bob", Count: 12},
		},
		BusiestHour:  time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC),
		BusiestCount: 9,
		TopKeywords: []summary.KeywordCount{
			{Keyword: "deployment", Count: 7},
		},
	}
	got := formatSummary(s)

	for _, fragment := range []string{
		"Summary of the last 24 hours",
		"Total messages: 42",
		"Active users: 5",
		"Most active hour: 29.08.2026 14:00",
		"1. alice — 20",
		"2. bob — 12",
		"1. deployment — 7",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("missing %q in:\n%s", fragment, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("trailing newline not trimmed")
	}
}

func TestFormatSummary_OmitsEmptySections(t *testing.T) {
	s := summary.Summary{WindowHours: 24, TotalMessages: 1, DistinctAuthors: 1}
	got := formatSummary(s)

	if strings.Contains(got, "Top users") {
		t.Error("Top users section rendered with no entries")
	}
	if strings.Contains(got, "Top topics") {
		t.Error("Top topics section rendered with no entries")
	}
	if strings.Contains(got, "Most active hour") {
		t.Error("busiest hour rendered with zero count")
	}
}

func TestFormatStats(t *testing.T) {
	oldest := time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC)
	newest := time.Date(2026, 8, 29, 18, 45, 0, 0, time.UTC)
	got := formatStats(24, 100, 7, oldest, newest)

	for _, fragment := range []string{
		"Statistics for the last 24 hours",
		"Total messages: 100",
		"Unique users: 7",
		"Oldest message: 28.08.2026 09:15",
		"Newest message: 29.08.2026 18:45",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("missing %q in:\n%s", fragment, got)
		}
	}
}
