package channels

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/basket/chatdigest/internal/analyzer"
	"github.com/basket/chatdigest/internal/persistence"
	"github.com/basket/chatdigest/internal/summary"
)

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Narrate(context.Context, []persistence.Message, int) (string, error) {
	return s.text, s.err
}

func windowRecords(n int) []persistence.Message {
	out := make([]persistence.Message, n)
	for i := range out {
		out[i] = persistence.Message{Author: "alice", Text: "hi", Timestamp: time.Now()}
	}
	return out
}

func TestNewTelegramChannel_ClampsEvictInterval(t *testing.T) {
	for _, n := range []int64{0, -7} {
		ch := NewTelegramChannel(TelegramOptions{EvictEveryMessages: n})
		if ch.opts.EvictEveryMessages != defaultEvictEveryMessages {
			t.Errorf("EvictEveryMessages(%d) clamped to %d, want %d",
				n, ch.opts.EvictEveryMessages, defaultEvictEveryMessages)
		}
	}
	ch := NewTelegramChannel(TelegramOptions{EvictEveryMessages: 50})
	if ch.opts.EvictEveryMessages != 50 {
		t.Errorf("valid EvictEveryMessages overwritten: %d", ch.opts.EvictEveryMessages)
	}
}

func TestNarrate_ServesProse(t *testing.T) {
	ch := NewTelegramChannel(TelegramOptions{Narrator: stubNarrator{text: "a lively day"}})

	text, ok := ch.narrate(context.Background(), windowRecords(3), slog.Default())
	if !ok || text != "a lively day" {
		t.Errorf("narrate = (%q, %v), want prose", text, ok)
	}
}

func TestNarrate_FallsBackOnFailure(t *testing.T) {
	cases := []struct {
		name     string
		narrator summary.Narrator
		records  []persistence.Message
	}{
		{"no narrator", nil, windowRecords(3)},
		{"narrator unavailable", stubNarrator{err: summary.ErrNarrationUnavailable}, windowRecords(3)},
		{"provider error", stubNarrator{err: errors.New("rate limited")}, windowRecords(3)},
		{"empty window", stubNarrator{text: "unused"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := NewTelegramChannel(TelegramOptions{Narrator: tc.narrator})
			if _, ok := ch.narrate(context.Background(), tc.records, slog.Default()); ok {
				t.Error("narrate reported ok, want statistical fallback")
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	cases := []struct {
		name string
		msg  tgbotapi.Message
		want string
	}{
		{"text", tgbotapi.Message{Text: "hello"}, "hello"},
		{"caption only", tgbotapi.Message{Caption: "a photo"}, "a photo"},
		{"text wins over caption", tgbotapi.Message{Text: "t", Caption: "c"}, "t"},
		{"neither", tgbotapi.Message{}, analyzer.MediaPlaceholder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := messageText(&tc.msg); got != tc.want {
				t.Errorf("messageText = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAuthorName(t *testing.T) {
	cases := []struct {
		name string
		from *tgbotapi.User
		want string
	}{
		{"username", &tgbotapi.User{UserName: "alice", FirstName: "Alice"}, "alice"},
		{"first name fallback", &tgbotapi.User{FirstName: "Alice"}, "Alice"},
		{"anonymous", &tgbotapi.User{}, "Unknown"},
		{"no sender", nil, "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := tgbotapi.Message{From: tc.from}
			if got := authorName(&msg); got != tc.want {
				t.Errorf("authorName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsAdminStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"administrator": true,
		"creator":       true,
		"member":        false,
		"left":          false,
		"kicked":        false,
		"":              false,
	} {
		if got := isAdminStatus(status); got != want {
			t.Errorf("isAdminStatus(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestIsGroup(t *testing.T) {
	cases := []struct {
		name string
		chat *tgbotapi.Chat
		want bool
	}{
		{"group", &tgbotapi.Chat{Type: "group"}, true},
		{"supergroup", &tgbotapi.Chat{Type: "supergroup"}, true},
		{"private", &tgbotapi.Chat{Type: "private"}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isGroup(tc.chat); got != tc.want {
				t.Errorf("isGroup = %v, want %v", got, tc.want)
			}
		})
	}
}
