package analyzer

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestPackWatcher_ReloadsOnWrite(t *testing.T) {
	path := writePack(t, `{"stopwords": ["alpha"]}`)

	a := New(nounLanguage{}, []string{"alpha"}, nil)
	w := NewPackWatcher(path, a, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"stopwords": ["beta"]}`), 0o644); err != nil {
		t.Fatalf("rewrite pack: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		got := a.ExtractKeywords("alpha beta")
		if len(got) == 1 && got[0] == "alpha" {
			return // beta now filtered, alpha allowed: reload observed
		}
		select {
		case <-deadline:
			t.Fatalf("stopword set never reloaded, last extraction: %v", got)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestPackWatcher_KeepsPreviousSetOnBadReload(t *testing.T) {
	path := writePack(t, `{"stopwords": ["alpha"]}`)

	a := New(nounLanguage{}, []string{"alpha"}, nil)
	w := NewPackWatcher(path, a, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(path, []byte(`not json at all`), 0o644); err != nil {
		t.Fatalf("rewrite pack: %v", err)
	}

	// Give the watcher time to see the event, then confirm the old set held.
	time.Sleep(300 * time.Millisecond)
	got := a.ExtractKeywords("alpha beta")
	if len(got) != 1 || got[0] != "beta" {
		t.Errorf("stopword set changed after failed reload: %v", got)
	}
}

func TestPackWatcher_MissingFile(t *testing.T) {
	a := New(nounLanguage{}, nil, nil)
	w := NewPackWatcher("/nonexistent/pack.json", a, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Error("Start accepted a missing pack file")
	}
}
