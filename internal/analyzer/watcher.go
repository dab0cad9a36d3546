package analyzer

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// PackWatcher hot-reloads the language pack when its file changes, so
// operators can tune stopwords without restarting the daemon.
type PackWatcher struct {
	path     string
	analyzer *Analyzer
	logger   *slog.Logger
}

func NewPackWatcher(path string, a *Analyzer, logger *slog.Logger) *PackWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PackWatcher{path: path, analyzer: a, logger: logger}
}

// Start begins watching. A pack that fails to load after a change is logged
// and skipped; the previous stopword set stays active.
func (w *PackWatcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.path); err != nil {
		_ = fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pack, err := LoadPack(w.path)
				if err != nil {
					w.logger.Error("language pack reload failed", "path", w.path, "error", err)
					continue
				}
				w.analyzer.SetStopwords(pack.Stopwords)
				w.logger.Info("language pack reloaded", "path", w.path, "stopwords", len(pack.Stopwords))
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Error("language pack watcher error", "error", err)
			}
		}
	}()
	return nil
}
