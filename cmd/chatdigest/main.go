// Command chatdigest runs the chat digest daemon: it ingests Telegram group
// messages into a rolling-window transcript store, evicts expired records in
// the background, and serves statistical summaries on demand.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basket/chatdigest/internal/analyzer"
	"github.com/basket/chatdigest/internal/channels"
	"github.com/basket/chatdigest/internal/config"
	"github.com/basket/chatdigest/internal/otel"
	"github.com/basket/chatdigest/internal/persistence"
	"github.com/basket/chatdigest/internal/retention"
	"github.com/basket/chatdigest/internal/summary"
	"github.com/basket/chatdigest/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chatdigest:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logCloser, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel, false)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := otel.Init(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()
	metrics, err := otel.NewMetrics(provider.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	store, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	defer func() { _ = store.Close() }()
	logger.Info("message store opened", "path", cfg.DBPath)

	a := buildAnalyzer(ctx, cfg, logger)
	engine := summary.NewEngine(a)

	scheduler, err := retention.NewScheduler(retention.Config{
		Store:       store,
		Logger:      logger,
		Schedule:    cfg.EvictionSchedule,
		WindowHours: cfg.EvictionWindowHours,
		Metrics:     metrics,
	})
	if err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if !cfg.Channels.Telegram.Enabled || cfg.Channels.Telegram.Token == "" {
		logger.Warn("telegram channel disabled; running retention only")
		<-ctx.Done()
		return nil
	}

	var narrator summary.Narrator
	if cfg.LLM.Enabled {
		narrator = summary.NewGenkitNarrator(ctx, summary.NarratorConfig{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
		}, logger)
	}

	var channel channels.Channel = channels.NewTelegramChannel(channels.TelegramOptions{
		Token:               cfg.Channels.Telegram.Token,
		Store:               store,
		Engine:              engine,
		Logger:              logger,
		SummaryWindowHours:  cfg.SummaryWindowHours,
		EvictionWindowHours: cfg.EvictionWindowHours,
		EvictEveryMessages:  int64(cfg.EvictionEveryMessages),
		TopUsers:            cfg.TopUsers,
		TopNouns:            cfg.TopNouns,
		AdminOnlyClear:      cfg.AdminOnlyClear(),
		Narrator:            narrator,
		Metrics:             metrics,
		Tracer:              provider.Tracer,
	})
	logger.Info("starting channel", "channel", channel.Name())
	return channel.Start(ctx)
}

// buildAnalyzer loads the configured language capability, degrading to the
// no-op provider (empty keyword output) when the model cannot be loaded.
func buildAnalyzer(ctx context.Context, cfg config.Config, logger *slog.Logger) *analyzer.Analyzer {
	var lang analyzer.Language
	switch cfg.Language {
	case "en":
		l, err := analyzer.NewEnglish()
		if err != nil {
			logger.Warn("language model unavailable, keyword extraction disabled", "error", err)
			l = analyzer.Noop()
		}
		lang = l
	default:
		logger.Warn("unsupported language, keyword extraction disabled", "language", cfg.Language)
		lang = analyzer.Noop()
	}

	a := analyzer.New(lang, nil, logger)

	if cfg.LanguagePackPath != "" {
		pack, err := analyzer.LoadPack(cfg.LanguagePackPath)
		if err != nil {
			logger.Warn("language pack unavailable, using built-in stopwords", "path", cfg.LanguagePackPath, "error", err)
		} else {
			a.SetStopwords(pack.Stopwords)
			logger.Info("language pack loaded", "path", cfg.LanguagePackPath, "stopwords", len(pack.Stopwords))
		}
		watcher := analyzer.NewPackWatcher(cfg.LanguagePackPath, a, logger)
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("language pack watcher failed to start", "error", err)
		}
	}
	return a
}
