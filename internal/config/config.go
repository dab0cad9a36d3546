// Package config loads daemon configuration from ~/.chatdigest/config.yaml
// with environment overrides. It owns parameter validation: the normalize
// pass clamps invalid windows and top-K values to their defaults, so the
// core packages never see non-positive parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/basket/chatdigest/internal/otel"
)

type TelegramConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`

	// AdminOnlyClear restricts /clear to group administrators. On by
	// default; private chats are always allowed.
	AdminOnlyClear *bool `yaml:"admin_only_clear,omitempty"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// LLMConfig selects the optional narrative summary provider. Off by
// default; when off, or when the provider cannot serve, summaries are
// statistical.
type LLMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

type Config struct {
	HomeDir string `yaml:"-"`

	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	// SummaryWindowHours is the trailing window /summary and /stats report
	// over. EvictionWindowHours is configured independently: coupling the
	// two silently loses data still needed by a longer-window query.
	SummaryWindowHours  int `yaml:"summary_window_hours"`
	EvictionWindowHours int `yaml:"eviction_window_hours"`

	// EvictionSchedule is a 5-field cron expression for the background
	// retention loop.
	EvictionSchedule string `yaml:"eviction_schedule"`

	// EvictionEveryMessages additionally triggers eviction at the ingestion
	// boundary once every N appended messages per chat, bounding storage
	// growth between timer firings.
	EvictionEveryMessages int `yaml:"eviction_every_messages"`

	TopUsers int `yaml:"top_users"`
	TopNouns int `yaml:"top_nouns"`

	// Language selects the analyzer capability. Currently "en" or "none".
	Language string `yaml:"language"`

	// LanguagePackPath optionally points at a JSON stopword pack,
	// hot-reloaded on change.
	LanguagePackPath string `yaml:"language_pack_path"`

	Channels ChannelsConfig `yaml:"channels"`
	LLM      LLMConfig      `yaml:"llm"`
	Otel     otel.Config    `yaml:"otel"`
}

// AdminOnlyClear resolves the tri-state yaml flag; unset means on.
func (c Config) AdminOnlyClear() bool {
	if c.Channels.Telegram.AdminOnlyClear == nil {
		return true
	}
	return *c.Channels.Telegram.AdminOnlyClear
}

func defaultConfig() Config {
	return Config{
		LogLevel:              "info",
		SummaryWindowHours:    24,
		EvictionWindowHours:   24,
		EvictionSchedule:      "0 * * * *",
		EvictionEveryMessages: 100,
		TopUsers:              3,
		TopNouns:              5,
		Language:              "en",
	}
}

func HomeDir() string {
	if override := os.Getenv("CHATDIGEST_HOME"); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".chatdigest")
}

func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

func Load() (Config, error) {
	cfg := defaultConfig()
	cfg.HomeDir = HomeDir()

	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return cfg, fmt.Errorf("create chatdigest home: %w", err)
	}

	data, err := os.ReadFile(ConfigPath(cfg.HomeDir))
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config.yaml: %w", err)
		}
	} else if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

// normalize clamps invalid values to defaults. The core assumes
// pre-validated positive parameters; this is where that guarantee is made.
func normalize(cfg *Config) {
	def := defaultConfig()
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join(cfg.HomeDir, "chatdigest.db")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.SummaryWindowHours <= 0 {
		cfg.SummaryWindowHours = def.SummaryWindowHours
	}
	if cfg.EvictionWindowHours <= 0 {
		cfg.EvictionWindowHours = def.EvictionWindowHours
	}
	// Evicting below the summary window would silently truncate summaries.
	if cfg.EvictionWindowHours < cfg.SummaryWindowHours {
		cfg.EvictionWindowHours = cfg.SummaryWindowHours
	}
	if strings.TrimSpace(cfg.EvictionSchedule) == "" {
		cfg.EvictionSchedule = def.EvictionSchedule
	}
	if cfg.EvictionEveryMessages <= 0 {
		cfg.EvictionEveryMessages = def.EvictionEveryMessages
	}
	if cfg.TopUsers < 0 {
		cfg.TopUsers = def.TopUsers
	}
	if cfg.TopNouns < 0 {
		cfg.TopNouns = def.TopNouns
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("CHATDIGEST_DB_PATH"); raw != "" {
		cfg.DBPath = raw
	}
	if raw := os.Getenv("CHATDIGEST_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("CHATDIGEST_SUMMARY_WINDOW_HOURS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.SummaryWindowHours = v
		}
	}
	if raw := os.Getenv("CHATDIGEST_EVICTION_WINDOW_HOURS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.EvictionWindowHours = v
		}
	}
	if raw := os.Getenv("CHATDIGEST_TOP_USERS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.TopUsers = v
		}
	}
	if raw := os.Getenv("CHATDIGEST_TOP_NOUNS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.TopNouns = v
		}
	}
	if raw := os.Getenv("CHATDIGEST_LANGUAGE"); raw != "" {
		cfg.Language = raw
	}
	if raw := os.Getenv("TELEGRAM_TOKEN"); raw != "" {
		cfg.Channels.Telegram.Token = raw
		cfg.Channels.Telegram.Enabled = true
	}
	if raw := os.Getenv("CHATDIGEST_LLM_ENABLED"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.LLM.Enabled = v
		}
	}
	if raw := os.Getenv("CHATDIGEST_LLM_PROVIDER"); raw != "" {
		cfg.LLM.Provider = raw
	}
	if raw := os.Getenv("CHATDIGEST_LLM_MODEL"); raw != "" {
		cfg.LLM.Model = raw
	}
}
