package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/anthropic"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/basket/chatdigest/internal/persistence"
)

// ErrNarrationUnavailable marks a narrator that cannot produce prose:
// no provider configured, no records, or an empty model reply. Callers fall
// back to the statistical digest.
var ErrNarrationUnavailable = errors.New("narration unavailable")

// Narrator produces a prose digest of a message window. Optional: the
// statistical Summary is always available as the fallback.
type Narrator interface {
	Narrate(ctx context.Context, records []persistence.Message, windowHours int) (string, error)
}

// NarratorConfig selects the LLM provider backing narration.
type NarratorConfig struct {
	// Provider is "google", "anthropic" or "openai". Empty defaults to
	// "google".
	Provider string
	Model    string
	// APIKey overrides the provider's environment variable.
	APIKey string
}

// GenkitNarrator narrates a window through Genkit. Without an API key the
// narrator stays off and every Narrate call returns ErrNarrationUnavailable,
// so the caller's fallback path carries the digest.
type GenkitNarrator struct {
	g        *genkit.Genkit
	provider string
	model    string
	logger   *slog.Logger
	llmOn    bool
}

// NewGenkitNarrator initializes Genkit with the configured provider. A
// missing API key is not an error; it yields a disabled narrator.
func NewGenkitNarrator(ctx context.Context, cfg NarratorConfig, logger *slog.Logger) *GenkitNarrator {
	if logger == nil {
		logger = slog.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "google"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModelForProvider(provider)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = envAPIKeyForProvider(provider)
	}

	n := &GenkitNarrator{provider: provider, model: model, logger: logger}
	if apiKey == "" {
		logger.Warn("narration API key missing, using statistical summaries", "provider", provider)
		return n
	}

	switch provider {
	case "anthropic":
		n.g = genkit.Init(ctx, genkit.WithPlugins(&anthropic.Anthropic{APIKey: apiKey}))
	case "openai":
		n.g = genkit.Init(ctx, genkit.WithPlugins(&compat_oai.OpenAICompatible{
			Provider: "openai",
			APIKey:   apiKey,
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
		}))
	case "google":
		_ = os.Setenv("GEMINI_API_KEY", apiKey)
		n.g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	default:
		logger.Warn("unknown narration provider, using statistical summaries", "provider", provider)
		return n
	}
	n.llmOn = true
	logger.Info("narrator initialized", "provider", provider, "model", model)
	return n
}

// Enabled reports whether a provider is configured and ready.
func (n *GenkitNarrator) Enabled() bool {
	return n.llmOn
}

func (n *GenkitNarrator) Narrate(ctx context.Context, records []persistence.Message, windowHours int) (string, error) {
	if !n.llmOn {
		return "", ErrNarrationUnavailable
	}
	if len(records) == 0 {
		return "", ErrNarrationUnavailable
	}

	system := fmt.Sprintf(
		"You are a helpful assistant that summarizes chat messages from the last %d hours. "+
			"Provide a concise summary highlighting key topics, discussions, and important information.",
		windowHours,
	)
	resp, err := genkit.Generate(ctx, n.g,
		ai.WithModelName(n.modelName()),
		ai.WithSystem(system),
		ai.WithPrompt("Please summarize the following chat messages:\n\n"+formatTranscript(records)),
	)
	if err != nil {
		return "", fmt.Errorf("narrate window: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNarrationUnavailable
	}
	return text, nil
}

func (n *GenkitNarrator) modelName() string {
	switch n.provider {
	case "anthropic":
		return "anthropic/" + n.model
	case "openai":
		return "openai/" + n.model
	default:
		return "googleai/" + n.model
	}
}

// Model returns the configured model identifier, for span attributes.
func (n *GenkitNarrator) Model() string {
	return n.modelName()
}

func defaultModelForProvider(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-sonnet-4-5"
	case "openai":
		return "gpt-4o-mini"
	default:
		return "gemini-2.5-flash"
	}
}

func envAPIKeyForProvider(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "google":
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}

// formatTranscript renders records as one prompt line per message.
func formatTranscript(records []persistence.Message) string {
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			rec.Timestamp.UTC().Format("2006-01-02 15:04:05"), rec.Author, rec.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
