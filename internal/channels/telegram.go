package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/basket/chatdigest/internal/analyzer"
	"github.com/basket/chatdigest/internal/otel"
	"github.com/basket/chatdigest/internal/persistence"
	"github.com/basket/chatdigest/internal/summary"
)

const storageFailureNotice = "Something went wrong on our side. Please try again later."

// TelegramOptions holds the dependencies and knobs for the Telegram channel.
type TelegramOptions struct {
	Token  string
	Store  *persistence.Store
	Engine *summary.Engine
	Logger *slog.Logger

	SummaryWindowHours  int
	EvictionWindowHours int
	// EvictEveryMessages triggers opportunistic eviction at the ingestion
	// boundary once the per-chat window count crosses a multiple of N.
	EvictEveryMessages int64
	TopUsers           int
	TopNouns           int
	AdminOnlyClear     bool

	// Narrator, when set and enabled, serves /summary as LLM prose; any
	// narration failure falls back to the statistical digest.
	Narrator summary.Narrator

	Metrics *otel.Metrics // optional
	Tracer  trace.Tracer  // optional; noop when unset
}

// TelegramChannel implements the Channel interface for Telegram. It ingests
// group messages into the store and serves digest commands.
type TelegramChannel struct {
	opts   TelegramOptions
	logger *slog.Logger
	bot    *tgbotapi.BotAPI
}

var _ Channel = (*TelegramChannel)(nil)

// defaultEvictEveryMessages matches the configuration default; the
// constructor clamps so the modulo in ingest never sees zero.
const defaultEvictEveryMessages = 100

func NewTelegramChannel(opts TelegramOptions) *TelegramChannel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EvictEveryMessages <= 0 {
		opts.EvictEveryMessages = defaultEvictEveryMessages
	}
	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer(otel.TracerName)
	}
	return &TelegramChannel{opts: opts, logger: logger}
}

func (t *TelegramChannel) Name() string {
	return "telegram"
}

func (t *TelegramChannel) Start(ctx context.Context) error {
	var err error
	t.bot, err = tgbotapi.NewBotAPI(t.opts.Token)
	if err != nil {
		return fmt.Errorf("telegram init failed: %w", err)
	}

	t.logger.Info("telegram bot started", "user", t.bot.Self.UserName)

	// Reconnection loop with exponential backoff.
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := t.bot.GetUpdatesChan(u)

		pollErr := t.pollUpdates(ctx, updates)

		// Always clean up the old polling goroutine before reconnecting.
		t.bot.StopReceivingUpdates()

		if pollErr != nil {
			t.logger.Warn("telegram poll disconnected, reconnecting", "error", pollErr, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		// pollUpdates returned nil means ctx was cancelled.
		return nil
	}
}

// pollUpdates reads from the update channel until ctx is done, the channel
// closes, or no updates arrive within 2x the long-poll timeout (stall detection).
// Returns nil on context cancellation, or an error to trigger reconnection.
func (t *TelegramChannel) pollUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	// tgbotapi uses a 60s long-poll timeout. If we see nothing for 2.5 minutes,
	// the connection is likely dead (the library blocks rather than closing the channel).
	const stallTimeout = 150 * time.Second

	timer := time.NewTimer(stallTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}

			// Reset stall timer on every received update (including empty long-poll returns).
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(stallTimeout)

			if update.Message != nil {
				t.handleMessage(ctx, update.Message)
			}

		case <-timer.C:
			return fmt.Errorf("no updates received for %v (possible disconnect)", stallTimeout)
		}
	}
}

func (t *TelegramChannel) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Bot-originated messages never enter the store or the command router.
	if msg.From != nil && msg.From.IsBot {
		return
	}
	if msg.IsCommand() {
		t.handleCommand(ctx, msg)
		return
	}
	t.ingest(ctx, msg)
}

// ingest appends one inbound chat message, substituting the media sentinel
// for non-text content, then opportunistically evicts expired records once
// every N appends per chat.
func (t *TelegramChannel) ingest(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := messageText(msg)
	author := authorName(msg)

	if _, err := t.opts.Store.Append(ctx, chatID, author, text, msg.Time()); err != nil {
		t.countStorageError(ctx)
		t.logger.Error("failed to store message", "chat_id", chatID, "error", err)
		return
	}
	if t.opts.Metrics != nil {
		t.opts.Metrics.MessagesStored.Add(ctx, 1)
	}
	t.logger.Debug("stored message", "chat_id", chatID, "author", author)

	n, err := t.opts.Store.Count(ctx, chatID, t.opts.EvictionWindowHours)
	if err != nil {
		t.countStorageError(ctx)
		t.logger.Warn("failed to count messages", "chat_id", chatID, "error", err)
		return
	}
	if n > 0 && n%t.opts.EvictEveryMessages == 0 {
		deleted, err := t.opts.Store.EvictOlderThan(ctx, t.opts.EvictionWindowHours)
		if err != nil {
			t.countStorageError(ctx)
			t.logger.Warn("opportunistic eviction failed", "error", err)
			return
		}
		if t.opts.Metrics != nil {
			t.opts.Metrics.MessagesEvicted.Add(ctx, deleted)
		}
		if deleted > 0 {
			t.logger.Info("opportunistic eviction", "deleted", deleted, "chat_id", chatID)
		}
	}
}

func (t *TelegramChannel) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	log := t.logger.With("trace_id", uuid.NewString(), "chat_id", msg.Chat.ID, "command", msg.Command())

	switch msg.Command() {
	case "start":
		t.reply(msg.Chat.ID, startText)
	case "help":
		t.reply(msg.Chat.ID, helpText)
	case "summary":
		t.cmdSummary(ctx, msg, log)
	case "stats":
		t.cmdStats(ctx, msg, log)
	case "clear":
		t.cmdClear(ctx, msg, log)
	default:
		// Unknown commands are ignored, same as non-addressed group chatter.
	}
}

func (t *TelegramChannel) cmdSummary(ctx context.Context, msg *tgbotapi.Message, log *slog.Logger) {
	ctx, span := otel.StartSpan(ctx, t.opts.Tracer, "summary.serve",
		otel.AttrChatID.Int64(msg.Chat.ID),
		otel.AttrCommand.String("summary"),
	)
	defer span.End()

	records, err := t.opts.Store.WindowMessages(ctx, msg.Chat.ID, t.opts.SummaryWindowHours)
	if err != nil {
		t.countStorageError(ctx)
		log.Error("summary query failed", "error", err)
		t.reply(msg.Chat.ID, storageFailureNotice)
		return
	}
	span.SetAttributes(otel.AttrMessageCount.Int(len(records)))

	if text, ok := t.narrate(ctx, records, log); ok {
		if t.opts.Metrics != nil {
			t.opts.Metrics.SummariesServed.Add(ctx, 1)
		}
		log.Info("narrative summary served", "messages", len(records))
		t.reply(msg.Chat.ID, text)
		return
	}

	started := time.Now()
	s := t.opts.Engine.Summarize(records, t.opts.SummaryWindowHours, t.opts.TopUsers, t.opts.TopNouns)
	if t.opts.Metrics != nil {
		t.opts.Metrics.SummarizeDuration.Record(ctx, time.Since(started).Seconds())
		t.opts.Metrics.SummariesServed.Add(ctx, 1)
	}
	log.Info("summary served", "messages", s.TotalMessages, "authors", s.DistinctAuthors)
	t.reply(msg.Chat.ID, formatSummary(s))
}

// narrate asks the configured narrator for a prose digest. Any failure,
// including no narrator and an empty window, reports not-ok so the caller
// serves the statistical digest instead.
func (t *TelegramChannel) narrate(ctx context.Context, records []persistence.Message, log *slog.Logger) (string, bool) {
	if t.opts.Narrator == nil || len(records) == 0 {
		return "", false
	}
	ctx, span := otel.StartClientSpan(ctx, t.opts.Tracer, "summary.narrate",
		otel.AttrMessageCount.Int(len(records)),
	)
	defer span.End()

	text, err := t.opts.Narrator.Narrate(ctx, records, t.opts.SummaryWindowHours)
	if err != nil {
		if !errors.Is(err, summary.ErrNarrationUnavailable) {
			log.Warn("narration failed, serving statistical digest", "error", err)
		}
		return "", false
	}
	return text, true
}

func (t *TelegramChannel) cmdStats(ctx context.Context, msg *tgbotapi.Message, log *slog.Logger) {
	chatID := msg.Chat.ID
	window := t.opts.SummaryWindowHours

	total, err := t.opts.Store.Count(ctx, chatID, window)
	if err != nil {
		t.countStorageError(ctx)
		log.Error("stats count failed", "error", err)
		t.reply(chatID, storageFailureNotice)
		return
	}
	if total == 0 {
		t.reply(chatID, fmt.Sprintf("No messages stored for this chat in the last %dh.", window))
		return
	}
	authors, err := t.opts.Store.DistinctAuthors(ctx, chatID, window)
	if err != nil {
		t.countStorageError(ctx)
		log.Error("stats authors failed", "error", err)
		t.reply(chatID, storageFailureNotice)
		return
	}
	oldest, newest, ok, err := t.opts.Store.Bounds(ctx, chatID, window)
	if err != nil || !ok {
		t.countStorageError(ctx)
		log.Error("stats bounds failed", "error", err)
		t.reply(chatID, storageFailureNotice)
		return
	}
	t.reply(chatID, formatStats(window, total, authors, oldest, newest))
}

func (t *TelegramChannel) cmdClear(ctx context.Context, msg *tgbotapi.Message, log *slog.Logger) {
	if t.opts.AdminOnlyClear && isGroup(msg.Chat) {
		member, err := t.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: msg.Chat.ID,
				UserID: msg.From.ID,
			},
		})
		if err != nil {
			log.Warn("admin check failed", "error", err)
			t.reply(msg.Chat.ID, "Could not verify permissions, try again.")
			return
		}
		if !isAdminStatus(member.Status) {
			t.reply(msg.Chat.ID, "Only administrators can clear messages.")
			return
		}
	}

	deleted, err := t.opts.Store.ClearChat(ctx, msg.Chat.ID)
	if err != nil {
		t.countStorageError(ctx)
		log.Error("clear failed", "error", err)
		t.reply(msg.Chat.ID, storageFailureNotice)
		return
	}
	if t.opts.Metrics != nil {
		t.opts.Metrics.ChatsCleared.Add(ctx, deleted)
	}
	log.Info("chat cleared", "deleted", deleted)
	t.reply(msg.Chat.ID, fmt.Sprintf("Cleared %d messages for this chat.", deleted))
}

func (t *TelegramChannel) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("failed to send telegram reply", "error", err)
	}
}

func (t *TelegramChannel) countStorageError(ctx context.Context) {
	if t.opts.Metrics != nil {
		t.opts.Metrics.StorageErrors.Add(ctx, 1)
	}
}

// messageText resolves the stored text for an inbound message: text, then
// caption, then the media sentinel. The store never sees empty text.
func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	if msg.Caption != "" {
		return msg.Caption
	}
	return analyzer.MediaPlaceholder
}

// authorName resolves a display identifier for the sender.
func authorName(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return "Unknown"
	}
	if msg.From.UserName != "" {
		return msg.From.UserName
	}
	if msg.From.FirstName != "" {
		return msg.From.FirstName
	}
	return "Unknown"
}

func isGroup(chat *tgbotapi.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}

func isAdminStatus(status string) bool {
	return status == "administrator" || status == "creator"
}
