package channels

import (
	"fmt"
	"strings"
	"time"

	"github.com/basket/chatdigest/internal/summary"
)

// timeFormat matches the short display format users see in replies.
const timeFormat = "02.01.2006 15:04"

const startText = "Hello! I'm a chat digest bot.\n\n" +
	"I collect messages in this chat and can summarize them.\n" +
	"Use /summary for a digest of the recent conversation.\n" +
	"Use /help for more information."

const helpText = "Commands:\n\n" +
	"/start - Start the bot\n" +
	"/summary - Digest of the recent conversation window\n" +
	"/stats - Statistics about stored messages\n" +
	"/clear - Clear stored messages (admin only in groups)\n\n" +
	"The bot automatically collects messages in groups where it's added."

// formatSummary renders a Summary into a plain-text chat reply. All business
// logic lives in the engine; this only formats.
func formatSummary(s summary.Summary) string {
	if s.Empty {
		return fmt.Sprintf("No messages found in the last %d hours.", s.WindowHours)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Summary of the last %d hours:\n\n", s.WindowHours)
	fmt.Fprintf(&b, "• Total messages: %d\n", s.TotalMessages)
	fmt.Fprintf(&b, "• Active users: %d\n", s.DistinctAuthors)
	if s.BusiestCount > 0 {
		fmt.Fprintf(&b, "• Most active hour: %s\n", s.BusiestHour.Format(timeFormat))
	}

	if len(s.TopAuthors) > 0 {
		b.WriteString("\n🏆 Top users:\n")
		for i, a := range s.TopAuthors {
			fmt.Fprintf(&b, "  %d. %s — %d\n", i+1, a.Author, a.Count)
		}
	}
	if len(s.TopKeywords) > 0 {
		b.WriteString("\n🔥 Top topics:\n")
		for i, k := range s.TopKeywords {
			fmt.Fprintf(&b, "  %d. %s — %d\n", i+1, k.Keyword, k.Count)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(windowHours int, total, authors int64, oldest, newest time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Statistics for the last %d hours:\n\n", windowHours)
	fmt.Fprintf(&b, "• Total messages: %d\n", total)
	fmt.Fprintf(&b, "• Unique users: %d\n", authors)
	fmt.Fprintf(&b, "• Oldest message: %s\n", oldest.Format(timeFormat))
	fmt.Fprintf(&b, "• Newest message: %s", newest.Format(timeFormat))
	return b.String()
}
