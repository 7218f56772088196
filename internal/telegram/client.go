// Package telegram sends run reports via the Telegram Bot API.
package telegram

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/polyodds/internal/models"
	"github.com/rewired-gh/polyodds/internal/summary"
)

// maxListedMarkets bounds the per-market lines of a report; Telegram rejects
// messages above 4096 characters.
const maxListedMarkets = 20

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications.
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newClient(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newClient(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
		}
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendReport sends the summary of a finished run.
func (c *Client) SendReport(run models.Run, results []models.MarketResult) error {
	return c.sendMarkdownV2(formatReport(run, results))
}

// formatReport formats a run into a Telegram MarkdownV2 message. Markets are
// listed by absolute probability change, largest first.
func formatReport(run models.Run, results []models.MarketResult) string {
	var ok, skipped []models.MarketResult
	for _, r := range results {
		if r.Skipped() {
			skipped = append(skipped, r)
		} else {
			ok = append(ok, r)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		return abs(summary.Change(ok[i].Summary)) > abs(summary.Change(ok[j].Summary))
	})

	var b strings.Builder
	b.WriteString("📊 *Odds history run*\n")
	fmt.Fprintf(&b, "🔎 %s · %ss buckets\n", escapeMarkdownV2(run.Search), escapeMarkdownV2(strconv.Itoa(run.Interval)))
	fmt.Fprintf(&b, "🆔 `%s`\n", escapeMarkdownV2(run.ID))
	fmt.Fprintf(&b, "✅ %d processed, ⚠️ %d skipped\n\n", len(ok), len(skipped))

	for i, r := range ok {
		if i == maxListedMarkets {
			fmt.Fprintf(&b, "…and %d more\n", len(ok)-maxListedMarkets)
			break
		}
		s := r.Summary
		if s.Count == 0 {
			fmt.Fprintf(&b, "%d\\. %s: no samples\n", i+1, escapeMarkdownV2(r.Market.Title))
			continue
		}
		directionEmoji := "📈"
		if s.Last < s.First {
			directionEmoji = "📉"
		}
		firstPct := escapeMarkdownV2(fmt.Sprintf("%.1f%%", s.First*100))
		lastPct := escapeMarkdownV2(fmt.Sprintf("%.1f%%", s.Last*100))
		fmt.Fprintf(&b, "%d\\. %s\n   %s %s → %s \\(%d points\\)\n",
			i+1, escapeMarkdownV2(r.Market.Title), directionEmoji, firstPct, lastPct, s.Count)
	}

	return b.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
