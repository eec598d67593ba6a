/*
Package notify formats change events as Telegram messages and delivers them
through the Bot API.
*/
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rmedina/cfewatch/internal/types"
)

const telegramAPIBase = "https://api.telegram.org"

var client = &http.Client{
	Timeout: 10 * time.Second,
}

// Notifier delivers one already-formatted message. Delivery is best effort:
// the run keeps its snapshot changes whether or not the message lands.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Telegram sends messages to a fixed chat via the Bot API.
type Telegram struct {
	token  string
	chatID string
	base   string
	logger *zap.Logger
}

func NewTelegram(token, chatID string, logger *zap.Logger) *Telegram {
	return &Telegram{
		token:  token,
		chatID: chatID,
		base:   telegramAPIBase,
		logger: logger,
	}
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.base, t.token)
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	t.logger.Debug("telegram accepted message", zap.Int("length", len(text)))
	return nil
}

// FormatEvent renders the message for one change event, matching the layout
// operators have been receiving since the first version of the monitor.
func FormatEvent(ev types.ChangeEvent) string {
	var sb strings.Builder
	switch ev.Kind {
	case types.EventNewTender:
		sb.WriteString("⚠️ *Nueva licitación*:\n")
		fmt.Fprintf(&sb, "- %s\n", ev.Description)
		fmt.Fprintf(&sb, "- %s\n", ev.ID)
		fmt.Fprintf(&sb, "- Fecha: %s", ev.Published)
	case types.EventFieldChange:
		sb.WriteString("ℹ️ *Cambio detectado*:\n")
		fmt.Fprintf(&sb, "- %s\n", ev.Description)
		fmt.Fprintf(&sb, "- %s", ev.ID)
		for _, d := range ev.Diffs {
			fmt.Fprintf(&sb, "\n- %s: %s → %s", d.Field, d.Old, d.New)
		}
	}
	return sb.String()
}
