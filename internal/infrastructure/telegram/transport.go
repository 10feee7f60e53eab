package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Transport implements ports.MessageTransport over the Telegram Bot API.
type Transport struct {
	botToken string
	apiBase  string
	client   *http.Client
}

var _ ports.MessageTransport = (*Transport)(nil)

// NewTransport registers the bot token; client may be nil.
func NewTransport(botToken string, client *http.Client) *Transport {
	if client == nil {
		client = &http.Client{Timeout: 35 * time.Second}
	}
	return &Transport{botToken: botToken, apiBase: defaultAPIBase, client: client}
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		From      *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// GetPendingCommands long-polls getUpdates starting at offset and maps text
// messages into inbound commands. Non-message updates are skipped but still
// advance the offset through their update id.
func (t *Transport) GetPendingCommands(ctx context.Context, offset int64) ([]ports.InboundCommand, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", "25")
	form.Set("allowed_updates", `["message"]`)

	var result []update
	if err := t.call(ctx, "getUpdates", form, &result); err != nil {
		return nil, err
	}

	commands := make([]ports.InboundCommand, 0, len(result))
	for _, u := range result {
		if u.Message == nil || u.Message.From == nil || u.Message.Text == "" {
			commands = append(commands, ports.InboundCommand{ID: u.UpdateID})
			continue
		}
		commands = append(commands, ports.InboundCommand{
			ID:       u.UpdateID,
			SenderID: u.Message.From.ID,
			ChatID:   u.Message.Chat.ID,
			Text:     u.Message.Text,
		})
	}
	return commands, nil
}

// SendMessage posts an HTML-formatted message.
func (t *Transport) SendMessage(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	return t.call(ctx, "sendMessage", form, nil)
}

// SendMediaMessage posts a photo with an HTML caption and returns the
// resulting message id.
func (t *Transport) SendMediaMessage(ctx context.Context, chatID int64, mediaURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("photo", mediaURL)
	form.Set("caption", caption)
	form.Set("parse_mode", "HTML")

	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := t.call(ctx, "sendPhoto", form, &result); err != nil {
		return "", err
	}
	return strconv.FormatInt(result.MessageID, 10), nil
}

// call posts a form-encoded Bot API request and decodes the result envelope.
func (t *Transport) call(ctx context.Context, method string, form url.Values, result any) error {
	if t.botToken == "" {
		return fmt.Errorf("telegram transport misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", t.apiBase, t.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s error: %s (%s)", method, resp.Status, envelope.Description)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
