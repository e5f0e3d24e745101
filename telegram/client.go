package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultBaseURL = "https://api.telegram.org"
)

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a new Telegram Bot API client
func NewClient(token string, baseURL ...string) *Client {
	url := defaultBaseURL
	if len(baseURL) > 0 {
		url = baseURL[0]
	}

	return &Client{
		token:      token,
		baseURL:    url,
		httpClient: http.DefaultClient,
	}
}

// Update represents the structure for an update in the Bot API response
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message represents the structure for a message in the Bot API response
type Message struct {
	MessageID int64    `json:"message_id"`
	From      *User    `json:"from"`
	Chat      Chat     `json:"chat"`
	Text      string   `json:"text"`
	Entities  []Entity `json:"entities"`
}

// IsCommand reports whether the message starts with a bot command like /start
func (m *Message) IsCommand() bool {
	for _, entity := range m.Entities {
		if entity.Type == "bot_command" && entity.Offset == 0 {
			return true
		}
	}
	return false
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// MentionHTML returns an inline mention link for use with HTML parse mode
func (u *User) MentionHTML() string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(u.FirstName))
}

type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// GetUpdates long polls for new updates starting at the provided offset
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := struct {
		Offset         int64    `json:"offset"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends an HTML formatted message to the provided chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := struct {
		ChatID    int64  `json:"chat_id"`
		Text      string `json:"text"`
		ParseMode string `json:"parse_mode"`
	}{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	return c.call(ctx, "sendMessage", payload, nil)
}

// DeleteMessage removes a message from the provided chat
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	payload := struct {
		ChatID    int64 `json:"chat_id"`
		MessageID int64 `json:"message_id"`
	}{
		ChatID:    chatID,
		MessageID: messageID,
	}

	return c.call(ctx, "deleteMessage", payload, nil)
}

// BanChatMember bans a user from the provided chat
func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	payload := struct {
		ChatID int64 `json:"chat_id"`
		UserID int64 `json:"user_id"`
	}{
		ChatID: chatID,
		UserID: userID,
	}

	return c.call(ctx, "banChatMember", payload, nil)
}

func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = req.WithContext(ctx)

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("unexpected http status code: %d", resp.StatusCode)
	}

	if !envelope.OK {
		return errors.Errorf("telegram api: %s (code %d)", envelope.Description, envelope.ErrorCode)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return err
		}
	}
	return nil
}
