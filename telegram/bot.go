package telegram

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/purechat/purechat-server/moderation"
)

const (
	defaultPollTimeout = 30 * time.Second
	pollRetryDelay     = 3 * time.Second
)

// Bot long polls a group chat and moderates every text message it sees.
type Bot struct {
	log         *zap.Logger
	client      *Client
	moderator   *moderation.Moderator
	pollTimeout time.Duration
}

func NewBot(log *zap.Logger, client *Client, moderator *moderation.Moderator) *Bot {
	return &Bot{
		log:         log,
		client:      client,
		moderator:   moderator,
		pollTimeout: defaultPollTimeout,
	}
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot is running")

	var offset int64
	for {
		updates, err := b.client.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			b.log.Warn("failed to fetch updates", zap.Error(err))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	if msg.From.IsBot || msg.IsCommand() {
		return
	}

	decision, err := b.moderator.Moderate(ctx, &moderation.Message{
		UserID: msg.From.ID,
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	})
	if err != nil {
		b.log.Warn("failed to moderate message",
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err),
		)
		return
	}

	switch decision.Action {
	case moderation.ActionWarn:
		b.deleteMessage(ctx, msg)
		b.warn(ctx, msg, decision)
	case moderation.ActionKick:
		b.deleteMessage(ctx, msg)
		b.kick(ctx, msg, decision)
	}
}

// Deletion can fail when the bot lacks admin permissions. The strike
// still stands, so the failure is only logged.
func (b *Bot) deleteMessage(ctx context.Context, msg *Message) {
	if err := b.client.DeleteMessage(ctx, msg.Chat.ID, msg.MessageID); err != nil {
		b.log.Warn("failed to delete message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("message_id", msg.MessageID),
			zap.Error(err),
		)
	}
}

func (b *Bot) warn(ctx context.Context, msg *Message, decision *moderation.Decision) {
	warning := fmt.Sprintf(
		"⚠️ %s, your message was removed due to profanity.\nStrike %d/%d.\nCensored content: %s",
		msg.From.MentionHTML(),
		decision.Strikes,
		decision.MaxStrikes,
		html.EscapeString(decision.Censored),
	)

	if err := b.client.SendMessage(ctx, msg.Chat.ID, warning); err != nil {
		b.log.Warn("failed to send warning",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err),
		)
	}
}

func (b *Bot) kick(ctx context.Context, msg *Message, decision *moderation.Decision) {
	name := html.EscapeString(msg.From.FirstName)

	if err := b.client.BanChatMember(ctx, msg.Chat.ID, msg.From.ID); err != nil {
		b.log.Warn("failed to ban user",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err),
		)

		notice := fmt.Sprintf(
			"⚠️ User %s reached %d strikes but I couldn't kick them. Please check my admin permissions.",
			name,
			decision.MaxStrikes,
		)
		if err := b.client.SendMessage(ctx, msg.Chat.ID, notice); err != nil {
			b.log.Warn("failed to send kick failure notice", zap.Error(err))
		}
		return
	}

	notice := fmt.Sprintf("🚫 User %s has been kicked for repeated profanity.", name)
	if err := b.client.SendMessage(ctx, msg.Chat.ID, notice); err != nil {
		b.log.Warn("failed to send kick notice", zap.Error(err))
	}
}
