package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purechat/purechat-server/filter"
)

const DefaultMaxStrikes = 3

type Action uint8

const (
	// ActionNone leaves the message alone.
	ActionNone Action = iota
	// ActionWarn removes the message and warns the user.
	ActionWarn
	// ActionKick removes the message and bans the user from the chat.
	ActionKick
)

// Message is one chat message under moderation.
type Message struct {
	UserID int64
	ChatID int64
	Text   string
}

// Decision is the moderator's response to one message.
type Decision struct {
	Action     Action
	Strikes    int
	MaxStrikes int
	Censored   string
	Confidence float64
}

// Moderator applies the strike flow to incoming messages: profane messages
// earn a strike and a warning until the strike limit, which earns a kick.
type Moderator struct {
	log        *zap.Logger
	filter     *filter.Filter
	strikes    StrikeStore
	events     EventStore
	maxStrikes int
}

func NewModerator(
	log *zap.Logger,
	f *filter.Filter,
	strikes StrikeStore,
	events EventStore,
	maxStrikes int,
) *Moderator {
	if maxStrikes <= 0 {
		maxStrikes = DefaultMaxStrikes
	}

	return &Moderator{
		log:        log,
		filter:     f,
		strikes:    strikes,
		events:     events,
		maxStrikes: maxStrikes,
	}
}

// Moderate classifies one message and decides what to do with it. Clean
// messages produce no action. A profane message records a strike and a
// violation event, then warns below the strike limit and kicks at it;
// a kick resets the user's strikes. Classification failures propagate,
// they are never treated as a clean verdict.
func (m *Moderator) Moderate(ctx context.Context, msg *Message) (*Decision, error) {
	result, err := m.filter.Filter(ctx, msg.Text)
	if err != nil {
		return nil, err
	}

	if !result.IsProfane {
		return &Decision{Action: ActionNone, MaxStrikes: m.maxStrikes}, nil
	}

	strikes, err := m.strikes.RecordStrike(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:         uuid.New(),
		UserID:     msg.UserID,
		ChatID:     msg.ChatID,
		Text:       msg.Text,
		Confidence: result.Confidence,
		CreatedAt:  time.Now(),
	}
	if err := m.events.AddEvent(ctx, event); err != nil {
		return nil, err
	}

	decision := &Decision{
		Action:     ActionWarn,
		Strikes:    strikes,
		MaxStrikes: m.maxStrikes,
		Censored:   result.Filtered,
		Confidence: result.Confidence,
	}

	if strikes >= m.maxStrikes {
		decision.Action = ActionKick
		if err := m.strikes.ResetStrikes(ctx, msg.UserID); err != nil {
			return nil, err
		}
	}

	m.log.Info(
		"recorded profanity strike",
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
		zap.Int("strikes", strikes),
		zap.Float64("confidence", result.Confidence),
	)

	return decision, nil
}

// Strikes reports a user's current strike count.
func (m *Moderator) Strikes(ctx context.Context, userID int64) (int, error) {
	return m.strikes.GetStrikes(ctx, userID)
}
