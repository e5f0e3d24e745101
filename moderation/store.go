package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/purechat/purechat-server/query"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Event is the audit record of one profanity violation.
type Event struct {
	ID         uuid.UUID
	UserID     int64
	ChatID     int64
	Text       string
	Confidence float64
	CreatedAt  time.Time
}

type StrikeStore interface {
	// RecordStrike increments a user's strike count and returns the new
	// count.
	RecordStrike(ctx context.Context, userID int64) (int, error)

	// GetStrikes returns the current strike count, zero for users that
	// have none.
	GetStrikes(ctx context.Context, userID int64) (int, error)

	// ResetStrikes clears a user's strikes.
	//
	// It is idempotent, and does not return an error if the user has no
	// strikes.
	ResetStrikes(ctx context.Context, userID int64) error
}

type EventStore interface {
	// AddEvent persists a new violation event.
	//
	// ErrExists is returned if an event with the same ID already exists.
	AddEvent(ctx context.Context, event *Event) error

	// GetEvent returns the event with the given ID.
	//
	// ErrNotFound is returned if no event exists.
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)

	// ListEvents returns a user's events ordered by creation time.
	ListEvents(ctx context.Context, userID int64, options ...query.Option) ([]*Event, error)
}

// Store combines strike tracking with the violation event log.
type Store interface {
	StrikeStore
	EventStore
}
