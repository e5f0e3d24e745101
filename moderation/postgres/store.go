package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"

	"github.com/purechat/purechat-server/moderation"
	"github.com/purechat/purechat-server/query"
)

const (
	strikesTable = "moderation_strikes"
	eventsTable  = "moderation_events"
)

//go:embed schema.sql
var schemaSQL string

type pgStore struct {
	db *sqlx.DB
}

func NewInPostgres(db *sql.DB) moderation.Store {
	return &pgStore{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Setup applies the store's schema. Tests and local bootstrap only;
// deployments manage migrations externally.
func Setup(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

func (s *pgStore) reset() {
	ctx := context.Background()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		panic(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	_, err = tx.ExecContext(ctx, `DELETE FROM `+eventsTable)
	if err != nil {
		panic(err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM `+strikesTable)
	if err != nil {
		panic(err)
	}
}

type eventModel struct {
	ID         string    `db:"id"`
	UserID     int64     `db:"userId"`
	ChatID     int64     `db:"chatId"`
	Text       string    `db:"text"`
	Confidence float64   `db:"confidence"`
	CreatedAt  time.Time `db:"createdAt"`
}

func (s *pgStore) RecordStrike(ctx context.Context, userID int64) (int, error) {
	currentTime := time.Now()

	q := `
		INSERT INTO ` + strikesTable + ` ("userId", "strikes", "createdAt", "updatedAt")
		VALUES ($1, 1, $2, $2)
		ON CONFLICT ("userId") DO UPDATE SET "strikes" = ` + strikesTable + `."strikes" + 1, "updatedAt" = $2
		RETURNING "strikes"
	`

	var strikes int
	if err := s.db.GetContext(ctx, &strikes, q, userID, currentTime); err != nil {
		return 0, err
	}
	return strikes, nil
}

func (s *pgStore) GetStrikes(ctx context.Context, userID int64) (int, error) {
	q := `SELECT "strikes" FROM ` + strikesTable + ` WHERE "userId" = $1`

	var strikes int
	err := s.db.GetContext(ctx, &strikes, q, userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strikes, nil
}

func (s *pgStore) ResetStrikes(ctx context.Context, userID int64) error {
	q := `DELETE FROM ` + strikesTable + ` WHERE "userId" = $1`

	_, err := s.db.ExecContext(ctx, q, userID)
	return err
}

func (s *pgStore) AddEvent(ctx context.Context, event *moderation.Event) error {
	q := `
		INSERT INTO ` + eventsTable + ` ("id", "userId", "chatId", "text", "confidence", "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(
		ctx,
		q,
		event.ID.String(),
		event.UserID,
		event.ChatID,
		event.Text,
		event.Confidence,
		event.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return moderation.ErrExists
	}
	return err
}

func (s *pgStore) GetEvent(ctx context.Context, id uuid.UUID) (*moderation.Event, error) {
	q := `
		SELECT "id", "userId", "chatId", "text", "confidence", "createdAt"
		FROM ` + eventsTable + ` WHERE "id" = $1
	`

	var row eventModel
	err := s.db.GetContext(ctx, &row, q, id.String())
	if err == sql.ErrNoRows {
		return nil, moderation.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return fromModel(&row)
}

func (s *pgStore) ListEvents(ctx context.Context, userID int64, options ...query.Option) ([]*moderation.Event, error) {
	opts := query.ApplyOptions(options...)

	direction := "ASC"
	if opts.Order == query.Descending {
		direction = "DESC"
	}

	q := `
		SELECT "id", "userId", "chatId", "text", "confidence", "createdAt"
		FROM ` + eventsTable + `
		WHERE "userId" = $1
		ORDER BY "createdAt" ` + direction + `
		LIMIT $2
	`

	var rows []eventModel
	if err := s.db.SelectContext(ctx, &rows, q, userID, opts.Limit); err != nil {
		return nil, err
	}

	events := make([]*moderation.Event, 0, len(rows))
	for i := range rows {
		event, err := fromModel(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func fromModel(row *eventModel) (*moderation.Event, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}

	return &moderation.Event{
		ID:         id,
		UserID:     row.UserID,
		ChatID:     row.ChatID,
		Text:       row.Text,
		Confidence: row.Confidence,
		CreatedAt:  row.CreatedAt,
	}, nil
}
