package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/freeeve/cordial-conquest/internal/model"
)

// PressRepo handles press message database operations.
type PressRepo struct {
	db *sql.DB
}

// NewPressRepo creates a PressRepo.
func NewPressRepo(db *sql.DB) *PressRepo {
	return &PressRepo{db: db}
}

// Save inserts one press message.
func (r *PressRepo) Save(ctx context.Context, rec *model.PressRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var recipient sql.NullString
	if rec.Recipient != "" {
		recipient = sql.NullString{String: rec.Recipient, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO press (id, game_id, sender, recipient, body)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.GameID, rec.Sender, recipient, rec.Body,
	)
	if err != nil {
		return fmt.Errorf("save press: %w", err)
	}
	return nil
}

// ListFor returns the messages a player may read: addressed to them,
// sent by them, or public.
func (r *PressRepo) ListFor(ctx context.Context, gameID, player string) ([]model.PressRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, sender, recipient, body, created_at
		 FROM press
		 WHERE game_id = $1 AND (recipient = $2 OR sender = $2 OR recipient IS NULL)
		 ORDER BY created_at`, gameID, player,
	)
	if err != nil {
		return nil, fmt.Errorf("list press: %w", err)
	}
	return scanPress(rows)
}

// ListPublic returns the public broadcasts for a game.
func (r *PressRepo) ListPublic(ctx context.Context, gameID string) ([]model.PressRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, sender, recipient, body, created_at
		 FROM press WHERE game_id = $1 AND recipient IS NULL
		 ORDER BY created_at`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list public press: %w", err)
	}
	return scanPress(rows)
}

func scanPress(rows *sql.Rows) ([]model.PressRecord, error) {
	defer rows.Close()
	var msgs []model.PressRecord
	for rows.Next() {
		var m model.PressRecord
		var recipient sql.NullString
		if err := rows.Scan(&m.ID, &m.GameID, &m.Sender, &recipient, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan press: %w", err)
		}
		if recipient.Valid {
			m.Recipient = recipient.String
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
