package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/freeeve/cordial-conquest/internal/model"
)

// PhaseRepo handles phase and order database operations.
type PhaseRepo struct {
	db *sql.DB
}

// NewPhaseRepo creates a PhaseRepo.
func NewPhaseRepo(db *sql.DB) *PhaseRepo {
	return &PhaseRepo{db: db}
}

// SavePhase inserts a closed phase together with its resolved orders
// in one transaction.
func (r *PhaseRepo) SavePhase(ctx context.Context, rec *model.PhaseRecord, orders []model.OrderRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save phase: %w", err)
	}
	defer tx.Rollback()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO phases (id, game_id, number, kind, state_before, state_after, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.GameID, rec.Number, rec.Kind, rec.StateBefore, rec.StateAfter, rec.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert phase: %w", err)
	}

	for i := range orders {
		o := &orders[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		o.PhaseID = rec.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO orders (id, phase_id, player, text, result)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.ID, o.PhaseID, o.Player, o.Text, o.Result,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save phase: %w", err)
	}
	return nil
}

// ListPhases returns all closed phases for a game in play order.
func (r *PhaseRepo) ListPhases(ctx context.Context, gameID string) ([]model.PhaseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, number, kind, state_before, state_after, resolved_at, created_at
		 FROM phases WHERE game_id = $1
		 ORDER BY number,
		   CASE kind WHEN 'Move' THEN 1 WHEN 'Retreat' THEN 2 WHEN 'Build' THEN 3 ELSE 4 END`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var phases []model.PhaseRecord
	for rows.Next() {
		var p model.PhaseRecord
		var stateAfter sql.NullString
		if err := rows.Scan(&p.ID, &p.GameID, &p.Number, &p.Kind, &p.StateBefore, &stateAfter, &p.ResolvedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		if stateAfter.Valid {
			p.StateAfter = []byte(stateAfter.String)
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// OrdersByPhase returns the resolved orders of one phase.
func (r *PhaseRepo) OrdersByPhase(ctx context.Context, phaseID string) ([]model.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, phase_id, player, text, result, created_at
		 FROM orders WHERE phase_id = $1 ORDER BY player, created_at`, phaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("orders by phase: %w", err)
	}
	defer rows.Close()

	var orders []model.OrderRecord
	for rows.Next() {
		var o model.OrderRecord
		if err := rows.Scan(&o.ID, &o.PhaseID, &o.Player, &o.Text, &o.Result, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
