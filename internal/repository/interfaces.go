package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freeeve/cordial-conquest/internal/model"
)

// PhaseRepository persists closed phases and their resolved orders.
type PhaseRepository interface {
	SavePhase(ctx context.Context, rec *model.PhaseRecord, orders []model.OrderRecord) error
	ListPhases(ctx context.Context, gameID string) ([]model.PhaseRecord, error)
	OrdersByPhase(ctx context.Context, phaseID string) ([]model.OrderRecord, error)
}

// PressRepository persists press messages.
type PressRepository interface {
	Save(ctx context.Context, rec *model.PressRecord) error
	ListFor(ctx context.Context, gameID, player string) ([]model.PressRecord, error)
	ListPublic(ctx context.Context, gameID string) ([]model.PressRecord, error)
}

// SessionCache holds the live session data (Redis): the authoritative
// snapshot, per-player submitted orders, the ready set, the draw-vote
// set, and the phase deadline timer key.
type SessionCache interface {
	SetSnapshot(ctx context.Context, gameID string, snap json.RawMessage) error
	GetSnapshot(ctx context.Context, gameID string) (json.RawMessage, error)
	SetOrders(ctx context.Context, gameID, player string, orders json.RawMessage) error
	GetAllOrders(ctx context.Context, gameID string, players []string) (map[string]json.RawMessage, error)
	MarkReady(ctx context.Context, gameID, player string) error
	UnmarkReady(ctx context.Context, gameID, player string) error
	ReadyPlayers(ctx context.Context, gameID string) ([]string, error)
	AddDrawVote(ctx context.Context, gameID, player string) error
	RemoveDrawVote(ctx context.Context, gameID, player string) error
	DrawVotePlayers(ctx context.Context, gameID string) ([]string, error)
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error
	ClearPhaseData(ctx context.Context, gameID string, players []string) error
	DeleteSession(ctx context.Context, gameID string, players []string) error
}
