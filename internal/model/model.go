package model

import (
	"encoding/json"
	"time"
)

// PhaseRecord is one closed phase: the banner that keyed it, the state
// snapshots either side of resolution, and when it was resolved.
type PhaseRecord struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	Number      int             `json:"number"`
	Kind        string          `json:"kind"` // Move, Retreat, Build
	StateBefore json.RawMessage `json:"state_before"`
	StateAfter  json.RawMessage `json:"state_after,omitempty"`
	ResolvedAt  time.Time       `json:"resolved_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderRecord is one resolved order as it appeared in the phase log.
type OrderRecord struct {
	ID        string    `json:"id"`
	PhaseID   string    `json:"phase_id"`
	Player    string    `json:"player"`
	Text      string    `json:"text"`   // log grammar, e.g. "LON_C M NTH_C"
	Result    string    `json:"result"` // succeeded, bounced, cut, ...
	CreatedAt time.Time `json:"created_at"`
}

// PressRecord is one press message. Sender and recipient are plain
// player names; an empty recipient means a public broadcast.
type PressRecord struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
