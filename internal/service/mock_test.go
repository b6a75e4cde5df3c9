package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/freeeve/cordial-conquest/internal/model"
)

// mockCache is an in-memory stand-in for the Redis session cache.
type mockCache struct {
	mu        sync.Mutex
	snapshots map[string]json.RawMessage
	orders    map[string]map[string]json.RawMessage
	ready     map[string]map[string]bool
	votes     map[string]map[string]bool
	timers    map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		snapshots: make(map[string]json.RawMessage),
		orders:    make(map[string]map[string]json.RawMessage),
		ready:     make(map[string]map[string]bool),
		votes:     make(map[string]map[string]bool),
		timers:    make(map[string]time.Time),
	}
}

func (m *mockCache) SetSnapshot(_ context.Context, gameID string, snap json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[gameID] = append(json.RawMessage(nil), snap...)
	return nil
}

func (m *mockCache) GetSnapshot(_ context.Context, gameID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[gameID], nil
}

func (m *mockCache) SetOrders(_ context.Context, gameID, player string, orders json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orders[gameID] == nil {
		m.orders[gameID] = make(map[string]json.RawMessage)
	}
	m.orders[gameID][player] = append(json.RawMessage(nil), orders...)
	return nil
}

func (m *mockCache) GetAllOrders(_ context.Context, gameID string, players []string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]json.RawMessage)
	for _, p := range players {
		if o, ok := m.orders[gameID][p]; ok {
			out[p] = o
		}
	}
	return out, nil
}

func (m *mockCache) MarkReady(_ context.Context, gameID, player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready[gameID] == nil {
		m.ready[gameID] = make(map[string]bool)
	}
	m.ready[gameID][player] = true
	return nil
}

func (m *mockCache) UnmarkReady(_ context.Context, gameID, player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ready[gameID], player)
	return nil
}

func (m *mockCache) ReadyPlayers(_ context.Context, gameID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.ready[gameID]), nil
}

func (m *mockCache) AddDrawVote(_ context.Context, gameID, player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.votes[gameID] == nil {
		m.votes[gameID] = make(map[string]bool)
	}
	m.votes[gameID][player] = true
	return nil
}

func (m *mockCache) RemoveDrawVote(_ context.Context, gameID, player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.votes[gameID], player)
	return nil
}

func (m *mockCache) DrawVotePlayers(_ context.Context, gameID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.votes[gameID]), nil
}

func (m *mockCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers[gameID] = deadline
	return nil
}

func (m *mockCache) ClearTimer(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.timers, gameID)
	return nil
}

func (m *mockCache) ClearPhaseData(_ context.Context, gameID string, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, gameID)
	delete(m.ready, gameID)
	delete(m.timers, gameID)
	return nil
}

func (m *mockCache) DeleteSession(_ context.Context, gameID string, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, gameID)
	delete(m.orders, gameID)
	delete(m.ready, gameID)
	delete(m.votes, gameID)
	delete(m.timers, gameID)
	return nil
}

func sortedKeys(set map[string]bool) []string {
	var keys []string
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mockPhaseRepo records saved phases in memory.
type mockPhaseRepo struct {
	mu     sync.Mutex
	phases []model.PhaseRecord
	orders map[string][]model.OrderRecord
}

func newMockPhaseRepo() *mockPhaseRepo {
	return &mockPhaseRepo{orders: make(map[string][]model.OrderRecord)}
}

func (m *mockPhaseRepo) SavePhase(_ context.Context, rec *model.PhaseRecord, orders []model.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases = append(m.phases, *rec)
	m.orders[rec.ID] = orders
	return nil
}

func (m *mockPhaseRepo) ListPhases(_ context.Context, gameID string) ([]model.PhaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PhaseRecord
	for _, p := range m.phases {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPhaseRepo) OrdersByPhase(_ context.Context, phaseID string) ([]model.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[phaseID], nil
}

// mockPressRepo records press messages in memory.
type mockPressRepo struct {
	mu    sync.Mutex
	saved []model.PressRecord
}

func (m *mockPressRepo) Save(_ context.Context, rec *model.PressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *rec)
	return nil
}

func (m *mockPressRepo) ListFor(_ context.Context, gameID, player string) ([]model.PressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PressRecord
	for _, p := range m.saved {
		if p.GameID == gameID && (p.Recipient == "" || p.Sender == player || p.Recipient == player) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPressRepo) ListPublic(_ context.Context, gameID string) ([]model.PressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PressRecord
	for _, p := range m.saved {
		if p.GameID == gameID && p.Recipient == "" {
			out = append(out, p)
		}
	}
	return out, nil
}
