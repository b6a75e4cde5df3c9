package conquest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// PhaseLog accumulates the per-phase order record, keyed by the phase
// banner. Keys marshal in the order phases were played, not
// alphabetically, so the dump reads as a game transcript.
type PhaseLog struct {
	keys    []string
	entries map[string]*phaseEntry
}

type phaseEntry struct {
	players []string
	orders  map[string][]string
}

func NewPhaseLog() *PhaseLog {
	return &PhaseLog{entries: make(map[string]*phaseEntry)}
}

// Record appends one resolved phase. Void orders are dropped: the
// affected unit's defaulted Hold is already in the result set.
func (l *PhaseLog) Record(phase Phase, results []ResolvedOrder, gs *GameState, w *World) {
	key := phase.String()
	e, ok := l.entries[key]
	if !ok {
		e = &phaseEntry{orders: make(map[string][]string)}
		l.entries[key] = e
		l.keys = append(l.keys, key)
	}

	for _, r := range results {
		if r.Result == Void {
			continue
		}
		name := gs.Players[r.Order.Player].Name
		if _, seen := e.orders[name]; !seen {
			e.players = append(e.players, name)
		}
		e.orders[name] = append(e.orders[name], r.Order.Describe(w))
	}
	sort.Strings(e.players)
}

// Phases lists the recorded phase banners in play order.
func (l *PhaseLog) Phases() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Orders returns one phase's lines for one player.
func (l *PhaseLog) Orders(phaseKey, player string) []string {
	e, ok := l.entries[phaseKey]
	if !ok {
		return nil
	}
	return e.orders[player]
}

func (l *PhaseLog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range l.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		e := l.entries[key]
		buf.WriteByte('{')
		for j, name := range e.players {
			if j > 0 {
				buf.WriteByte(',')
			}
			n, err := json.Marshal(name)
			if err != nil {
				return nil, err
			}
			buf.Write(n)
			buf.WriteByte(':')
			lines, err := json.Marshal(e.orders[name])
			if err != nil {
				return nil, err
			}
			buf.Write(lines)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a dumped log, preserving the key order found
// in the document.
func (l *PhaseLog) UnmarshalJSON(data []byte) error {
	l.keys = nil
	l.entries = make(map[string]*phaseEntry)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("phase log: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("phase log: expected phase key, got %v", tok)
		}
		var raw map[string][]string
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		e := &phaseEntry{orders: raw}
		for name := range raw {
			e.players = append(e.players, name)
		}
		sort.Strings(e.players)
		l.keys = append(l.keys, key)
		l.entries[key] = e
	}
	_, err = dec.Token() // closing brace
	return err
}
