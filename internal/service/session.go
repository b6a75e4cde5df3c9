// Package service owns the live game session: the order buffer, the
// ready barrier, draw votes, press routing, and persistence around
// each phase resolution.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freeeve/cordial-conquest/internal/command"
	"github.com/freeeve/cordial-conquest/internal/logger"
	"github.com/freeeve/cordial-conquest/internal/model"
	"github.com/freeeve/cordial-conquest/internal/repository"
	"github.com/freeeve/cordial-conquest/pkg/conquest"
)

// Deps are the session's optional collaborators. Any of them may be
// nil: the session then runs purely in memory.
type Deps struct {
	Phases repository.PhaseRepository
	Press  repository.PressRepository
	Cache  repository.SessionCache

	// Deadline bounds how long AwaitPhase blocks before forcing
	// resolution with defaults. Zero waits for every player.
	Deadline time.Duration
}

// GameSession exclusively owns the authoritative game. All mutation
// goes through its methods; the engine itself is pure.
type GameSession struct {
	mu   sync.Mutex
	id   string
	game *conquest.Game
	deps Deps
	log  zerolog.Logger

	orders     map[conquest.PartID]conquest.Order
	orderSeq   []conquest.PartID // submission order, oldest first
	ready      map[conquest.PlayerID]bool
	press      []model.PressRecord
	deadlineAt time.Time
	readyCh    chan struct{}
}

// NewSession wraps a game. The id keys all persisted and cached data;
// pass the stored id to resume an existing session.
func NewSession(id string, game *conquest.Game, deps Deps) *GameSession {
	if id == "" {
		id = uuid.NewString()
	}
	s := &GameSession{
		id:      id,
		game:    game,
		deps:    deps,
		log:     logger.ForGame(id),
		orders:  make(map[conquest.PartID]conquest.Order),
		ready:   make(map[conquest.PlayerID]bool),
		readyCh: make(chan struct{}),
	}
	s.armDeadline()
	return s
}

// ID returns the session identifier.
func (s *GameSession) ID() string { return s.id }

// Game returns the wrapped game. Callers must treat it as read-only;
// the session is the sole writer.
func (s *GameSession) Game() *conquest.Game { return s.game }

// Phase returns the current phase.
func (s *GameSession) Phase() conquest.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Phase
}

// SubmitOrder resolves one textual order against the map and buffers
// it. A later order from the same player for the same part replaces
// the earlier one; an order for a part the player does not control is
// rejected outright, so no player can displace another's submission.
// The finer rule-legality checks happen at resolution.
func (s *GameSession) SubmitOrder(ctx context.Context, playerName string, spec command.OrderSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Finished() {
		return fmt.Errorf("game is over")
	}
	o, err := s.resolveSpec(playerName, spec)
	if err != nil {
		return err
	}

	if _, seen := s.orders[o.Part]; !seen {
		s.orderSeq = append(s.orderSeq, o.Part)
	}
	s.orders[o.Part] = o
	s.log.Debug().Str("player", playerName).Str("order", o.Describe(s.game.World)).Msg("order buffered")

	s.mirrorOrders(ctx, playerName)
	return nil
}

func (s *GameSession) resolveSpec(playerName string, spec command.OrderSpec) (conquest.Order, error) {
	w := s.game.World
	gs := s.game.State

	pl := gs.PlayerByName(playerName)
	if pl == conquest.NoPlayer {
		return conquest.Order{}, fmt.Errorf("unknown player %q", playerName)
	}
	part := w.PartByName(spec.Part)
	if part == conquest.NoPart {
		return conquest.Order{}, fmt.Errorf("unknown part %q", spec.Part)
	}

	o := conquest.Order{Player: pl, Part: part, Target: conquest.NoPart, From: conquest.NoPart}
	if spec.Target != "" {
		if o.Target = w.PartByName(spec.Target); o.Target == conquest.NoPart {
			return conquest.Order{}, fmt.Errorf("unknown part %q", spec.Target)
		}
	}
	if spec.From != "" {
		if o.From = w.PartByName(spec.From); o.From == conquest.NoPart {
			return conquest.Order{}, fmt.Errorf("unknown part %q", spec.From)
		}
	}

	switch spec.Verb {
	case 'H':
		o.Kind = conquest.Hold
	case 'M':
		o.Kind = conquest.Move
	case 'S':
		if spec.From == "" {
			o.Kind = conquest.SupportHold
		} else {
			o.Kind = conquest.SupportMove
		}
	case 'C':
		o.Kind = conquest.Convoy
	case 'R':
		o.Kind = conquest.Retreat
	case 'B':
		o.Kind = conquest.Build
	case 'D':
		o.Kind = conquest.Disband
	default:
		return conquest.Order{}, fmt.Errorf("unknown order verb %q", spec.Verb)
	}

	if !verbAllowed(o.Kind, s.game.Phase.Kind) {
		return conquest.Order{}, fmt.Errorf("%s order not accepted during a %s phase", o.Kind, s.game.Phase.Kind)
	}
	if err := s.checkControl(o, pl, playerName); err != nil {
		return conquest.Order{}, err
	}
	return o, nil
}

// checkControl rejects orders for parts the submitting player does not
// control in the current phase: the buffer is keyed by part, and a
// foreign submission must never displace the controller's own order.
func (s *GameSession) checkControl(o conquest.Order, pl conquest.PlayerID, playerName string) error {
	w := s.game.World
	gs := s.game.State

	switch s.game.Phase.Kind {
	case conquest.PhaseMove:
		if gs.OccupantAt(o.Part) != pl {
			return fmt.Errorf("%s has no unit on %s", playerName, w.PartName(o.Part))
		}
	case conquest.PhaseRetreat:
		for _, d := range gs.Dislodged {
			if d.From == o.Part && d.Player == pl {
				return nil
			}
		}
		return fmt.Errorf("%s has no dislodged unit from %s", playerName, w.PartName(o.Part))
	case conquest.PhaseBuild:
		if o.Kind == conquest.Disband {
			if gs.OccupantAt(o.Part) != pl {
				return fmt.Errorf("%s has no unit on %s", playerName, w.PartName(o.Part))
			}
			return nil
		}
		for _, p := range conquest.EligibleBuildParts(pl, gs, w, s.game.Rules) {
			if p == o.Part {
				return nil
			}
		}
		return fmt.Errorf("%s cannot build on %s", playerName, w.PartName(o.Part))
	}
	return nil
}

func verbAllowed(k conquest.OrderKind, phase conquest.PhaseKind) bool {
	switch phase {
	case conquest.PhaseMove:
		return k == conquest.Hold || k == conquest.Move ||
			k == conquest.SupportHold || k == conquest.SupportMove || k == conquest.Convoy
	case conquest.PhaseRetreat:
		return k == conquest.Retreat || k == conquest.Disband
	case conquest.PhaseBuild:
		return k == conquest.Build || k == conquest.Disband
	default:
		return false
	}
}

// SetDraw records or withdraws a player's draw vote. Votes are sticky
// until changed and only matter at the phase boundary.
func (s *GameSession) SetDraw(ctx context.Context, playerName string, vote bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pl := s.game.State.PlayerByName(playerName)
	if pl == conquest.NoPlayer {
		return fmt.Errorf("unknown player %q", playerName)
	}
	s.game.State.SetVote(pl, vote)
	s.log.Info().Str("player", playerName).Bool("vote", vote).Msg("draw vote")

	if s.deps.Cache != nil {
		var err error
		if vote {
			err = s.deps.Cache.AddDrawVote(ctx, s.id, playerName)
		} else {
			err = s.deps.Cache.RemoveDrawVote(ctx, s.id, playerName)
		}
		if err != nil {
			s.log.Error().Err(err).Msg("draw vote cache update failed")
		}
	}
	return nil
}

// DrawVotes lists the players currently voting draw, for the
// voteShown rule.
func (s *GameSession) DrawVotes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for pl := range s.game.State.Players {
		if s.game.State.Players[pl].Vote {
			names = append(names, s.game.State.Players[pl].Name)
		}
	}
	sort.Strings(names)
	return names
}

// Press routes one message. The recipient is a player name or
// "public"; identities are plain name lookups, never references.
func (s *GameSession) Press(ctx context.Context, from, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.State.PlayerByName(from) == conquest.NoPlayer {
		return fmt.Errorf("unknown player %q", from)
	}
	recipient := ""
	if to != "public" {
		if s.game.State.PlayerByName(to) == conquest.NoPlayer {
			return fmt.Errorf("unknown recipient %q", to)
		}
		recipient = to
	}

	rec := model.PressRecord{
		ID:        uuid.NewString(),
		GameID:    s.id,
		Sender:    from,
		Recipient: recipient,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	s.press = append(s.press, rec)

	if s.deps.Press != nil {
		if err := s.deps.Press.Save(ctx, &rec); err != nil {
			s.log.Error().Err(err).Msg("press persistence failed")
		}
	}
	return nil
}

// PressFor renders the messages a reader may see, oldest first, in the
// output line format. Reader "public" sees only broadcasts.
func (s *GameSession) PressFor(reader string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lines []string
	for _, m := range s.press {
		visible := m.Recipient == "" || reader == m.Sender || reader == m.Recipient
		if reader == "public" {
			visible = m.Recipient == ""
		}
		if !visible {
			continue
		}
		if m.Recipient == "" {
			lines = append(lines, fmt.Sprintf("%s/public: %s", m.Sender, m.Body))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", m.Sender, m.Body))
		}
	}
	return lines
}

// MarkReady signals that a player has finished submitting. When every
// active player is ready the barrier releases.
func (s *GameSession) MarkReady(ctx context.Context, playerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pl := s.game.State.PlayerByName(playerName)
	if pl == conquest.NoPlayer {
		return fmt.Errorf("unknown player %q", playerName)
	}
	s.ready[pl] = true
	s.game.State.Players[pl].Ready = true
	if s.deps.Cache != nil {
		if err := s.deps.Cache.MarkReady(ctx, s.id, playerName); err != nil {
			s.log.Error().Err(err).Msg("ready cache update failed")
		}
	}

	if s.allReadyLocked() {
		select {
		case <-s.readyCh:
		default:
			close(s.readyCh)
		}
	}
	return nil
}

// UnmarkReady withdraws a player's ready signal. It has no effect once
// the barrier has released.
func (s *GameSession) UnmarkReady(ctx context.Context, playerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pl := s.game.State.PlayerByName(playerName)
	if pl == conquest.NoPlayer {
		return fmt.Errorf("unknown player %q", playerName)
	}
	delete(s.ready, pl)
	s.game.State.Players[pl].Ready = false
	if s.deps.Cache != nil {
		if err := s.deps.Cache.UnmarkReady(ctx, s.id, playerName); err != nil {
			s.log.Error().Err(err).Msg("ready cache update failed")
		}
	}
	return nil
}

func (s *GameSession) allReadyLocked() bool {
	for _, pl := range s.game.State.ActivePlayers(s.game.World) {
		if !s.ready[pl] {
			return false
		}
	}
	return true
}

// AllReady reports whether every active player has marked ready.
func (s *GameSession) AllReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allReadyLocked()
}

// DeadlineExpired reports whether the phase deadline has passed.
func (s *GameSession) DeadlineExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.deadlineAt.IsZero() && time.Now().After(s.deadlineAt)
}

// AwaitPhase blocks until every active player is ready or the deadline
// elapses, then resolves the phase. Unready players' units fall back
// to defaults (Hold, forced disbands). Context cancellation returns
// without resolving; if another caller resolved the phase while we
// waited, AwaitPhase returns (nil, nil) instead of resolving again.
func (s *GameSession) AwaitPhase(ctx context.Context) ([]conquest.ResolvedOrder, error) {
	s.mu.Lock()
	start := s.game.Phase
	ch := s.readyCh
	deadline := s.deadlineAt
	s.mu.Unlock()

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		t := time.NewTimer(time.Until(deadline))
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ch:
	case <-timeout:
		s.log.Info().Msg("phase deadline elapsed, forcing resolution")
	}

	s.mu.Lock()
	advanced := s.game.Phase != start
	s.mu.Unlock()
	if advanced {
		return nil, nil
	}
	return s.ResolvePhase(ctx)
}

// ResolvePhase adjudicates the buffered orders, persists the closed
// phase, mirrors the new snapshot, and resets per-phase data.
func (s *GameSession) ResolvePhase(ctx context.Context) ([]conquest.ResolvedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Finished() {
		return nil, fmt.Errorf("game is over")
	}

	phase := s.game.Phase
	stateBefore, err := json.Marshal(s.game.State)
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}

	orders := make([]conquest.Order, 0, len(s.orderSeq))
	for _, part := range s.orderSeq {
		orders = append(orders, s.orders[part])
	}

	results := s.game.Advance(orders)
	for i := range s.game.State.Players {
		s.game.State.Players[i].Ready = false
	}
	s.log.Info().
		Str("phase", phase.String()).
		Int("orders", len(orders)).
		Int("dislodged", len(s.game.State.Dislodged)).
		Msg("phase resolved")

	s.persistPhase(ctx, phase, stateBefore, results)
	s.resetPhaseData(ctx)

	if s.game.Finished() {
		s.finishLocked(ctx)
	}
	return results, nil
}

func (s *GameSession) persistPhase(ctx context.Context, phase conquest.Phase, stateBefore []byte, results []conquest.ResolvedOrder) {
	stateAfter, err := json.Marshal(s.game.State)
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot after resolution failed")
		return
	}

	if s.deps.Phases != nil {
		rec := model.PhaseRecord{
			ID:          uuid.NewString(),
			GameID:      s.id,
			Number:      phase.Count,
			Kind:        phase.Kind.String(),
			StateBefore: stateBefore,
			StateAfter:  stateAfter,
			ResolvedAt:  time.Now().UTC(),
		}
		var recs []model.OrderRecord
		for _, r := range results {
			recs = append(recs, model.OrderRecord{
				Player: s.game.State.Players[r.Order.Player].Name,
				Text:   r.Order.Describe(s.game.World),
				Result: r.Result.String(),
			})
		}
		if err := s.deps.Phases.SavePhase(ctx, &rec, recs); err != nil {
			s.log.Error().Err(err).Str("phase", phase.String()).Msg("phase persistence failed")
		}
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetSnapshot(ctx, s.id, stateAfter); err != nil {
			s.log.Error().Err(err).Msg("snapshot cache update failed")
		}
	}
}

func (s *GameSession) resetPhaseData(ctx context.Context) {
	s.orders = make(map[conquest.PartID]conquest.Order)
	s.orderSeq = nil
	s.ready = make(map[conquest.PlayerID]bool)
	// Release anyone parked on the old barrier before replacing it.
	select {
	case <-s.readyCh:
	default:
		close(s.readyCh)
	}
	s.readyCh = make(chan struct{})
	s.armDeadline()

	if s.deps.Cache != nil {
		if err := s.deps.Cache.ClearPhaseData(ctx, s.id, s.playerNames()); err != nil {
			s.log.Error().Err(err).Msg("phase data cache clear failed")
		}
		if !s.deadlineAt.IsZero() {
			if err := s.deps.Cache.SetTimer(ctx, s.id, s.deadlineAt); err != nil {
				s.log.Error().Err(err).Msg("timer re-arm failed")
			}
		}
	}
}

func (s *GameSession) armDeadline() {
	if s.deps.Deadline > 0 {
		s.deadlineAt = time.Now().Add(s.deps.Deadline)
	} else {
		s.deadlineAt = time.Time{}
	}
}

func (s *GameSession) finishLocked(ctx context.Context) {
	if s.game.Drawn {
		shares := conquest.SplitCenters(s.game.State, s.game.World, s.game.Rules.DrawType)
		names := make([]string, 0, len(shares))
		for _, sh := range shares {
			names = append(names, s.game.State.Players[sh.Player].Name)
		}
		s.log.Info().Strs("survivors", names).Msg("game drawn")
	} else if s.game.Winner != conquest.NoPlayer {
		s.log.Info().Str("winner", s.game.State.Players[s.game.Winner].Name).Msg("game won")
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.DeleteSession(ctx, s.id, s.playerNames()); err != nil {
			s.log.Error().Err(err).Msg("session cache cleanup failed")
		}
	}
}

func (s *GameSession) playerNames() []string {
	names := make([]string, 0, len(s.game.State.Players))
	for _, p := range s.game.State.Players {
		names = append(names, p.Name)
	}
	return names
}

func (s *GameSession) mirrorOrders(ctx context.Context, playerName string) {
	if s.deps.Cache == nil {
		return
	}
	pl := s.game.State.PlayerByName(playerName)
	var lines []string
	for _, part := range s.orderSeq {
		if o := s.orders[part]; o.Player == pl {
			lines = append(lines, o.Describe(s.game.World))
		}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return
	}
	if err := s.deps.Cache.SetOrders(ctx, s.id, playerName, data); err != nil {
		s.log.Error().Err(err).Msg("order cache update failed")
	}
}

// Recover rebuilds a session from the cached snapshot, resuming at the
// recorded phase. Returns false when no live snapshot exists.
func Recover(ctx context.Context, id string, w *conquest.World, rules *conquest.Rules, deps Deps) (*GameSession, bool, error) {
	if deps.Cache == nil {
		return nil, false, nil
	}
	snap, err := deps.Cache.GetSnapshot(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("recover session: %w", err)
	}
	if snap == nil {
		return nil, false, nil
	}

	var gs conquest.GameState
	if err := json.Unmarshal(snap, &gs); err != nil {
		return nil, false, fmt.Errorf("recover session: %w", err)
	}
	game := conquest.NewGame(w, &gs, rules)
	s := NewSession(id, game, deps)
	s.log.Info().Str("phase", game.Phase.String()).Msg("session recovered from snapshot")
	return s, true, nil
}
