package conquest

import "fmt"

type PhaseKind int8

const (
	PhaseMove PhaseKind = iota
	PhaseRetreat
	PhaseBuild
	PhaseDone
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseMove:
		return "Move"
	case PhaseRetreat:
		return "Retreat"
	case PhaseBuild:
		return "Build"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Phase is the externally visible phase number and kind. Retreat
// phases share their move phase's number.
type Phase struct {
	Count int
	Kind  PhaseKind
}

func (p Phase) String() string {
	return fmt.Sprintf("Phase %d %s", p.Count, p.Kind)
}

// Game is the authoritative simulation: the immutable world, the rule
// set, and the single current snapshot, replaced wholesale at each
// phase boundary. Only Advance mutates it.
type Game struct {
	World *World
	Rules *Rules
	State *GameState
	Phase Phase
	Log   *PhaseLog

	Winner PlayerID
	Drawn  bool

	moves int // completed move phases, drives build cadence
}

// NewGame wraps a loaded world and state. A snapshot restored
// mid-game resumes at its recorded phase.
func NewGame(w *World, gs *GameState, rules *Rules) *Game {
	phase := gs.Phase
	if phase.Count == 0 {
		phase = Phase{Count: 1, Kind: PhaseMove}
	}
	return &Game{
		World:  w,
		Rules:  rules,
		State:  gs,
		Phase:  phase,
		Log:    NewPhaseLog(),
		Winner: NoPlayer,
		moves:  movesBefore(phase.Count, rules.BuildTime),
	}
}

// movesBefore recovers how many move phases finished before the given
// phase number, given that the counter also ticks once per build
// phase (every buildTime moves).
func movesBefore(count, buildTime int) int {
	m := 0
	for c := 1; c < count; c++ {
		m++
		if buildTime > 0 && m%buildTime == 0 {
			c++ // the build phase consumed the next number
		}
	}
	return m
}

// Advance resolves the current phase with the buffered orders and
// transitions to the next one. The returned results include the Void
// entries for rejected orders. Calling Advance on a finished game
// returns no results and leaves the state untouched.
func (g *Game) Advance(orders []Order) []ResolvedOrder {
	var results []ResolvedOrder
	switch g.Phase.Kind {
	case PhaseMove:
		results = g.advanceMove(orders)
	case PhaseRetreat:
		results = g.advanceRetreat(orders)
	case PhaseBuild:
		results = g.advanceBuild(orders)
	default:
		return nil
	}
	// The snapshot carries the phase so a restored game resumes where
	// it left off.
	g.State.Phase = g.Phase
	return results
}

func (g *Game) advanceMove(orders []Order) []ResolvedOrder {
	valid, voids := ValidateAndDefault(orders, g.State, g.World)
	res := ResolveMoves(valid, g.State, g.World)

	results := append(res.Results, voids...)
	g.Log.Record(g.Phase, results, g.State, g.World)
	g.State = res.Next
	g.moves++

	if len(g.State.Dislodged) > 0 {
		g.Phase.Kind = PhaseRetreat
		return results
	}
	g.afterMovement()
	return results
}

func (g *Game) advanceRetreat(orders []Order) []ResolvedOrder {
	results, next := ResolveRetreats(orders, g.State, g.World)
	g.Log.Record(g.Phase, results, g.State, g.World)
	g.State = next
	g.afterMovement()
	return results
}

func (g *Game) advanceBuild(orders []Order) []ResolvedOrder {
	results, next := ResolveBuilds(orders, g.State, g.World, g.Rules)
	g.Log.Record(g.Phase, results, g.State, g.World)
	g.State = next

	if g.checkEnd() {
		return results
	}
	g.Phase = Phase{Count: g.Phase.Count + 1, Kind: PhaseMove}
	return results
}

// afterMovement runs the movement-boundary bookkeeping: capture, end
// checks, and the build cadence.
func (g *Game) afterMovement() {
	g.State.CaptureTerritories(g.World)
	if g.checkEnd() {
		return
	}
	if g.Rules.BuildTime > 0 && g.moves%g.Rules.BuildTime == 0 {
		g.Phase = Phase{Count: g.Phase.Count + 1, Kind: PhaseBuild}
		return
	}
	g.Phase = Phase{Count: g.Phase.Count + 1, Kind: PhaseMove}
}

// checkEnd settles the terminal conditions. A win beats a draw when
// both hold at the same boundary.
func (g *Game) checkEnd() bool {
	for pl := range g.State.Players {
		if g.State.CenterCount(PlayerID(pl), g.World) >= g.Rules.WinCondition {
			g.Winner = PlayerID(pl)
			g.Phase.Kind = PhaseDone
			return true
		}
	}
	if CheckDraw(g.State, g.World) {
		g.Drawn = true
		g.Phase.Kind = PhaseDone
		return true
	}
	return false
}

// Finished reports whether the game has reached its terminal state.
func (g *Game) Finished() bool {
	return g.Phase.Kind == PhaseDone
}
