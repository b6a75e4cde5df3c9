package conquest

import "sort"

// Resolution is the outcome of adjudicating one move phase: a result
// per order, the next occupancy (dislodged units removed from the
// board and recorded), and the parts left contested by a standoff.
type Resolution struct {
	Results   []ResolvedOrder
	Next      *GameState
	Standoffs []PartID
}

type moveState int8

const (
	msUnknown moveState = iota
	msVisiting
	msSucceeds
	msFails
)

// ResolveMoves adjudicates a complete, validated move-phase order set.
// Convoy disruption is handled by retraction to a fixed point: a pass
// assumes every remaining convoy succeeds, and any convoying fleet the
// pass dislodges has its convoy permanently retracted before the next
// pass. Retraction only grows, so the loop terminates, and a
// paradoxical convoy cycle resolves to failure.
func ResolveMoves(orders []Order, gs *GameState, w *World) *Resolution {
	retracted := make([]bool, len(orders))
	for {
		p := newPass(orders, gs, w, retracted)
		p.run()

		changed := false
		for i, o := range orders {
			if o.Kind == Convoy && !retracted[i] && p.dislodgedAt[o.Part] {
				retracted[i] = true
				changed = true
			}
		}
		if !changed {
			return p.finish()
		}
	}
}

// pass is one full adjudication under a fixed set of live convoys.
type pass struct {
	w         *World
	gs        *GameState
	orders    []Order
	retracted []bool

	active      []bool // move orders with an intact route
	cut         []bool // support orders cut by an attack
	attack      []int  // move strength, 1 + uncut supports
	state       []moveState
	moveFrom    map[PartID]int   // origin part -> its active move
	contenders  map[PartID][]int // destination part -> active moves in
	winner      map[PartID]int   // destination -> sole strongest contender, -1 on tie
	standoffs   map[PartID]bool
	dislodgedAt map[PartID]bool
	dislodgedBy map[PartID]PartID // dislodged part -> attacker origin
}

func newPass(orders []Order, gs *GameState, w *World, retracted []bool) *pass {
	return &pass{
		w:           w,
		gs:          gs,
		orders:      orders,
		retracted:   retracted,
		active:      make([]bool, len(orders)),
		cut:         make([]bool, len(orders)),
		attack:      make([]int, len(orders)),
		state:       make([]moveState, len(orders)),
		moveFrom:    make(map[PartID]int),
		contenders:  make(map[PartID][]int),
		winner:      make(map[PartID]int),
		standoffs:   make(map[PartID]bool),
		dislodgedAt: make(map[PartID]bool),
		dislodgedBy: make(map[PartID]PartID),
	}
}

func (p *pass) run() {
	p.markActive()
	p.cutSupports()
	p.computeStrengths()
	p.pickWinners()

	for i, o := range p.orders {
		if o.Kind == Move && p.active[i] {
			p.succeeds(i)
		}
	}
	p.markDislodged()
}

// markActive flags each move whose route exists: direct adjacency, or
// an unbroken chain of non-retracted convoys.
func (p *pass) markActive() {
	for i, o := range p.orders {
		if o.Kind != Move {
			continue
		}
		if p.w.Adjacent(o.Part, o.Target) {
			p.active[i] = true
		} else {
			p.active[i] = p.routeExists(o.Part, o.Target)
		}
		if p.active[i] {
			p.moveFrom[o.Part] = i
			p.contenders[o.Target] = append(p.contenders[o.Target], i)
		}
	}
}

func (p *pass) routeExists(src, dst PartID) bool {
	hops := make(map[PartID]bool)
	for i, c := range p.orders {
		if c.Kind == Convoy && !p.retracted[i] && c.From == src && c.Target == dst {
			hops[c.Part] = true
		}
	}
	if len(hops) == 0 {
		return false
	}

	srcTerr := p.w.TerrOf(src)
	dstTerr := p.w.TerrOf(dst)
	visited := make(map[PartID]bool)
	var queue []PartID
	for h := range hops {
		if p.w.ReachesTerr(h, srcTerr) {
			visited[h] = true
			queue = append(queue, h)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if p.w.ReachesTerr(cur, dstTerr) {
			return true
		}
		for _, n := range p.w.Parts[cur].Neighbors {
			if hops[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// cutSupports applies the cut rule from order intents alone: a support
// is cut when an active move targets the supporter's part, unless the
// attacker is the player being aided, or the attack comes out of the
// very part the support is directed against.
func (p *pass) cutSupports() {
	for i, s := range p.orders {
		if s.Kind != SupportHold && s.Kind != SupportMove {
			continue
		}
		aidedPart := s.Target
		if s.Kind == SupportMove {
			aidedPart = s.From
		}
		aided := p.gs.OccupantAt(aidedPart)

		for j, m := range p.orders {
			if m.Kind != Move || !p.active[j] || m.Target != s.Part {
				continue
			}
			if m.Player == aided {
				continue
			}
			if s.Kind == SupportMove && m.Part == s.Target {
				continue
			}
			p.cut[i] = true
			break
		}
	}
}

func (p *pass) computeStrengths() {
	for i, o := range p.orders {
		if o.Kind != Move || !p.active[i] {
			continue
		}
		str := 1
		for j, s := range p.orders {
			if s.Kind == SupportMove && !p.cut[j] && s.From == o.Part && s.Target == o.Target {
				str++
			}
		}
		p.attack[i] = str
	}
}

// attackAgainst is a move's strength for the purpose of dislodging the
// given defender. Supports issued by the defender's own player never
// help force out that player's unit, though they still count in full
// when the move contends with rival entrants for the destination.
func (p *pass) attackAgainst(i int, defender PlayerID) int {
	o := p.orders[i]
	str := 1
	for j, s := range p.orders {
		if s.Kind == SupportMove && !p.cut[j] && s.From == o.Part && s.Target == o.Target && s.Player != defender {
			str++
		}
	}
	return str
}

// holdStrength is the defense of a part whose occupant stays put. A
// unit that ordered a move and failed defends with bare strength 1:
// supports to hold it do not apply to a moving unit.
func (p *pass) holdStrength(part PartID) int {
	occ := p.gs.OccupantAt(part)
	if occ == NoPlayer {
		return 0
	}
	if p.orders[p.orderOf(part)].Kind == Move {
		return 1
	}
	str := 1
	for j, s := range p.orders {
		if s.Kind == SupportHold && !p.cut[j] && s.Target == part {
			str++
		}
	}
	return str
}

func (p *pass) orderOf(part PartID) int {
	for i, o := range p.orders {
		if o.Part == part {
			switch o.Kind {
			case Hold, Move, SupportHold, SupportMove, Convoy:
				return i
			}
		}
	}
	return -1
}

// pickWinners resolves each contested destination to its single
// strongest contender. A tie for the maximum is a standoff: every
// contender fails and the part is recorded as contested.
func (p *pass) pickWinners() {
	dests := make([]PartID, 0, len(p.contenders))
	for d := range p.contenders {
		dests = append(dests, d)
	}
	sort.Slice(dests, func(a, b int) bool { return dests[a] < dests[b] })

	for _, d := range dests {
		ids := p.contenders[d]
		best, bestStr, ties := -1, 0, 0
		for _, i := range ids {
			switch {
			case p.attack[i] > bestStr:
				best, bestStr, ties = i, p.attack[i], 1
			case p.attack[i] == bestStr:
				ties++
			}
		}
		if ties > 1 {
			p.winner[d] = -1
			p.standoffs[d] = true
			for _, i := range ids {
				p.state[i] = msFails
			}
			continue
		}
		p.winner[d] = best
		for _, i := range ids {
			if i != best {
				p.state[i] = msFails
			}
		}
	}
}

// succeeds decides one winning move, recursing through vacate chains.
// A cycle of moves each entering the part the next one leaves is a
// rotation and every member succeeds; two-unit swaps never reach here
// as rotations because head-to-head battles are settled directly.
func (p *pass) succeeds(i int) bool {
	switch p.state[i] {
	case msSucceeds:
		return true
	case msVisiting:
		// Revisiting a move on the stack means a rotation; treat the
		// part as vacated so the whole cycle resolves.
		return true
	case msFails:
		return false
	}
	p.state[i] = msVisiting
	ok := p.decide(i)
	if ok {
		p.state[i] = msSucceeds
	} else {
		p.state[i] = msFails
	}
	return ok
}

func (p *pass) decide(i int) bool {
	o := p.orders[i]
	occ := p.gs.OccupantAt(o.Target)
	if occ == NoPlayer {
		return true
	}

	j, incumbentMoves := p.moveFrom[o.Target]
	if incumbentMoves {
		back := p.orders[j].Target == o.Part
		direct := p.w.Adjacent(o.Part, o.Target) && p.w.Adjacent(p.orders[j].Part, p.orders[j].Target)
		if back && direct {
			// Head-to-head battle: the strictly stronger side
			// dislodges the weaker, a tie stops both, and a unit
			// never dislodges one of its own.
			if p.attackAgainst(i, occ) > p.attack[j] && occ != o.Player {
				p.state[j] = msFails
				return true
			}
			return false
		}
		if p.succeeds(j) {
			return true
		}
		return p.attackAgainst(i, occ) > 1 && occ != o.Player
	}

	return p.attackAgainst(i, occ) > p.holdStrength(o.Target) && occ != o.Player
}

func (p *pass) markDislodged() {
	for part, occ := range p.gs.Occupants {
		pid := PartID(part)
		if occ == NoPlayer {
			continue
		}
		if i, moved := p.moveFrom[pid]; moved && p.state[i] == msSucceeds {
			continue
		}
		win, ok := p.winner[pid]
		if ok && win >= 0 && p.state[win] == msSucceeds {
			p.dislodgedAt[pid] = true
			p.dislodgedBy[pid] = p.orders[win].Part
		}
	}
}

// finish turns the settled pass into a Resolution: per-order results,
// the next occupancy with dislodged units pulled off the board, and
// the forbidden retreat set for each of them.
func (p *pass) finish() *Resolution {
	next := p.gs.Clone()
	next.Dislodged = nil

	for i, o := range p.orders {
		if o.Kind == Move && p.state[i] == msSucceeds {
			next.Occupants[o.Part] = NoPlayer
		}
	}
	for i, o := range p.orders {
		if o.Kind == Move && p.state[i] == msSucceeds {
			next.Occupants[o.Target] = o.Player
		}
	}

	standoffs := make([]PartID, 0, len(p.standoffs))
	for d := range p.standoffs {
		standoffs = append(standoffs, d)
	}
	sort.Slice(standoffs, func(a, b int) bool { return standoffs[a] < standoffs[b] })

	dislodgedParts := make([]PartID, 0, len(p.dislodgedAt))
	for d := range p.dislodgedAt {
		dislodgedParts = append(dislodgedParts, d)
	}
	sort.Slice(dislodgedParts, func(a, b int) bool { return dislodgedParts[a] < dislodgedParts[b] })

	for _, d := range dislodgedParts {
		forbidden := []PartID{p.dislodgedBy[d]}
		for _, s := range standoffs {
			if s != p.dislodgedBy[d] {
				forbidden = append(forbidden, s)
			}
		}
		sort.Slice(forbidden, func(a, b int) bool { return forbidden[a] < forbidden[b] })
		// The winner has already taken the part, so the loser is only
		// recorded, not cleared.
		next.Dislodged = append(next.Dislodged, DislodgedUnit{
			Player:    p.gs.OccupantAt(d),
			From:      d,
			Forbidden: forbidden,
		})
	}

	results := make([]ResolvedOrder, len(p.orders))
	for i, o := range p.orders {
		results[i] = ResolvedOrder{Order: o, Result: p.result(i)}
	}
	return &Resolution{Results: results, Next: next, Standoffs: standoffs}
}

func (p *pass) result(i int) OrderResult {
	o := p.orders[i]
	switch o.Kind {
	case Move:
		if p.state[i] == msSucceeds {
			return Succeeded
		}
		if !p.active[i] {
			return Broken
		}
		if p.dislodgedAt[o.Part] {
			return Dislodged
		}
		return Bounced
	case SupportHold, SupportMove:
		if p.cut[i] {
			return Cut
		}
		if p.dislodgedAt[o.Part] {
			return Dislodged
		}
		return Succeeded
	case Convoy:
		if p.retracted[i] || p.dislodgedAt[o.Part] {
			return Broken
		}
		if mi, ok := p.moveFrom[o.From]; ok && p.orders[mi].Kind == Move &&
			p.orders[mi].Target == o.Target && p.state[mi] == msSucceeds {
			return Succeeded
		}
		return Broken
	default:
		if p.dislodgedAt[o.Part] {
			return Dislodged
		}
		return Succeeded
	}
}
