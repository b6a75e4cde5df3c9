package conquest

import "sort"

// BuildDelta is centers minus units for one player: positive means
// builds owed, negative means disbands owed.
func BuildDelta(pl PlayerID, gs *GameState, w *World) int {
	return gs.CenterCount(pl, w) - gs.UnitCount(pl)
}

// EligibleBuildParts lists the parts a player may currently build on:
// parts of owned supply centers allowed by the build rule, in
// territories with no unit anywhere.
func EligibleBuildParts(pl PlayerID, gs *GameState, w *World, rules *Rules) []PartID {
	var out []PartID
	for t, terr := range w.Territories {
		tid := TerrID(t)
		if !terr.Center || gs.Owners[tid] != pl {
			continue
		}
		if rules.BuildRule == BuildInitCenters && !containsTerr(gs.Players[pl].Home, tid) {
			continue
		}
		if terrOccupied(tid, gs, w) {
			continue
		}
		out = append(out, terr.Parts...)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// ResolveBuilds adjudicates a build phase. Each player with more
// centers than units may place up to the difference on eligible
// centers; excess builds are void. Each player with fewer centers than
// units must remove the difference; missing disbands are forced,
// taking the unit furthest from the player's home centers first, ties
// broken by part name. Returns the next state.
func ResolveBuilds(orders []Order, gs *GameState, w *World, rules *Rules) ([]ResolvedOrder, *GameState) {
	next := gs.Clone()
	var results []ResolvedOrder

	for pl := range gs.Players {
		pid := PlayerID(pl)
		delta := BuildDelta(pid, gs, w)

		var mine []Order
		for _, o := range orders {
			if o.Player == pid {
				mine = append(mine, o)
			}
		}

		switch {
		case delta > 0:
			results = append(results, resolvePlayerBuilds(mine, pid, delta, next, w, rules)...)
		case delta < 0:
			results = append(results, resolvePlayerDisbands(mine, pid, -delta, next, w)...)
		default:
			for _, o := range mine {
				results = append(results, ResolvedOrder{Order: o, Result: Void})
			}
		}
	}
	return results, next
}

func resolvePlayerBuilds(mine []Order, pl PlayerID, allowed int, next *GameState, w *World, rules *Rules) []ResolvedOrder {
	var results []ResolvedOrder
	built := 0
	for _, o := range mine {
		if o.Kind != Build || built >= allowed || !buildLegal(o.Part, pl, next, w, rules) {
			results = append(results, ResolvedOrder{Order: o, Result: Void})
			continue
		}
		next.Occupants[o.Part] = pl
		built++
		results = append(results, ResolvedOrder{Order: o, Result: Succeeded})
	}
	return results
}

func resolvePlayerDisbands(mine []Order, pl PlayerID, owed int, next *GameState, w *World) []ResolvedOrder {
	var results []ResolvedOrder
	removed := 0
	for _, o := range mine {
		if o.Kind != Disband || removed >= owed ||
			o.Part < 0 || int(o.Part) >= len(w.Parts) || next.OccupantAt(o.Part) != pl {
			results = append(results, ResolvedOrder{Order: o, Result: Void})
			continue
		}
		next.Occupants[o.Part] = NoPlayer
		removed++
		results = append(results, ResolvedOrder{Order: o, Result: Succeeded})
	}

	for removed < owed {
		part := furthestUnit(pl, next, w)
		if part == NoPart {
			break
		}
		next.Occupants[part] = NoPlayer
		removed++
		results = append(results, ResolvedOrder{
			Order:  Order{Kind: Disband, Player: pl, Part: part, Target: NoPart, From: NoPart},
			Result: Succeeded,
		})
	}
	return results
}

func buildLegal(part PartID, pl PlayerID, gs *GameState, w *World, rules *Rules) bool {
	if part < 0 || int(part) >= len(w.Parts) {
		return false
	}
	tid := w.TerrOf(part)
	if !w.Territories[tid].Center || gs.Owners[tid] != pl {
		return false
	}
	if rules.BuildRule == BuildInitCenters && !containsTerr(gs.Players[pl].Home, tid) {
		return false
	}
	return !terrOccupied(tid, gs, w)
}

// furthestUnit picks the forced-disband victim: the player's unit in
// the territory with the greatest hop distance from any home center,
// unreachable counting as furthest, ties broken by part name.
func furthestUnit(pl PlayerID, gs *GameState, w *World) PartID {
	dist := terrDistances(gs.Players[pl].Home, w)

	best := NoPart
	bestDist := -1
	for p, occ := range gs.Occupants {
		if occ != pl {
			continue
		}
		pid := PartID(p)
		d, ok := dist[w.TerrOf(pid)]
		if !ok {
			d = len(w.Territories) + 1
		}
		if d > bestDist || (d == bestDist && best != NoPart && w.PartName(pid) < w.PartName(best)) {
			best, bestDist = pid, d
		}
	}
	return best
}

// terrDistances runs a breadth-first search over territories, where
// two territories are adjacent when any of their parts are.
func terrDistances(from []TerrID, w *World) map[TerrID]int {
	dist := make(map[TerrID]int, len(w.Territories))
	var queue []TerrID
	for _, t := range from {
		dist[t] = 0
		queue = append(queue, t)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, part := range w.Territories[cur].Parts {
			for _, n := range w.Parts[part].Neighbors {
				nt := w.TerrOf(n)
				if _, seen := dist[nt]; !seen {
					dist[nt] = dist[cur] + 1
					queue = append(queue, nt)
				}
			}
		}
	}
	return dist
}

func terrOccupied(t TerrID, gs *GameState, w *World) bool {
	for _, p := range w.Territories[t].Parts {
		if gs.OccupantAt(p) != NoPlayer {
			return true
		}
	}
	return false
}

func containsTerr(ts []TerrID, t TerrID) bool {
	for _, q := range ts {
		if q == t {
			return true
		}
	}
	return false
}
