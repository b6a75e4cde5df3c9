package conquest

import "sort"

// ResolveRetreats applies Retreat and Disband orders for the dislodged
// units recorded on the state. A retreat must go to an adjacent,
// unoccupied part outside the unit's forbidden set; two retreats to
// the same part bounce and both units disband, and a dislodged unit
// with no usable order disbands by default. Returns the next state
// with the dislodged set cleared.
func ResolveRetreats(orders []Order, gs *GameState, w *World) ([]ResolvedOrder, *GameState) {
	next := gs.Clone()
	next.Dislodged = nil

	byFrom := make(map[PartID]DislodgedUnit, len(gs.Dislodged))
	for _, d := range gs.Dislodged {
		byFrom[d.From] = d
	}

	latest := make(map[PartID]Order, len(orders))
	var results []ResolvedOrder
	for _, o := range orders {
		d, ok := byFrom[o.Part]
		if !ok {
			results = append(results, ResolvedOrder{Order: o, Result: Void})
			continue
		}
		if o.Kind == Disband {
			latest[o.Part] = o
			continue
		}
		if o.Kind != Retreat {
			results = append(results, ResolvedOrder{Order: o, Result: Void})
			continue
		}
		if o.Player != d.Player {
			results = append(results, ResolvedOrder{Order: o, Result: Void})
			continue
		}
		if !retreatLegal(o, d, gs, w) {
			results = append(results, ResolvedOrder{Order: o, Result: Void})
			continue
		}
		latest[o.Part] = o
	}

	// Retreats bouncing into the same part all fail.
	dest := make(map[PartID]int)
	for _, o := range latest {
		if o.Kind == Retreat {
			dest[o.Target]++
		}
	}

	froms := make([]PartID, 0, len(byFrom))
	for f := range byFrom {
		froms = append(froms, f)
	}
	sort.Slice(froms, func(a, b int) bool { return froms[a] < froms[b] })

	for _, f := range froms {
		d := byFrom[f]
		o, ok := latest[f]
		switch {
		case !ok:
			results = append(results, ResolvedOrder{
				Order:  Order{Kind: Disband, Player: d.Player, Part: f, Target: NoPart, From: NoPart},
				Result: Succeeded,
			})
		case o.Kind == Disband:
			results = append(results, ResolvedOrder{Order: o, Result: Succeeded})
		case dest[o.Target] > 1:
			results = append(results, ResolvedOrder{Order: o, Result: Bounced})
		default:
			next.Occupants[o.Target] = d.Player
			results = append(results, ResolvedOrder{Order: o, Result: Succeeded})
		}
	}

	return results, next
}

// RetreatOptions lists where a dislodged unit could still go, for
// reporting to its player. Empty means disband is forced.
func RetreatOptions(d DislodgedUnit, gs *GameState, w *World) []PartID {
	var opts []PartID
	for _, n := range w.Parts[d.From].Neighbors {
		if gs.OccupantAt(n) != NoPlayer {
			continue
		}
		if containsPart(d.Forbidden, n) {
			continue
		}
		opts = append(opts, n)
	}
	return opts
}

func retreatLegal(o Order, d DislodgedUnit, gs *GameState, w *World) bool {
	if o.Target < 0 || int(o.Target) >= len(w.Parts) {
		return false
	}
	if !w.Adjacent(d.From, o.Target) {
		return false
	}
	if gs.OccupantAt(o.Target) != NoPlayer {
		return false
	}
	return !containsPart(d.Forbidden, o.Target)
}

func containsPart(ps []PartID, p PartID) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
