package conquest

import "fmt"

// ValidationError describes why an order was rejected. Rejection is
// per-order: the rest of the submission still resolves and the
// affected unit defaults to Hold.
type ValidationError struct {
	Order   Order
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s order: %s", e.Order.Kind, e.Message)
}

// ValidateOrder checks whether a move-phase order is legal given the
// current occupancy and the full submitted order set (convoy routes
// are judged against the Convoy orders actually issued this phase).
// Returns nil if valid, or a *ValidationError.
func ValidateOrder(o Order, all []Order, gs *GameState, w *World) error {
	if o.Part < 0 || int(o.Part) >= len(w.Parts) {
		return &ValidationError{o, "no such part"}
	}
	occ := gs.OccupantAt(o.Part)
	if occ == NoPlayer {
		return &ValidationError{o, "no unit on " + w.PartName(o.Part)}
	}
	if occ != o.Player {
		return &ValidationError{o, fmt.Sprintf("unit on %s belongs to %s, not %s",
			w.PartName(o.Part), gs.Players[occ].Name, gs.Players[o.Player].Name)}
	}

	switch o.Kind {
	case Hold:
		return nil
	case Move:
		return validateMove(o, all, gs, w)
	case SupportHold:
		return validateSupportHold(o, gs, w)
	case SupportMove:
		return validateSupportMove(o, all, gs, w)
	case Convoy:
		return validateConvoy(o, gs, w)
	default:
		return &ValidationError{o, "not a move-phase order"}
	}
}

func validateMove(o Order, all []Order, gs *GameState, w *World) error {
	if o.Target < 0 || int(o.Target) >= len(w.Parts) {
		return &ValidationError{o, "no such destination part"}
	}
	if o.Target == o.Part {
		return &ValidationError{o, "cannot move to its own part"}
	}
	if w.Adjacent(o.Part, o.Target) {
		return nil
	}
	if convoyRouteExists(o.Part, o.Target, all, gs, w) {
		return nil
	}
	return &ValidationError{o, fmt.Sprintf("cannot reach %s from %s",
		w.PartName(o.Target), w.PartName(o.Part))}
}

func validateSupportHold(o Order, gs *GameState, w *World) error {
	if o.Target < 0 || int(o.Target) >= len(w.Parts) {
		return &ValidationError{o, "no such target part"}
	}
	if gs.OccupantAt(o.Target) == NoPlayer {
		return &ValidationError{o, "no unit on " + w.PartName(o.Target) + " to support"}
	}
	if o.Target == o.Part {
		return &ValidationError{o, "cannot support its own hold"}
	}
	if !w.ReachesTerr(o.Part, w.TerrOf(o.Target)) {
		return &ValidationError{o, fmt.Sprintf("%s cannot reach %s to support a hold there",
			w.PartName(o.Part), w.PartName(o.Target))}
	}
	return nil
}

func validateSupportMove(o Order, all []Order, gs *GameState, w *World) error {
	if o.Target < 0 || int(o.Target) >= len(w.Parts) {
		return &ValidationError{o, "no such destination part"}
	}
	if o.From < 0 || int(o.From) >= len(w.Parts) {
		return &ValidationError{o, "no such origin part"}
	}
	if o.From == o.Part {
		return &ValidationError{o, "cannot support its own move"}
	}
	if gs.OccupantAt(o.From) == NoPlayer {
		return &ValidationError{o, "no unit on " + w.PartName(o.From) + " to support"}
	}
	if !w.ReachesTerr(o.Part, w.TerrOf(o.Target)) {
		return &ValidationError{o, fmt.Sprintf("%s cannot reach %s to support a move there",
			w.PartName(o.Part), w.PartName(o.Target))}
	}
	if !w.Adjacent(o.From, o.Target) && !convoyRouteExists(o.From, o.Target, all, gs, w) {
		return &ValidationError{o, fmt.Sprintf("supported unit on %s cannot reach %s",
			w.PartName(o.From), w.PartName(o.Target))}
	}
	return nil
}

func validateConvoy(o Order, gs *GameState, w *World) error {
	if !w.IsCoast(o.Part) {
		return &ValidationError{o, "only a unit on a coast part can convoy"}
	}
	if o.From < 0 || int(o.From) >= len(w.Parts) {
		return &ValidationError{o, "no such convoyed part"}
	}
	if o.Target < 0 || int(o.Target) >= len(w.Parts) {
		return &ValidationError{o, "no such convoy destination"}
	}
	if gs.OccupantAt(o.From) == NoPlayer {
		return &ValidationError{o, "no unit on " + w.PartName(o.From) + " to convoy"}
	}
	if w.Parts[o.From].Kind != Land {
		return &ValidationError{o, "only land units can be convoyed"}
	}
	if w.Parts[o.Target].Kind != Land {
		return &ValidationError{o, "convoy destination must be a land part"}
	}
	return nil
}

// convoyRouteExists reports whether an unbroken chain of submitted
// Convoy orders could carry the move src -> dst: every hop is a coast
// part whose occupying fleet convoys exactly this move, the first hop
// touches src's shoreline and the last touches dst's shoreline.
func convoyRouteExists(src, dst PartID, all []Order, gs *GameState, w *World) bool {
	if w.Parts[src].Kind != Land || w.Parts[dst].Kind != Land {
		return false
	}

	var hops []PartID
	for _, c := range all {
		if c.Kind != Convoy || c.From != src || c.Target != dst {
			continue
		}
		if !w.IsCoast(c.Part) || gs.OccupantAt(c.Part) == NoPlayer {
			continue
		}
		hops = append(hops, c.Part)
	}
	if len(hops) == 0 {
		return false
	}

	hopSet := make(map[PartID]bool, len(hops))
	for _, h := range hops {
		hopSet[h] = true
	}

	srcTerr := w.TerrOf(src)
	dstTerr := w.TerrOf(dst)

	visited := make(map[PartID]bool)
	var queue []PartID
	for _, h := range hops {
		if w.ReachesTerr(h, srcTerr) {
			visited[h] = true
			queue = append(queue, h)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if w.ReachesTerr(cur, dstTerr) {
			return true
		}
		for _, n := range w.Parts[cur].Neighbors {
			if hopSet[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// ValidateAndDefault takes the submitted move-phase orders and returns
// a complete order set covering every unit on the board. Invalid
// orders are replaced with Hold and reported as Void; units with no
// order at all hold. A later order for the same part overrides an
// earlier one.
func ValidateAndDefault(orders []Order, gs *GameState, w *World) ([]Order, []ResolvedOrder) {
	latest := make(map[PartID]Order, len(orders))
	var partOrder []PartID
	for _, o := range orders {
		if _, seen := latest[o.Part]; !seen {
			partOrder = append(partOrder, o.Part)
		}
		latest[o.Part] = o
	}

	submitted := make([]Order, 0, len(latest))
	for _, p := range partOrder {
		submitted = append(submitted, latest[p])
	}

	var valid []Order
	var voids []ResolvedOrder
	covered := make(map[PartID]bool, len(submitted))

	for _, o := range submitted {
		if err := ValidateOrder(o, submitted, gs, w); err != nil {
			voids = append(voids, ResolvedOrder{Order: o, Result: Void})
			if occ := gs.OccupantAt(o.Part); occ != NoPlayer {
				valid = append(valid, Order{Kind: Hold, Player: occ, Part: o.Part, Target: NoPart, From: NoPart})
				covered[o.Part] = true
			}
			continue
		}
		valid = append(valid, o)
		covered[o.Part] = true
	}

	for p, occ := range gs.Occupants {
		if occ != NoPlayer && !covered[PartID(p)] {
			valid = append(valid, Order{Kind: Hold, Player: occ, Part: PartID(p), Target: NoPart, From: NoPart})
		}
	}

	return valid, voids
}
