package conquest

// PlayerState is one player's standing within a game state snapshot.
type PlayerState struct {
	Name  string
	Home  []TerrID // supply centers owned at game start
	Vote  bool     // current draw vote
	Ready bool     // ready to resolve the current phase
}

// DislodgedUnit is a unit forced out of its part, awaiting a retreat
// order. Forbidden lists the parts it may not retreat to: the part the
// attack came from and any part left in standoff this phase.
type DislodgedUnit struct {
	Player    PlayerID
	From      PartID
	Forbidden []PartID
}

// GameState is a complete snapshot of the game at a point in time.
// The phase state machine replaces the snapshot wholesale at each
// resolution; nothing mutates a published snapshot in place.
type GameState struct {
	Phase     Phase
	Occupants []PlayerID // by PartID; NoPlayer if empty
	Owners    []PlayerID // by TerrID; NoPlayer if unowned
	Players   []PlayerState
	Dislodged []DislodgedUnit
}

// OccupantAt returns the player whose unit occupies a part, or NoPlayer.
func (gs *GameState) OccupantAt(p PartID) PlayerID {
	if p < 0 {
		return NoPlayer
	}
	return gs.Occupants[p]
}

// UnitCount returns the number of units a player has on the board.
func (gs *GameState) UnitCount(pl PlayerID) int {
	count := 0
	for _, o := range gs.Occupants {
		if o == pl {
			count++
		}
	}
	return count
}

// UnitsOf returns the parts occupied by a player, in part order.
func (gs *GameState) UnitsOf(pl PlayerID) []PartID {
	var parts []PartID
	for p, o := range gs.Occupants {
		if o == pl {
			parts = append(parts, PartID(p))
		}
	}
	return parts
}

// CenterCount returns the number of supply centers a player controls.
func (gs *GameState) CenterCount(pl PlayerID, w *World) int {
	count := 0
	for t, o := range gs.Owners {
		if o == pl && w.Territories[t].Center {
			count++
		}
	}
	return count
}

// PlayerByName returns the index for a player name, or NoPlayer.
func (gs *GameState) PlayerByName(name string) PlayerID {
	for i := range gs.Players {
		if gs.Players[i].Name == name {
			return PlayerID(i)
		}
	}
	return NoPlayer
}

// IsEliminated reports whether a player has neither units nor centers.
// Eliminated players are excluded from the ready barrier and from the
// draw-vote unanimity requirement.
func (gs *GameState) IsEliminated(pl PlayerID, w *World) bool {
	return gs.UnitCount(pl) == 0 && gs.CenterCount(pl, w) == 0
}

// ActivePlayers returns the indices of all non-eliminated players.
func (gs *GameState) ActivePlayers(w *World) []PlayerID {
	var active []PlayerID
	for i := range gs.Players {
		if !gs.IsEliminated(PlayerID(i), w) {
			active = append(active, PlayerID(i))
		}
	}
	return active
}

// Clone returns a deep copy of the snapshot. Resolvers apply their
// results to a clone so the previous snapshot stays intact until the
// phase boundary.
func (gs *GameState) Clone() *GameState {
	c := &GameState{Phase: gs.Phase}

	c.Occupants = make([]PlayerID, len(gs.Occupants))
	copy(c.Occupants, gs.Occupants)
	c.Owners = make([]PlayerID, len(gs.Owners))
	copy(c.Owners, gs.Owners)

	c.Players = make([]PlayerState, len(gs.Players))
	copy(c.Players, gs.Players)
	for i := range c.Players {
		if gs.Players[i].Home != nil {
			c.Players[i].Home = make([]TerrID, len(gs.Players[i].Home))
			copy(c.Players[i].Home, gs.Players[i].Home)
		}
	}

	if gs.Dislodged != nil {
		c.Dislodged = make([]DislodgedUnit, len(gs.Dislodged))
		copy(c.Dislodged, gs.Dislodged)
		for i := range c.Dislodged {
			if gs.Dislodged[i].Forbidden != nil {
				c.Dislodged[i].Forbidden = make([]PartID, len(gs.Dislodged[i].Forbidden))
				copy(c.Dislodged[i].Forbidden, gs.Dislodged[i].Forbidden)
			}
		}
	}

	return c
}

// CaptureTerritories updates territory ownership from occupancy: a
// territory whose occupied parts all belong to one player becomes that
// player's. Empty or contested territories keep their current owner.
// Called at the end of each counted phase.
func (gs *GameState) CaptureTerritories(w *World) {
	for t := range w.Territories {
		holder := NoPlayer
		contested := false
		for _, p := range w.Territories[t].Parts {
			o := gs.Occupants[p]
			if o == NoPlayer {
				continue
			}
			if holder == NoPlayer {
				holder = o
			} else if holder != o {
				contested = true
			}
		}
		if holder != NoPlayer && !contested {
			gs.Owners[t] = holder
		}
	}
}
