package conquest

// PartKind classifies a part as land or coast.
type PartKind int

const (
	Land  PartKind = iota // Inland part (land units only)
	Coast                 // Coastal/sea part (fleet-capable)
)

func (k PartKind) String() string {
	if k == Land {
		return "land"
	}
	return "coast"
}

// PartID is a dense index into World.Parts.
type PartID int16

// TerrID is a dense index into World.Territories.
type TerrID int16

// PlayerID is a dense index into GameState.Players.
type PlayerID int16

const (
	NoPart   PartID   = -1
	NoTerr   TerrID   = -1
	NoPlayer PlayerID = -1
)

// Territory is a named region made up of one or more parts.
// A supply center territory counts toward the win condition and
// build eligibility.
type Territory struct {
	Name   string
	Center bool
	Parts  []PartID
}

// Part is an occupiable subdivision of a territory. A part holds at
// most one unit. Neighbors are same-kind movement edges: land parts
// connect to land parts, coast parts to coast parts.
type Part struct {
	Name      string
	Kind      PartKind
	Terr      TerrID
	Neighbors []PartID
}

// World is the full territory/part adjacency graph. It is built once
// by ParseWorld and never mutated afterwards; components other than
// the loader treat any write to it as a programming error.
type World struct {
	Territories []Territory
	Parts       []Part

	partIndex map[string]PartID
	terrIndex map[string]TerrID
}

// PartByName returns the index for a part name, or NoPart.
func (w *World) PartByName(name string) PartID {
	id, ok := w.partIndex[name]
	if !ok {
		return NoPart
	}
	return id
}

// TerrByName returns the index for a territory name, or NoTerr.
func (w *World) TerrByName(name string) TerrID {
	id, ok := w.terrIndex[name]
	if !ok {
		return NoTerr
	}
	return id
}

// PartName returns the name of a part, or "" for NoPart.
func (w *World) PartName(id PartID) string {
	if id < 0 {
		return ""
	}
	return w.Parts[id].Name
}

// TerrOf returns the territory a part belongs to.
func (w *World) TerrOf(id PartID) TerrID {
	return w.Parts[id].Terr
}

// IsCoast reports whether the part is fleet-capable.
func (w *World) IsCoast(id PartID) bool {
	return w.Parts[id].Kind == Coast
}

// Adjacent reports whether a unit on src can move directly to dst.
func (w *World) Adjacent(src, dst PartID) bool {
	for _, n := range w.Parts[src].Neighbors {
		if n == dst {
			return true
		}
	}
	return false
}

// ReachesTerr reports whether a unit on p could move into some part of
// territory t. Used for support legality: a unit may support an action
// in any territory it can reach, whichever part of it the action names.
func (w *World) ReachesTerr(p PartID, t TerrID) bool {
	for _, n := range w.Parts[p].Neighbors {
		if w.Parts[n].Terr == t {
			return true
		}
	}
	return false
}

// CoastParts returns the coast parts of a territory, in declaration order.
func (w *World) CoastParts(t TerrID) []PartID {
	var coasts []PartID
	for _, p := range w.Territories[t].Parts {
		if w.Parts[p].Kind == Coast {
			coasts = append(coasts, p)
		}
	}
	return coasts
}
