package conquest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// reservedKeys are the territory entry keys that are not part names.
var reservedKeys = map[string]bool{
	"center":     true,
	"initPlayer": true,
	"initPart":   true,
}

// terrEntry is the decoded form of one territory in the map description.
type terrEntry struct {
	center     bool
	initPlayer string
	initPart   string
	neighbors  map[string][]string // part name -> neighbor identifiers
}

// ParseWorld decodes a map description and returns the immutable world
// graph together with the initial game state seeded from the initPlayer
// and initPart entries. Players are numbered in name order so loading
// the same description always yields the same indices.
func ParseWorld(data []byte) (*World, *GameState, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("map description: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("map description: no territories")
	}

	entries := make(map[string]*terrEntry, len(raw))
	terrNames := make([]string, 0, len(raw))
	for name, fields := range raw {
		e, err := decodeTerrEntry(name, fields)
		if err != nil {
			return nil, nil, err
		}
		entries[name] = e
		terrNames = append(terrNames, name)
	}
	sort.Strings(terrNames)

	w, err := buildWorld(terrNames, entries)
	if err != nil {
		return nil, nil, err
	}
	gs, err := seedState(w, terrNames, entries)
	if err != nil {
		return nil, nil, err
	}
	return w, gs, nil
}

// decodeTerrEntry decodes one territory's fields, separating the
// reserved keys from part adjacency lists.
func decodeTerrEntry(terrName string, fields map[string]json.RawMessage) (*terrEntry, error) {
	e := &terrEntry{neighbors: make(map[string][]string)}

	for key, val := range fields {
		switch key {
		case "center":
			var c int
			if err := json.Unmarshal(val, &c); err != nil {
				return nil, fmt.Errorf("territory %s: center: %w", terrName, err)
			}
			e.center = c == 1
		case "initPlayer":
			s, err := optionalString(val)
			if err != nil {
				return nil, fmt.Errorf("territory %s: initPlayer: %w", terrName, err)
			}
			e.initPlayer = s
		case "initPart":
			s, err := optionalString(val)
			if err != nil {
				return nil, fmt.Errorf("territory %s: initPart: %w", terrName, err)
			}
			e.initPart = s
		default:
			var ns []string
			if err := json.Unmarshal(val, &ns); err != nil {
				return nil, fmt.Errorf("territory %s: part %s: %w", terrName, key, err)
			}
			if kindForPartName(key) < 0 {
				return nil, fmt.Errorf("territory %s: part %s: name must end in _L, _C, _NC, _SC, _EC or _WC", terrName, key)
			}
			e.neighbors[key] = ns
		}
	}

	if len(e.neighbors) == 0 {
		return nil, fmt.Errorf("territory %s: no parts", terrName)
	}
	return e, nil
}

// optionalString decodes a string that may be null (or the literal
// "None" used by older map files).
func optionalString(val json.RawMessage) (string, error) {
	if string(val) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(val, &s); err != nil {
		return "", err
	}
	if s == "None" {
		return "", nil
	}
	return s, nil
}

// kindForPartName maps a part name suffix to its kind, or -1 if the
// suffix is not recognised.
func kindForPartName(name string) PartKind {
	switch {
	case strings.HasSuffix(name, "_L"):
		return Land
	case strings.HasSuffix(name, "_C"), strings.HasSuffix(name, "_NC"),
		strings.HasSuffix(name, "_SC"), strings.HasSuffix(name, "_EC"),
		strings.HasSuffix(name, "_WC"):
		return Coast
	}
	return -1
}

// buildWorld allocates territories and parts and resolves neighbor
// identifiers into part-level edges.
func buildWorld(terrNames []string, entries map[string]*terrEntry) (*World, error) {
	w := &World{
		partIndex: make(map[string]PartID),
		terrIndex: make(map[string]TerrID),
	}

	for _, tn := range terrNames {
		e := entries[tn]
		tid := TerrID(len(w.Territories))
		w.terrIndex[tn] = tid

		terr := Territory{Name: tn, Center: e.center}
		partNames := make([]string, 0, len(e.neighbors))
		for pn := range e.neighbors {
			partNames = append(partNames, pn)
		}
		sort.Strings(partNames)
		for _, pn := range partNames {
			pid := PartID(len(w.Parts))
			if _, dup := w.partIndex[pn]; dup {
				return nil, fmt.Errorf("duplicate part name %s", pn)
			}
			w.partIndex[pn] = pid
			w.Parts = append(w.Parts, Part{Name: pn, Kind: kindForPartName(pn), Terr: tid})
			terr.Parts = append(terr.Parts, pid)
		}
		w.Territories = append(w.Territories, terr)
	}

	for _, tn := range terrNames {
		e := entries[tn]
		for pn, ns := range e.neighbors {
			pid := w.partIndex[pn]
			for _, ident := range ns {
				if err := w.linkNeighbor(pid, ident, entries); err != nil {
					return nil, err
				}
			}
		}
		// Keep edge order stable regardless of map-file key order.
		for _, pid := range w.Territories[w.terrIndex[tn]].Parts {
			p := &w.Parts[pid]
			sort.Slice(p.Neighbors, func(i, j int) bool { return p.Neighbors[i] < p.Neighbors[j] })
		}
	}

	return w, nil
}

// linkNeighbor resolves one neighbor identifier (a territory name, or a
// part name whose territory is taken) and adds same-kind edges from p
// to the matching parts of that territory. The neighbor territory must
// list p's territory back; a one-sided listing is a description error.
func (w *World) linkNeighbor(p PartID, ident string, entries map[string]*terrEntry) error {
	nt := w.TerrByName(ident)
	if nt == NoTerr {
		if np := w.PartByName(ident); np != NoPart {
			nt = w.Parts[np].Terr
		}
	}
	if nt == NoTerr {
		return fmt.Errorf("part %s: unknown neighbor %s", w.Parts[p].Name, ident)
	}
	if nt == w.Parts[p].Terr {
		return fmt.Errorf("part %s: neighbor %s is its own territory", w.Parts[p].Name, ident)
	}

	myTerr := w.Territories[w.Parts[p].Terr].Name
	back := false
	for _, q := range w.Territories[nt].Parts {
		if listsTerr(entries[w.Territories[nt].Name], w.Parts[q].Name, myTerr, w) {
			back = true
			if w.Parts[q].Kind == w.Parts[p].Kind && !w.Adjacent(p, q) {
				w.Parts[p].Neighbors = append(w.Parts[p].Neighbors, q)
			}
		}
	}
	if !back {
		return fmt.Errorf("asymmetric adjacency: %s lists %s but no part of %s lists %s back",
			w.Parts[p].Name, ident, w.Territories[nt].Name, myTerr)
	}
	return nil
}

// listsTerr reports whether the named part's neighbor list mentions the
// given territory (directly or through one of its part names).
func listsTerr(e *terrEntry, partName, terrName string, w *World) bool {
	for _, ident := range e.neighbors[partName] {
		if ident == terrName {
			return true
		}
		if np := w.PartByName(ident); np != NoPart && w.Territories[w.Parts[np].Terr].Name == terrName {
			return true
		}
	}
	return false
}

// seedState places the initial units and ownership from the map
// description's initPlayer/initPart entries.
func seedState(w *World, terrNames []string, entries map[string]*terrEntry) (*GameState, error) {
	playerNames := make([]string, 0, 8)
	seen := make(map[string]bool)
	for _, tn := range terrNames {
		if p := entries[tn].initPlayer; p != "" && !seen[p] {
			seen[p] = true
			playerNames = append(playerNames, p)
		}
	}
	sort.Strings(playerNames)

	gs := &GameState{
		Phase:     Phase{Count: 1, Kind: PhaseMove},
		Occupants: make([]PlayerID, len(w.Parts)),
		Owners:    make([]PlayerID, len(w.Territories)),
	}
	for i := range gs.Occupants {
		gs.Occupants[i] = NoPlayer
	}
	for i := range gs.Owners {
		gs.Owners[i] = NoPlayer
	}

	byName := make(map[string]PlayerID, len(playerNames))
	for _, name := range playerNames {
		byName[name] = PlayerID(len(gs.Players))
		gs.Players = append(gs.Players, PlayerState{Name: name})
	}

	for _, tn := range terrNames {
		e := entries[tn]
		if e.initPlayer == "" {
			if e.initPart != "" {
				return nil, fmt.Errorf("territory %s: initPart without initPlayer", tn)
			}
			continue
		}
		pl := byName[e.initPlayer]
		tid := w.TerrByName(tn)
		gs.Owners[tid] = pl
		if e.center {
			gs.Players[pl].Home = append(gs.Players[pl].Home, tid)
		}
		if e.initPart != "" {
			pid := w.PartByName(e.initPart)
			if pid == NoPart || w.Parts[pid].Terr != tid {
				return nil, fmt.Errorf("territory %s: initPart %s is not one of its parts", tn, e.initPart)
			}
			gs.Occupants[pid] = pl
		}
	}

	return gs, nil
}
