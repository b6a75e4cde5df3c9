package conquest

import "testing"

// A small western-Europe board: enough coastline for convoys, an
// inland cluster for land battles, and three starting players.
const testMapJSON = `{
	"LON": {
		"LON_L": ["YOR", "WAL"],
		"LON_C": ["YOR", "WAL", "NTH", "ENC"],
		"center": 1, "initPlayer": "ENG", "initPart": "LON_C"
	},
	"YOR": {
		"YOR_L": ["LON", "WAL"],
		"YOR_C": ["LON", "NTH"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"WAL": {
		"WAL_L": ["LON", "YOR"],
		"WAL_C": ["LON", "ENC", "MAO"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"NTH": {
		"NTH_C": ["LON", "YOR", "ENC"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"ENC": {
		"ENC_C": ["LON", "WAL", "NTH", "BRE", "PIC", "MAO"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"MAO": {
		"MAO_C": ["WAL", "ENC", "BRE"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"BRE": {
		"BRE_L": ["PAR", "PIC"],
		"BRE_C": ["ENC", "MAO", "PIC"],
		"center": 1, "initPlayer": "FRA", "initPart": "BRE_L"
	},
	"PIC": {
		"PIC_L": ["BRE", "PAR", "BUR"],
		"PIC_C": ["ENC", "BRE"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"PAR": {
		"PAR_L": ["BRE", "PIC", "BUR"],
		"center": 1, "initPlayer": "FRA", "initPart": "PAR_L"
	},
	"BUR": {
		"BUR_L": ["PAR", "PIC", "MUN"],
		"center": 0, "initPlayer": null, "initPart": null
	},
	"MUN": {
		"MUN_L": ["BUR"],
		"center": 1, "initPlayer": "GER", "initPart": "MUN_L"
	}
}`

const testRulesJSON = `{
	"winCondition": 3,
	"buildRule": "allCenters",
	"buildTime": 2,
	"voteShown": 1,
	"drawType": "DSS"
}`

func loadTestWorld(t *testing.T) (*World, *GameState) {
	t.Helper()
	w, gs, err := ParseWorld([]byte(testMapJSON))
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}
	return w, gs
}

func loadTestRules(t *testing.T) *Rules {
	t.Helper()
	r, err := ParseRules([]byte(testRulesJSON))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	return r
}

func pid(t *testing.T, w *World, name string) PartID {
	t.Helper()
	p := w.PartByName(name)
	if p == NoPart {
		t.Fatalf("no part named %s", name)
	}
	return p
}

func player(t *testing.T, gs *GameState, name string) PlayerID {
	t.Helper()
	pl := gs.PlayerByName(name)
	if pl == NoPlayer {
		t.Fatalf("no player named %s", name)
	}
	return pl
}

// clearBoard strips every unit so a scenario can place its own.
func clearBoard(gs *GameState) {
	for i := range gs.Occupants {
		gs.Occupants[i] = NoPlayer
	}
}

func place(t *testing.T, gs *GameState, w *World, playerName string, partNames ...string) {
	t.Helper()
	pl := player(t, gs, playerName)
	for _, pn := range partNames {
		gs.Occupants[pid(t, w, pn)] = pl
	}
}

// Order constructors keep scenarios readable.

func omove(t *testing.T, w *World, gs *GameState, pl, from, to string) Order {
	t.Helper()
	return Order{Kind: Move, Player: player(t, gs, pl), Part: pid(t, w, from), Target: pid(t, w, to), From: NoPart}
}

func ohold(t *testing.T, w *World, gs *GameState, pl, at string) Order {
	t.Helper()
	return Order{Kind: Hold, Player: player(t, gs, pl), Part: pid(t, w, at), Target: NoPart, From: NoPart}
}

func osupHold(t *testing.T, w *World, gs *GameState, pl, at, target string) Order {
	t.Helper()
	return Order{Kind: SupportHold, Player: player(t, gs, pl), Part: pid(t, w, at), Target: pid(t, w, target), From: NoPart}
}

func osupMove(t *testing.T, w *World, gs *GameState, pl, at, to, from string) Order {
	t.Helper()
	return Order{Kind: SupportMove, Player: player(t, gs, pl), Part: pid(t, w, at), Target: pid(t, w, to), From: pid(t, w, from)}
}

func oconvoy(t *testing.T, w *World, gs *GameState, pl, at, to, from string) Order {
	t.Helper()
	return Order{Kind: Convoy, Player: player(t, gs, pl), Part: pid(t, w, at), Target: pid(t, w, to), From: pid(t, w, from)}
}

func oretreat(t *testing.T, w *World, gs *GameState, pl, from, to string) Order {
	t.Helper()
	return Order{Kind: Retreat, Player: player(t, gs, pl), Part: pid(t, w, from), Target: pid(t, w, to), From: NoPart}
}

// resultFor returns the resolved result of the order issued on a part.
func resultFor(t *testing.T, results []ResolvedOrder, w *World, partName string) OrderResult {
	t.Helper()
	p := w.PartByName(partName)
	for _, r := range results {
		if r.Order.Part == p && r.Result != Void {
			return r.Result
		}
	}
	for _, r := range results {
		if r.Order.Part == p {
			return r.Result
		}
	}
	t.Fatalf("no result for %s", partName)
	return Void
}

// adjudicate validates, defaults and resolves a move-phase order set.
func adjudicate(t *testing.T, orders []Order, gs *GameState, w *World) (*Resolution, []ResolvedOrder) {
	t.Helper()
	valid, voids := ValidateAndDefault(orders, gs, w)
	return ResolveMoves(valid, gs, w), voids
}
