package conquest

import "testing"

func obuild(t *testing.T, w *World, gs *GameState, pl, at string) Order {
	t.Helper()
	return Order{Kind: Build, Player: player(t, gs, pl), Part: pid(t, w, at), Target: NoPart, From: NoPart}
}

func odisband(t *testing.T, w *World, gs *GameState, pl, at string) Order {
	t.Helper()
	return Order{Kind: Disband, Player: player(t, gs, pl), Part: pid(t, w, at), Target: NoPart, From: NoPart}
}

func TestBuildCapTruncatesExcess(t *testing.T) {
	w, gs := loadTestWorld(t)
	rules := loadTestRules(t)
	clearBoard(gs)
	// Three centers, one unit: two builds owed, a third is void.
	gs.Owners[w.TerrByName("MUN")] = player(t, gs, "FRA")
	place(t, gs, w, "FRA", "PIC_L")
	orders := []Order{
		obuild(t, w, gs, "FRA", "BRE_L"),
		obuild(t, w, gs, "FRA", "PAR_L"),
		obuild(t, w, gs, "FRA", "MUN_L"),
	}

	results, next := ResolveBuilds(orders, gs, w, rules)

	if got := resultFor(t, results, w, "BRE_L"); got != Succeeded {
		t.Errorf("first build = %v, want Succeeded", got)
	}
	if got := resultFor(t, results, w, "PAR_L"); got != Succeeded {
		t.Errorf("second build = %v, want Succeeded", got)
	}
	if got := resultFor(t, results, w, "MUN_L"); got != Void {
		t.Errorf("excess build = %v, want Void", got)
	}
	if next.UnitCount(player(t, gs, "FRA")) != 3 {
		t.Errorf("FRA units = %d, want 3", next.UnitCount(player(t, gs, "FRA")))
	}
}

func TestInitCentersRuleRestrictsBuilds(t *testing.T) {
	w, gs := loadTestWorld(t)
	rules := loadTestRules(t)
	rules.BuildRule = BuildInitCenters
	clearBoard(gs)
	// MUN is conquered, not a home center, so FRA cannot build there.
	gs.Owners[w.TerrByName("MUN")] = player(t, gs, "FRA")
	orders := []Order{obuild(t, w, gs, "FRA", "MUN_L")}

	results, _ := ResolveBuilds(orders, gs, w, rules)

	if got := resultFor(t, results, w, "MUN_L"); got != Void {
		t.Errorf("build on conquered center = %v, want Void", got)
	}

	rules.BuildRule = BuildAllCenters
	results, _ = ResolveBuilds(orders, gs, w, rules)
	if got := resultFor(t, results, w, "MUN_L"); got != Succeeded {
		t.Errorf("allCenters build = %v, want Succeeded", got)
	}
}

func TestBuildOnOccupiedCenterIsVoid(t *testing.T) {
	w, gs := loadTestWorld(t)
	rules := loadTestRules(t)
	clearBoard(gs)
	place(t, gs, w, "FRA", "BRE_L")
	// BRE territory is occupied; building on its coast part is illegal.
	orders := []Order{obuild(t, w, gs, "FRA", "BRE_C")}

	results, _ := ResolveBuilds(orders, gs, w, rules)

	if got := resultFor(t, results, w, "BRE_C"); got != Void {
		t.Errorf("build on occupied territory = %v, want Void", got)
	}
}

func TestEligibleBuildParts(t *testing.T) {
	w, gs := loadTestWorld(t)
	rules := loadTestRules(t)
	clearBoard(gs)
	place(t, gs, w, "FRA", "BRE_L")

	got := EligibleBuildParts(player(t, gs, "FRA"), gs, w, rules)

	// BRE is occupied, leaving only PAR's single part.
	if len(got) != 1 || got[0] != pid(t, w, "PAR_L") {
		t.Errorf("eligible = %v, want [PAR_L]", got)
	}
}

func TestSubmittedDisbandIsHonored(t *testing.T) {
	w, gs := loadTestWorld(t)
	rules := loadTestRules(t)
	// FRA loses PAR: two units, one center, one disband owed.
	gs.Owners[w.TerrByName("PAR")] = NoPlayer
	orders := []Order{odisband(t, w, gs, "FRA", "BRE_L")}

	results, next := ResolveBuilds(orders, gs, w, rules)

	if got := resultFor(t, results, w, "BRE_L"); got != Succeeded {
		t.Errorf("disband = %v, want Succeeded", got)
	}
	if next.OccupantAt(pid(t, w, "PAR_L")) != player(t, gs, "FRA") {
		t.Error("the other unit must survive")
	}
}

func TestForcedDisbandTakesFurthestUnit(t *testing.T) {
	w, gs := loadTestWorld(t)
	rules := loadTestRules(t)
	clearBoard(gs)
	// One center, two units, no orders: the unit furthest from home
	// goes first.
	place(t, gs, w, "GER", "MUN_L", "PAR_L")

	results, next := ResolveBuilds(nil, gs, w, rules)

	if len(results) != 1 || results[0].Order.Kind != Disband {
		t.Fatalf("results = %+v, want one forced Disband", results)
	}
	if results[0].Order.Part != pid(t, w, "PAR_L") {
		t.Errorf("disbanded %s, want PAR_L", w.PartName(results[0].Order.Part))
	}
	if next.OccupantAt(pid(t, w, "MUN_L")) != player(t, gs, "GER") {
		t.Error("home unit must survive")
	}
}
