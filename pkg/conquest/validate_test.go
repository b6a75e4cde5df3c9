package conquest

import "testing"

func TestMoveToNonNeighborIsVoid(t *testing.T) {
	w, gs := loadTestWorld(t)
	orders := []Order{omove(t, w, gs, "ENG", "LON_C", "MAO_C")}

	valid, voids := ValidateAndDefault(orders, gs, w)

	if len(voids) != 1 || voids[0].Result != Void {
		t.Fatalf("voids = %+v, want one Void", voids)
	}
	// The unit defaults to Hold instead.
	found := false
	for _, o := range valid {
		if o.Part == pid(t, w, "LON_C") && o.Kind == Hold {
			found = true
		}
	}
	if !found {
		t.Error("rejected mover should default to Hold")
	}
}

func TestLandUnitCannotEnterSea(t *testing.T) {
	w, gs := loadTestWorld(t)
	clearBoard(gs)
	place(t, gs, w, "ENG", "LON_L")

	err := ValidateOrder(omove(t, w, gs, "ENG", "LON_L", "NTH_C"), nil, gs, w)
	if err == nil {
		t.Fatal("land unit moving onto a sea part should be invalid")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("err = %T, want *ValidationError", err)
	}
}

func TestCannotOrderForeignUnit(t *testing.T) {
	w, gs := loadTestWorld(t)
	o := Order{Kind: Move, Player: player(t, gs, "GER"), Part: pid(t, w, "LON_C"), Target: pid(t, w, "NTH_C"), From: NoPart}

	if err := ValidateOrder(o, nil, gs, w); err == nil {
		t.Fatal("ordering another player's unit should be invalid")
	}
}

func TestOrderForEmptyPartIsVoid(t *testing.T) {
	w, gs := loadTestWorld(t)
	o := omove(t, w, gs, "ENG", "YOR_C", "NTH_C")

	if err := ValidateOrder(o, nil, gs, w); err == nil {
		t.Fatal("ordering an empty part should be invalid")
	}
}

func TestSupportOutOfReachIsVoid(t *testing.T) {
	w, gs := loadTestWorld(t)
	clearBoard(gs)
	place(t, gs, w, "GER", "MUN_L")
	place(t, gs, w, "FRA", "BRE_L", "PAR_L")

	// MUN cannot reach BRE, so it cannot support a hold there.
	o := osupHold(t, w, gs, "GER", "MUN_L", "BRE_L")
	if err := ValidateOrder(o, nil, gs, w); err == nil {
		t.Fatal("support beyond reach should be invalid")
	}
}

func TestConvoyOrderOnLandPartIsVoid(t *testing.T) {
	w, gs := loadTestWorld(t)
	clearBoard(gs)
	place(t, gs, w, "ENG", "YOR_L", "LON_L")

	o := oconvoy(t, w, gs, "ENG", "YOR_L", "BRE_L", "LON_L")
	if err := ValidateOrder(o, nil, gs, w); err == nil {
		t.Fatal("convoy from a land part should be invalid")
	}
}

func TestConvoyedMoveNeedsConvoyOrders(t *testing.T) {
	w, gs := loadTestWorld(t)
	clearBoard(gs)
	place(t, gs, w, "ENG", "LON_L", "ENC_C")

	// Without a matching convoy order the non-adjacent move is illegal.
	mv := omove(t, w, gs, "ENG", "LON_L", "BRE_L")
	if err := ValidateOrder(mv, []Order{mv}, gs, w); err == nil {
		t.Fatal("non-adjacent move without a convoy should be invalid")
	}

	all := []Order{mv, oconvoy(t, w, gs, "ENG", "ENC_C", "BRE_L", "LON_L")}
	if err := ValidateOrder(mv, all, gs, w); err != nil {
		t.Fatalf("convoyed move should validate, got %v", err)
	}
}

func TestResubmissionOverridesEarlierOrder(t *testing.T) {
	w, gs := loadTestWorld(t)
	orders := []Order{
		omove(t, w, gs, "ENG", "LON_C", "NTH_C"),
		omove(t, w, gs, "ENG", "LON_C", "ENC_C"),
	}

	valid, voids := ValidateAndDefault(orders, gs, w)

	if len(voids) != 0 {
		t.Fatalf("voids = %+v, want none", voids)
	}
	var got Order
	count := 0
	for _, o := range valid {
		if o.Part == pid(t, w, "LON_C") {
			got = o
			count++
		}
	}
	if count != 1 || got.Target != pid(t, w, "ENC_C") {
		t.Errorf("kept order = %+v (count %d), want the later ENC_C move", got, count)
	}
}

func TestUnorderedUnitsDefaultToHold(t *testing.T) {
	w, gs := loadTestWorld(t)

	valid, voids := ValidateAndDefault(nil, gs, w)

	if len(voids) != 0 {
		t.Fatalf("voids = %+v, want none", voids)
	}
	units := 0
	for _, occ := range gs.Occupants {
		if occ != NoPlayer {
			units++
		}
	}
	if len(valid) != units {
		t.Fatalf("defaulted orders = %d, want one per unit (%d)", len(valid), units)
	}
	for _, o := range valid {
		if o.Kind != Hold {
			t.Errorf("defaulted order %+v should be Hold", o)
		}
	}
}
