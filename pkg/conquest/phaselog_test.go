package conquest

import (
	"encoding/json"
	"testing"
)

func TestPhaseLogRecordsGrammar(t *testing.T) {
	w, gs := loadTestWorld(t)
	g := NewGame(w, gs, loadTestRules(t))

	g.Advance([]Order{omove(t, w, gs, "ENG", "LON_C", "NTH_C")})

	lines := g.Log.Orders("Phase 1 Move", "ENG")
	if len(lines) != 1 || lines[0] != "LON_C M NTH_C" {
		t.Errorf("ENG lines = %v, want [LON_C M NTH_C]", lines)
	}
	// Defaulted units are logged as holds.
	if lines := g.Log.Orders("Phase 1 Move", "GER"); len(lines) != 1 || lines[0] != "MUN_L H" {
		t.Errorf("GER lines = %v, want [MUN_L H]", lines)
	}
}

func TestPhaseLogMarshalsInPlayOrder(t *testing.T) {
	w, gs := loadTestWorld(t)
	g := NewGame(w, gs, loadTestRules(t))
	g.Advance(nil)
	g.Advance(nil)
	g.Advance(nil) // build phase

	data, err := json.Marshal(g.Log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Keys must appear in play order, not sorted, so "Phase 1" has to
	// come before "Phase 2" even though "Phase 1 Move" > "Phase 1 Build"
	// alphabetically is irrelevant here.
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(data, &byKey); err != nil {
		t.Fatalf("unmarshal keys: %v", err)
	}
	for _, key := range []string{"Phase 1 Move", "Phase 2 Move"} {
		if _, ok := byKey[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}

	var restored PhaseLog
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got, want := restored.Phases(), g.Log.Phases(); len(got) != len(want) {
		t.Fatalf("restored phases = %v, want %v", got, want)
	} else {
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("phase[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	}
	if lines := restored.Orders("Phase 1 Move", "FRA"); len(lines) != 2 {
		t.Errorf("restored FRA lines = %v, want two holds", lines)
	}
}

// Well-formed JSON that is not an object must unmarshal to an error,
// not a panic: log files are user-editable.
func TestPhaseLogUnmarshalRejectsNonObject(t *testing.T) {
	for _, input := range []string{`[1]`, `"Phase 1 Move"`, `42`, `[{"a":1}]`} {
		var l PhaseLog
		if err := json.Unmarshal([]byte(input), &l); err == nil {
			t.Errorf("unmarshal %s: expected an error", input)
		}
	}
}
