//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/cordial-conquest/internal/model"
	"github.com/freeeve/cordial-conquest/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
		if err := EnsureSchema(context.Background(), testDB); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
	}
	testutil.CleanupDB(t, testDB)
}

func phaseRecord(gameID string, number int, kind string) *model.PhaseRecord {
	return &model.PhaseRecord{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Number:      number,
		Kind:        kind,
		StateBefore: json.RawMessage(`{"Phase":{"Count":1,"Kind":0}}`),
		StateAfter:  json.RawMessage(`{"Phase":{"Count":2,"Kind":0}}`),
		ResolvedAt:  time.Now().UTC(),
	}
}

func TestSavePhaseRoundTrip(t *testing.T) {
	setup(t)
	repo := NewPhaseRepo(testDB)
	ctx := context.Background()
	gameID := uuid.NewString()

	rec := phaseRecord(gameID, 1, "Move")
	orders := []model.OrderRecord{
		{Player: "ENG", Text: "LON_C M NTH_C", Result: "succeeded"},
		{Player: "FRA", Text: "PAR_L H", Result: "succeeded"},
	}
	if err := repo.SavePhase(ctx, rec, orders); err != nil {
		t.Fatalf("save phase: %v", err)
	}

	phases, err := repo.ListPhases(ctx, gameID)
	if err != nil {
		t.Fatalf("list phases: %v", err)
	}
	if len(phases) != 1 {
		t.Fatalf("got %d phases, want 1", len(phases))
	}
	if phases[0].Number != 1 || phases[0].Kind != "Move" {
		t.Fatalf("phase = %d %s, want 1 Move", phases[0].Number, phases[0].Kind)
	}

	got, err := repo.OrdersByPhase(ctx, rec.ID)
	if err != nil {
		t.Fatalf("orders by phase: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d orders, want 2", len(got))
	}
	if got[0].Player != "ENG" || got[0].Text != "LON_C M NTH_C" || got[0].Result != "succeeded" {
		t.Fatalf("unexpected first order: %+v", got[0])
	}
}

func TestListPhasesPlayOrder(t *testing.T) {
	setup(t)
	repo := NewPhaseRepo(testDB)
	ctx := context.Background()
	gameID := uuid.NewString()

	// Saved out of order: the listing must come back in play order,
	// with a retreat sharing its move's number.
	for _, p := range []struct {
		number int
		kind   string
	}{{2, "Build"}, {1, "Move"}, {2, "Move"}, {1, "Retreat"}} {
		if err := repo.SavePhase(ctx, phaseRecord(gameID, p.number, p.kind), nil); err != nil {
			t.Fatalf("save phase %d %s: %v", p.number, p.kind, err)
		}
	}

	phases, err := repo.ListPhases(ctx, gameID)
	if err != nil {
		t.Fatalf("list phases: %v", err)
	}
	want := []string{"1 Move", "1 Retreat", "2 Move", "2 Build"}
	if len(phases) != len(want) {
		t.Fatalf("got %d phases, want %d", len(phases), len(want))
	}
	for i, p := range phases {
		if got := fmt.Sprintf("%d %s", p.Number, p.Kind); got != want[i] {
			t.Errorf("phase %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestPressVisibility(t *testing.T) {
	setup(t)
	repo := NewPressRepo(testDB)
	ctx := context.Background()
	gameID := uuid.NewString()

	private := &model.PressRecord{GameID: gameID, Sender: "ENG", Recipient: "FRA", Body: "secret"}
	broadcast := &model.PressRecord{GameID: gameID, Sender: "GER", Body: "to everyone"}
	if err := repo.Save(ctx, private); err != nil {
		t.Fatalf("save private: %v", err)
	}
	if err := repo.Save(ctx, broadcast); err != nil {
		t.Fatalf("save broadcast: %v", err)
	}

	fra, err := repo.ListFor(ctx, gameID, "FRA")
	if err != nil {
		t.Fatalf("list for FRA: %v", err)
	}
	if len(fra) != 2 {
		t.Fatalf("FRA sees %d messages, want 2", len(fra))
	}

	ger, err := repo.ListFor(ctx, gameID, "GER")
	if err != nil {
		t.Fatalf("list for GER: %v", err)
	}
	if len(ger) != 1 || ger[0].Body != "to everyone" {
		t.Fatalf("GER view = %+v, want only the broadcast", ger)
	}

	pub, err := repo.ListPublic(ctx, gameID)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(pub) != 1 || pub[0].Recipient != "" {
		t.Fatalf("public view = %+v", pub)
	}
}
