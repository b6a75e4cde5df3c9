package conquest

import (
	"encoding/json"
	"fmt"
)

// BuildRule restricts where a player may build new units.
type BuildRule string

const (
	BuildInitCenters BuildRule = "initCenters" // only original home centers
	BuildAllCenters  BuildRule = "allCenters"  // any controlled center
)

// DrawType selects how remaining centers are split on a declared draw.
type DrawType string

const (
	DrawDSS DrawType = "DSS" // equal split among survivors
	DrawSoS DrawType = "SoS" // proportional to center counts
)

// Rules holds the game parameters from the rules description.
type Rules struct {
	WinCondition int       `json:"winCondition"`
	BuildRule    BuildRule `json:"buildRule"`
	BuildTime    int       `json:"buildTime"`
	VoteShown    bool      `json:"-"`
	DrawType     DrawType  `json:"drawType"`
}

// rulesFile is the on-disk shape; voteShown is 0/1 rather than a bool.
type rulesFile struct {
	WinCondition int       `json:"winCondition"`
	BuildRule    BuildRule `json:"buildRule"`
	BuildTime    int       `json:"buildTime"`
	VoteShown    int       `json:"voteShown"`
	DrawType     DrawType  `json:"drawType"`
}

// ParseRules decodes and validates a rules description. A malformed or
// inconsistent description is a fatal configuration error for callers.
func ParseRules(data []byte) (*Rules, error) {
	var rf rulesFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("rules description: %w", err)
	}

	r := &Rules{
		WinCondition: rf.WinCondition,
		BuildRule:    rf.BuildRule,
		BuildTime:    rf.BuildTime,
		VoteShown:    rf.VoteShown == 1,
		DrawType:     rf.DrawType,
	}

	if r.WinCondition <= 0 {
		return nil, fmt.Errorf("rules description: winCondition must be positive, got %d", r.WinCondition)
	}
	if r.BuildTime <= 0 {
		return nil, fmt.Errorf("rules description: buildTime must be positive, got %d", r.BuildTime)
	}
	switch r.BuildRule {
	case BuildInitCenters, BuildAllCenters:
	default:
		return nil, fmt.Errorf("rules description: unknown buildRule %q", r.BuildRule)
	}
	switch r.DrawType {
	case DrawDSS, DrawSoS:
	default:
		return nil, fmt.Errorf("rules description: unknown drawType %q", r.DrawType)
	}

	return r, nil
}
