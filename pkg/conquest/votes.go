package conquest

import "sort"

// SetVote records one player's draw flag. Votes are sticky until
// changed, so a vote cast early still counts at the phase boundary
// unless withdrawn first.
func (gs *GameState) SetVote(pl PlayerID, vote bool) {
	gs.Players[pl].Vote = vote
}

// CheckDraw reports whether a draw is declared: every active player's
// flag true at once. Eliminated players do not get a say, and a game
// with no active players is not a draw.
func CheckDraw(gs *GameState, w *World) bool {
	active := gs.ActivePlayers(w)
	if len(active) == 0 {
		return false
	}
	for _, pl := range active {
		if !gs.Players[pl].Vote {
			return false
		}
	}
	return true
}

// DrawShare is one surviving player's slice of the board at a declared
// draw.
type DrawShare struct {
	Player  PlayerID
	Centers int
	Share   float64
}

// SplitCenters computes the terminal report for a declared draw. DSS
// splits the board's owned centers equally between survivors; SoS
// weights each survivor by its own center count.
func SplitCenters(gs *GameState, w *World, drawType DrawType) []DrawShare {
	survivors := gs.ActivePlayers(w)
	if len(survivors) == 0 {
		return nil
	}

	total := 0
	counts := make(map[PlayerID]int, len(survivors))
	for _, pl := range survivors {
		c := gs.CenterCount(pl, w)
		counts[pl] = c
		total += c
	}

	shares := make([]DrawShare, 0, len(survivors))
	for _, pl := range survivors {
		s := DrawShare{Player: pl, Centers: counts[pl]}
		if drawType == DrawDSS {
			s.Share = float64(total) / float64(len(survivors))
		} else {
			s.Share = float64(counts[pl])
		}
		shares = append(shares, s)
	}
	sort.Slice(shares, func(a, b int) bool {
		return gs.Players[shares[a].Player].Name < gs.Players[shares[b].Player].Name
	})
	return shares
}
