package game

import "github.com/mapleleafu/blastarena/blastarena-backend/models"

// ElectAuthority returns the id of the participant whose session advances
// shared state this tick: the lexicographically lowest human id in the
// member set. Bots are store records with no client behind them, so they
// never hold authority. Returns "" when no human is present.
//
// Election is re-evaluated independently every tick on every client; there
// is no lease or handoff, and momentary dual- or no-authority windows during
// membership disagreement are accepted.
func ElectAuthority(players map[string]*models.PlayerState) string {
	elected := ""
	for id, p := range players {
		if p.Bot {
			continue
		}
		if elected == "" || id < elected {
			elected = id
		}
	}
	return elected
}
