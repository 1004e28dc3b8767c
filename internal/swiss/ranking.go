package swiss

import (
	"fmt"
	"sort"

	"github.com/mmynk/tournament/internal/models"
)

// RankedEntry is a player's position key for one pairing computation.
type RankedEntry struct {
	PlayerID   int64
	PlayerName string
	WinRatio   float64
}

// String formats the entry as "id-name: percent", e.g. "3-Applejack: 50.00".
func (e RankedEntry) String() string {
	return fmt.Sprintf("%d-%s: %.2f", e.PlayerID, e.PlayerName, e.WinRatio*100)
}

// WinRatio returns wins divided by matches played.
// A player who has not played yet has a ratio of 0.
func WinRatio(wins, matchesPlayed int) float64 {
	if matchesPlayed <= 0 {
		return 0
	}
	return float64(wins) / float64(matchesPlayed)
}

// Rank orders standings by win ratio, best first.
// Players with equal ratios keep the order they had in standings.
func Rank(standings []models.Standing) []RankedEntry {
	ranked := make([]RankedEntry, len(standings))
	for i, s := range standings {
		ranked[i] = RankedEntry{
			PlayerID:   s.PlayerID,
			PlayerName: s.PlayerName,
			WinRatio:   WinRatio(s.Wins, s.MatchesPlayed),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WinRatio > ranked[j].WinRatio
	})

	return ranked
}
