// Package swiss implements Swiss-system pairing: players are ranked by win
// ratio and each player meets the neighbour directly below them.
//
// The package is pure. It reads a standings snapshot and returns pairings;
// persisting results is the caller's job.
package swiss

import (
	"errors"
	"fmt"

	"github.com/mmynk/tournament/internal/models"
)

// ErrOddPlayerCount is returned when standings cannot be split into pairs.
var ErrOddPlayerCount = errors.New("odd number of players")

// PairForNextRound computes the next round's pairings.
//
// Algorithm:
//   - Rank players by win ratio (stable, see Rank)
//   - Pair rank[0] with rank[1], rank[2] with rank[3], and so on
//
// Rematches are not avoided: two players who already met can be paired again.
// An odd number of standings is rejected with ErrOddPlayerCount and no pairings.
func PairForNextRound(standings []models.Standing) ([]models.Pairing, error) {
	if len(standings)%2 != 0 {
		return nil, fmt.Errorf("cannot pair %d players: %w", len(standings), ErrOddPlayerCount)
	}

	ranked := Rank(standings)
	pairings := make([]models.Pairing, 0, len(ranked)/2)
	for i := 0; i < len(ranked); i += 2 {
		first, second := ranked[i], ranked[i+1]
		pairings = append(pairings, models.Pairing{
			PlayerOneID:   first.PlayerID,
			PlayerOneName: first.PlayerName,
			PlayerTwoID:   second.PlayerID,
			PlayerTwoName: second.PlayerName,
		})
	}

	return pairings, nil
}
