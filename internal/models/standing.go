package models

// Standing is one player's record in a tournament.
// It is derived from Match rows on every query and never persisted.
//
// Invariant: Wins <= MatchesPlayed.
type Standing struct {
	PlayerID   int64
	PlayerName string

	// Wins is the number of matches the player has won.
	Wins int

	// MatchesPlayed counts matches where the player was winner or loser.
	MatchesPlayed int
}

// Pairing proposes two players to meet in the next round.
// PlayerOne is the higher-ranked of the two.
type Pairing struct {
	PlayerOneID   int64
	PlayerOneName string
	PlayerTwoID   int64
	PlayerTwoName string
}
