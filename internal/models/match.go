package models

// Match records the outcome of a single game between two players.
// Matches are append-only; only bulk resets remove them.
type Match struct {
	// ID is the store-assigned identifier.
	ID int64

	// TournamentID is the tournament the match was played in.
	TournamentID int64

	// WinnerID is the player who won.
	WinnerID int64

	// LoserID is the player who lost.
	LoserID int64

	// CreatedAt is the Unix timestamp when the result was reported.
	CreatedAt int64
}
