package models

// Player represents a participant registered into one tournament.
// Names need not be unique; the store-assigned ID is the identity.
type Player struct {
	// ID is the store-assigned identifier.
	ID int64

	// TournamentID is the tournament this player is registered in.
	TournamentID int64

	// Name is the player's full name as registered.
	Name string

	// CreatedAt is the Unix timestamp of registration.
	CreatedAt int64
}
