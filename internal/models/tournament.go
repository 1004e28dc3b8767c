package models

// Tournament represents a single Swiss-system event.
type Tournament struct {
	// ID is the store-assigned identifier.
	ID int64

	// Name is the display name of the tournament (e.g., "WT 2015").
	Name string

	// Information is a free-form description.
	Information string

	// CreatedAt is the Unix timestamp when the tournament was created.
	CreatedAt int64
}
