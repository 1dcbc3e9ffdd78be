package models

import "time"

// User is a directory entry. Immutable for ledger purposes.
type User struct {
	// ID is the unique identifier for the user (UUID format when generated).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is optional contact information.
	Email string

	// CreatedAt is when the user was registered.
	CreatedAt time.Time
}
