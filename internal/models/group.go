package models

import (
	"slices"
	"time"
)

// Group is a set of users sharing expenses.
//
// Membership is not enforced retroactively: a user removed from a group can
// still appear in historical settlement details for it.
type Group struct {
	// ID is the unique identifier for the group (UUID format when generated).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Members lists the member user IDs in the order they joined.
	Members []string

	// CreatedAt orders groups. Lookups that return several groups sort by
	// (CreatedAt, ID), which is the order settlements walk them in.
	CreatedAt time.Time
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}
