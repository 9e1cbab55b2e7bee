package types

import "github.com/google/uuid"

// Identity is the actor owning cart lines: a registered user or an anonymous
// guest. Exactly one of the two ids is set on a valid identity.
type Identity struct {
	UserID  *uuid.UUID
	GuestID *uuid.UUID
}

func UserIdentity(id uuid.UUID) Identity {
	return Identity{UserID: &id}
}

func GuestIdentity(id uuid.UUID) Identity {
	return Identity{GuestID: &id}
}

// Valid reports whether exactly one owner is set.
func (i Identity) Valid() bool {
	return (i.UserID != nil) != (i.GuestID != nil)
}

func (i Identity) IsUser() bool {
	return i.UserID != nil && i.GuestID == nil
}
