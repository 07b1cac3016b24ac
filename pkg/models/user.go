package models

import (
	"fmt"

	"github.com/google/uuid"
)

// User identifies a person who creates or is assigned tasks. Users are
// compared by identity: two users that share a display name are still
// distinct. A user either has a display name, which may be the empty
// string, or has none at all.
type User struct {
	id      string
	name    string
	hasName bool
}

// NewUser creates a named user with a freshly generated id.
func NewUser(name string) *User {
	return &User{
		id:      uuid.NewString(),
		name:    name,
		hasName: true,
	}
}

// NewUnnamedUser creates a user without a display name.
func NewUnnamedUser() *User {
	return &User{id: uuid.NewString()}
}

// ID returns the user's unique identifier.
func (u *User) ID() string { return u.id }

// Name returns the user's display name, or "" when the user has none.
func (u *User) Name() string { return u.name }

// HasName reports whether the user carries a display name. It is true for
// NewUser("") and false for NewUnnamedUser.
func (u *User) HasName() bool { return u != nil && u.hasName }

func (u *User) String() string {
	if u == nil {
		return "<nil>"
	}
	if !u.hasName {
		return fmt.Sprintf("User{id=%s, name=<none>}", u.id)
	}
	return fmt.Sprintf("User{id=%s, name=%q}", u.id, u.name)
}
