package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is the in-memory identity model backing a row in the users
// table. Applications that need extra fields embed it; storage maps
// only the base fields, so embedded extras are never touched.
type User struct {
	ID                   string
	UserName             string
	PasswordHash         string
	SecurityStamp        string
	Email                string
	EmailConfirmed       bool
	PhoneNumber          string
	PhoneNumberConfirmed bool
	TwoFactorEnabled     bool
	LockoutEnabled       bool
	LockoutEndDateUTC    *time.Time
	AccessFailedCount    int
	RoleID               string
}

// User returns the base record; it makes User satisfy UserModel and is
// how embedding types expose their identity fields to the stores.
func (u *User) User() *User { return u }

// NewUser returns a user with a freshly generated id.
func NewUser(name string) *User {
	return &User{ID: uuid.NewString(), UserName: name}
}

// Role names a group a user can be assigned to. A user holds at most
// one role.
type Role struct {
	ID   string
	Name string
}

func (r *Role) Role() *Role { return r }

// NewRole returns a role with a freshly generated id.
func NewRole(name string) *Role {
	return &Role{ID: uuid.NewString(), Name: name}
}

// Claim is a (type, value) attribute attached to a user. A user may
// hold the same pair more than once.
type Claim struct {
	Type  string
	Value string
}

// LoginInfo identifies an external-provider credential. The
// (Provider, ProviderKey) pair resolves to at most one user.
type LoginInfo struct {
	Provider    string
	ProviderKey string
}

// UserModel is satisfied by *User and by pointers to any type that
// embeds User. Stores construct instances through a caller-supplied
// factory, so application subtypes round-trip with their own fields
// intact.
type UserModel interface {
	User() *User
}

// RoleModel is the role counterpart of UserModel.
type RoleModel interface {
	Role() *Role
}
