package user

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date format used for JoinDate on the wire.
const DateLayout = "2006-01-02"

// Repository errors shared by every storage implementation.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already taken")
)

// User represents a user entity in the directory.
type User struct {
	ID       string    // ID is the unique, server-assigned identifier
	Name     string    // Name is the display name (at least 2 characters)
	Email    string    // Email is the normalized, unique email address
	Phone    *string   // Phone is optional free-form text
	Role     Role      // Role is the user's permission level
	Status   Status    // Status is the account state
	JoinDate time.Time // JoinDate is the UTC calendar date the user was created
	Avatar   *string   // Avatar is an optional image reference
}

// Clone returns a deep copy so callers never share pointer fields with storage.
func (u User) Clone() User {
	c := u
	if u.Phone != nil {
		p := *u.Phone
		c.Phone = &p
	}
	if u.Avatar != nil {
		a := *u.Avatar
		c.Avatar = &a
	}
	return c
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Name   *string
	Email  *string
	Phone  *string
	Role   *Role
	Status *Status
}

// Apply merges the patch into u. An empty phone clears it.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Phone != nil {
		if *p.Phone == "" {
			u.Phone = nil
		} else {
			phone := *p.Phone
			u.Phone = &phone
		}
	}
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
