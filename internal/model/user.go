package model

import "time"

// User is an account that owns lists. Accounts start inactive and are
// activated through an emailed token.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Active       bool      `json:"active" db:"active"`
	Version      string    `json:"version" db:"version"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CanAccess reports whether the user may read or mutate the list: public
// lists are open to everyone, private lists only to their owner. Callers
// must surface a negative answer as not-found, never as forbidden.
func (u User) CanAccess(list List) bool {
	return !list.Private || list.OwnerID == u.ID
}
