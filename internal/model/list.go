package model

// List is a named checklist owned by a user. Its categories and, through
// the list_items association, per-list item states hang off of it.
type List struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	Private bool   `json:"private" db:"private"`
	Version string `json:"version" db:"version"`
}
