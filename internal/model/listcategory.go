package model

// ListCategory marks a category as checked within a list. Presence of the
// row is the whole signal; the version stamp exists so that concurrent
// toggles of the same association are conflict-checked like any other row.
type ListCategory struct {
	ListID     string `json:"list_id" db:"list_id"`
	CategoryID string `json:"category_id" db:"category_id"`
	Version    string `json:"version" db:"version"`
}
