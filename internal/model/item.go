package model

// Item is a single entry in a category's catalog. Names are unique within
// the owning category. Per-list state for an item lives in ListItem, never
// here.
type Item struct {
	ID         string `json:"id" db:"id"`
	CategoryID string `json:"category_id" db:"category_id"`
	Name       string `json:"name" db:"name"`
	Version    string `json:"version" db:"version"`
}
