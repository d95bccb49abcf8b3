package model

// Category groups items within a single list. Names are unique per list,
// not globally.
type Category struct {
	ID      string `json:"id" db:"id"`
	ListID  string `json:"list_id" db:"list_id"`
	Name    string `json:"name" db:"name"`
	Version string `json:"version" db:"version"`
}
