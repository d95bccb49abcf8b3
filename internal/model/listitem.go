package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemType is the kind of state an item carries within a list. The types
// form a fixed ring: none -> selection -> number -> text -> none. A row is
// only ever stored with a type other than none; reaching none means the row
// is deleted.
type ItemType int

const (
	TypeNone ItemType = iota
	TypeSelection
	TypeNumber
	TypeText

	itemTypeCount = 4
)

// Next returns the type that follows t in the cycle.
func (t ItemType) Next() ItemType {
	return (t + 1) % itemTypeCount
}

// String returns the wire name of the type.
func (t ItemType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeSelection:
		return "selection"
	case TypeNumber:
		return "number"
	case TypeText:
		return "text"
	default:
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
}

// ParseItemType converts a stored type name back to an ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch s {
	case "none":
		return TypeNone, nil
	case "selection":
		return TypeSelection, nil
	case "number":
		return TypeNumber, nil
	case "text":
		return TypeText, nil
	default:
		return TypeNone, fmt.Errorf("unknown item type %q", s)
	}
}

// ListItem is the per-list state of an item: its existence means the item
// participates in the list's checklist, and Type selects which payload
// field is active. The other payload fields keep their last values so that
// cycling back to a type restores what was there before.
type ListItem struct {
	ListID    string          `json:"list_id" db:"list_id"`
	ItemID    string          `json:"item_id" db:"item_id"`
	Type      ItemType        `json:"type" db:"type"`
	Selection bool            `json:"selection" db:"selection"`
	Number    decimal.Decimal `json:"number" db:"number"`
	Text      string          `json:"text" db:"text"`
	Version   string          `json:"version" db:"version"`
}
