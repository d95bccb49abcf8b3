package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tvo/listkeeper/internal/model"
)

// ToggleListCategory flips a category's checked state within a list by
// inserting or deleting the association row. The client's stamp must match
// what it believes: the stored stamp when the row exists, the absent
// sentinel when it does not. Any disagreement aborts without mutating, so
// replaying a stale request never toggles twice.
func (s *SQLiteStore) ToggleListCategory(ctx context.Context, userID, listID, categoryID, clientVersion string) (*model.ListCategory, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" ||
		strings.TrimSpace(categoryID) == "" || clientVersion == "" {
		return nil, fmt.Errorf("%w: user id, list id, category id, and version are required", ErrInvalidInput)
	}

	var result *model.ListCategory
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := visibleList(ctx, tx, userID, listID); err != nil {
			return err
		}
		if err := categoryInList(ctx, tx, listID, categoryID); err != nil {
			return err
		}

		var stored string
		err := tx.GetContext(ctx, &stored,
			"SELECT version FROM list_categories WHERE list_id = ? AND category_id = ?",
			listID, categoryID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if clientVersion != model.VersionAbsent {
				return ErrConflict
			}
			assoc := model.ListCategory{
				ListID:     listID,
				CategoryID: categoryID,
				Version:    model.NewVersion(),
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO list_categories (list_id, category_id, version) VALUES (?, ?, ?)",
				assoc.ListID, assoc.CategoryID, assoc.Version)
			if err != nil {
				return fmt.Errorf("checking category %s in list %s: %w", categoryID, listID, err)
			}
			result = &assoc
			return nil

		case err != nil:
			return fmt.Errorf("loading list category %s/%s: %w", listID, categoryID, err)

		default:
			if clientVersion != stored {
				return ErrConflict
			}
			_, err := tx.ExecContext(ctx,
				"DELETE FROM list_categories WHERE list_id = ? AND category_id = ?",
				listID, categoryID)
			if err != nil {
				return fmt.Errorf("unchecking category %s in list %s: %w", categoryID, listID, err)
			}
			result = nil
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ToggleListItem flips an item's membership in a list. A toggled-on item
// gets a fresh state row of type selection with default payloads; a
// toggled-off item loses its row entirely.
func (s *SQLiteStore) ToggleListItem(ctx context.Context, userID, listID, itemID, clientVersion string) (*model.ListItem, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" ||
		strings.TrimSpace(itemID) == "" || clientVersion == "" {
		return nil, fmt.Errorf("%w: user id, list id, item id, and version are required", ErrInvalidInput)
	}

	var result *model.ListItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkListItemScope(ctx, tx, userID, listID, itemID); err != nil {
			return err
		}

		stored, err := loadListItem(ctx, tx, listID, itemID)
		if err != nil {
			return err
		}

		if stored == nil {
			if clientVersion != model.VersionAbsent {
				return ErrConflict
			}
			created, err := insertDefaultListItem(ctx, tx, listID, itemID)
			if err != nil {
				return err
			}
			result = created
			return nil
		}

		if clientVersion != stored.Version {
			return ErrConflict
		}
		if err := deleteListItem(ctx, tx, listID, itemID); err != nil {
			return err
		}
		result = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdvanceListItemType moves an item's state one step along the type ring.
// Starting from nothing creates a selection row with default payloads;
// stepping past text deletes the row. In between, only the type and stamp
// change, so a payload written in some state survives a full lap and is
// there again when the cycle comes back around.
func (s *SQLiteStore) AdvanceListItemType(ctx context.Context, userID, listID, itemID, clientVersion string) (*model.ListItem, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" ||
		strings.TrimSpace(itemID) == "" || clientVersion == "" {
		return nil, fmt.Errorf("%w: user id, list id, item id, and version are required", ErrInvalidInput)
	}

	var result *model.ListItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkListItemScope(ctx, tx, userID, listID, itemID); err != nil {
			return err
		}

		stored, err := loadListItem(ctx, tx, listID, itemID)
		if err != nil {
			return err
		}

		if stored == nil {
			if clientVersion != model.VersionAbsent {
				return ErrConflict
			}
			created, err := insertDefaultListItem(ctx, tx, listID, itemID)
			if err != nil {
				return err
			}
			result = created
			return nil
		}

		if clientVersion != stored.Version {
			return ErrConflict
		}

		next := stored.Type.Next()
		if next == model.TypeNone {
			if err := deleteListItem(ctx, tx, listID, itemID); err != nil {
				return err
			}
			result = nil
			return nil
		}

		stored.Type = next
		stored.Version = model.NewVersion()
		if err := updateListItem(ctx, tx, stored); err != nil {
			return err
		}
		result = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetListItemSelection flips the boolean payload of an item's state
// without advancing the type.
func (s *SQLiteStore) SetListItemSelection(ctx context.Context, userID, listID, itemID, clientVersion string) (*model.ListItem, error) {
	return s.setListItemPayload(ctx, userID, listID, itemID, clientVersion,
		func(li *model.ListItem) {
			li.Selection = !li.Selection
		})
}

// SetListItemNumber replaces the numeric payload with number plus an
// optional delta. Pass decimal.Zero as toAdd for an absolute set.
func (s *SQLiteStore) SetListItemNumber(ctx context.Context, userID, listID, itemID, clientVersion string, number, toAdd decimal.Decimal) (*model.ListItem, error) {
	return s.setListItemPayload(ctx, userID, listID, itemID, clientVersion,
		func(li *model.ListItem) {
			li.Number = number.Add(toAdd)
		})
}

// SetListItemText replaces the text payload.
func (s *SQLiteStore) SetListItemText(ctx context.Context, userID, listID, itemID, clientVersion, text string) (*model.ListItem, error) {
	return s.setListItemPayload(ctx, userID, listID, itemID, clientVersion,
		func(li *model.ListItem) {
			li.Text = text
		})
}

// setListItemPayload applies mutate to an existing state row under the
// usual stamp check. Payload writes never create rows, so a client that
// believes the row is absent has nothing to set.
func (s *SQLiteStore) setListItemPayload(ctx context.Context, userID, listID, itemID, clientVersion string, mutate func(*model.ListItem)) (*model.ListItem, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" ||
		strings.TrimSpace(itemID) == "" || clientVersion == "" {
		return nil, fmt.Errorf("%w: user id, list id, item id, and version are required", ErrInvalidInput)
	}
	if clientVersion == model.VersionAbsent {
		return nil, fmt.Errorf("%w: cannot set a payload on an absent item state", ErrInvalidInput)
	}

	var result model.ListItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkListItemScope(ctx, tx, userID, listID, itemID); err != nil {
			return err
		}

		stored, err := loadListItem(ctx, tx, listID, itemID)
		if err != nil {
			return err
		}
		if stored == nil || clientVersion != stored.Version {
			return ErrConflict
		}

		mutate(stored)
		stored.Version = model.NewVersion()
		if err := updateListItem(ctx, tx, stored); err != nil {
			return err
		}
		result = *stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCatalog returns every category of the list with its checked state and
// its items with their per-list state, for the editing views.
func (s *SQLiteStore) GetCatalog(ctx context.Context, userID, listID string) ([]CatalogCategory, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("%w: user id and list id are required", ErrInvalidInput)
	}
	if _, err := visibleList(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT c.id, c.list_id, c.name, c.version, lc.version
		FROM categories c
		LEFT JOIN list_categories lc
			ON lc.category_id = c.id AND lc.list_id = c.list_id
		WHERE c.list_id = ?
		ORDER BY c.name`, listID)
	if err != nil {
		return nil, fmt.Errorf("querying catalog categories: %w", err)
	}
	defer rows.Close()

	var catalog []CatalogCategory
	for rows.Next() {
		var (
			cc           CatalogCategory
			assocVersion sql.NullString
		)
		if err := rows.Scan(
			&cc.Category.ID, &cc.Category.ListID, &cc.Category.Name,
			&cc.Category.Version, &assocVersion,
		); err != nil {
			return nil, fmt.Errorf("scanning catalog category row: %w", err)
		}
		if assocVersion.Valid {
			cc.Checked = &model.ListCategory{
				ListID:     listID,
				CategoryID: cc.Category.ID,
				Version:    assocVersion.String,
			}
		}
		catalog = append(catalog, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range catalog {
		items, err := s.catalogItems(ctx, listID, catalog[i].Category.ID)
		if err != nil {
			return nil, err
		}
		catalog[i].Items = items
	}
	return catalog, nil
}

// catalogItems loads one category's items with their per-list state.
func (s *SQLiteStore) catalogItems(ctx context.Context, listID, categoryID string) ([]CatalogItem, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT i.id, i.category_id, i.name, i.version,
		       li.type, li.selection, li.number, li.text, li.version
		FROM items i
		LEFT JOIN list_items li ON li.item_id = i.id AND li.list_id = ?
		WHERE i.category_id = ?
		ORDER BY i.name`, listID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("querying catalog items: %w", err)
	}
	defer rows.Close()

	var items []CatalogItem
	for rows.Next() {
		var (
			ci           CatalogItem
			typeName     sql.NullString
			selectionInt sql.NullInt64
			numberText   sql.NullString
			text         sql.NullString
			stateVersion sql.NullString
		)
		if err := rows.Scan(
			&ci.Item.ID, &ci.Item.CategoryID, &ci.Item.Name, &ci.Item.Version,
			&typeName, &selectionInt, &numberText, &text, &stateVersion,
		); err != nil {
			return nil, fmt.Errorf("scanning catalog item row: %w", err)
		}
		if stateVersion.Valid {
			itemType, err := model.ParseItemType(typeName.String)
			if err != nil {
				return nil, fmt.Errorf("catalog item %s: %w", ci.Item.ID, err)
			}
			number, err := decimal.NewFromString(numberText.String)
			if err != nil {
				return nil, fmt.Errorf("catalog item %s number: %w", ci.Item.ID, err)
			}
			ci.State = &model.ListItem{
				ListID:    listID,
				ItemID:    ci.Item.ID,
				Type:      itemType,
				Selection: selectionInt.Int64 != 0,
				Number:    number,
				Text:      text.String,
				Version:   stateVersion.String,
			}
		}
		items = append(items, ci)
	}
	return items, rows.Err()
}

// GetListEntries returns the visible rows of an opened checklist: items
// with a state row whose category is checked in the list, ordered by
// category then item name.
func (s *SQLiteStore) GetListEntries(ctx context.Context, userID, listID string) ([]ListEntry, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("%w: user id and list id are required", ErrInvalidInput)
	}
	if _, err := visibleList(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT c.id, c.list_id, c.name, c.version,
		       i.id, i.category_id, i.name, i.version,
		       li.type, li.selection, li.number, li.text, li.version
		FROM items i
		JOIN categories c ON c.id = i.category_id
		JOIN list_items li ON li.item_id = i.id AND li.list_id = ?
		JOIN list_categories lc ON lc.category_id = c.id AND lc.list_id = ?
		WHERE c.list_id = ?
		ORDER BY c.name, i.name`, listID, listID, listID)
	if err != nil {
		return nil, fmt.Errorf("querying list entries: %w", err)
	}
	defer rows.Close()

	var entries []ListEntry
	for rows.Next() {
		var (
			e            ListEntry
			typeName     string
			selectionInt int
			numberText   string
		)
		if err := rows.Scan(
			&e.Category.ID, &e.Category.ListID, &e.Category.Name, &e.Category.Version,
			&e.Item.ID, &e.Item.CategoryID, &e.Item.Name, &e.Item.Version,
			&typeName, &selectionInt, &numberText, &e.State.Text, &e.State.Version,
		); err != nil {
			return nil, fmt.Errorf("scanning list entry row: %w", err)
		}
		e.State.ListID = listID
		e.State.ItemID = e.Item.ID
		e.State.Selection = selectionInt != 0
		if e.State.Type, err = model.ParseItemType(typeName); err != nil {
			return nil, fmt.Errorf("list entry %s: %w", e.Item.ID, err)
		}
		if e.State.Number, err = decimal.NewFromString(numberText); err != nil {
			return nil, fmt.Errorf("list entry %s number: %w", e.Item.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UncheckedCategories returns categories with state rows in the list but
// without a checked association, so their items are hidden from the opened
// checklist. Callers surface one warning per category.
func (s *SQLiteStore) UncheckedCategories(ctx context.Context, userID, listID string) ([]model.Category, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("%w: user id and list id are required", ErrInvalidInput)
	}
	if _, err := visibleList(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT DISTINCT c.id, c.list_id, c.name, c.version
		FROM categories c
		JOIN items i ON i.category_id = c.id
		JOIN list_items li ON li.item_id = i.id AND li.list_id = ?
		WHERE c.id NOT IN (
			SELECT category_id FROM list_categories WHERE list_id = ?
		)
		ORDER BY c.name`, listID, listID)
	if err != nil {
		return nil, fmt.Errorf("querying unchecked categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.ListID, &c.Name, &c.Version); err != nil {
			return nil, fmt.Errorf("scanning unchecked category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// checkListItemScope verifies the list is visible to the user and the item
// belongs to one of the list's own categories.
func checkListItemScope(ctx context.Context, tx *sqlx.Tx, userID, listID, itemID string) error {
	if _, err := visibleList(ctx, tx, userID, listID); err != nil {
		return err
	}

	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.id = ? AND c.list_id = ?`, itemID, listID)
	if err != nil {
		return fmt.Errorf("resolving item %s in list %s: %w", itemID, listID, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// categoryInList verifies the category belongs to the list's catalog.
func categoryInList(ctx context.Context, tx *sqlx.Tx, listID, categoryID string) error {
	var count int
	err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM categories WHERE id = ? AND list_id = ?",
		categoryID, listID)
	if err != nil {
		return fmt.Errorf("resolving category %s in list %s: %w", categoryID, listID, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// loadListItem reads an item's state row, returning nil when absent.
func loadListItem(ctx context.Context, tx *sqlx.Tx, listID, itemID string) (*model.ListItem, error) {
	row := tx.QueryRowxContext(ctx,
		"SELECT type, selection, number, text, version FROM list_items WHERE list_id = ? AND item_id = ?",
		listID, itemID)

	var (
		typeName     string
		selectionInt int
		numberText   string
		text         string
		version      string
	)
	err := row.Scan(&typeName, &selectionInt, &numberText, &text, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading list item %s/%s: %w", listID, itemID, err)
	}

	itemType, err := model.ParseItemType(typeName)
	if err != nil {
		return nil, fmt.Errorf("list item %s/%s: %w", listID, itemID, err)
	}
	number, err := decimal.NewFromString(numberText)
	if err != nil {
		return nil, fmt.Errorf("list item %s/%s number: %w", listID, itemID, err)
	}

	return &model.ListItem{
		ListID:    listID,
		ItemID:    itemID,
		Type:      itemType,
		Selection: selectionInt != 0,
		Number:    number,
		Text:      text,
		Version:   version,
	}, nil
}

// insertDefaultListItem creates a fresh state row in the state that
// follows none, with default payload values.
func insertDefaultListItem(ctx context.Context, tx *sqlx.Tx, listID, itemID string) (*model.ListItem, error) {
	created := model.ListItem{
		ListID:  listID,
		ItemID:  itemID,
		Type:    model.TypeNone.Next(),
		Number:  decimal.Zero,
		Version: model.NewVersion(),
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO list_items (list_id, item_id, type, selection, number, text, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.ListID, created.ItemID, created.Type.String(),
		boolToInt(created.Selection), created.Number.String(), created.Text,
		created.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("creating list item %s/%s: %w", listID, itemID, err)
	}
	return &created, nil
}

// updateListItem writes back a mutated state row.
func updateListItem(ctx context.Context, tx *sqlx.Tx, li *model.ListItem) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE list_items SET type = ?, selection = ?, number = ?, text = ?, version = ?
		WHERE list_id = ? AND item_id = ?`,
		li.Type.String(), boolToInt(li.Selection), li.Number.String(), li.Text,
		li.Version, li.ListID, li.ItemID,
	)
	if err != nil {
		return fmt.Errorf("updating list item %s/%s: %w", li.ListID, li.ItemID, err)
	}
	return nil
}

// deleteListItem removes an item's state row.
func deleteListItem(ctx context.Context, tx *sqlx.Tx, listID, itemID string) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM list_items WHERE list_id = ? AND item_id = ?", listID, itemID)
	if err != nil {
		return fmt.Errorf("deleting list item %s/%s: %w", listID, itemID, err)
	}
	return nil
}
