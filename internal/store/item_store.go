package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tvo/listkeeper/internal/model"
)

// CreateItem inserts a new item into a category. Names are unique within
// the owning category only.
func (s *SQLiteStore) CreateItem(ctx context.Context, userID string, item model.Item) (*model.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(item.CategoryID) == "" {
		return nil, fmt.Errorf("%w: user id and category id are required", ErrInvalidInput)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Version = model.NewVersion()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := visibleCategory(ctx, tx, userID, item.CategoryID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, category_id, name, version)
			VALUES (?, ?, ?, ?)`,
			item.ID, item.CategoryID, item.Name, item.Version,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("item %q: %w", item.Name, ErrIntegrity)
			}
			return fmt.Errorf("creating item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem renames an item. The stamp carried in item.Version is the
// client's last-known one.
func (s *SQLiteStore) UpdateItem(ctx context.Context, userID string, item model.Item) (*model.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(item.ID) == "" || item.Version == "" {
		return nil, fmt.Errorf("%w: user id, item id, and version are required", ErrInvalidInput)
	}

	var updated model.Item
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		stored, err := visibleItem(ctx, tx, userID, item.ID)
		if err != nil {
			return err
		}
		if stored.Version != item.Version {
			return ErrConflict
		}

		stored.Name = item.Name
		stored.Version = model.NewVersion()

		_, err = tx.ExecContext(ctx,
			"UPDATE items SET name = ?, version = ? WHERE id = ?",
			stored.Name, stored.Version, stored.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("item %q: %w", item.Name, ErrIntegrity)
			}
			return fmt.Errorf("updating item %s: %w", item.ID, err)
		}

		updated = *stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteItem removes an item and any per-list state rows referencing it.
func (s *SQLiteStore) DeleteItem(ctx context.Context, userID, itemID, version string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(itemID) == "" || version == "" {
		return fmt.Errorf("%w: user id, item id, and version are required", ErrInvalidInput)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		stored, err := visibleItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		if stored.Version != version {
			return ErrConflict
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM list_items WHERE item_id = ?", itemID); err != nil {
			return fmt.Errorf("deleting item state %s: %w", itemID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM items WHERE id = ?", itemID); err != nil {
			return fmt.Errorf("deleting item %s: %w", itemID, err)
		}
		return nil
	})
}

// GetItems returns the items of a category, ordered by name.
func (s *SQLiteStore) GetItems(ctx context.Context, userID, categoryID string) ([]model.Item, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(categoryID) == "" {
		return nil, fmt.Errorf("%w: user id and category id are required", ErrInvalidInput)
	}
	if _, err := visibleCategory(ctx, s.db, userID, categoryID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM items WHERE category_id = ? ORDER BY name", categoryID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Version); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// visibleItem loads an item and applies the visibility filter of the list
// that owns its category.
func visibleItem(ctx context.Context, q sqlx.QueryerContext, userID, itemID string) (*model.Item, error) {
	row := q.QueryRowxContext(ctx, "SELECT * FROM items WHERE id = ?", itemID)

	var it model.Item
	err := row.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting item %s: %w", itemID, err)
	}
	if _, err := visibleCategory(ctx, q, userID, it.CategoryID); err != nil {
		return nil, err
	}
	return &it, nil
}
