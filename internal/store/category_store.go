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

// CreateCategory inserts a new category into a list's catalog. Names are
// unique within the owning list only.
func (s *SQLiteStore) CreateCategory(ctx context.Context, userID string, category model.Category) (*model.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(category.ListID) == "" {
		return nil, fmt.Errorf("%w: user id and list id are required", ErrInvalidInput)
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	category.Version = model.NewVersion()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := visibleList(ctx, tx, userID, category.ListID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, list_id, name, version)
			VALUES (?, ?, ?, ?)`,
			category.ID, category.ListID, category.Name, category.Version,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("category %q: %w", category.Name, ErrIntegrity)
			}
			return fmt.Errorf("creating category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory renames a category. The stamp carried in category.Version
// is the client's last-known one.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, userID string, category model.Category) (*model.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(category.ID) == "" || category.Version == "" {
		return nil, fmt.Errorf("%w: user id, category id, and version are required", ErrInvalidInput)
	}

	var updated model.Category
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		stored, err := visibleCategory(ctx, tx, userID, category.ID)
		if err != nil {
			return err
		}
		if stored.Version != category.Version {
			return ErrConflict
		}

		stored.Name = category.Name
		stored.Version = model.NewVersion()

		_, err = tx.ExecContext(ctx,
			"UPDATE categories SET name = ?, version = ? WHERE id = ?",
			stored.Name, stored.Version, stored.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("category %q: %w", category.Name, ErrIntegrity)
			}
			return fmt.Errorf("updating category %s: %w", category.ID, err)
		}

		updated = *stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes a category. With the restrict delete mode the
// call is refused while items remain; with cascade the items and their
// list state go with it. Exactly one behavior is active per store.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, userID, categoryID, version string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(categoryID) == "" || version == "" {
		return fmt.Errorf("%w: user id, category id, and version are required", ErrInvalidInput)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		stored, err := visibleCategory(ctx, tx, userID, categoryID)
		if err != nil {
			return err
		}
		if stored.Version != version {
			return ErrConflict
		}

		var itemCount int
		err = tx.GetContext(ctx, &itemCount,
			"SELECT COUNT(*) FROM items WHERE category_id = ?", categoryID)
		if err != nil {
			return fmt.Errorf("counting items of category %s: %w", categoryID, err)
		}

		if itemCount > 0 {
			if s.deleteMode == model.DeleteModeRestrict {
				return fmt.Errorf("category %q still has items: %w", stored.Name, ErrIntegrity)
			}
			statements := []string{
				"DELETE FROM list_items WHERE item_id IN (SELECT id FROM items WHERE category_id = ?)",
				"DELETE FROM items WHERE category_id = ?",
			}
			for _, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt, categoryID); err != nil {
					return fmt.Errorf("cascading delete of category %s: %w", categoryID, err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM list_categories WHERE category_id = ?", categoryID); err != nil {
			return fmt.Errorf("deleting category associations %s: %w", categoryID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM categories WHERE id = ?", categoryID); err != nil {
			return fmt.Errorf("deleting category %s: %w", categoryID, err)
		}
		return nil
	})
}

// GetCategories returns the catalog categories of a list, ordered by name.
func (s *SQLiteStore) GetCategories(ctx context.Context, userID, listID string) ([]model.Category, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("%w: user id and list id are required", ErrInvalidInput)
	}
	if _, err := visibleList(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM categories WHERE list_id = ? ORDER BY name", listID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.ListID, &c.Name, &c.Version); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// visibleCategory loads a category and applies the visibility filter of
// its owning list.
func visibleCategory(ctx context.Context, q sqlx.QueryerContext, userID, categoryID string) (*model.Category, error) {
	row := q.QueryRowxContext(ctx, "SELECT * FROM categories WHERE id = ?", categoryID)

	var c model.Category
	err := row.Scan(&c.ID, &c.ListID, &c.Name, &c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting category %s: %w", categoryID, err)
	}
	if _, err := visibleList(ctx, q, userID, c.ListID); err != nil {
		return nil, err
	}
	return &c, nil
}
