package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tvo/listkeeper/internal/model"
)

// CreateList inserts a new list owned by the given user. Generates a UUID
// if ID is empty. List names are unique across the whole store.
func (s *SQLiteStore) CreateList(ctx context.Context, list model.List) (*model.List, error) {
	if strings.TrimSpace(list.Name) == "" {
		return nil, fmt.Errorf("%w: list name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(list.OwnerID) == "" {
		return nil, fmt.Errorf("%w: list owner is required", ErrInvalidInput)
	}
	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	list.Version = model.NewVersion()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, owner_id, private, version)
		VALUES (?, ?, ?, ?, ?)`,
		list.ID, list.Name, list.OwnerID, boolToInt(list.Private), list.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("list %q: %w", list.Name, ErrIntegrity)
		}
		return nil, fmt.Errorf("creating list: %w", err)
	}
	return &list, nil
}

// GetList retrieves a single list. A list that exists but is private to
// another user is reported as missing.
func (s *SQLiteStore) GetList(ctx context.Context, userID, listID string) (*model.List, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("%w: user id and list id are required", ErrInvalidInput)
	}
	return visibleList(ctx, s.db, userID, listID)
}

// GetLists retrieves lists visible to the user, matching the filter.
func (s *SQLiteStore) GetLists(ctx context.Context, userID string, filter ListFilter) ([]model.List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	qb := sq.Select("id", "name", "owner_id", "private", "version").
		From("lists").
		Where(sq.Or{sq.Eq{"private": 0}, sq.Eq{"owner_id": userID}})

	if filter.OwnerOnly {
		qb = qb.Where(sq.Eq{"owner_id": userID})
	}
	if filter.Query != nil && *filter.Query != "" {
		qb = qb.Where(sq.Like{"name": "%" + *filter.Query + "%"})
	}

	sortBy := "name"
	if filter.SortBy != "" {
		allowed := map[string]bool{"name": true}
		if allowed[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	qb = qb.OrderBy(sortBy + " " + direction)

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// UpdateList renames a list or changes its privacy. The stamp carried in
// list.Version is the client's last-known one; a mismatch aborts the write.
func (s *SQLiteStore) UpdateList(ctx context.Context, userID string, list model.List) (*model.List, error) {
	if strings.TrimSpace(list.Name) == "" {
		return nil, fmt.Errorf("%w: list name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(list.ID) == "" || list.Version == "" {
		return nil, fmt.Errorf("%w: user id, list id, and version are required", ErrInvalidInput)
	}

	var updated model.List
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		stored, err := visibleList(ctx, tx, userID, list.ID)
		if err != nil {
			return err
		}
		if stored.Version != list.Version {
			return ErrConflict
		}

		stored.Name = list.Name
		stored.Private = list.Private
		stored.Version = model.NewVersion()

		_, err = tx.ExecContext(ctx,
			"UPDATE lists SET name = ?, private = ?, version = ? WHERE id = ?",
			stored.Name, boolToInt(stored.Private), stored.Version, stored.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("list %q: %w", list.Name, ErrIntegrity)
			}
			return fmt.Errorf("updating list %s: %w", list.ID, err)
		}

		updated = *stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteList removes a list together with its categories, items, and both
// association tables, all in one transaction.
func (s *SQLiteStore) DeleteList(ctx context.Context, userID, listID, version string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listID) == "" || version == "" {
		return fmt.Errorf("%w: user id, list id, and version are required", ErrInvalidInput)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		stored, err := visibleList(ctx, tx, userID, listID)
		if err != nil {
			return err
		}
		if stored.Version != version {
			return ErrConflict
		}

		statements := []string{
			"DELETE FROM list_items WHERE list_id = ?",
			"DELETE FROM list_categories WHERE list_id = ?",
			"DELETE FROM items WHERE category_id IN (SELECT id FROM categories WHERE list_id = ?)",
			"DELETE FROM categories WHERE list_id = ?",
			"DELETE FROM lists WHERE id = ?",
		}
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt, listID); err != nil {
				return fmt.Errorf("deleting list %s: %w", listID, err)
			}
		}
		return nil
	})
}

// visibleList loads a list and applies the visibility filter: private
// lists belong to their owner only, and a failed check is indistinguishable
// from a missing row.
func visibleList(ctx context.Context, q sqlx.QueryerContext, userID, listID string) (*model.List, error) {
	row := q.QueryRowxContext(ctx, "SELECT * FROM lists WHERE id = ?", listID)
	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting list %s: %w", listID, err)
	}
	if list.Private && list.OwnerID != userID {
		return nil, ErrNotFound
	}
	return &list, nil
}

// scanList scans a list row.
func scanList(row interface{ Scan(dest ...interface{}) error }) (model.List, error) {
	var (
		list       model.List
		privateInt int
	)
	err := row.Scan(&list.ID, &list.Name, &list.OwnerID, &privateInt, &list.Version)
	if err != nil {
		return model.List{}, err
	}
	list.Private = privateInt != 0
	return list, nil
}
