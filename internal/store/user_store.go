package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tvo/listkeeper/internal/model"
)

// CreateUser inserts a new account. Generates a UUID if ID is empty.
// New accounts start inactive until confirmed.
func (s *SQLiteStore) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	if strings.TrimSpace(user.Email) == "" {
		return nil, fmt.Errorf("%w: email must not be empty", ErrInvalidInput)
	}
	if user.PasswordHash == "" {
		return nil, fmt.Errorf("%w: password hash must not be empty", ErrInvalidInput)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Version = model.NewVersion()
	user.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, active, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash,
		boolToInt(user.Active), user.Version, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", user.Email, ErrIntegrity)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a single user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE id = ?", id)
}

// GetUserByEmail retrieves a single user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, fmt.Errorf("%w: user lookup key must not be empty", ErrInvalidInput)
	}

	row := s.db.QueryRowxContext(ctx, query, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// ActivateUser marks an account as active. The write is conflict-checked
// against the client's version stamp.
func (s *SQLiteStore) ActivateUser(ctx context.Context, id, version string) (*model.User, error) {
	return s.updateUser(ctx, id, version, func(u *model.User) {
		u.Active = true
	})
}

// UpdateUserPassword replaces the stored password hash. The write is
// conflict-checked against the client's version stamp.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, id, version, passwordHash string) (*model.User, error) {
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password hash must not be empty", ErrInvalidInput)
	}
	return s.updateUser(ctx, id, version, func(u *model.User) {
		u.PasswordHash = passwordHash
	})
}

// updateUser applies mutate to the stored row inside one write transaction,
// failing with ErrConflict when the stamp is stale.
func (s *SQLiteStore) updateUser(ctx context.Context, id, version string, mutate func(*model.User)) (*model.User, error) {
	if strings.TrimSpace(id) == "" || version == "" {
		return nil, fmt.Errorf("%w: user id and version are required", ErrInvalidInput)
	}

	var updated model.User
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		row := tx.QueryRowxContext(ctx, "SELECT * FROM users WHERE id = ?", id)
		user, err := scanUser(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("loading user %s: %w", id, err)
		}
		if user.Version != version {
			return ErrConflict
		}

		mutate(&user)
		user.Version = model.NewVersion()
		user.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE users SET email = ?, password_hash = ?, active = ?,
				version = ?, updated_at = ?
			WHERE id = ?`,
			user.Email, user.PasswordHash, boolToInt(user.Active),
			user.Version, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("updating user %s: %w", id, err)
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// scanUser scans a user row.
func scanUser(row interface{ Scan(dest ...interface{}) error }) (model.User, error) {
	var (
		user      model.User
		activeInt int
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&activeInt, &user.Version, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	user.Active = activeInt != 0
	return user, nil
}
