// Package auth implements account registration, activation, login, and
// password reset on top of the store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/usercache"
)

// Token lifetimes.
const (
	registerTokenValidity = 48 * time.Hour
	resetTokenValidity    = 2 * time.Hour
)

// Errors reported to the login form.
var (
	ErrBadCredentials     = errors.New("unknown email or wrong password")
	ErrInactive           = errors.New("account is not activated yet")
	ErrRegistrationClosed = errors.New("registration is closed")
)

// Mailer sends the account lifecycle emails. Implementations must not
// block the caller on SMTP round trips.
type Mailer interface {
	SendRegisterEmail(to, token string)
	SendResetPasswordEmail(to, token string)
}

// UserStore is the subset of the store the service writes accounts through.
type UserStore interface {
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ActivateUser(ctx context.Context, id, version string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, version, passwordHash string) (*model.User, error)
}

// Service wires the account operations together.
type Service struct {
	store            UserStore
	cache            *usercache.Cache
	mailer           Mailer
	secret           []byte
	registrationOpen bool
}

// NewService returns a service signing its tokens with secret.
func NewService(userStore UserStore, cache *usercache.Cache, mailer Mailer, secret []byte, registrationOpen bool) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	return &Service{
		store:            userStore,
		cache:            cache,
		mailer:           mailer,
		secret:           secret,
		registrationOpen: registrationOpen,
	}, nil
}

// Register creates an inactive account and mails an activation token.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	if !s.registrationOpen {
		return nil, ErrRegistrationClosed
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email address is required", store.ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, model.User{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	token, err := NewToken(s.secret, PurposeRegister, user.ID, registerTokenValidity)
	if err != nil {
		return nil, err
	}
	s.mailer.SendRegisterEmail(user.Email, token)
	return user, nil
}

// Activate redeems a registration token and marks the account active.
// Redeeming a token twice is harmless.
func (s *Service) Activate(ctx context.Context, token string) (*model.User, error) {
	userID, err := ParseToken(s.secret, PurposeRegister, token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Active {
		return user, nil
	}

	activated, err := s.store.ActivateUser(ctx, user.ID, user.Version)
	if err != nil {
		return nil, err
	}
	s.cache.Put(*activated)
	return activated, nil
}

// Login checks the credentials and returns the account. Unknown emails and
// wrong passwords are reported identically.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if !user.Active {
		return nil, ErrInactive
	}
	return user, nil
}

// RequestPasswordReset mails a reset token to the account, if it exists.
// The caller learns nothing about whether the email is registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := NewToken(s.secret, PurposeResetPassword, user.ID, resetTokenValidity)
	if err != nil {
		return err
	}
	s.mailer.SendResetPasswordEmail(user.Email, token)
	return nil
}

// ConfirmPasswordReset redeems a reset token and replaces the password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (*model.User, error) {
	userID, err := ParseToken(s.secret, PurposeResetPassword, token)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUserPassword(ctx, user.ID, user.Version, hash)
	if err != nil {
		return nil, err
	}
	s.cache.Put(*updated)
	return updated, nil
}
