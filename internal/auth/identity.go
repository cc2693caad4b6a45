// Package auth is the identity store: it registers users, verifies
// credentials and resolves bearer tokens. Tokens are opaque UUIDs checked by
// exact match against the users table; a fresh token is issued at registration
// and rotated on every successful login, which invalidates the previous one.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/planhub/planhub/internal/db"
	"github.com/planhub/planhub/internal/models"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Store struct {
	users db.UserRepositoryInterface
}

func NewStore(users db.UserRepositoryInterface) *Store {
	return &Store{users: users}
}

// Register creates a user and issues its first token. Returns
// db.ErrDuplicate when the email or username is already taken.
func (s *Store) Register(ctx context.Context, email, username, firstName, lastName, password string) (*models.User, error) {
	if email == "" || username == "" || firstName == "" || lastName == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Token:        uuid.New(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the credentials and rotates the user's token. Every
// mismatch, including an unknown email, reports ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := uuid.New()
	if err := s.users.RotateToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	user.Token = token
	return user, nil
}

// Resolve is the authentication gate consulted before every protected
// operation. A malformed or unknown token reports ErrInvalidToken.
func (s *Store) Resolve(ctx context.Context, token string) (*models.User, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByToken(ctx, parsed)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries partial profile changes; nil fields keep their
// previous value. Email and token are not updatable here.
type ProfileUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfile applies the changes in place. A password change re-hashes but
// does not rotate the token; existing sessions stay valid.
func (s *Store) UpdateProfile(ctx context.Context, user *models.User, update ProfileUpdate) (*models.User, error) {
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
