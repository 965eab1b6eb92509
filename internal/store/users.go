package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"marketplace-service/internal/models"
)

type userRow struct {
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Cart         []byte `db:"cart"`
}

func (r *userRow) toUser() (*models.User, error) {
	user := &models.User{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Cart:         []string{},
	}
	if len(r.Cart) > 0 {
		if err := json.Unmarshal(r.Cart, &user.Cart); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
	}
	return user, nil
}

// InsertUser stores a new user with an empty cart.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	cart, err := json.Marshal(user.Cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, cart) VALUES ($1, $2, $3, $4)",
		user.Username, user.Email, user.PasswordHash, cart)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user with their cart by username.
func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM users WHERE username = $1", username)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toUser()
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toUser()
}

// UpdateCart replaces a user's cart list.
func (s *Store) UpdateCart(ctx context.Context, username string, cart []string) error {
	if cart == nil {
		cart = []string{}
	}
	encoded, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET cart = $1 WHERE username = $2", encoded, username)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
