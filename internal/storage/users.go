package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ErrUsernameTaken is returned when a username is already registered.
var ErrUsernameTaken = errors.New("username already taken")

// NewUser carries the validated fields for user creation. PasswordHash is a
// bcrypt hash produced by the caller; the store never sees plaintext.
type NewUser struct {
	Username     string
	PasswordHash string
}

var userColumns = []string{"id", "username", "password_hash", "created_at"}

func (s *Store) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	u := User{
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	q := s.sql.Insert("users").
		Columns("username", "password_hash", "created_at").
		Values(u.Username, u.PasswordHash, u.CreatedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user insert query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	q := s.sql.Select(userColumns...).From("users").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var u User
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	q := s.sql.Select(userColumns...).From("users").Where(sq.Eq{"username": username})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user by username query: %w", err)
	}

	var u User
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// isUniqueViolation matches unique-constraint errors from both drivers.
// pgx reports SQLSTATE 23505; modernc sqlite reports "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint failed")
}
