package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/health-record-service/internal/apperr"
)

// User mirrors the 'users' table. The password digest never leaves the
// repository layer except to the auth service for verification.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a principal and returns the stored record. A unique
// violation that slips past the pre-insert checks (concurrent register)
// is mapped to the same duplicate-credential error the checks produce.
func (r *UserRepo) Create(ctx context.Context, email, username, hash string) (User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, is_active, created_at) VALUES (?,?,?,?,?)",
		email, username, hash, true, time.Now().UTC())
	if err != nil {
		m := strings.ToLower(err.Error())
		if strings.Contains(m, "1062") || strings.Contains(m, "unique") {
			if strings.Contains(m, "email") {
				return User{}, apperr.DuplicateCredential("Email already registered")
			}
			return User{}, apperr.DuplicateCredential("Username already taken")
		}
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.get(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.get(ctx, "username", strings.TrimSpace(username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,is_active,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	return u, err
}

func (r *UserRepo) get(ctx context.Context, col, val string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,is_active,created_at FROM users WHERE "+col+"=? LIMIT 1",
		val).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	return u, err
}
