package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

func (r *UserRepository) Create(ctx context.Context, username, email, phone, passwordHash string) (*db.User, error) {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username = $1`, username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists > 0 {
		return nil, apperr.New(apperr.AlreadyExists, "username already exists")
	}
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = $1`, email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return nil, apperr.New(apperr.AlreadyExists, "email already registered")
	}

	user := &db.User{
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         db.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO users (username, email, phone, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		user.Username, user.Email, user.Phone, user.PasswordHash, user.Role, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, email, phone, password_hash, role, created_at FROM users WHERE username = $1`,
		username).Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, email, phone, password_hash, role, created_at FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// ListRegular returns all non-admin users.
func (r *UserRepository) ListRegular(ctx context.Context) ([]db.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, username, email, phone, role, created_at FROM users WHERE role <> $1 ORDER BY id`,
		db.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
