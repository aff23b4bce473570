package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Migrate creates the schema if it does not exist yet. It is idempotent and
// runs once at startup, before the listener is up.
//
// The SQL is shared between Postgres and SQLite; only the DDL fragments that
// genuinely differ are switched on the driver name.
//
// reservations.spot_id deliberately has no foreign key: reservations are kept
// as history after their spot (or whole lot) is deleted.
func Migrate(ctx context.Context, database *sql.DB, driver string) error {
	serial := "SERIAL PRIMARY KEY"
	timestamp := "TIMESTAMPTZ"
	if driver == "sqlite" {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
		timestamp = "DATETIME"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at %s NOT NULL
		)`, serial, timestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS parking_lots (
			id %s,
			prime_location_name TEXT NOT NULL,
			address TEXT NOT NULL,
			pin_code TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			number_of_spots INTEGER NOT NULL
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS parking_spots (
			id %s,
			lot_id INTEGER NOT NULL REFERENCES parking_lots(id),
			status TEXT NOT NULL DEFAULT 'A'
		)`, serial),
		`CREATE INDEX IF NOT EXISTS idx_parking_spots_lot_status ON parking_spots (lot_id, status)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reservations (
			id %s,
			spot_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id),
			cost NUMERIC(10,2) NOT NULL,
			booked_at %s NOT NULL,
			occupied_at %s,
			released_at %s
		)`, serial, timestamp, timestamp, timestamp),
		`CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_spot ON reservations (spot_id)`,
	}

	for _, stmt := range stmts {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// EnsureAdmin seeds the administrator account if no admin exists. Safe to run
// on every boot.
func EnsureAdmin(ctx context.Context, database *sql.DB, username, email, password string) error {
	var count int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE role = $1`, RoleAdmin).Scan(&count)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ensure admin: hash password: %w", err)
	}
	_, err = database.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		username, email, string(hash), RoleAdmin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	log.Info().Str("username", username).Msg("admin user seeded")
	return nil
}
