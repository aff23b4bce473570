package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"parkhub/internal/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(context.Background(), database, "sqlite"))
	return database
}

func createTestUser(t *testing.T, database *sql.DB, username string) int {
	t.Helper()
	repo := NewUserRepository(database)
	user, err := repo.Create(context.Background(), username, username+"@example.com", "", "hash")
	require.NoError(t, err)
	return user.ID
}

func createTestLot(t *testing.T, database *sql.DB, name string, price string, spots int) *db.ParkingLot {
	t.Helper()
	repo := NewLotRepository(database)
	lot := &db.ParkingLot{
		Name:          name,
		Address:       "42 Main Street",
		PinCode:       "560001",
		Price:         decimal.RequireFromString(price),
		NumberOfSpots: spots,
	}
	require.NoError(t, repo.Create(context.Background(), lot))
	return lot
}

func spotCount(t *testing.T, database *sql.DB, lotID int, status string) int {
	t.Helper()
	var count int
	query := `SELECT COUNT(1) FROM parking_spots WHERE lot_id = $1`
	args := []any{lotID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	require.NoError(t, database.QueryRow(query, args...).Scan(&count))
	return count
}

func declaredCount(t *testing.T, database *sql.DB, lotID int) int {
	t.Helper()
	var count int
	require.NoError(t, database.QueryRow(
		`SELECT number_of_spots FROM parking_lots WHERE id = $1`, lotID).Scan(&count))
	return count
}
