package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"parkhub/internal/db"
	"parkhub/internal/repository"
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
	user, err := repository.NewUserRepository(database).
		Create(context.Background(), username, username+"@example.com", "", "hash")
	require.NoError(t, err)
	return user.ID
}

func createTestLot(t *testing.T, database *sql.DB, name string, price string, spots int) *db.ParkingLot {
	t.Helper()
	lot := &db.ParkingLot{
		Name:          name,
		Address:       "42 Main Street",
		PinCode:       "560001",
		Price:         decimal.RequireFromString(price),
		NumberOfSpots: spots,
	}
	require.NoError(t, repository.NewLotRepository(database).Create(context.Background(), lot))
	return lot
}
