package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
)

func TestLotCreate_SpawnsDeclaredSpots(t *testing.T) {
	database := newTestDB(t)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 4)

	assert.NotZero(t, lot.ID)
	assert.Equal(t, 4, spotCount(t, database, lot.ID, ""))
	assert.Equal(t, 4, spotCount(t, database, lot.ID, db.SpotAvailable))
	assert.Equal(t, 4, declaredCount(t, database, lot.ID))
}

func TestLotGrow_AddsAvailableSpots(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 2)

	require.NoError(t, repo.Grow(context.Background(), lot.ID, 3))

	assert.Equal(t, 5, spotCount(t, database, lot.ID, ""))
	assert.Equal(t, 5, declaredCount(t, database, lot.ID))
}

func TestLotShrink_RemovesExactlyN(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 5)

	require.NoError(t, repo.Shrink(context.Background(), lot.ID, 2))

	assert.Equal(t, 3, spotCount(t, database, lot.ID, ""))
	assert.Equal(t, 3, declaredCount(t, database, lot.ID))
}

func TestLotShrink_FailsAtomicallyWhenNotEnoughAvailable(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	reservations := NewReservationRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 3)
	userID := createTestUser(t, database, "alice")

	// One spot occupied leaves two available; removing three must fail whole.
	_, err := reservations.Book(context.Background(), userID, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	err = repo.Shrink(context.Background(), lot.ID, 3)
	assert.True(t, apperr.IsKind(err, apperr.InsufficientAvailable))
	assert.Equal(t, 3, spotCount(t, database, lot.ID, ""))
	assert.Equal(t, 3, declaredCount(t, database, lot.ID))

	// Removing both available spots succeeds and leaves the occupied one.
	require.NoError(t, repo.Shrink(context.Background(), lot.ID, 2))
	assert.Equal(t, 1, spotCount(t, database, lot.ID, ""))
	assert.Equal(t, 1, spotCount(t, database, lot.ID, db.SpotOccupied))
	assert.Equal(t, 1, declaredCount(t, database, lot.ID))
}

func TestLotShrink_PrefersHighestSpotIDs(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 3)

	require.NoError(t, repo.Shrink(context.Background(), lot.ID, 1))

	var minID, maxID int
	require.NoError(t, database.QueryRow(
		`SELECT MIN(id), MAX(id) FROM parking_spots WHERE lot_id = $1`, lot.ID).Scan(&minID, &maxID))
	assert.Equal(t, 2, maxID-minID+1, "the newest spot should have been removed")
}

func TestLotDelete_RefusedWhileOccupied(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	reservations := NewReservationRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 2)
	userID := createTestUser(t, database, "alice")

	res, err := reservations.Book(context.Background(), userID, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	err = repo.Delete(context.Background(), lot.ID)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	assert.Equal(t, 2, spotCount(t, database, lot.ID, ""))

	_, err = reservations.Release(context.Background(), res.ID, userID, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), lot.ID))
	assert.Equal(t, 0, spotCount(t, database, lot.ID, ""))
	_, err = repo.GetByID(context.Background(), lot.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestLotDelete_NotFound(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)

	err := repo.Delete(context.Background(), 99)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestDeleteSpot_KeepsDeclaredCountInStep(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 3)

	var spotID int
	require.NoError(t, database.QueryRow(
		`SELECT MIN(id) FROM parking_spots WHERE lot_id = $1`, lot.ID).Scan(&spotID))

	require.NoError(t, repo.DeleteSpot(context.Background(), spotID))
	assert.Equal(t, 2, spotCount(t, database, lot.ID, ""))
	assert.Equal(t, 2, declaredCount(t, database, lot.ID))
}

func TestDeleteSpot_RefusedWhileOccupied(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	reservations := NewReservationRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 1)
	userID := createTestUser(t, database, "alice")

	res, err := reservations.Book(context.Background(), userID, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	err = repo.DeleteSpot(context.Background(), res.SpotID)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	assert.Equal(t, 1, declaredCount(t, database, lot.ID))

	err = repo.DeleteSpot(context.Background(), 12345)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestLotUpdateFields_DoesNotTouchSpots(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 2)

	lot.Name = "Harbor Front"
	lot.Price = decimal.RequireFromString("80.00")
	require.NoError(t, repo.UpdateFields(context.Background(), lot))

	got, err := repo.GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Front", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("80.00")))
	assert.Equal(t, 2, spotCount(t, database, lot.ID, ""))
}

func TestLotList_ReportsCounts(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	reservations := NewReservationRepository(database)
	lot := createTestLot(t, database, "Central Plaza", "50.00", 3)
	userID := createTestUser(t, database, "alice")

	_, err := reservations.Book(context.Background(), userID, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	lots, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, 3, lots[0].TotalSpots)
	assert.Equal(t, 2, lots[0].AvailableSpots)
}

func TestLotSearch_MatchesSubstringsCaseInsensitive(t *testing.T) {
	database := newTestDB(t)
	repo := NewLotRepository(database)
	createTestLot(t, database, "Central Plaza", "50.00", 1)
	createTestLot(t, database, "Harbor Front", "70.00", 1)

	byName, err := repo.Search(context.Background(), "central")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Central Plaza", byName[0].Name)

	byAddress, err := repo.Search(context.Background(), "main street")
	require.NoError(t, err)
	assert.Len(t, byAddress, 2)

	byPin, err := repo.Search(context.Background(), "5600")
	require.NoError(t, err)
	assert.Len(t, byPin, 2)

	none, err := repo.Search(context.Background(), "airport")
	require.NoError(t, err)
	assert.Empty(t, none)
}
