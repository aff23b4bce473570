package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkhub/internal/repository"
)

func TestAdminCharts_Shape(t *testing.T) {
	database := newTestDB(t)
	svc := NewSummaryService(repository.NewSummaryRepository(database))
	reservations := repository.NewReservationRepository(database)
	ctx := context.Background()

	lotA := createTestLot(t, database, "Central Plaza", "50.00", 2)
	createTestLot(t, database, "Harbor Front", "70.00", 1)
	alice := createTestUser(t, database, "alice")
	_, err := reservations.Book(ctx, alice, lotA.ID, time.Now().UTC())
	require.NoError(t, err)

	charts, err := svc.AdminCharts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Central Plaza", "Harbor Front"}, charts.Lots)
	assert.Equal(t, []int{1, 0}, charts.Bookings)
	assert.Equal(t, []int{1, 0}, charts.Occupancy)
}

func TestUserCharts_RollsUpMonthsAndLots(t *testing.T) {
	database := newTestDB(t)
	svc := NewSummaryService(repository.NewSummaryRepository(database))
	lots := repository.NewLotRepository(database)
	reservations := repository.NewReservationRepository(database)
	ctx := context.Background()

	lotA := createTestLot(t, database, "Central Plaza", "50.00", 3)
	lotB := createTestLot(t, database, "Harbor Front", "70.00", 1)
	alice := createTestUser(t, database, "alice")

	july := time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC)
	august := time.Date(2026, time.August, 3, 14, 0, 0, 0, time.UTC)

	_, err := reservations.Book(ctx, alice, lotA.ID, july)
	require.NoError(t, err)
	_, err = reservations.Book(ctx, alice, lotA.ID, july.Add(48*time.Hour))
	require.NoError(t, err)
	resB, err := reservations.Book(ctx, alice, lotB.ID, august)
	require.NoError(t, err)

	// Deleting Harbor Front orphans its booking: it keeps counting toward
	// months and spend but drops out of the per-lot breakdown.
	_, err = reservations.Release(ctx, resB.ID, alice, august.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, lots.Delete(ctx, lotB.ID))

	charts, err := svc.UserCharts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jul 2026", "Aug 2026"}, charts.Months)
	assert.Equal(t, []int{2, 1}, charts.BookingsPerMonth)
	assert.Equal(t, []string{"Central Plaza"}, charts.Lots)
	assert.Equal(t, []int{2}, charts.BookingsPerLot)
	assert.True(t, charts.TotalSpent.Equal(decimal.RequireFromString("170.00")))
}

func TestUserCharts_EmptyLedger(t *testing.T) {
	database := newTestDB(t)
	svc := NewSummaryService(repository.NewSummaryRepository(database))
	alice := createTestUser(t, database, "alice")

	charts, err := svc.UserCharts(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, charts.Months)
	assert.Empty(t, charts.Lots)
	assert.True(t, charts.TotalSpent.IsZero())
}
