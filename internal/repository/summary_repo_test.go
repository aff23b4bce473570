package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSummary_Counts(t *testing.T) {
	database := newTestDB(t)
	summaries := NewSummaryRepository(database)
	reservations := NewReservationRepository(database)
	ctx := context.Background()

	createTestLot(t, database, "Central Plaza", "50.00", 3)
	lotB := createTestLot(t, database, "Harbor Front", "70.00", 2)
	alice := createTestUser(t, database, "alice")
	createTestUser(t, database, "bob")

	_, err := reservations.Book(ctx, alice, lotB.ID, time.Now().UTC())
	require.NoError(t, err)

	s, err := summaries.AdminSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalLots)
	assert.Equal(t, 5, s.TotalSpots)
	assert.Equal(t, 1, s.OccupiedSpots)
	assert.Equal(t, 2, s.RegisteredUsers)
}

func TestLotCharts_PerLotRows(t *testing.T) {
	database := newTestDB(t)
	summaries := NewSummaryRepository(database)
	reservations := NewReservationRepository(database)
	ctx := context.Background()

	lotA := createTestLot(t, database, "Central Plaza", "50.00", 2)
	createTestLot(t, database, "Harbor Front", "70.00", 1)
	alice := createTestUser(t, database, "alice")

	res, err := reservations.Book(ctx, alice, lotA.ID, time.Now().UTC())
	require.NoError(t, err)
	_, err = reservations.Release(ctx, res.ID, alice, time.Now().UTC())
	require.NoError(t, err)
	_, err = reservations.Book(ctx, alice, lotA.ID, time.Now().UTC())
	require.NoError(t, err)

	chart, err := summaries.LotCharts(ctx)
	require.NoError(t, err)
	require.Len(t, chart, 2)
	assert.Equal(t, "Central Plaza", chart[0].LotName)
	assert.Equal(t, 2, chart[0].Bookings)
	assert.Equal(t, 1, chart[0].Occupied)
	assert.Equal(t, "Harbor Front", chart[1].LotName)
	assert.Equal(t, 0, chart[1].Bookings)
	assert.Equal(t, 0, chart[1].Occupied)
}

func TestUserSummary_Totals(t *testing.T) {
	database := newTestDB(t)
	summaries := NewSummaryRepository(database)
	reservations := NewReservationRepository(database)
	ctx := context.Background()

	lot := createTestLot(t, database, "Central Plaza", "50.00", 3)
	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")

	res, err := reservations.Book(ctx, alice, lot.ID, time.Now().UTC())
	require.NoError(t, err)
	_, err = reservations.Release(ctx, res.ID, alice, time.Now().UTC())
	require.NoError(t, err)
	_, err = reservations.Book(ctx, alice, lot.ID, time.Now().UTC())
	require.NoError(t, err)
	_, err = reservations.Book(ctx, bob, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	s, err := summaries.UserSummary(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalBookings)
	assert.Equal(t, 1, s.ActiveBookings)
	assert.True(t, s.TotalSpent.Equal(decimal.RequireFromString("100.00")))

	empty, err := summaries.UserSummary(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalBookings)
	assert.True(t, empty.TotalSpent.IsZero())
}

func TestUserBookings_OldestFirstWithLotNames(t *testing.T) {
	database := newTestDB(t)
	summaries := NewSummaryRepository(database)
	reservations := NewReservationRepository(database)
	ctx := context.Background()

	lot := createTestLot(t, database, "Central Plaza", "50.00", 2)
	alice := createTestUser(t, database, "alice")

	first := time.Now().UTC().Add(-time.Hour)
	_, err := reservations.Book(ctx, alice, lot.ID, first)
	require.NoError(t, err)
	_, err = reservations.Book(ctx, alice, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	bookings, err := summaries.UserBookings(ctx, alice)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.True(t, !bookings[1].BookedAt.Before(bookings[0].BookedAt))
	assert.Equal(t, "Central Plaza", bookings[0].LotName)
}

func TestUsersWithoutBookingSince(t *testing.T) {
	database := newTestDB(t)
	summaries := NewSummaryRepository(database)
	reservations := NewReservationRepository(database)
	ctx := context.Background()

	lot := createTestLot(t, database, "Central Plaza", "50.00", 2)
	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")

	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	// Alice booked after the cutoff, Bob has nothing recent.
	_, err := reservations.Book(ctx, alice, lot.ID, time.Now().UTC())
	require.NoError(t, err)

	idle, err := summaries.UsersWithoutBookingSince(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, bob, idle[0].ID)
}

func TestMonthlyActivity_BoundsAreHalfOpen(t *testing.T) {
	database := newTestDB(t)
	summaries := NewSummaryRepository(database)
	reservations := NewReservationRepository(database)
	ctx := context.Background()

	lot := createTestLot(t, database, "Central Plaza", "50.00", 3)
	alice := createTestUser(t, database, "alice")

	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	_, err := reservations.Book(ctx, alice, lot.ID, start.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = reservations.Book(ctx, alice, lot.ID, end.Add(-time.Minute))
	require.NoError(t, err)
	// On the end bound itself, so outside the window.
	_, err = reservations.Book(ctx, alice, lot.ID, end)
	require.NoError(t, err)

	count, spent, err := summaries.MonthlyActivity(ctx, alice, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, spent.Equal(decimal.RequireFromString("100.00")))
}
