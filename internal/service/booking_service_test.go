package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
	"parkhub/internal/repository"
)

func TestBookingService_Lifecycle(t *testing.T) {
	database := newTestDB(t)
	svc := NewBookingService(repository.NewReservationRepository(database))
	ctx := context.Background()

	lot := createTestLot(t, database, "Central Plaza", "50.00", 1)
	alice := createTestUser(t, database, "alice")

	res, err := svc.Book(ctx, alice, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, db.ReservationBooked, res.Status())

	active, err := svc.Active(ctx, alice)
	require.NoError(t, err)
	require.Len(t, active, 1)

	occupied, err := svc.MarkOccupied(ctx, res.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, db.ReservationOccupied, occupied.Status())

	released, err := svc.Release(ctx, res.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, db.ReservationReleased, released.Status())

	history, err := svc.History(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Central Plaza", history[0].LotName)

	_, err = svc.Book(ctx, alice, 12345)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
