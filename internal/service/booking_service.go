package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
	"parkhub/internal/monitoring"
	"parkhub/internal/repository"
)

// BookingService drives the reservation ledger. Booking allocates the spot
// immediately (optimistic allocation); mark-occupied and release only move
// the reservation through its lifecycle.
type BookingService struct {
	reservations *repository.ReservationRepository
}

func NewBookingService(reservations *repository.ReservationRepository) *BookingService {
	return &BookingService{reservations: reservations}
}

// Book reserves an available spot in the lot for the user. The cost is the
// lot's price at this moment, frozen onto the reservation.
func (s *BookingService) Book(ctx context.Context, userID, lotID int) (*db.Reservation, error) {
	res, err := s.reservations.Book(ctx, userID, lotID, time.Now().UTC())
	if err != nil {
		monitoring.BookingRejected(string(apperr.KindOf(err)))
		return nil, err
	}
	monitoring.BookingSucceeded()
	log.Info().
		Int("reservation_id", res.ID).
		Int("spot_id", res.SpotID).
		Int("user_id", userID).
		Msg("spot booked")
	return res, nil
}

// MarkOccupied records that the user has physically taken the spot. Valid
// only from Booked state, on the caller's own reservation.
func (s *BookingService) MarkOccupied(ctx context.Context, reservationID, userID int) (*db.Reservation, error) {
	if err := s.reservations.MarkOccupied(ctx, reservationID, userID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.reservations.GetByID(ctx, reservationID)
}

// Release ends the reservation and frees its spot. Valid from Booked or
// Occupied; a second release reports InvalidTransition.
func (s *BookingService) Release(ctx context.Context, reservationID, userID int) (*db.Reservation, error) {
	res, err := s.reservations.Release(ctx, reservationID, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	monitoring.SpotReleased()
	log.Info().
		Int("reservation_id", res.ID).
		Int("spot_id", res.SpotID).
		Int("user_id", userID).
		Msg("spot released")
	return res, nil
}

func (s *BookingService) Active(ctx context.Context, userID int) ([]db.Reservation, error) {
	return s.reservations.ActiveForUser(ctx, userID)
}

func (s *BookingService) History(ctx context.Context, userID int) ([]repository.HistoryEntry, error) {
	return s.reservations.HistoryForUser(ctx, userID)
}
