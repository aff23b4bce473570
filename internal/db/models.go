package db

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Spot status values as stored. A spot is either free or taken; there is no
// "reserved but not arrived" spot state, that distinction lives on the
// reservation timestamps.
const (
	SpotAvailable = "A"
	SpotOccupied  = "O"
)

// Reservation lifecycle states, derived from which timestamps are set.
const (
	ReservationBooked   = "booked"
	ReservationOccupied = "occupied"
	ReservationReleased = "released"
)

type User struct {
	ID           int
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type ParkingLot struct {
	ID            int
	Name          string
	Address       string
	PinCode       string
	Price         decimal.Decimal
	NumberOfSpots int
}

type ParkingSpot struct {
	ID     int
	LotID  int
	Status string
}

type Reservation struct {
	ID         int
	SpotID     int
	UserID     int
	Cost       decimal.Decimal
	BookedAt   time.Time
	OccupiedAt *time.Time
	ReleasedAt *time.Time
}

// Status derives the lifecycle state from the timestamps.
func (r *Reservation) Status() string {
	switch {
	case r.ReleasedAt != nil:
		return ReservationReleased
	case r.OccupiedAt != nil:
		return ReservationOccupied
	default:
		return ReservationBooked
	}
}

// Active reports whether the reservation still holds its spot.
func (r *Reservation) Active() bool {
	return r.ReleasedAt == nil
}
