package api

import (
	"time"

	"github.com/shopspring/decimal"

	"parkhub/internal/db"
	"parkhub/internal/repository"
)

// Auth

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Lots

type CreateLotRequest struct {
	PrimeLocationName string           `json:"prime_location_name"`
	Price             *decimal.Decimal `json:"price"`
	Address           string           `json:"address"`
	PinCode           string           `json:"pin_code"`
	NumberOfSpots     *int             `json:"number_of_spots"`
}

// UpdateLotRequest is a partial edit; absent fields stay as they are.
type UpdateLotRequest struct {
	PrimeLocationName *string          `json:"prime_location_name"`
	Price             *decimal.Decimal `json:"price"`
	Address           *string          `json:"address"`
	PinCode           *string          `json:"pin_code"`
	NumberOfSpots     *int             `json:"number_of_spots"`
}

type LotResponse struct {
	ID                int             `json:"id"`
	PrimeLocationName string          `json:"prime_location_name"`
	Price             decimal.Decimal `json:"price"`
	Address           string          `json:"address"`
	PinCode           string          `json:"pin_code"`
	NumberOfSpots     int             `json:"number_of_spots"`
	AvailableSpots    int             `json:"available_spots"`
}

func toLotResponse(lc repository.LotWithCounts) LotResponse {
	return LotResponse{
		ID:                lc.ID,
		PrimeLocationName: lc.Name,
		Price:             lc.Price,
		Address:           lc.Address,
		PinCode:           lc.PinCode,
		NumberOfSpots:     lc.TotalSpots,
		AvailableSpots:    lc.AvailableSpots,
	}
}

func toLotResponses(lots []repository.LotWithCounts) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, lc := range lots {
		out = append(out, toLotResponse(lc))
	}
	return out
}

// Reservations

type BookRequest struct {
	LotID int `json:"lot_id"`
}

type ReservationActionRequest struct {
	ReservationID int `json:"reservation_id"`
}

type ReservationResponse struct {
	ReservationID int             `json:"reservation_id"`
	SpotID        int             `json:"spot_id"`
	Status        string          `json:"status"`
	Cost          decimal.Decimal `json:"cost"`
	BookedAt      time.Time       `json:"booked_at"`
	OccupiedAt    *time.Time      `json:"occupied_at,omitempty"`
	ReleasedAt    *time.Time      `json:"released_at,omitempty"`
}

func toReservationResponse(r *db.Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ID,
		SpotID:        r.SpotID,
		Status:        r.Status(),
		Cost:          r.Cost,
		BookedAt:      r.BookedAt,
		OccupiedAt:    r.OccupiedAt,
		ReleasedAt:    r.ReleasedAt,
	}
}

type BookingResponse struct {
	ID                int             `json:"id"`
	PrimeLocationName string          `json:"prime_location_name"`
	Address           string          `json:"address"`
	SpotID            int             `json:"spot_id"`
	Status            string          `json:"status"`
	Cost              decimal.Decimal `json:"parking_cost"`
	BookedAt          time.Time       `json:"booked_at"`
	OccupiedAt        *time.Time      `json:"occupied_at,omitempty"`
	ReleasedAt        *time.Time      `json:"released_at,omitempty"`
}

func toBookingResponses(entries []repository.HistoryEntry) []BookingResponse {
	out := make([]BookingResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, BookingResponse{
			ID:                e.ID,
			PrimeLocationName: e.LotName,
			Address:           e.Address,
			SpotID:            e.SpotID,
			Status:            e.Status(),
			Cost:              e.Cost,
			BookedAt:          e.BookedAt,
			OccupiedAt:        e.OccupiedAt,
			ReleasedAt:        e.ReleasedAt,
		})
	}
	return out
}

// Users and summaries

type UserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AdminSummaryResponse struct {
	TotalLots       int `json:"total_lots"`
	TotalSpots      int `json:"total_spots"`
	OccupiedSpots   int `json:"occupied_spots"`
	RegisteredUsers int `json:"registered_users"`
}

type AdminChartsResponse struct {
	Lots      []string `json:"lots"`
	Bookings  []int    `json:"bookings"`
	Occupancy []int    `json:"occupancy"`
}

type UserSummaryResponse struct {
	TotalBookings  int             `json:"total_bookings"`
	ActiveBookings int             `json:"active_bookings"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
}

type UserChartsResponse struct {
	Months           []string        `json:"months"`
	BookingsPerMonth []int           `json:"bookings_per_month"`
	Lots             []string        `json:"lots"`
	BookingsPerLot   []int           `json:"bookings_per_lot"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}
