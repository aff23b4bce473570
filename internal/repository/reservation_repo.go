package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
)

// ReservationRepository owns the reservation ledger. Spot allocation and the
// lifecycle transitions are conditional updates so that concurrent callers
// can never double-book a spot or double-stamp a timestamp.
type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// HistoryEntry is a ledger row joined with where it happened. Lot fields are
// empty when the lot has since been deleted.
type HistoryEntry struct {
	db.Reservation
	LotName string
	Address string
}

// Book allocates the lowest-id available spot in the lot and records a
// reservation priced at the lot's current rate. The spot flip is a
// compare-and-swap on its status: losing a race to another booking just means
// another attempt on the next free spot, and NoCapacity is only reported once
// no available spot remains.
func (r *ReservationRepository) Book(ctx context.Context, userID, lotID int, now time.Time) (*db.Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin book: %w", err)
	}
	defer tx.Rollback()

	var price decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT price FROM parking_lots WHERE id = $1`, lotID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "parking lot not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get lot price: %w", err)
	}

	var spotID int
	for {
		err = tx.QueryRowContext(ctx,
			`UPDATE parking_spots SET status = 'O'
			 WHERE id = (
				SELECT id FROM parking_spots
				WHERE lot_id = $1 AND status = 'A'
				ORDER BY id LIMIT 1
			 ) AND status = 'A'
			 RETURNING id`, lotID).Scan(&spotID)
		if err == nil {
			break
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("allocate spot: %w", err)
		}
		// Either the lot is full or the chosen spot was taken between the
		// select and the update. Only the first case is terminal.
		var available int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM parking_spots WHERE lot_id = $1 AND status = 'A'`, lotID).Scan(&available)
		if err != nil {
			return nil, fmt.Errorf("count available spots: %w", err)
		}
		if available == 0 {
			return nil, apperr.New(apperr.NoCapacity, "no available spots in this lot")
		}
	}

	res := &db.Reservation{
		SpotID:   spotID,
		UserID:   userID,
		Cost:     price,
		BookedAt: now,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO reservations (spot_id, user_id, cost, booked_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		res.SpotID, res.UserID, res.Cost, res.BookedAt).Scan(&res.ID)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit book: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int) (*db.Reservation, error) {
	var res db.Reservation
	var occupied, released sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, spot_id, user_id, cost, booked_at, occupied_at, released_at
		 FROM reservations WHERE id = $1`, id).
		Scan(&res.ID, &res.SpotID, &res.UserID, &res.Cost, &res.BookedAt, &occupied, &released)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "reservation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if occupied.Valid {
		res.OccupiedAt = &occupied.Time
	}
	if released.Valid {
		res.ReleasedAt = &released.Time
	}
	return &res, nil
}

// MarkOccupied stamps occupied_at on a reservation the user owns that is
// still in Booked state. The spot itself is untouched: it has been occupied
// since booking.
func (r *ReservationRepository) MarkOccupied(ctx context.Context, id, userID int, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE reservations SET occupied_at = $1
		 WHERE id = $2 AND user_id = $3 AND occupied_at IS NULL AND released_at IS NULL`,
		now, id, userID)
	if err != nil {
		return fmt.Errorf("mark occupied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark occupied: %w", err)
	}
	if n == 0 {
		return diagnose(ctx, r.DB, id, userID, "spot already marked as occupied")
	}
	return nil
}

// Release stamps released_at and frees the spot in the same transaction. The
// conditional update guarantees a reservation is released exactly once.
func (r *ReservationRepository) Release(ctx context.Context, id, userID int, now time.Time) (*db.Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin release: %w", err)
	}
	defer tx.Rollback()

	var spotID int
	err = tx.QueryRowContext(ctx,
		`UPDATE reservations SET released_at = $1
		 WHERE id = $2 AND user_id = $3 AND released_at IS NULL
		 RETURNING spot_id`,
		now, id, userID).Scan(&spotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, diagnose(ctx, tx, id, userID, "reservation already released")
	}
	if err != nil {
		return nil, fmt.Errorf("release reservation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_spots SET status = 'A' WHERE id = $1`, spotID); err != nil {
		return nil, fmt.Errorf("free spot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit release: %w", err)
	}
	return r.GetByID(ctx, id)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// diagnose re-reads a reservation after a conditional update matched nothing,
// to report why: gone, someone else's, or an illegal transition. It queries
// through q so a caller holding an open transaction re-reads on that same
// connection; going back to the pool mid-transaction would starve it when the
// pool is capped at one connection, as the sqlite setup does.
func diagnose(ctx context.Context, q rowQuerier, id, userID int, transitionMsg string) error {
	var ownerID int
	err := q.QueryRowContext(ctx,
		`SELECT user_id FROM reservations WHERE id = $1`, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "reservation not found")
	}
	if err != nil {
		return fmt.Errorf("diagnose reservation: %w", err)
	}
	if ownerID != userID {
		return apperr.New(apperr.Forbidden, "reservation belongs to another user")
	}
	return apperr.New(apperr.InvalidTransition, transitionMsg)
}

// ActiveForUser returns the user's reservations that still hold a spot.
func (r *ReservationRepository) ActiveForUser(ctx context.Context, userID int) ([]db.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, spot_id, user_id, cost, booked_at, occupied_at, released_at
		 FROM reservations WHERE user_id = $1 AND released_at IS NULL ORDER BY booked_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("active reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// HistoryForUser returns the full ledger for a user, newest first, with lot
// details where the lot still exists.
func (r *ReservationRepository) HistoryForUser(ctx context.Context, userID int) ([]HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.spot_id, r.user_id, r.cost, r.booked_at, r.occupied_at, r.released_at,
		       COALESCE(l.prime_location_name, ''), COALESCE(l.address, '')
		FROM reservations r
		LEFT JOIN parking_spots s ON s.id = r.spot_id
		LEFT JOIN parking_lots l ON l.id = s.lot_id
		WHERE r.user_id = $1
		ORDER BY r.booked_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("reservation history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var occupied, released sql.NullTime
		if err := rows.Scan(&e.ID, &e.SpotID, &e.UserID, &e.Cost, &e.BookedAt,
			&occupied, &released, &e.LotName, &e.Address); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if occupied.Valid {
			e.OccupiedAt = &occupied.Time
		}
		if released.Valid {
			e.ReleasedAt = &released.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanReservations(rows *sql.Rows) ([]db.Reservation, error) {
	var reservations []db.Reservation
	for rows.Next() {
		var res db.Reservation
		var occupied, released sql.NullTime
		if err := rows.Scan(&res.ID, &res.SpotID, &res.UserID, &res.Cost, &res.BookedAt,
			&occupied, &released); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		if occupied.Valid {
			res.OccupiedAt = &occupied.Time
		}
		if released.Valid {
			res.ReleasedAt = &released.Time
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
