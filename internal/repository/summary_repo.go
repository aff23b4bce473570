package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"parkhub/internal/db"
)

// SummaryRepository holds the read-only projections behind the summary and
// chart endpoints. No invariants of its own; rows whose referenced lot or
// spot is gone are simply not attributed.
type SummaryRepository struct {
	DB *sql.DB
}

func NewSummaryRepository(database *sql.DB) *SummaryRepository {
	return &SummaryRepository{DB: database}
}

type AdminSummary struct {
	TotalLots       int
	TotalSpots      int
	OccupiedSpots   int
	RegisteredUsers int
}

type LotChartRow struct {
	LotName  string
	Bookings int
	Occupied int
}

type UserSummary struct {
	TotalBookings  int
	ActiveBookings int
	TotalSpent     decimal.Decimal
}

// UserBookingRow is one ledger row as the user chart projection consumes it.
// LotName is empty when the spot or lot no longer exists.
type UserBookingRow struct {
	BookedAt time.Time
	Cost     decimal.Decimal
	LotName  string
}

func (r *SummaryRepository) AdminSummary(ctx context.Context) (*AdminSummary, error) {
	var s AdminSummary
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM parking_lots`).Scan(&s.TotalLots)
	if err != nil {
		return nil, fmt.Errorf("count lots: %w", err)
	}
	err = r.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM parking_spots`).Scan(&s.TotalSpots)
	if err != nil {
		return nil, fmt.Errorf("count spots: %w", err)
	}
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM parking_spots WHERE status = 'O'`).Scan(&s.OccupiedSpots)
	if err != nil {
		return nil, fmt.Errorf("count occupied spots: %w", err)
	}
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE role <> $1`, db.RoleAdmin).Scan(&s.RegisteredUsers)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &s, nil
}

// LotCharts reports per-lot booking and occupancy counts. Bookings are
// attributed through the lot's current spots, so history on deleted spots
// drops out of the chart rather than failing it.
func (r *SummaryRepository) LotCharts(ctx context.Context) ([]LotChartRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT l.prime_location_name,
		       (SELECT COUNT(1) FROM reservations res
		        JOIN parking_spots sp ON sp.id = res.spot_id
		        WHERE sp.lot_id = l.id) AS bookings,
		       (SELECT COUNT(1) FROM parking_spots o
		        WHERE o.lot_id = l.id AND o.status = 'O') AS occupied
		FROM parking_lots l
		ORDER BY l.id`)
	if err != nil {
		return nil, fmt.Errorf("lot charts: %w", err)
	}
	defer rows.Close()

	var chart []LotChartRow
	for rows.Next() {
		var row LotChartRow
		if err := rows.Scan(&row.LotName, &row.Bookings, &row.Occupied); err != nil {
			return nil, fmt.Errorf("scan lot chart row: %w", err)
		}
		chart = append(chart, row)
	}
	return chart, rows.Err()
}

func (r *SummaryRepository) UserSummary(ctx context.Context, userID int) (*UserSummary, error) {
	var s UserSummary
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(1),
		       COALESCE(SUM(CASE WHEN released_at IS NULL THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(cost), 0)
		FROM reservations WHERE user_id = $1`, userID).
		Scan(&s.TotalBookings, &s.ActiveBookings, &s.TotalSpent)
	if err != nil {
		return nil, fmt.Errorf("user summary: %w", err)
	}
	return &s, nil
}

// UserBookings returns the raw rows the per-user chart rollups are built
// from, oldest first.
func (r *SummaryRepository) UserBookings(ctx context.Context, userID int) ([]UserBookingRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT res.booked_at, res.cost, COALESCE(l.prime_location_name, '')
		FROM reservations res
		LEFT JOIN parking_spots s ON s.id = res.spot_id
		LEFT JOIN parking_lots l ON l.id = s.lot_id
		WHERE res.user_id = $1
		ORDER BY res.booked_at, res.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []UserBookingRow
	for rows.Next() {
		var b UserBookingRow
		if err := rows.Scan(&b.BookedAt, &b.Cost, &b.LotName); err != nil {
			return nil, fmt.Errorf("scan user booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UsersWithoutBookingSince lists regular users with no booking at or after
// the cutoff; the daily reminder job targets them.
func (r *SummaryRepository) UsersWithoutBookingSince(ctx context.Context, cutoff time.Time) ([]db.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.phone, u.role, u.created_at
		FROM users u
		WHERE u.role <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM reservations res
			WHERE res.user_id = u.id AND res.booked_at >= $2
		  )
		ORDER BY u.id`, db.RoleAdmin, cutoff)
	if err != nil {
		return nil, fmt.Errorf("users without booking: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// MonthlyActivity aggregates a user's bookings and spend inside [start, end),
// for the monthly report job.
func (r *SummaryRepository) MonthlyActivity(ctx context.Context, userID int, start, end time.Time) (int, decimal.Decimal, error) {
	var count int
	var spent decimal.Decimal
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(1), COALESCE(SUM(cost), 0)
		FROM reservations
		WHERE user_id = $1 AND booked_at >= $2 AND booked_at < $3`,
		userID, start, end).Scan(&count, &spent)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("monthly activity: %w", err)
	}
	return count, spent, nil
}
