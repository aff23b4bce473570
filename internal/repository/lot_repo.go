package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
)

// LotRepository owns parking lots and their spot pool. Capacity changes
// (create, grow, shrink, delete) keep number_of_spots equal to the number of
// spot rows inside a single transaction.
type LotRepository struct {
	DB *sql.DB
}

func NewLotRepository(database *sql.DB) *LotRepository {
	return &LotRepository{DB: database}
}

// LotWithCounts is a lot plus its live spot counts, as listings report them.
type LotWithCounts struct {
	db.ParkingLot
	TotalSpots     int
	AvailableSpots int
}

// Create inserts the lot and its initial batch of available spots.
func (r *LotRepository) Create(ctx context.Context, lot *db.ParkingLot) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create lot: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO parking_lots (prime_location_name, address, pin_code, price, number_of_spots)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		lot.Name, lot.Address, lot.PinCode, lot.Price, lot.NumberOfSpots).Scan(&lot.ID)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	for i := 0; i < lot.NumberOfSpots; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parking_spots (lot_id, status) VALUES ($1, 'A')`, lot.ID); err != nil {
			return fmt.Errorf("insert spot: %w", err)
		}
	}
	return tx.Commit()
}

func (r *LotRepository) GetByID(ctx context.Context, id int) (*db.ParkingLot, error) {
	var lot db.ParkingLot
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, prime_location_name, address, pin_code, price, number_of_spots
		 FROM parking_lots WHERE id = $1`, id).
		Scan(&lot.ID, &lot.Name, &lot.Address, &lot.PinCode, &lot.Price, &lot.NumberOfSpots)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "parking lot not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &lot, nil
}

// UpdateFields edits name, address, pin code and price. Capacity is changed
// through Grow/Shrink/Update only.
func (r *LotRepository) UpdateFields(ctx context.Context, lot *db.ParkingLot) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update lot: %w", err)
	}
	defer tx.Rollback()

	if err := updateFieldsTx(ctx, tx, lot); err != nil {
		return err
	}
	return tx.Commit()
}

// Update applies field edits and, when newCount is set and differs from the
// stored count, resizes the spot pool, all inside one transaction. A resize
// that cannot be honored rolls the field edits back with it.
func (r *LotRepository) Update(ctx context.Context, lot *db.ParkingLot, newCount *int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update lot: %w", err)
	}
	defer tx.Rollback()

	if err := updateFieldsTx(ctx, tx, lot); err != nil {
		return err
	}
	if newCount != nil {
		switch {
		case *newCount > lot.NumberOfSpots:
			if err := growTx(ctx, tx, lot.ID, *newCount-lot.NumberOfSpots); err != nil {
				return err
			}
		case *newCount < lot.NumberOfSpots:
			if err := shrinkTx(ctx, tx, lot.ID, lot.NumberOfSpots-*newCount); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Grow adds count available spots and bumps the declared spot count.
func (r *LotRepository) Grow(ctx context.Context, lotID, count int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grow: %w", err)
	}
	defer tx.Rollback()

	if err := growTx(ctx, tx, lotID, count); err != nil {
		return err
	}
	return tx.Commit()
}

// Shrink removes exactly count available spots, highest ids first, and lowers
// the declared spot count. All-or-nothing: the conditional delete re-checks
// status so a spot occupied mid-operation makes the whole shrink fail with
// InsufficientAvailable and roll back.
func (r *LotRepository) Shrink(ctx context.Context, lotID, count int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin shrink: %w", err)
	}
	defer tx.Rollback()

	if err := shrinkTx(ctx, tx, lotID, count); err != nil {
		return err
	}
	return tx.Commit()
}

func updateFieldsTx(ctx context.Context, tx *sql.Tx, lot *db.ParkingLot) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE parking_lots SET prime_location_name = $1, address = $2, pin_code = $3, price = $4
		 WHERE id = $5`,
		lot.Name, lot.Address, lot.PinCode, lot.Price, lot.ID)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "parking lot not found")
	}
	return nil
}

func growTx(ctx context.Context, tx *sql.Tx, lotID, count int) error {
	for i := 0; i < count; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parking_spots (lot_id, status) VALUES ($1, 'A')`, lotID); err != nil {
			return fmt.Errorf("insert spot: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_lots SET number_of_spots = number_of_spots + $1 WHERE id = $2`,
		count, lotID); err != nil {
		return fmt.Errorf("update spot count: %w", err)
	}
	return nil
}

func shrinkTx(ctx context.Context, tx *sql.Tx, lotID, count int) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM parking_spots
		 WHERE id IN (
			SELECT id FROM parking_spots
			WHERE lot_id = $1 AND status = 'A'
			ORDER BY id DESC LIMIT $2
		 ) AND status = 'A'`,
		lotID, count)
	if err != nil {
		return fmt.Errorf("delete spots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete spots: %w", err)
	}
	if removed != int64(count) {
		return apperr.Newf(apperr.InsufficientAvailable,
			"not enough available spots to remove: need %d, found %d", count, removed)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_lots SET number_of_spots = number_of_spots - $1 WHERE id = $2`,
		count, lotID); err != nil {
		return fmt.Errorf("update spot count: %w", err)
	}
	return nil
}

// Delete removes the lot and all its spots. Refused while any spot is
// occupied; reservation history rows are kept.
func (r *LotRepository) Delete(ctx context.Context, lotID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete lot: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM parking_lots WHERE id = $1`, lotID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check lot: %w", err)
	}
	if exists == 0 {
		return apperr.New(apperr.NotFound, "parking lot not found")
	}

	var occupied int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM parking_spots WHERE lot_id = $1 AND status = 'O'`, lotID).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("count occupied spots: %w", err)
	}
	if occupied > 0 {
		return apperr.New(apperr.Conflict, "cannot delete lot with occupied spots")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM parking_spots WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("delete spots: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM parking_lots WHERE id = $1`, lotID); err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	return tx.Commit()
}

// DeleteSpot removes one spot while it is available, keeping the owning lot's
// declared count in step.
func (r *LotRepository) DeleteSpot(ctx context.Context, spotID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete spot: %w", err)
	}
	defer tx.Rollback()

	var lotID int
	err = tx.QueryRowContext(ctx,
		`SELECT lot_id FROM parking_spots WHERE id = $1`, spotID).Scan(&lotID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "parking spot not found")
	}
	if err != nil {
		return fmt.Errorf("get spot: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM parking_spots WHERE id = $1 AND status = 'A'`, spotID)
	if err != nil {
		return fmt.Errorf("delete spot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete spot: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.Conflict, "cannot delete occupied spot")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_lots SET number_of_spots = number_of_spots - 1 WHERE id = $1`,
		lotID); err != nil {
		return fmt.Errorf("update spot count: %w", err)
	}
	return tx.Commit()
}

func (r *LotRepository) List(ctx context.Context) ([]LotWithCounts, error) {
	return r.queryWithCounts(ctx, `
		SELECT l.id, l.prime_location_name, l.address, l.pin_code, l.price, l.number_of_spots,
		       COUNT(s.id) AS total_spots,
		       COALESCE(SUM(CASE WHEN s.status = 'A' THEN 1 ELSE 0 END), 0) AS available_spots
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		GROUP BY l.id, l.prime_location_name, l.address, l.pin_code, l.price, l.number_of_spots
		ORDER BY l.id`)
}

// Search matches the query as a case-insensitive substring of the lot name,
// address or pin code.
func (r *LotRepository) Search(ctx context.Context, query string) ([]LotWithCounts, error) {
	pattern := "%" + query + "%"
	return r.queryWithCounts(ctx, `
		SELECT l.id, l.prime_location_name, l.address, l.pin_code, l.price, l.number_of_spots,
		       COUNT(s.id) AS total_spots,
		       COALESCE(SUM(CASE WHEN s.status = 'A' THEN 1 ELSE 0 END), 0) AS available_spots
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		WHERE LOWER(l.prime_location_name) LIKE LOWER($1)
		   OR LOWER(l.address) LIKE LOWER($2)
		   OR LOWER(l.pin_code) LIKE LOWER($3)
		GROUP BY l.id, l.prime_location_name, l.address, l.pin_code, l.price, l.number_of_spots
		ORDER BY l.id`,
		pattern, pattern, pattern)
}

func (r *LotRepository) queryWithCounts(ctx context.Context, query string, args ...any) ([]LotWithCounts, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []LotWithCounts
	for rows.Next() {
		var lc LotWithCounts
		if err := rows.Scan(&lc.ID, &lc.Name, &lc.Address, &lc.PinCode, &lc.Price,
			&lc.NumberOfSpots, &lc.TotalSpots, &lc.AvailableSpots); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, lc)
	}
	return lots, rows.Err()
}
