package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"parkhub/internal/repository"
)

// ExportService streams a user's reservation history as CSV.
type ExportService struct {
	reservations *repository.ReservationRepository
}

func NewExportService(reservations *repository.ReservationRepository) *ExportService {
	return &ExportService{reservations: reservations}
}

func (s *ExportService) WriteUserHistoryCSV(ctx context.Context, userID int, w io.Writer) error {
	entries, err := s.reservations.HistoryForUser(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Reservation ID", "Lot", "Spot ID", "Booked At", "Occupied At", "Released At", "Cost"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.ID),
			e.LotName,
			strconv.Itoa(e.SpotID),
			e.BookedAt.Format(time.RFC3339),
			formatOptionalTime(e.OccupiedAt),
			formatOptionalTime(e.ReleasedAt),
			e.Cost.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
