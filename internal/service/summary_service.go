package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"parkhub/internal/repository"
)

// SummaryService exposes the read-only projections. It has no invariants:
// rows pointing at deleted lots or spots are skipped, never an error.
type SummaryService struct {
	summaries *repository.SummaryRepository
}

func NewSummaryService(summaries *repository.SummaryRepository) *SummaryService {
	return &SummaryService{summaries: summaries}
}

type AdminCharts struct {
	Lots      []string
	Bookings  []int
	Occupancy []int
}

type UserCharts struct {
	Months           []string
	BookingsPerMonth []int
	Lots             []string
	BookingsPerLot   []int
	TotalSpent       decimal.Decimal
}

func (s *SummaryService) AdminSummary(ctx context.Context) (*repository.AdminSummary, error) {
	return s.summaries.AdminSummary(ctx)
}

func (s *SummaryService) AdminCharts(ctx context.Context) (*AdminCharts, error) {
	rows, err := s.summaries.LotCharts(ctx)
	if err != nil {
		return nil, err
	}
	charts := &AdminCharts{
		Lots:      make([]string, 0, len(rows)),
		Bookings:  make([]int, 0, len(rows)),
		Occupancy: make([]int, 0, len(rows)),
	}
	for _, row := range rows {
		charts.Lots = append(charts.Lots, row.LotName)
		charts.Bookings = append(charts.Bookings, row.Bookings)
		charts.Occupancy = append(charts.Occupancy, row.Occupied)
	}
	return charts, nil
}

func (s *SummaryService) UserSummary(ctx context.Context, userID int) (*repository.UserSummary, error) {
	return s.summaries.UserSummary(ctx, userID)
}

// UserCharts rolls a user's ledger up into per-month and per-lot booking
// counts plus total spend. Months are chronological; lots appear in first-
// booking order. Bookings whose lot is gone still count toward months and
// spend but are skipped in the per-lot breakdown.
func (s *SummaryService) UserCharts(ctx context.Context, userID int) (*UserCharts, error) {
	bookings, err := s.summaries.UserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthCounts := make(map[time.Time]int)
	lotCounts := make(map[string]int)
	var lotOrder []string
	total := decimal.Zero

	for _, b := range bookings {
		month := time.Date(b.BookedAt.Year(), b.BookedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthCounts[month]++
		if b.LotName != "" {
			if _, seen := lotCounts[b.LotName]; !seen {
				lotOrder = append(lotOrder, b.LotName)
			}
			lotCounts[b.LotName]++
		}
		total = total.Add(b.Cost)
	}

	months := make([]time.Time, 0, len(monthCounts))
	for m := range monthCounts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	charts := &UserCharts{TotalSpent: total}
	for _, m := range months {
		charts.Months = append(charts.Months, m.Format("Jan 2006"))
		charts.BookingsPerMonth = append(charts.BookingsPerMonth, monthCounts[m])
	}
	for _, name := range lotOrder {
		charts.Lots = append(charts.Lots, name)
		charts.BookingsPerLot = append(charts.BookingsPerLot, lotCounts[name])
	}
	return charts, nil
}
