package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"parkhub/internal/apperr"
	"parkhub/internal/cache"
	"parkhub/internal/db"
	"parkhub/internal/repository"
)

// LotService is the lot registry: it owns lot records and mediates every
// capacity change through the spot pool, so the declared spot count and the
// actual spot rows never drift apart.
type LotService struct {
	lots  *repository.LotRepository
	cache *cache.Cache
}

func NewLotService(lots *repository.LotRepository, c *cache.Cache) *LotService {
	return &LotService{lots: lots, cache: c}
}

// UpdateLotParams carries a partial lot edit; nil fields are left unchanged.
type UpdateLotParams struct {
	Name          *string
	Address       *string
	PinCode       *string
	Price         *decimal.Decimal
	NumberOfSpots *int
}

func (s *LotService) Create(ctx context.Context, lot *db.ParkingLot) error {
	if lot.Name == "" || lot.Address == "" || lot.PinCode == "" {
		return apperr.New(apperr.Validation, "missing fields")
	}
	if lot.Price.IsNegative() {
		return apperr.New(apperr.Validation, "price cannot be negative")
	}
	if lot.NumberOfSpots < 0 {
		return apperr.New(apperr.Validation, "number_of_spots cannot be negative")
	}
	if err := s.lots.Create(ctx, lot); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.UserLotsKey)
	log.Info().Int("lot_id", lot.ID).Int("spots", lot.NumberOfSpots).Msg("parking lot created")
	return nil
}

// Update applies field edits and, when the declared spot count changes,
// resizes the spot pool. Field edits and the resize share one transaction: a
// shrink that cannot find enough available spots fails the whole call and
// leaves the lot untouched, price included.
func (s *LotService) Update(ctx context.Context, lotID int, params UpdateLotParams) error {
	lot, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		return err
	}

	if params.Name != nil {
		lot.Name = *params.Name
	}
	if params.Address != nil {
		lot.Address = *params.Address
	}
	if params.PinCode != nil {
		lot.PinCode = *params.PinCode
	}
	if params.Price != nil {
		if params.Price.IsNegative() {
			return apperr.New(apperr.Validation, "price cannot be negative")
		}
		lot.Price = *params.Price
	}
	if params.NumberOfSpots != nil && *params.NumberOfSpots < 0 {
		return apperr.New(apperr.Validation, "number_of_spots cannot be negative")
	}

	if err := s.lots.Update(ctx, lot, params.NumberOfSpots); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.UserLotsKey)
	return nil
}

func (s *LotService) Delete(ctx context.Context, lotID int) error {
	if err := s.lots.Delete(ctx, lotID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.UserLotsKey)
	log.Info().Int("lot_id", lotID).Msg("parking lot deleted")
	return nil
}

func (s *LotService) DeleteSpot(ctx context.Context, spotID int) error {
	if err := s.lots.DeleteSpot(ctx, spotID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.UserLotsKey)
	return nil
}

func (s *LotService) Get(ctx context.Context, lotID int) (*db.ParkingLot, error) {
	return s.lots.GetByID(ctx, lotID)
}

// List is the admin listing with live spot counts, always fresh.
func (s *LotService) List(ctx context.Context) ([]repository.LotWithCounts, error) {
	return s.lots.List(ctx)
}

// ListForUser serves the user-facing listing through the response cache.
// Availability may lag bookings by up to the cache TTL; structural changes
// (create, resize, delete) invalidate it immediately.
func (s *LotService) ListForUser(ctx context.Context) ([]repository.LotWithCounts, error) {
	var cached []repository.LotWithCounts
	if s.cache.GetJSON(ctx, cache.UserLotsKey, &cached) {
		return cached, nil
	}
	lots, err := s.lots.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.UserLotsKey, lots); err != nil {
		log.Warn().Err(err).Msg("caching lot listing failed")
	}
	return lots, nil
}

func (s *LotService) Search(ctx context.Context, query string) ([]repository.LotWithCounts, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.New(apperr.Validation, "query parameter is required")
	}
	return s.lots.Search(ctx, query)
}
