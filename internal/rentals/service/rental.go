package service

import (
	"context"
	"errors"
	rentalerrors "rentora/internal/rentals/errors"
	"rentora/internal/rentals/repository"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/model"
	"sync"
)

// RentalService covers reads over rentals. State changes go through the
// lifecycle coordinator.
type RentalService interface {
	GetByID(ctx context.Context, actor httputil.Actor, id string) (*model.Rental, error)
	GetActiveByRoom(ctx context.Context, actor httputil.Actor, roomID string) (*model.Rental, error)
	ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, int64, error)
	ListByLandlord(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, int64, error)
}

type rentalService struct {
	repo repository.RentalRepository
	cfg  *config.Config
}

func NewRentalService(repo repository.RentalRepository, cfg *config.Config) RentalService {
	return &rentalService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *rentalService) GetByID(ctx context.Context, actor httputil.Actor, id string) (*model.Rental, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rental ID cannot be empty")
	}

	rental, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Rental", id)
		}
		if errors.Is(err, rentalerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid rental ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve rental", err)
	}

	if rental.TenantID != actor.ID && rental.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("You are not a party to this rental")
	}

	return rental, nil
}

// GetActiveByRoom resolves the rental currently occupying a room.
func (s *rentalService) GetActiveByRoom(ctx context.Context, actor httputil.Actor, roomID string) (*model.Rental, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	rental, err := s.repo.FindActiveByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Active rental for this room")
		}
		return nil, apperrors.Internal("Failed to retrieve rental", err)
	}

	if rental.TenantID != actor.ID && rental.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("You are not a party to this rental")
	}

	return rental, nil
}

func (s *rentalService) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rentals []*model.Rental
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByTenant(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		rentals, errFind = s.repo.ListByTenant(ctx, tenantID, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list rentals", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count rentals", errCount)
	}

	return rentals, count, nil
}

func (s *rentalService) ListByLandlord(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rentals []*model.Rental
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByLandlord(ctx, landlordID, status)
	}()
	go func() {
		defer wg.Done()
		rentals, errFind = s.repo.ListByLandlord(ctx, landlordID, status, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list rentals", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count rentals", errCount)
	}

	return rentals, count, nil
}
