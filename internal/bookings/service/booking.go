package service

import (
	"context"
	"errors"
	"fmt"
	bookingerrors "rentora/internal/bookings/errors"
	"rentora/internal/bookings/repository"
	"rentora/internal/bookings/validator"
	properrors "rentora/internal/properties/errors"
	proprepo "rentora/internal/properties/repository"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/model"
	"rentora/pkg/sanitizer"
	"sync"
	"time"
)

// Notifier delivers user notifications on a best-effort basis. Failures are
// logged by the implementation and never returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, notification *model.Notification)
}

type BookingService interface {
	Create(ctx context.Context, actor httputil.Actor, booking *model.Booking) error
	GetByID(ctx context.Context, actor httputil.Actor, id string) (*model.Booking, error)
	ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByLandlord(ctx context.Context, landlordID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, actor httputil.Actor, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	propRepo  proprepo.PropertyRepository
	notifier  Notifier
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	propRepo proprepo.PropertyRepository,
	notifier Notifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		propRepo:  propRepo,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, actor httputil.Actor, booking *model.Booking) error {
	booking.TenantID = actor.ID
	booking.Status = model.BookingPending
	booking.Message = sanitizer.FreeText(booking.Message, 500)
	booking.RejectionReason = ""

	room, err := s.propRepo.FindRoomByID(ctx, booking.RoomID)
	if err != nil {
		if errors.Is(err, properrors.ErrRoomNotFound) {
			return apperrors.NotFoundWithID("Room", booking.RoomID)
		}
		if errors.Is(err, properrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return apperrors.Internal("Failed to retrieve room", err)
	}
	if room.Status != model.RoomVacant {
		return apperrors.RoomUnavailable(booking.RoomID)
	}

	property, err := s.propRepo.FindPropertyByID(ctx, room.PropertyID)
	if err != nil {
		return apperrors.Internal("Failed to retrieve property", err)
	}
	if property.OwnerID == actor.ID {
		return apperrors.Forbidden("Landlords cannot book their own rooms")
	}

	booking.PropertyID = room.PropertyID
	booking.LandlordID = property.OwnerID

	if err := s.validator.Validate(booking); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	// Advisory lock narrows the duplicate check window; the partial unique
	// index on (tenant_id, room_id) for pending bookings is the hard stop.
	lockID, err := s.acquireLock(ctx, booking.TenantID, booking.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.ExistsPending(txCtx, booking.TenantID, booking.RoomID)
		if err != nil {
			return apperrors.Internal("Failed to check for pending booking", err)
		}
		if exists {
			return apperrors.DuplicatePendingBooking()
		}

		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"tenant_id", booking.TenantID,
		"room_id", booking.RoomID,
	)

	s.notifier.Notify(ctx, &model.Notification{
		UserID:    booking.LandlordID,
		Type:      model.NotifBookingRequested,
		Title:     "New Booking Request",
		Message:   fmt.Sprintf("You have a new booking request for room %s", room.RoomNumber),
		RelatedID: booking.ID,
	})

	return nil
}

func (s *bookingService) GetByID(ctx context.Context, actor httputil.Actor, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.TenantID != actor.ID && booking.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("You are not a party to this booking")
	}

	return booking, nil
}

func (s *bookingService) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByTenant(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.ListByTenant(ctx, tenantID, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list bookings", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}

	return bookings, count, nil
}

func (s *bookingService) ListByLandlord(ctx context.Context, landlordID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByLandlord(ctx, landlordID, status)
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.ListByLandlord(ctx, landlordID, status, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list bookings", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}

	return bookings, count, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor httputil.Actor, id string) error {
	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if booking.TenantID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the requesting tenant can cancel a booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingCancelled) {
		return apperrors.InvalidTransition("booking", string(booking.Status), string(model.BookingCancelled))
	}

	err = s.repo.UpdateStatus(ctx, id, model.BookingPending, model.BookingCancelled, "")
	if err != nil {
		if errors.Is(err, bookingerrors.ErrStatusConflict) {
			return apperrors.Conflict("Booking status changed concurrently, retry the request")
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "tenant_id", booking.TenantID)
	return nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) acquireLock(ctx context.Context, tenantID, roomID string) (string, error) {
	lockID := fmt.Sprintf("booking:%s:%s", tenantID, roomID)

	_, err := s.lockRepo.Create(ctx, &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	})
	if err != nil {
		if errors.Is(err, bookingerrors.ErrDuplicateLock) {
			return "", apperrors.Conflict("Another booking request for this room is in flight, retry shortly")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}
