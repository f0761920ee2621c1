package service

import (
	"context"
	"errors"
	properrors "rentora/internal/properties/errors"
	"rentora/internal/properties/repository"
	"rentora/internal/properties/validator"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/model"
	"rentora/pkg/sanitizer"
	"sync"
)

type PropertyService interface {
	Create(ctx context.Context, actor httputil.Actor, property *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error)
	Delete(ctx context.Context, actor httputil.Actor, id string) error

	AddRoom(ctx context.Context, actor httputil.Actor, room *model.Room) error
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	ListRooms(ctx context.Context, propertyID string) ([]*model.Room, error)
	SetRoomMaintenance(ctx context.Context, actor httputil.Actor, roomID string, enable bool) error
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	validator *validator.PropertyValidator,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, actor httputil.Actor, property *model.Property) error {
	property.OwnerID = actor.ID
	property.Name = sanitizer.FreeText(property.Name, 100)
	property.Address = sanitizer.FreeText(property.Address, 200)
	property.TotalRooms = 0
	property.AvailableRooms = 0
	property.IsActive = true

	if err := s.validator.Validate(property); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.CreateProperty(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "error", err)
		return apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created",
		"id", property.ID,
		"owner_id", property.OwnerID,
	)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindPropertyByID(ctx, id)
	if err != nil {
		if errors.Is(err, properrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, properrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}

	return property, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID)
	}()
	go func() {
		defer wg.Done()
		properties, errFind = s.repo.ListByOwner(ctx, ownerID, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list properties", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count properties", errCount)
	}

	return properties, count, nil
}

func (s *propertyService) Delete(ctx context.Context, actor httputil.Actor, id string) error {
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if property.OwnerID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the property owner can delete it")
	}

	rooms, err := s.repo.ListRoomsByProperty(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to list rooms", err)
	}
	for _, room := range rooms {
		if room.Status == model.RoomOccupied {
			return apperrors.Conflict("Cannot delete a property with occupied rooms")
		}
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.DeleteRoomsByProperty(txCtx, id); err != nil {
			return apperrors.Internal("Failed to delete rooms", err)
		}
		if err := s.repo.DeleteProperty(txCtx, id); err != nil {
			if errors.Is(err, properrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Property", id)
			}
			return apperrors.Internal("Failed to delete property", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete property", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Property deleted", "id", id, "rooms", len(rooms))
	return nil
}

func (s *propertyService) AddRoom(ctx context.Context, actor httputil.Actor, room *model.Room) error {
	property, err := s.GetByID(ctx, room.PropertyID)
	if err != nil {
		return err
	}
	if property.OwnerID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the property owner can add rooms")
	}

	room.RoomNumber = sanitizer.FreeText(room.RoomNumber, 20)
	room.Status = model.RoomVacant
	room.CurrentTenant = ""

	if err := s.validator.ValidateRoom(room); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateRoom(txCtx, room); err != nil {
			if errors.Is(err, properrors.ErrDuplicateRoomNumber) {
				return apperrors.Conflict("Room number already exists in this property")
			}
			return apperrors.Internal("Failed to create room", err)
		}
		// new room is vacant, so both counters grow together
		if err := s.repo.AdjustRoomCounts(txCtx, room.PropertyID, 1, 1); err != nil {
			return apperrors.Internal("Failed to update room counts", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to add room", "property_id", room.PropertyID, "error", err)
		return err
	}

	s.cfg.Log.Info("Room added",
		"id", room.ID,
		"property_id", room.PropertyID,
		"room_number", room.RoomNumber,
	)
	return nil
}

func (s *propertyService) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindRoomByID(ctx, id)
	if err != nil {
		if errors.Is(err, properrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, properrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *propertyService) ListRooms(ctx context.Context, propertyID string) ([]*model.Room, error) {
	if _, err := s.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	rooms, err := s.repo.ListRoomsByProperty(ctx, propertyID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list rooms", err)
	}

	return rooms, nil
}

// SetRoomMaintenance flips a room between vacant and maintenance. An occupied
// room cannot be taken into maintenance; the rental must end first.
func (s *propertyService) SetRoomMaintenance(ctx context.Context, actor httputil.Actor, roomID string, enable bool) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	property, err := s.GetByID(ctx, room.PropertyID)
	if err != nil {
		return err
	}
	if property.OwnerID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the property owner can change room status")
	}

	target := model.RoomMaintenance
	if !enable {
		target = model.RoomVacant
	}
	if room.Status == target {
		return nil
	}
	if !room.Status.CanTransitionTo(target) {
		return apperrors.InvalidTransition("room", string(room.Status), string(target))
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateRoomStatus(txCtx, roomID, room.Status, target, ""); err != nil {
			if errors.Is(err, properrors.ErrStatusConflict) {
				return apperrors.Conflict("Room status changed concurrently, retry the request")
			}
			return apperrors.Internal("Failed to update room status", err)
		}
		// a room leaving maintenance re-enters the bookable pool
		if target == model.RoomVacant {
			if err := s.repo.IncrementAvailable(txCtx, room.PropertyID); err != nil {
				return apperrors.Internal("Failed to update available rooms", err)
			}
		} else {
			if err := s.repo.DecrementAvailable(txCtx, room.PropertyID); err != nil {
				return apperrors.Internal("Failed to update available rooms", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to change room status",
			"room_id", roomID,
			"target", target,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Room status changed", "room_id", roomID, "status", target)
	return nil
}
