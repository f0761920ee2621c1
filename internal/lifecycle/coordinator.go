// Package lifecycle coordinates the booking, rental, room and property
// state machines. Every multi-document transition runs inside a single
// transaction so counters and statuses never drift apart.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	bookingerrors "rentora/internal/bookings/errors"
	bookingrepo "rentora/internal/bookings/repository"
	properrors "rentora/internal/properties/errors"
	proprepo "rentora/internal/properties/repository"
	rentalerrors "rentora/internal/rentals/errors"
	rentalrepo "rentora/internal/rentals/repository"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/model"
	"rentora/pkg/sanitizer"
	"time"
)

// Notifier delivers user notifications on a best-effort basis. A failed
// notification never rolls back or fails the transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, notification *model.Notification)
}

type Coordinator interface {
	Approve(ctx context.Context, actor httputil.Actor, bookingID string) (*model.Booking, *model.Rental, error)
	Reject(ctx context.Context, actor httputil.Actor, bookingID, reason string) error
	Terminate(ctx context.Context, actor httputil.Actor, rentalID, reason string, endDate time.Time, depositReturned bool) error
	Complete(ctx context.Context, actor httputil.Actor, rentalID string, depositReturned bool) error
}

type coordinator struct {
	bookings bookingrepo.BookingRepository
	rentals  rentalrepo.RentalRepository
	props    proprepo.PropertyRepository
	notifier Notifier
	cfg      *config.Config
}

func NewCoordinator(
	bookings bookingrepo.BookingRepository,
	rentals rentalrepo.RentalRepository,
	props proprepo.PropertyRepository,
	notifier Notifier,
	cfg *config.Config,
) Coordinator {
	return &coordinator{
		bookings: bookings,
		rentals:  rentals,
		props:    props,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Approve turns a pending booking into an active rental. In one transaction
// it confirms the booking, occupies the room, decrements the property's
// available counter, creates the rental with the room's current rent and
// deposit, and rejects every competing pending booking for the room.
func (c *coordinator) Approve(ctx context.Context, actor httputil.Actor, bookingID string) (*model.Booking, *model.Rental, error) {
	booking, err := c.findBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, nil, apperrors.Forbidden("Only the landlord can approve a booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingApproved) {
		return nil, nil, apperrors.InvalidTransition("booking", string(booking.Status), string(model.BookingApproved))
	}

	room, err := c.findRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if room.Status != model.RoomVacant {
		return nil, nil, apperrors.RoomUnavailable(booking.RoomID)
	}

	// read before the transaction so the losers can be notified after commit
	pending, err := c.bookings.ListPendingByRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to list competing bookings", err)
	}
	var competitors []*model.Booking
	for _, p := range pending {
		if p.ID != booking.ID {
			competitors = append(competitors, p)
		}
	}

	rental := &model.Rental{
		BookingID:   booking.ID,
		TenantID:    booking.TenantID,
		LandlordID:  booking.LandlordID,
		PropertyID:  booking.PropertyID,
		RoomID:      booking.RoomID,
		StartDate:   booking.MoveInDate,
		MonthlyRent: room.MonthlyRent,
		Deposit:     room.Deposit,
		Status:      model.RentalActive,
	}

	err = c.bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := c.bookings.UpdateStatus(txCtx, booking.ID, model.BookingPending, model.BookingApproved, ""); err != nil {
			if errors.Is(err, bookingerrors.ErrStatusConflict) {
				return apperrors.Conflict("Booking status changed concurrently, retry the request")
			}
			return apperrors.Internal("Failed to approve booking", err)
		}

		if err := c.props.UpdateRoomStatus(txCtx, room.ID, model.RoomVacant, model.RoomOccupied, booking.TenantID); err != nil {
			if errors.Is(err, properrors.ErrStatusConflict) {
				return apperrors.RoomUnavailable(room.ID)
			}
			return apperrors.Internal("Failed to occupy room", err)
		}

		if err := c.props.DecrementAvailable(txCtx, booking.PropertyID); err != nil {
			if errors.Is(err, properrors.ErrCounterConflict) {
				return apperrors.RoomUnavailable(room.ID)
			}
			return apperrors.Internal("Failed to update available rooms", err)
		}

		if err := c.rentals.Create(txCtx, rental); err != nil {
			return apperrors.Internal("Failed to create rental", err)
		}

		if _, err := c.bookings.RejectOtherPending(txCtx, booking.RoomID, booking.ID, model.RejectionReasonRoomTaken); err != nil {
			return apperrors.Internal("Failed to reject competing bookings", err)
		}

		return nil
	})
	if err != nil {
		c.cfg.Log.Error("Failed to approve booking", "booking_id", bookingID, "error", err)
		return nil, nil, err
	}
	booking.Status = model.BookingApproved

	c.cfg.Log.Info("Booking approved",
		"booking_id", booking.ID,
		"rental_id", rental.ID,
		"room_id", room.ID,
		"rejected_competitors", len(competitors),
	)

	c.notifier.Notify(ctx, &model.Notification{
		UserID:    booking.TenantID,
		Type:      model.NotifBookingApproved,
		Title:     "Booking Approved",
		Message:   fmt.Sprintf("Your booking for room %s has been approved", room.RoomNumber),
		RelatedID: rental.ID,
	})
	for _, competitor := range competitors {
		c.notifier.Notify(ctx, &model.Notification{
			UserID:    competitor.TenantID,
			Type:      model.NotifBookingRejected,
			Title:     "Booking Rejected",
			Message:   model.RejectionReasonRoomTaken,
			RelatedID: competitor.ID,
		})
	}

	return booking, rental, nil
}

func (c *coordinator) Reject(ctx context.Context, actor httputil.Actor, bookingID, reason string) error {
	booking, err := c.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.LandlordID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the landlord can reject a booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingRejected) {
		return apperrors.InvalidTransition("booking", string(booking.Status), string(model.BookingRejected))
	}

	reason = sanitizer.FreeText(reason, 500)
	if reason == "" {
		reason = model.DefaultRejectionReason
	}

	err = c.bookings.UpdateStatus(ctx, booking.ID, model.BookingPending, model.BookingRejected, reason)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrStatusConflict) {
			return apperrors.Conflict("Booking status changed concurrently, retry the request")
		}
		return apperrors.Internal("Failed to reject booking", err)
	}

	c.cfg.Log.Info("Booking rejected", "booking_id", booking.ID, "landlord_id", actor.ID)

	c.notifier.Notify(ctx, &model.Notification{
		UserID:    booking.TenantID,
		Type:      model.NotifBookingRejected,
		Title:     "Booking Rejected",
		Message:   reason,
		RelatedID: booking.ID,
	})

	return nil
}

// Terminate ends a rental early. The room is released, the property counter
// restored and the tenant notified with the reason. A zero endDate means the
// rental ends now.
func (c *coordinator) Terminate(ctx context.Context, actor httputil.Actor, rentalID, reason string, endDate time.Time, depositReturned bool) error {
	rental, err := c.findRental(ctx, rentalID)
	if err != nil {
		return err
	}
	if rental.LandlordID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the landlord can terminate a rental")
	}
	if !rental.Status.CanTransitionTo(model.RentalTerminated) {
		return apperrors.InvalidTransition("rental", string(rental.Status), string(model.RentalTerminated))
	}

	reason = sanitizer.FreeText(reason, 500)

	if err := c.closeRental(ctx, rental, model.RentalTerminated, reason, endDate, depositReturned); err != nil {
		c.cfg.Log.Error("Failed to terminate rental", "rental_id", rentalID, "error", err)
		return err
	}

	c.cfg.Log.Info("Rental terminated", "rental_id", rental.ID, "room_id", rental.RoomID)

	message := "Your rental has been terminated"
	if reason != "" {
		message = fmt.Sprintf("Your rental has been terminated: %s", reason)
	}
	c.notifier.Notify(ctx, &model.Notification{
		UserID:    rental.TenantID,
		Type:      model.NotifRentalTerminated,
		Title:     "Rental Terminated",
		Message:   message,
		RelatedID: rental.ID,
	})

	return nil
}

// Complete ends a rental that ran its course. Same room and counter handling
// as Terminate but without a tenant notification.
func (c *coordinator) Complete(ctx context.Context, actor httputil.Actor, rentalID string, depositReturned bool) error {
	rental, err := c.findRental(ctx, rentalID)
	if err != nil {
		return err
	}
	if rental.LandlordID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the landlord can complete a rental")
	}
	if !rental.Status.CanTransitionTo(model.RentalCompleted) {
		return apperrors.InvalidTransition("rental", string(rental.Status), string(model.RentalCompleted))
	}

	if err := c.closeRental(ctx, rental, model.RentalCompleted, "", time.Time{}, depositReturned); err != nil {
		c.cfg.Log.Error("Failed to complete rental", "rental_id", rentalID, "error", err)
		return err
	}

	c.cfg.Log.Info("Rental completed", "rental_id", rental.ID, "room_id", rental.RoomID)
	return nil
}

func (c *coordinator) closeRental(ctx context.Context, rental *model.Rental, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error {
	return c.rentals.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := c.rentals.CloseRental(txCtx, rental.ID, to, reason, endDate, depositReturned); err != nil {
			if errors.Is(err, rentalerrors.ErrStatusConflict) {
				return apperrors.Conflict("Rental status changed concurrently, retry the request")
			}
			return apperrors.Internal("Failed to close rental", err)
		}

		if err := c.props.UpdateRoomStatus(txCtx, rental.RoomID, model.RoomOccupied, model.RoomVacant, ""); err != nil {
			if errors.Is(err, properrors.ErrStatusConflict) {
				return apperrors.Conflict("Room status changed concurrently, retry the request")
			}
			return apperrors.Internal("Failed to release room", err)
		}

		if err := c.props.IncrementAvailable(txCtx, rental.PropertyID); err != nil {
			return apperrors.Internal("Failed to update available rooms", err)
		}

		return nil
	})
}

func (c *coordinator) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := c.bookings.FindByID(ctx, id)
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

func (c *coordinator) findRental(ctx context.Context, id string) (*model.Rental, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rental ID cannot be empty")
	}

	rental, err := c.rentals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Rental", id)
		}
		if errors.Is(err, rentalerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid rental ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve rental", err)
	}

	return rental, nil
}

func (c *coordinator) findRoom(ctx context.Context, id string) (*model.Room, error) {
	room, err := c.props.FindRoomByID(ctx, id)
	if err != nil {
		if errors.Is(err, properrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	return room, nil
}
