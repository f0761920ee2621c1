package lifecycle

import (
	"context"
	bookingerrors "rentora/internal/bookings/errors"
	properrors "rentora/internal/properties/errors"
	rentalerrors "rentora/internal/rentals/errors"
	"rentora/pkg/config"
	mongotx "rentora/pkg/db/mongo"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	landlordID = "65f1a2b3c4d5e6f7a8b9c0d1"
	tenantID   = "65f1a2b3c4d5e6f7a8b9c0d2"
	otherID    = "65f1a2b3c4d5e6f7a8b9c0d3"
	propertyID = "65f1a2b3c4d5e6f7a8b9c0e1"
	roomID     = "65f1a2b3c4d5e6f7a8b9c0e2"
	bookingID  = "65f1a2b3c4d5e6f7a8b9c0e3"
	rentalID   = "65f1a2b3c4d5e6f7a8b9c0e4"
)

type mockBookingRepo struct {
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	updateStatusFunc       func(ctx context.Context, id string, from, to model.BookingStatus, reason string) error
	rejectOtherPendingFunc func(ctx context.Context, roomID, exceptID, reason string) (int64, error)
	listPendingByRoomFunc  func(ctx context.Context, roomID string) ([]*model.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error { return nil }

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, reason string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to, reason)
	}
	return nil
}

func (m *mockBookingRepo) RejectOtherPending(ctx context.Context, roomID, exceptID, reason string) (int64, error) {
	if m.rejectOtherPendingFunc != nil {
		return m.rejectOtherPendingFunc(ctx, roomID, exceptID, reason)
	}
	return 0, nil
}

func (m *mockBookingRepo) ExistsPending(ctx context.Context, tenantID, roomID string) (bool, error) {
	return false, nil
}

func (m *mockBookingRepo) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepo) ListByLandlord(ctx context.Context, landlordID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) CountByLandlord(ctx context.Context, landlordID string, status model.BookingStatus) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepo) ListPendingByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	if m.listPendingByRoomFunc != nil {
		return m.listPendingByRoomFunc(ctx, roomID)
	}
	return nil, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockRentalRepo struct {
	createFunc      func(ctx context.Context, rental *model.Rental) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Rental, error)
	closeRentalFunc func(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error
}

func (m *mockRentalRepo) Create(ctx context.Context, rental *model.Rental) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rental)
	}
	rental.ID = rentalID
	return nil
}

func (m *mockRentalRepo) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, rentalerrors.ErrNotFound
}

func (m *mockRentalRepo) FindActiveByRoom(ctx context.Context, roomID string) (*model.Rental, error) {
	return nil, rentalerrors.ErrNotFound
}

func (m *mockRentalRepo) CloseRental(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error {
	if m.closeRentalFunc != nil {
		return m.closeRentalFunc(ctx, id, to, reason, endDate, depositReturned)
	}
	return nil
}

func (m *mockRentalRepo) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, error) {
	return nil, nil
}

func (m *mockRentalRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockRentalRepo) ListByLandlord(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, error) {
	return nil, nil
}

func (m *mockRentalRepo) CountByLandlord(ctx context.Context, landlordID string, status model.RentalStatus) (int64, error) {
	return 0, nil
}

func (m *mockRentalRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockPropertyRepo struct {
	findRoomFunc         func(ctx context.Context, id string) (*model.Room, error)
	updateRoomStatusFunc func(ctx context.Context, roomID string, from, to model.RoomStatus, tenantID string) error
	incrementFunc        func(ctx context.Context, propertyID string) error
	decrementFunc        func(ctx context.Context, propertyID string) error
}

func (m *mockPropertyRepo) CreateProperty(ctx context.Context, property *model.Property) error {
	return nil
}

func (m *mockPropertyRepo) FindPropertyByID(ctx context.Context, id string) (*model.Property, error) {
	return &model.Property{ID: id, OwnerID: landlordID}, nil
}

func (m *mockPropertyRepo) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, error) {
	return nil, nil
}

func (m *mockPropertyRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return 0, nil
}

func (m *mockPropertyRepo) DeleteProperty(ctx context.Context, id string) error { return nil }

func (m *mockPropertyRepo) CreateRoom(ctx context.Context, room *model.Room) error { return nil }

func (m *mockPropertyRepo) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findRoomFunc != nil {
		return m.findRoomFunc(ctx, id)
	}
	return nil, properrors.ErrRoomNotFound
}

func (m *mockPropertyRepo) ListRoomsByProperty(ctx context.Context, propertyID string) ([]*model.Room, error) {
	return nil, nil
}

func (m *mockPropertyRepo) DeleteRoomsByProperty(ctx context.Context, propertyID string) (int64, error) {
	return 0, nil
}

func (m *mockPropertyRepo) UpdateRoomStatus(ctx context.Context, roomID string, from, to model.RoomStatus, tenantID string) error {
	if m.updateRoomStatusFunc != nil {
		return m.updateRoomStatusFunc(ctx, roomID, from, to, tenantID)
	}
	return nil
}

func (m *mockPropertyRepo) IncrementAvailable(ctx context.Context, propertyID string) error {
	if m.incrementFunc != nil {
		return m.incrementFunc(ctx, propertyID)
	}
	return nil
}

func (m *mockPropertyRepo) DecrementAvailable(ctx context.Context, propertyID string) error {
	if m.decrementFunc != nil {
		return m.decrementFunc(ctx, propertyID)
	}
	return nil
}

func (m *mockPropertyRepo) AdjustRoomCounts(ctx context.Context, propertyID string, totalDelta, availableDelta int) error {
	return nil
}

func (m *mockPropertyRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockNotifier struct {
	sent []*model.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, notification *model.Notification) {
	m.sent = append(m.sent, notification)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func landlord() httputil.Actor { return httputil.Actor{ID: landlordID, Role: "landlord"} }

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:         bookingID,
		TenantID:   tenantID,
		LandlordID: landlordID,
		PropertyID: propertyID,
		RoomID:     roomID,
		MoveInDate: time.Now().Add(7 * 24 * time.Hour),
		Status:     model.BookingPending,
	}
}

func vacantRoom() *model.Room {
	return &model.Room{
		ID:          roomID,
		PropertyID:  propertyID,
		RoomNumber:  "3A",
		Status:      model.RoomVacant,
		MonthlyRent: 1500,
		Deposit:     3000,
	}
}

func activeRental() *model.Rental {
	return &model.Rental{
		ID:          rentalID,
		BookingID:   bookingID,
		TenantID:    tenantID,
		LandlordID:  landlordID,
		PropertyID:  propertyID,
		RoomID:      roomID,
		StartDate:   time.Now().Add(-30 * 24 * time.Hour),
		MonthlyRent: 1500,
		Deposit:     3000,
		Status:      model.RentalActive,
	}
}

func TestApprove_HappyPath(t *testing.T) {
	booking := pendingBooking()
	var approvedFrom, approvedTo model.BookingStatus
	var rejectedReason string
	var createdRental *model.Rental
	var occupiedBy string
	decremented := false

	bookings := &mockBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, reason string) error {
			approvedFrom, approvedTo = from, to
			return nil
		},
		rejectOtherPendingFunc: func(ctx context.Context, roomID, exceptID, reason string) (int64, error) {
			rejectedReason = reason
			return 2, nil
		},
		listPendingByRoomFunc: func(ctx context.Context, roomID string) ([]*model.Booking, error) {
			return []*model.Booking{
				booking,
				{ID: "65f1a2b3c4d5e6f7a8b9c0f1", TenantID: otherID, RoomID: roomID, Status: model.BookingPending},
			}, nil
		},
	}
	rentals := &mockRentalRepo{
		createFunc: func(ctx context.Context, rental *model.Rental) error {
			rental.ID = rentalID
			createdRental = rental
			return nil
		},
	}
	props := &mockPropertyRepo{
		findRoomFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return vacantRoom(), nil
		},
		updateRoomStatusFunc: func(ctx context.Context, roomID string, from, to model.RoomStatus, tenantID string) error {
			occupiedBy = tenantID
			return nil
		},
		decrementFunc: func(ctx context.Context, propertyID string) error {
			decremented = true
			return nil
		},
	}
	notifier := &mockNotifier{}

	coord := NewCoordinator(bookings, rentals, props, notifier, testConfig())
	approved, rental, err := coord.Approve(context.Background(), landlord(), bookingID)
	require.NoError(t, err)
	require.NotNil(t, rental)
	require.NotNil(t, approved)
	assert.Equal(t, model.BookingApproved, approved.Status)

	assert.Equal(t, model.BookingPending, approvedFrom)
	assert.Equal(t, model.BookingApproved, approvedTo)
	assert.Equal(t, tenantID, occupiedBy)
	assert.True(t, decremented)
	assert.Equal(t, model.RejectionReasonRoomTaken, rejectedReason)

	require.NotNil(t, createdRental)
	assert.Equal(t, 1500.0, createdRental.MonthlyRent, "rent snapshotted from the room")
	assert.Equal(t, 3000.0, createdRental.Deposit)
	assert.Equal(t, booking.MoveInDate, createdRental.StartDate)
	assert.Equal(t, model.RentalActive, createdRental.Status)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, model.NotifBookingApproved, notifier.sent[0].Type)
	assert.Equal(t, tenantID, notifier.sent[0].UserID)
	assert.Equal(t, model.NotifBookingRejected, notifier.sent[1].Type)
	assert.Equal(t, otherID, notifier.sent[1].UserID)
}

func TestApprove_NotLandlord(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	coord := NewCoordinator(bookings, &mockRentalRepo{}, &mockPropertyRepo{}, &mockNotifier{}, testConfig())

	_, _, err := coord.Approve(context.Background(), httputil.Actor{ID: otherID}, bookingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestApprove_AlreadyDecided(t *testing.T) {
	booking := pendingBooking()
	booking.Status = model.BookingRejected
	bookings := &mockBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	coord := NewCoordinator(bookings, &mockRentalRepo{}, &mockPropertyRepo{}, &mockNotifier{}, testConfig())

	_, _, err := coord.Approve(context.Background(), landlord(), bookingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestApprove_RoomNotVacant(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	props := &mockPropertyRepo{
		findRoomFunc: func(ctx context.Context, id string) (*model.Room, error) {
			room := vacantRoom()
			room.Status = model.RoomOccupied
			room.CurrentTenant = otherID
			return room, nil
		},
	}
	coord := NewCoordinator(bookings, &mockRentalRepo{}, props, &mockNotifier{}, testConfig())

	_, _, err := coord.Approve(context.Background(), landlord(), bookingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRoomUnavailable))
}

func TestApprove_ConcurrentStatusChange_NoNotifications(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, reason string) error {
			return bookingerrors.ErrStatusConflict
		},
	}
	props := &mockPropertyRepo{
		findRoomFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return vacantRoom(), nil
		},
	}
	notifier := &mockNotifier{}
	coord := NewCoordinator(bookings, &mockRentalRepo{}, props, notifier, testConfig())

	_, _, err := coord.Approve(context.Background(), landlord(), bookingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Empty(t, notifier.sent, "no notifications when the transaction failed")
}

func TestReject_DefaultReason(t *testing.T) {
	var gotReason string
	bookings := &mockBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, reason string) error {
			gotReason = reason
			return nil
		},
	}
	notifier := &mockNotifier{}
	coord := NewCoordinator(bookings, &mockRentalRepo{}, &mockPropertyRepo{}, notifier, testConfig())

	err := coord.Reject(context.Background(), landlord(), bookingID, "   ")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRejectionReason, gotReason)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifBookingRejected, notifier.sent[0].Type)
	assert.Equal(t, tenantID, notifier.sent[0].UserID)
}

func TestTerminate_ReleasesRoomAndNotifies(t *testing.T) {
	var closedTo model.RentalStatus
	var gotEnd time.Time
	var releasedTenant string
	var roomFrom, roomTo model.RoomStatus
	incremented := false

	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(), nil
		},
		closeRentalFunc: func(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error {
			closedTo = to
			gotEnd = endDate
			return nil
		},
	}
	props := &mockPropertyRepo{
		updateRoomStatusFunc: func(ctx context.Context, roomID string, from, to model.RoomStatus, tenantID string) error {
			roomFrom, roomTo, releasedTenant = from, to, tenantID
			return nil
		},
		incrementFunc: func(ctx context.Context, propertyID string) error {
			incremented = true
			return nil
		},
	}
	notifier := &mockNotifier{}
	coord := NewCoordinator(&mockBookingRepo{}, rentals, props, notifier, testConfig())

	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	err := coord.Terminate(context.Background(), landlord(), rentalID, "Lease violation", end, false)
	require.NoError(t, err)

	assert.Equal(t, model.RentalTerminated, closedTo)
	assert.Equal(t, end, gotEnd)
	assert.Equal(t, model.RoomOccupied, roomFrom)
	assert.Equal(t, model.RoomVacant, roomTo)
	assert.Empty(t, releasedTenant, "current tenant cleared on release")
	assert.True(t, incremented)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifRentalTerminated, notifier.sent[0].Type)
	assert.Contains(t, notifier.sent[0].Message, "Lease violation")
}

func TestComplete_NoNotification(t *testing.T) {
	var closedTo model.RentalStatus
	var gotDeposit bool
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(), nil
		},
		closeRentalFunc: func(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error {
			closedTo = to
			gotDeposit = depositReturned
			return nil
		},
	}
	notifier := &mockNotifier{}
	coord := NewCoordinator(&mockBookingRepo{}, rentals, &mockPropertyRepo{}, notifier, testConfig())

	err := coord.Complete(context.Background(), landlord(), rentalID, true)
	require.NoError(t, err)

	assert.Equal(t, model.RentalCompleted, closedTo)
	assert.True(t, gotDeposit)
	assert.Empty(t, notifier.sent, "completion is silent")
}

func TestTerminate_AlreadyClosed(t *testing.T) {
	rental := activeRental()
	rental.Status = model.RentalCompleted
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return rental, nil
		},
	}
	coord := NewCoordinator(&mockBookingRepo{}, rentals, &mockPropertyRepo{}, &mockNotifier{}, testConfig())

	err := coord.Terminate(context.Background(), landlord(), rentalID, "", time.Time{}, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestTerminate_NotLandlord(t *testing.T) {
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(), nil
		},
	}
	coord := NewCoordinator(&mockBookingRepo{}, rentals, &mockPropertyRepo{}, &mockNotifier{}, testConfig())

	err := coord.Terminate(context.Background(), httputil.Actor{ID: tenantID}, rentalID, "", time.Time{}, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestTerminate_AdminAllowed(t *testing.T) {
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(), nil
		},
	}
	coord := NewCoordinator(&mockBookingRepo{}, rentals, &mockPropertyRepo{}, &mockNotifier{}, testConfig())

	err := coord.Terminate(context.Background(), httputil.Actor{ID: otherID, Role: httputil.RoleAdmin}, rentalID, "", time.Time{}, false)
	require.NoError(t, err)
}
