package service

import (
	"context"
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
	rentalID   = "65f1a2b3c4d5e6f7a8b9c0e4"
)

type mockRentalRepo struct {
	findByIDFunc         func(ctx context.Context, id string) (*model.Rental, error)
	findActiveByRoomFunc func(ctx context.Context, roomID string) (*model.Rental, error)
}

func (m *mockRentalRepo) Create(ctx context.Context, rental *model.Rental) error { return nil }

func (m *mockRentalRepo) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, rentalerrors.ErrNotFound
}

func (m *mockRentalRepo) FindActiveByRoom(ctx context.Context, roomID string) (*model.Rental, error) {
	if m.findActiveByRoomFunc != nil {
		return m.findActiveByRoomFunc(ctx, roomID)
	}
	return nil, rentalerrors.ErrNotFound
}

func (m *mockRentalRepo) CloseRental(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error {
	return nil
}

func (m *mockRentalRepo) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, error) {
	return []*model.Rental{{ID: rentalID, TenantID: tenantID}}, nil
}

func (m *mockRentalRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 1, nil
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

func TestGetRental_PartyAccessOnly(t *testing.T) {
	repo := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return &model.Rental{
				ID:         id,
				TenantID:   tenantID,
				LandlordID: landlordID,
				Status:     model.RentalActive,
			}, nil
		},
	}
	svc := NewRentalService(repo, testConfig())

	_, err := svc.GetByID(context.Background(), httputil.Actor{ID: tenantID}, rentalID)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), httputil.Actor{ID: landlordID}, rentalID)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), httputil.Actor{ID: "65f1a2b3c4d5e6f7a8b9c0ff"}, rentalID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestGetRental_NotFound(t *testing.T) {
	svc := NewRentalService(&mockRentalRepo{}, testConfig())

	_, err := svc.GetByID(context.Background(), httputil.Actor{ID: tenantID}, rentalID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestGetActiveByRoom(t *testing.T) {
	roomID := "65f1a2b3c4d5e6f7a8b9c0e1"
	repo := &mockRentalRepo{
		findActiveByRoomFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return &model.Rental{
				ID:         rentalID,
				RoomID:     id,
				TenantID:   tenantID,
				LandlordID: landlordID,
				Status:     model.RentalActive,
			}, nil
		},
	}
	svc := NewRentalService(repo, testConfig())

	rental, err := svc.GetActiveByRoom(context.Background(), httputil.Actor{ID: landlordID}, roomID)
	require.NoError(t, err)
	assert.Equal(t, roomID, rental.RoomID)

	_, err = svc.GetActiveByRoom(context.Background(), httputil.Actor{ID: "65f1a2b3c4d5e6f7a8b9c0ff"}, roomID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestGetActiveByRoom_VacantRoom(t *testing.T) {
	svc := NewRentalService(&mockRentalRepo{}, testConfig())

	_, err := svc.GetActiveByRoom(context.Background(), httputil.Actor{ID: landlordID}, "65f1a2b3c4d5e6f7a8b9c0e1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListRentalsByTenant(t *testing.T) {
	svc := NewRentalService(&mockRentalRepo{}, testConfig())

	rentals, total, err := svc.ListByTenant(context.Background(), tenantID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rentals, 1)
}
