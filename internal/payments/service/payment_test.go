package service

import (
	"context"
	paymenterrors "rentora/internal/payments/errors"
	"rentora/internal/payments/validator"
	rentalerrors "rentora/internal/rentals/errors"
	"rentora/pkg/config"
	mongotx "rentora/pkg/db/mongo"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	landlordID = "65f1a2b3c4d5e6f7a8b9c0d1"
	tenantID   = "65f1a2b3c4d5e6f7a8b9c0d2"
	rentalID   = "65f1a2b3c4d5e6f7a8b9c0e4"
	paymentID  = "65f1a2b3c4d5e6f7a8b9c0e5"
)

type mockPaymentRepo struct {
	createFunc   func(ctx context.Context, payment *model.Payment) error
	findByIDFunc func(ctx context.Context, id string) (*model.Payment, error)
	confirmFunc  func(ctx context.Context, id, method, transactionID string) error
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, payment)
	}
	payment.ID = paymentID
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, paymenterrors.ErrNotFound
}

func (m *mockPaymentRepo) Confirm(ctx context.Context, id, method, transactionID string) error {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id, method, transactionID)
	}
	return nil
}

func (m *mockPaymentRepo) ListByRental(ctx context.Context, rentalID string, limit int, offset int64) ([]*model.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepo) CountByRental(ctx context.Context, rentalID string) (int64, error) {
	return 0, nil
}

func (m *mockPaymentRepo) ListByTenant(ctx context.Context, tenantID string, status model.PaymentStatus, limit int, offset int64) ([]*model.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepo) CountByTenant(ctx context.Context, tenantID string, status model.PaymentStatus) (int64, error) {
	return 0, nil
}

func (m *mockPaymentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockRentalRepo struct {
	findByIDFunc       func(ctx context.Context, id string) (*model.Rental, error)
	listByLandlordFunc func(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, error)
}

func (m *mockRentalRepo) Create(ctx context.Context, rental *model.Rental) error { return nil }

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
	return nil
}

func (m *mockRentalRepo) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, error) {
	return nil, nil
}

func (m *mockRentalRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockRentalRepo) ListByLandlord(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, error) {
	if m.listByLandlordFunc != nil {
		return m.listByLandlordFunc(ctx, landlordID, status, limit, offset)
	}
	return nil, nil
}

func (m *mockRentalRepo) CountByLandlord(ctx context.Context, landlordID string, status model.RentalStatus) (int64, error) {
	return 0, nil
}

func (m *mockRentalRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
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
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		PaymentDueDay: 5,
	}
}

func newService(repo *mockPaymentRepo, rentals *mockRentalRepo, notifier *mockNotifier) PaymentService {
	cfg := testConfig()
	return NewPaymentService(repo, rentals, notifier, validator.NewPaymentValidator(cfg.Log), cfg)
}

func landlord() httputil.Actor { return httputil.Actor{ID: landlordID, Role: "landlord"} }
func tenant() httputil.Actor   { return httputil.Actor{ID: tenantID, Role: "tenant"} }

func activeRental(id string) *model.Rental {
	return &model.Rental{
		ID:          id,
		TenantID:    tenantID,
		LandlordID:  landlordID,
		MonthlyRent: 1500,
		Status:      model.RentalActive,
	}
}

func pendingPayment() *model.Payment {
	return &model.Payment{
		ID:          paymentID,
		RentalID:    rentalID,
		TenantID:    tenantID,
		LandlordID:  landlordID,
		Amount:      1500,
		PaymentType: model.PaymentTypeRent,
		Status:      model.PaymentPending,
		Month:       3,
		Year:        2026,
		DueDate:     time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreatePayment_LandlordOnly(t *testing.T) {
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(id), nil
		},
	}
	svc := newService(&mockPaymentRepo{}, rentals, &mockNotifier{})

	err := svc.Create(context.Background(), tenant(), &model.Payment{
		RentalID:    rentalID,
		Amount:      500,
		PaymentType: model.PaymentTypeMaintenance,
		Month:       3,
		Year:        2026,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestCreatePayment_FillsPartiesAndDueDate(t *testing.T) {
	var created *model.Payment
	repo := &mockPaymentRepo{
		createFunc: func(ctx context.Context, payment *model.Payment) error {
			payment.ID = paymentID
			created = payment
			return nil
		},
	}
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(id), nil
		},
	}
	svc := newService(repo, rentals, &mockNotifier{})

	err := svc.Create(context.Background(), landlord(), &model.Payment{
		RentalID:    rentalID,
		Amount:      500,
		PaymentType: model.PaymentTypeMaintenance,
		Month:       3,
		Year:        2026,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, tenantID, created.TenantID)
	assert.Equal(t, landlordID, created.LandlordID)
	assert.Equal(t, model.PaymentPending, created.Status)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), created.DueDate)
}

func TestCreatePayment_DuplicatePeriod(t *testing.T) {
	repo := &mockPaymentRepo{
		createFunc: func(ctx context.Context, payment *model.Payment) error {
			return paymenterrors.ErrDuplicatePeriod
		},
	}
	rentals := &mockRentalRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Rental, error) {
			return activeRental(id), nil
		},
	}
	svc := newService(repo, rentals, &mockNotifier{})

	err := svc.Create(context.Background(), landlord(), &model.Payment{
		RentalID:    rentalID,
		Amount:      1500,
		PaymentType: model.PaymentTypeRent,
		Month:       3,
		Year:        2026,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestConfirm_HappyPath(t *testing.T) {
	var gotTransactionID string
	confirmed := false
	repo := &mockPaymentRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			p := pendingPayment()
			if confirmed {
				p.Status = model.PaymentCompleted
				p.TransactionID = gotTransactionID
			}
			return p, nil
		},
		confirmFunc: func(ctx context.Context, id, method, transactionID string) error {
			confirmed = true
			gotTransactionID = transactionID
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := newService(repo, &mockRentalRepo{}, notifier)

	payment, err := svc.Confirm(context.Background(), landlord(), paymentID, "bank_transfer", "")
	require.NoError(t, err)
	require.NotNil(t, payment)

	assert.Equal(t, model.PaymentCompleted, payment.Status)
	assert.True(t, strings.HasPrefix(gotTransactionID, "TXN-"), "transaction id synthesized when none given")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifPaymentConfirmed, notifier.sent[0].Type)
	assert.Equal(t, tenantID, notifier.sent[0].UserID)
}

func TestConfirm_KeepsGivenTransactionID(t *testing.T) {
	var gotTransactionID string
	repo := &mockPaymentRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return pendingPayment(), nil
		},
		confirmFunc: func(ctx context.Context, id, method, transactionID string) error {
			gotTransactionID = transactionID
			return nil
		},
	}
	svc := newService(repo, &mockRentalRepo{}, &mockNotifier{})

	_, err := svc.Confirm(context.Background(), landlord(), paymentID, "bank_transfer", "BT-20260305-001")
	require.NoError(t, err)
	assert.Equal(t, "BT-20260305-001", gotTransactionID)
}

func TestConfirm_AlreadyConfirmed(t *testing.T) {
	repo := &mockPaymentRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			p := pendingPayment()
			p.Status = model.PaymentCompleted
			return p, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newService(repo, &mockRentalRepo{}, notifier)

	_, err := svc.Confirm(context.Background(), landlord(), paymentID, "cash", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyConfirmed))
	assert.Empty(t, notifier.sent, "no double notification")
}

func TestConfirm_FailedPaymentCannotComplete(t *testing.T) {
	repo := &mockPaymentRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			p := pendingPayment()
			p.Status = model.PaymentFailed
			return p, nil
		},
	}
	svc := newService(repo, &mockRentalRepo{}, &mockNotifier{})

	_, err := svc.Confirm(context.Background(), landlord(), paymentID, "cash", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestConfirm_TenantCannotConfirm(t *testing.T) {
	repo := &mockPaymentRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return pendingPayment(), nil
		},
	}
	svc := newService(repo, &mockRentalRepo{}, &mockNotifier{})

	_, err := svc.Confirm(context.Background(), tenant(), paymentID, "cash", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestGenerateMonthly_SkipsExistingPeriods(t *testing.T) {
	rentals := &mockRentalRepo{
		listByLandlordFunc: func(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, error) {
			if offset > 0 {
				return nil, nil
			}
			return []*model.Rental{
				activeRental("65f1a2b3c4d5e6f7a8b9c0f1"),
				activeRental("65f1a2b3c4d5e6f7a8b9c0f2"),
				activeRental("65f1a2b3c4d5e6f7a8b9c0f3"),
			}, nil
		},
	}
	seen := map[string]bool{"65f1a2b3c4d5e6f7a8b9c0f2": true}
	var dueDates []time.Time
	repo := &mockPaymentRepo{
		createFunc: func(ctx context.Context, payment *model.Payment) error {
			if seen[payment.RentalID] {
				return paymenterrors.ErrDuplicatePeriod
			}
			dueDates = append(dueDates, payment.DueDate)
			return nil
		},
	}
	svc := newService(repo, rentals, &mockNotifier{})

	result, err := svc.GenerateMonthly(context.Background(), landlord(), 4, 2026)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Skipped)
	for _, due := range dueDates {
		assert.Equal(t, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC), due)
	}
}

func TestGenerateMonthly_InvalidMonth(t *testing.T) {
	svc := newService(&mockPaymentRepo{}, &mockRentalRepo{}, &mockNotifier{})

	_, err := svc.GenerateMonthly(context.Background(), landlord(), 13, 2026)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
