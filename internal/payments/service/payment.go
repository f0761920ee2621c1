package service

import (
	"context"
	"errors"
	"fmt"
	paymenterrors "rentora/internal/payments/errors"
	"rentora/internal/payments/repository"
	"rentora/internal/payments/validator"
	rentalerrors "rentora/internal/rentals/errors"
	rentalrepo "rentora/internal/rentals/repository"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	httputil "rentora/pkg/http"
	"rentora/pkg/model"
	"rentora/pkg/sanitizer"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers user notifications on a best-effort basis.
type Notifier interface {
	Notify(ctx context.Context, notification *model.Notification)
}

// GenerationResult reports one monthly generation run. Skipped counts rentals
// that already had a rent payment for the billing period.
type GenerationResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

type PaymentService interface {
	Create(ctx context.Context, actor httputil.Actor, payment *model.Payment) error
	GetByID(ctx context.Context, actor httputil.Actor, id string) (*model.Payment, error)
	Confirm(ctx context.Context, actor httputil.Actor, id, method, transactionID string) (*model.Payment, error)
	GenerateMonthly(ctx context.Context, actor httputil.Actor, month, year int) (*GenerationResult, error)
	ListByRental(ctx context.Context, actor httputil.Actor, rentalID string, limit int, offset int64) ([]*model.Payment, int64, error)
	ListByTenant(ctx context.Context, tenantID string, status model.PaymentStatus, limit int, offset int64) ([]*model.Payment, int64, error)
}

type paymentService struct {
	repo       repository.PaymentRepository
	rentalRepo rentalrepo.RentalRepository
	notifier   Notifier
	validator  *validator.PaymentValidator
	cfg        *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	rentalRepo rentalrepo.RentalRepository,
	notifier Notifier,
	validator *validator.PaymentValidator,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:       repo,
		rentalRepo: rentalRepo,
		notifier:   notifier,
		validator:  validator,
		cfg:        cfg,
	}
}

// Create records a manual charge (deposit, advance, maintenance or an
// off-cycle rent) against a rental. Only the landlord can raise charges.
func (s *paymentService) Create(ctx context.Context, actor httputil.Actor, payment *model.Payment) error {
	rental, err := s.findRental(ctx, payment.RentalID)
	if err != nil {
		return err
	}
	if rental.LandlordID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the landlord can create payments for a rental")
	}

	payment.TenantID = rental.TenantID
	payment.LandlordID = rental.LandlordID
	payment.Status = model.PaymentPending
	payment.Method = sanitizer.FreeText(payment.Method, 50)
	payment.TransactionID = ""
	payment.PaymentDate = nil
	if payment.DueDate.IsZero() {
		payment.DueDate = dueDate(payment.Year, payment.Month, s.cfg.PaymentDueDay)
	}

	if err := s.validator.Validate(payment); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, paymenterrors.ErrDuplicatePeriod) {
			return apperrors.Conflict("A payment of this type already exists for the billing period")
		}
		s.cfg.Log.Error("Failed to create payment", "rental_id", payment.RentalID, "error", err)
		return apperrors.Internal("Failed to create payment", err)
	}

	s.cfg.Log.Info("Payment created",
		"id", payment.ID,
		"rental_id", payment.RentalID,
		"type", payment.PaymentType,
		"month", payment.Month,
		"year", payment.Year,
	)
	return nil
}

func (s *paymentService) GetByID(ctx context.Context, actor httputil.Actor, id string) (*model.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.TenantID != actor.ID && payment.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("You are not a party to this payment")
	}

	return payment, nil
}

// Confirm marks a pending payment as paid. Payments are confirmed manually by
// the landlord; real gateway integration sits outside this service. When no
// transaction reference is supplied a synthetic one is generated.
func (s *paymentService) Confirm(ctx context.Context, actor httputil.Actor, id, method, transactionID string) (*model.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only the landlord can confirm a payment")
	}
	if payment.Status == model.PaymentCompleted {
		return nil, apperrors.AlreadyConfirmed(id)
	}
	if !payment.Status.CanTransitionTo(model.PaymentCompleted) {
		return nil, apperrors.InvalidTransition("payment", string(payment.Status), string(model.PaymentCompleted))
	}

	method = sanitizer.FreeText(method, 50)
	transactionID = sanitizer.FreeText(transactionID, 100)
	if transactionID == "" {
		transactionID = "TXN-" + uuid.NewString()
	}

	if err := s.repo.Confirm(ctx, id, method, transactionID); err != nil {
		if errors.Is(err, paymenterrors.ErrStatusConflict) {
			return nil, apperrors.AlreadyConfirmed(id)
		}
		s.cfg.Log.Error("Failed to confirm payment", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to confirm payment", err)
	}

	confirmed, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Payment confirmed",
		"id", id,
		"transaction_id", transactionID,
		"method", method,
	)

	s.notifier.Notify(ctx, &model.Notification{
		UserID:    payment.TenantID,
		Type:      model.NotifPaymentConfirmed,
		Title:     "Payment Confirmed",
		Message:   fmt.Sprintf("Your payment of %.2f (%s %d/%d) has been confirmed", payment.Amount, payment.PaymentType, payment.Month, payment.Year),
		RelatedID: id,
	})

	return confirmed, nil
}

// GenerateMonthly creates the rent payment for every active rental the
// landlord holds, for the given billing period. Re-running the same period is
// safe: rentals that already have a rent payment are skipped.
func (s *paymentService) GenerateMonthly(ctx context.Context, actor httputil.Actor, month, year int) (*GenerationResult, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.InvalidInput("month must be between 1 and 12")
	}
	if year < 2000 || year > 2200 {
		return nil, apperrors.InvalidInput("year is out of range")
	}

	due := dueDate(year, month, s.cfg.PaymentDueDay)
	result := &GenerationResult{}

	limit := config.DefaultPaginationLimit
	var offset int64
	for {
		rentals, err := s.rentalRepo.ListByLandlord(ctx, actor.ID, model.RentalActive, limit, offset)
		if err != nil {
			return nil, apperrors.Internal("Failed to list active rentals", err)
		}

		for _, rental := range rentals {
			payment := &model.Payment{
				RentalID:    rental.ID,
				TenantID:    rental.TenantID,
				LandlordID:  rental.LandlordID,
				Amount:      rental.MonthlyRent,
				PaymentType: model.PaymentTypeRent,
				Status:      model.PaymentPending,
				Month:       month,
				Year:        year,
				DueDate:     due,
			}
			if err := s.repo.Create(ctx, payment); err != nil {
				if errors.Is(err, paymenterrors.ErrDuplicatePeriod) {
					result.Skipped++
					continue
				}
				return nil, apperrors.Internal("Failed to generate payment", err)
			}
			result.Generated++
		}

		if len(rentals) < limit {
			break
		}
		offset += int64(limit)
	}

	s.cfg.Log.Info("Monthly payments generated",
		"landlord_id", actor.ID,
		"month", month,
		"year", year,
		"generated", result.Generated,
		"skipped", result.Skipped,
	)
	return result, nil
}

func (s *paymentService) ListByRental(ctx context.Context, actor httputil.Actor, rentalID string, limit int, offset int64) ([]*model.Payment, int64, error) {
	rental, err := s.findRental(ctx, rentalID)
	if err != nil {
		return nil, 0, err
	}
	if rental.TenantID != actor.ID && rental.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden("You are not a party to this rental")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var payments []*model.Payment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByRental(ctx, rentalID)
	}()
	go func() {
		defer wg.Done()
		payments, errFind = s.repo.ListByRental(ctx, rentalID, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list payments", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count payments", errCount)
	}

	return payments, count, nil
}

func (s *paymentService) ListByTenant(ctx context.Context, tenantID string, status model.PaymentStatus, limit int, offset int64) ([]*model.Payment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var payments []*model.Payment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByTenant(ctx, tenantID, status)
	}()
	go func() {
		defer wg.Done()
		payments, errFind = s.repo.ListByTenant(ctx, tenantID, status, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list payments", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count payments", errCount)
	}

	return payments, count, nil
}

func (s *paymentService) find(ctx context.Context, id string) (*model.Payment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", id)
		}
		if errors.Is(err, paymenterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid payment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	return payment, nil
}

func (s *paymentService) findRental(ctx context.Context, id string) (*model.Rental, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rental ID cannot be empty")
	}

	rental, err := s.rentalRepo.FindByID(ctx, id)
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

func dueDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
