package repository

import (
	"context"
	"errors"
	"fmt"
	paymenterrors "rentora/internal/payments/errors"
	"rentora/pkg/config"
	mongotx "rentora/pkg/db/mongo"
	"rentora/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const PaymentsCollection = "Payments"

type PaymentRepository interface {
	// Create relies on the unique (rental_id, month, year, payment_type)
	// index to reject a second payment for the same billing period.
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id string) (*model.Payment, error)

	// Confirm is a compare-and-swap from pending to completed. It stamps
	// payment_date, method and transaction_id.
	Confirm(ctx context.Context, id, method, transactionID string) error

	ListByRental(ctx context.Context, rentalID string, limit int, offset int64) ([]*model.Payment, error)
	CountByRental(ctx context.Context, rentalID string) (int64, error)
	ListByTenant(ctx context.Context, tenantID string, status model.PaymentStatus, limit int, offset int64) ([]*model.Payment, error)
	CountByTenant(ctx context.Context, tenantID string, status model.PaymentStatus) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: db.Collection(PaymentsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paymenterrors.ErrDuplicatePeriod
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		payment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", paymenterrors.ErrInvalidID, id)
	}

	var payment model.Payment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymenterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return &payment, nil
}

func (r *mongoPaymentRepository) Confirm(ctx context.Context, id, method, transactionID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymenterrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.PaymentPending},
		bson.M{"$set": bson.M{
			"status":         model.PaymentCompleted,
			"payment_date":   now,
			"method":         method,
			"transaction_id": transactionID,
			"updated_at":     now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymenterrors.ErrStatusConflict
	}

	return nil
}

func (r *mongoPaymentRepository) ListByRental(ctx context.Context, rentalID string, limit int, offset int64) ([]*model.Payment, error) {
	return r.list(ctx, bson.M{"rental_id": rentalID}, limit, offset)
}

func (r *mongoPaymentRepository) CountByRental(ctx context.Context, rentalID string) (int64, error) {
	return r.count(ctx, bson.M{"rental_id": rentalID})
}

func (r *mongoPaymentRepository) ListByTenant(ctx context.Context, tenantID string, status model.PaymentStatus, limit int, offset int64) ([]*model.Payment, error) {
	filter := bson.M{"tenant_id": tenantID}
	if status != "" {
		filter["status"] = status
	}
	return r.list(ctx, filter, limit, offset)
}

func (r *mongoPaymentRepository) CountByTenant(ctx context.Context, tenantID string, status model.PaymentStatus) (int64, error) {
	filter := bson.M{"tenant_id": tenantID}
	if status != "" {
		filter["status"] = status
	}
	return r.count(ctx, filter)
}

func (r *mongoPaymentRepository) list(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*model.Payment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, nil
}

func (r *mongoPaymentRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (r *mongoPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
