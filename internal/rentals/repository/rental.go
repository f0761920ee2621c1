package repository

import (
	"context"
	"errors"
	"fmt"
	rentalerrors "rentora/internal/rentals/errors"
	"rentora/pkg/config"
	mongotx "rentora/pkg/db/mongo"
	"rentora/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RentalsCollection = "Rentals"

type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id string) (*model.Rental, error)
	FindActiveByRoom(ctx context.Context, roomID string) (*model.Rental, error)

	// CloseRental is a compare-and-swap from active into a terminal status.
	// It stamps end_date, deposit_returned and, when non-empty, the
	// termination reason.
	CloseRental(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error

	ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
	ListByLandlord(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, error)
	CountByLandlord(ctx context.Context, landlordID string, status model.RentalStatus) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRentalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRentalRepository(cfg *config.Config) RentalRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoRentalRepository{
		cfg:        cfg,
		collection: db.Collection(RentalsCollection),
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

func (r *mongoRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	rental.CreatedAt = now
	rental.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, rental)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rental.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRentalRepository) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rentalerrors.ErrInvalidID, id)
	}

	var rental model.Rental
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rentalerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rental: %w", err)
	}

	return &rental, nil
}

func (r *mongoRentalRepository) FindActiveByRoom(ctx context.Context, roomID string) (*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var rental model.Rental
	err := r.collection.FindOne(ctx, bson.M{
		"room_id": roomID,
		"status":  model.RentalActive,
	}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rentalerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active rental: %w", err)
	}

	return &rental, nil
}

func (r *mongoRentalRepository) CloseRental(ctx context.Context, id string, to model.RentalStatus, reason string, endDate time.Time, depositReturned bool) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", rentalerrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if endDate.IsZero() {
		endDate = now
	}
	set := bson.M{
		"status":           to,
		"end_date":         endDate,
		"deposit_returned": depositReturned,
		"updated_at":       now,
	}
	if reason != "" {
		set["termination_reason"] = reason
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.RentalActive},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to close rental: %w", err)
	}
	if result.MatchedCount == 0 {
		return rentalerrors.ErrStatusConflict
	}

	return nil
}

func (r *mongoRentalRepository) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Rental, error) {
	return r.list(ctx, bson.M{"tenant_id": tenantID}, limit, offset)
}

func (r *mongoRentalRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return r.count(ctx, bson.M{"tenant_id": tenantID})
}

func (r *mongoRentalRepository) ListByLandlord(ctx context.Context, landlordID string, status model.RentalStatus, limit int, offset int64) ([]*model.Rental, error) {
	filter := bson.M{"landlord_id": landlordID}
	if status != "" {
		filter["status"] = status
	}
	return r.list(ctx, filter, limit, offset)
}

func (r *mongoRentalRepository) CountByLandlord(ctx context.Context, landlordID string, status model.RentalStatus) (int64, error) {
	filter := bson.M{"landlord_id": landlordID}
	if status != "" {
		filter["status"] = status
	}
	return r.count(ctx, filter)
}

func (r *mongoRentalRepository) list(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rentals: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*model.Rental
	if err = cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}

	return rentals, nil
}

func (r *mongoRentalRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}
	return count, nil
}

func (r *mongoRentalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
