package repository

import (
	"context"
	"errors"
	"fmt"
	bookingerrors "rentora/internal/bookings/errors"
	"rentora/pkg/config"
	mongotx "rentora/pkg/db/mongo"
	"rentora/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BookingsCollection = "Bookings"

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)

	// UpdateStatus is a compare-and-swap on the booking status. reason is
	// stored as the rejection reason when non-empty.
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, reason string) error

	// RejectOtherPending rejects every pending booking for the room except
	// the one being approved. Returns the number of bookings rejected.
	RejectOtherPending(ctx context.Context, roomID, exceptID, reason string) (int64, error)

	ExistsPending(ctx context.Context, tenantID, roomID string) (bool, error)

	ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
	ListByLandlord(ctx context.Context, landlordID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	CountByLandlord(ctx context.Context, landlordID string, status model.BookingStatus) (int64, error)
	ListPendingByRoom(ctx context.Context, roomID string) ([]*model.Booking, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingsCollection),
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

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, reason string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if reason != "" {
		set["rejection_reason"] = reason
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingerrors.ErrStatusConflict
	}

	return nil
}

func (r *mongoBookingRepository) RejectOtherPending(ctx context.Context, roomID, exceptID, reason string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	exceptObjectID, err := primitive.ObjectIDFromHex(exceptID)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, exceptID)
	}

	result, err := r.collection.UpdateMany(ctx,
		bson.M{
			"_id":     bson.M{"$ne": exceptObjectID},
			"room_id": roomID,
			"status":  model.BookingPending,
		},
		bson.M{"$set": bson.M{
			"status":           model.BookingRejected,
			"rejection_reason": reason,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject competing bookings: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *mongoBookingRepository) ExistsPending(ctx context.Context, tenantID, roomID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"tenant_id": tenantID,
		"room_id":   roomID,
		"status":    model.BookingPending,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check pending booking: %w", err)
	}

	return count > 0, nil
}

func (r *mongoBookingRepository) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.list(ctx, bson.M{"tenant_id": tenantID}, limit, offset)
}

func (r *mongoBookingRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return r.count(ctx, bson.M{"tenant_id": tenantID})
}

func (r *mongoBookingRepository) ListByLandlord(ctx context.Context, landlordID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	filter := bson.M{"landlord_id": landlordID}
	if status != "" {
		filter["status"] = status
	}
	return r.list(ctx, filter, limit, offset)
}

func (r *mongoBookingRepository) CountByLandlord(ctx context.Context, landlordID string, status model.BookingStatus) (int64, error) {
	filter := bson.M{"landlord_id": landlordID}
	if status != "" {
		filter["status"] = status
	}
	return r.count(ctx, filter)
}

func (r *mongoBookingRepository) ListPendingByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{
		"room_id": roomID,
		"status":  model.BookingPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) list(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
