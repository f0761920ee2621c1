package repository

import (
	"context"
	"errors"
	"fmt"
	properrors "rentora/internal/properties/errors"
	"rentora/pkg/config"
	mongotx "rentora/pkg/db/mongo"
	"rentora/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PropertiesCollection = "Properties"
	RoomsCollection      = "Rooms"
)

type PropertyRepository interface {
	CreateProperty(ctx context.Context, property *model.Property) error
	FindPropertyByID(ctx context.Context, id string) (*model.Property, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	DeleteProperty(ctx context.Context, id string) error

	CreateRoom(ctx context.Context, room *model.Room) error
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	ListRoomsByProperty(ctx context.Context, propertyID string) ([]*model.Room, error)
	DeleteRoomsByProperty(ctx context.Context, propertyID string) (int64, error)

	// UpdateRoomStatus is a compare-and-swap: it only matches when the room
	// still holds the expected status. tenantID is set on the room when
	// non-empty and unset otherwise.
	UpdateRoomStatus(ctx context.Context, roomID string, from, to model.RoomStatus, tenantID string) error

	// IncrementAvailable and DecrementAvailable guard the denormalized
	// counter so it can never leave [0, total_rooms].
	IncrementAvailable(ctx context.Context, propertyID string) error
	DecrementAvailable(ctx context.Context, propertyID string) error
	AdjustRoomCounts(ctx context.Context, propertyID string, totalDelta, availableDelta int) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	properties *mongo.Collection
	rooms      *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		db:         db,
		properties: db.Collection(PropertiesCollection),
		rooms:      db.Collection(RoomsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout unless it already carries a
// session: wrapping a SessionContext would break transaction semantics.
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

func (r *mongoPropertyRepository) CreateProperty(ctx context.Context, property *model.Property) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	property.CreatedAt = now
	property.UpdatedAt = now

	result, err := r.properties.InsertOne(ctx, property)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindPropertyByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", properrors.ErrInvalidID, id)
	}

	var property model.Property
	err = r.properties.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, properrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.properties.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []*model.Property
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	return properties, nil
}

func (r *mongoPropertyRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.properties.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func (r *mongoPropertyRepository) DeleteProperty(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", properrors.ErrInvalidID, id)
	}

	result, err := r.properties.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if result.DeletedCount == 0 {
		return properrors.ErrNotFound
	}

	return nil
}

func (r *mongoPropertyRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	room.CreatedAt = now
	room.UpdatedAt = now

	result, err := r.rooms.InsertOne(ctx, room)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return properrors.ErrDuplicateRoomNumber
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		room.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", properrors.ErrInvalidID, id)
	}

	var room model.Room
	err = r.rooms.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, properrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoPropertyRepository) ListRoomsByProperty(ctx context.Context, propertyID string) ([]*model.Room, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "room_number", Value: 1}})

	cursor, err := r.rooms.Find(ctx, bson.M{"property_id": propertyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	return rooms, nil
}

func (r *mongoPropertyRepository) DeleteRoomsByProperty(ctx context.Context, propertyID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.rooms.DeleteMany(ctx, bson.M{"property_id": propertyID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete rooms: %w", err)
	}

	return result.DeletedCount, nil
}

func (r *mongoPropertyRepository) UpdateRoomStatus(ctx context.Context, roomID string, from, to model.RoomStatus, tenantID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return fmt.Errorf("%w: %s", properrors.ErrInvalidID, roomID)
	}

	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	update := bson.M{"$set": set}
	if tenantID != "" {
		set["current_tenant"] = tenantID
	} else {
		update["$unset"] = bson.M{"current_tenant": ""}
	}

	result, err := r.rooms.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	if result.MatchedCount == 0 {
		return properrors.ErrStatusConflict
	}

	return nil
}

func (r *mongoPropertyRepository) IncrementAvailable(ctx context.Context, propertyID string) error {
	return r.adjustAvailable(ctx, propertyID, 1)
}

func (r *mongoPropertyRepository) DecrementAvailable(ctx context.Context, propertyID string) error {
	return r.adjustAvailable(ctx, propertyID, -1)
}

func (r *mongoPropertyRepository) adjustAvailable(ctx context.Context, propertyID string, delta int) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return fmt.Errorf("%w: %s", properrors.ErrInvalidID, propertyID)
	}

	filter := bson.M{"_id": objectID}
	if delta < 0 {
		filter["available_rooms"] = bson.M{"$gte": -delta}
	} else {
		// never push the counter past total_rooms
		filter["$expr"] = bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$available_rooms", delta}},
			"$total_rooms",
		}}
	}

	update := bson.M{
		"$inc": bson.M{"available_rooms": delta},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.properties.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust available rooms: %w", err)
	}
	if result.MatchedCount == 0 {
		return properrors.ErrCounterConflict
	}

	return nil
}

func (r *mongoPropertyRepository) AdjustRoomCounts(ctx context.Context, propertyID string, totalDelta, availableDelta int) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return fmt.Errorf("%w: %s", properrors.ErrInvalidID, propertyID)
	}

	result, err := r.properties.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$inc": bson.M{
			"total_rooms":     totalDelta,
			"available_rooms": availableDelta,
		},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	})
	if err != nil {
		return fmt.Errorf("failed to adjust room counts: %w", err)
	}
	if result.MatchedCount == 0 {
		return properrors.ErrNotFound
	}

	return nil
}

func (r *mongoPropertyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
