package model

import "time"

type RoomStatus string

const (
	RoomVacant      RoomStatus = "vacant"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// roomTransitions is the only place room status changes are defined.
// An occupied room must be vacated before it can go into maintenance.
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomVacant:      {RoomOccupied, RoomMaintenance},
	RoomOccupied:    {RoomVacant},
	RoomMaintenance: {RoomVacant},
}

func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	for _, allowed := range roomTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Property holds the denormalized room counters maintained by the lifecycle
// coordinator. AvailableRooms always equals the count of child rooms with
// status vacant once a mutating operation has committed.
type Property struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID        string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name           string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address        string    `json:"address" bson:"address" validate:"required,min=5,max=200"`
	TotalRooms     int       `json:"total_rooms" bson:"total_rooms" validate:"min=0"`
	AvailableRooms int       `json:"available_rooms" bson:"available_rooms" validate:"min=0,ltefield=TotalRooms"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Room belongs to exactly one property. CurrentTenant is set only while the
// room is occupied; an empty string means nobody holds the room.
type Room struct {
	ID            string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID    string     `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	RoomNumber    string     `json:"room_number" bson:"room_number" validate:"required,min=1,max=20"`
	Status        RoomStatus `json:"status" bson:"status" validate:"required,oneof=vacant occupied maintenance"`
	CurrentTenant string     `json:"current_tenant,omitempty" bson:"current_tenant,omitempty" validate:"omitempty,mongodb"`
	MonthlyRent   float64    `json:"monthly_rent" bson:"monthly_rent" validate:"required,gt=0"`
	Deposit       float64    `json:"deposit" bson:"deposit" validate:"min=0"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
