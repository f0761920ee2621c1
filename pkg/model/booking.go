package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// RejectionReasonRoomTaken is stamped on every competing pending booking when
// one of them is approved.
const RejectionReasonRoomTaken = "Room has been rented to another tenant"

// DefaultRejectionReason is used when a landlord rejects without giving one.
const DefaultRejectionReason = "Booking request rejected by the landlord"

// Once a booking leaves pending it never returns: approved, rejected and
// cancelled are all terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending: {BookingApproved, BookingRejected, BookingCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking is a tenant's reservation request against a room. LandlordID and
// PropertyID are denormalized from the room's property at creation time.
type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID        string        `json:"tenant_id" bson:"tenant_id" validate:"required,mongodb"`
	LandlordID      string        `json:"landlord_id" bson:"landlord_id" validate:"required,mongodb"`
	PropertyID      string        `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	RoomID          string        `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	MoveInDate      time.Time     `json:"move_in_date" bson:"move_in_date" validate:"required"`
	Message         string        `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=500"`
	Status          BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending approved rejected cancelled"`
	RejectionReason string        `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty" validate:"omitempty,max=500"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
