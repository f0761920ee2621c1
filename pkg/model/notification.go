package model

import "time"

type NotificationType string

const (
	NotifBookingRequested  NotificationType = "booking_requested"
	NotifBookingApproved   NotificationType = "booking_approved"
	NotifBookingRejected   NotificationType = "booking_rejected"
	NotifRentalTerminated  NotificationType = "rental_terminated"
	NotifPaymentConfirmed  NotificationType = "payment_confirmed"
)

// Notification is a pure outbound signal: it is written as a side effect of a
// lifecycle transition and never read back by the coordinator.
type Notification struct {
	ID        string           `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Type      NotificationType `json:"type" bson:"type"`
	Title     string           `json:"title" bson:"title"`
	Message   string           `json:"message" bson:"message"`
	RelatedID string           `json:"related_id,omitempty" bson:"related_id,omitempty"`
	IsRead    bool             `json:"is_read" bson:"is_read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
