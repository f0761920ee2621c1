package model

import "time"

// BookingLock is an advisory lock keyed by (tenant, room). It narrows the
// read-then-write window on the duplicate-pending check; the partial unique
// index on Bookings is the hard guarantee.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
