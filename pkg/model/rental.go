package model

import "time"

type RentalStatus string

const (
	RentalActive     RentalStatus = "active"
	RentalCompleted  RentalStatus = "completed"
	RentalTerminated RentalStatus = "terminated"
)

// Both terminal states release the room; the coordinator is the only caller.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalActive: {RentalCompleted, RentalTerminated},
}

func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RentalStatus) Terminal() bool {
	return len(rentalTransitions[s]) == 0
}

// Rental is the occupancy contract created exactly once per approved booking.
// MonthlyRent and Deposit are snapshotted from the room at approval time; later
// room rent changes never touch an existing rental.
type Rental struct {
	ID                string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID         string       `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	TenantID          string       `json:"tenant_id" bson:"tenant_id" validate:"required,mongodb"`
	LandlordID        string       `json:"landlord_id" bson:"landlord_id" validate:"required,mongodb"`
	PropertyID        string       `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	RoomID            string       `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	StartDate         time.Time    `json:"start_date" bson:"start_date" validate:"required"`
	EndDate           *time.Time   `json:"end_date,omitempty" bson:"end_date,omitempty"`
	MonthlyRent       float64      `json:"monthly_rent" bson:"monthly_rent" validate:"required,gt=0"`
	Deposit           float64      `json:"deposit" bson:"deposit" validate:"min=0"`
	Status            RentalStatus `json:"status" bson:"status" validate:"required,oneof=active completed terminated"`
	TerminationReason string       `json:"termination_reason,omitempty" bson:"termination_reason,omitempty" validate:"omitempty,max=500"`
	DepositReturned   bool         `json:"deposit_returned" bson:"deposit_returned"`
	CreatedAt         time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
