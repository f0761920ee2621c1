package model

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentType string

const (
	PaymentTypeRent        PaymentType = "rent"
	PaymentTypeDeposit     PaymentType = "deposit"
	PaymentTypeAdvance     PaymentType = "advance"
	PaymentTypeMaintenance PaymentType = "maintenance"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentCompleted, PaymentFailed, PaymentRefunded},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Payment is a billing record tied to one rental. Its lifecycle is independent
// of the rental's: a rental may end with pending payments still outstanding.
// The (rental_id, month, year, payment_type) tuple is the idempotency key that
// prevents duplicate rent generation for a billing period.
type Payment struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RentalID      string        `json:"rental_id" bson:"rental_id" validate:"required,mongodb"`
	TenantID      string        `json:"tenant_id" bson:"tenant_id" validate:"required,mongodb"`
	LandlordID    string        `json:"landlord_id" bson:"landlord_id" validate:"required,mongodb"`
	Amount        float64       `json:"amount" bson:"amount" validate:"required,gt=0"`
	PaymentType   PaymentType   `json:"payment_type" bson:"payment_type" validate:"required,oneof=rent deposit advance maintenance"`
	Status        PaymentStatus `json:"status" bson:"status" validate:"required,oneof=pending completed failed refunded"`
	Month         int           `json:"month" bson:"month" validate:"required,min=1,max=12"`
	Year          int           `json:"year" bson:"year" validate:"required,min=2000,max=2200"`
	DueDate       time.Time     `json:"due_date" bson:"due_date" validate:"required"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty" bson:"payment_date,omitempty"`
	Method        string        `json:"method,omitempty" bson:"method,omitempty" validate:"omitempty,max=50"`
	TransactionID string        `json:"transaction_id,omitempty" bson:"transaction_id,omitempty" validate:"omitempty,max=100"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
