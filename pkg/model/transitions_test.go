package model

import "testing"

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingApproved, true},
		{BookingPending, BookingRejected, true},
		{BookingPending, BookingCancelled, true},
		{BookingApproved, BookingPending, false},
		{BookingApproved, BookingRejected, false},
		{BookingRejected, BookingApproved, false},
		{BookingCancelled, BookingPending, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestBookingTerminalStates(t *testing.T) {
	for _, s := range []BookingStatus{BookingApproved, BookingRejected, BookingCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if BookingPending.Terminal() {
		t.Error("pending should not be terminal")
	}
}

func TestRentalTransitions(t *testing.T) {
	if !RentalActive.CanTransitionTo(RentalCompleted) {
		t.Error("active -> completed should be allowed")
	}
	if !RentalActive.CanTransitionTo(RentalTerminated) {
		t.Error("active -> terminated should be allowed")
	}
	if RentalCompleted.CanTransitionTo(RentalActive) {
		t.Error("completed is terminal")
	}
	if RentalTerminated.CanTransitionTo(RentalCompleted) {
		t.Error("terminated is terminal")
	}
}

func TestPaymentTransitions(t *testing.T) {
	if !PaymentPending.CanTransitionTo(PaymentCompleted) {
		t.Error("pending -> completed should be allowed")
	}
	if !PaymentPending.CanTransitionTo(PaymentFailed) {
		t.Error("pending -> failed should be allowed")
	}
	if !PaymentPending.CanTransitionTo(PaymentRefunded) {
		t.Error("pending -> refunded should be allowed")
	}
	if PaymentCompleted.CanTransitionTo(PaymentPending) {
		t.Error("completed is terminal")
	}
	if PaymentRefunded.CanTransitionTo(PaymentCompleted) {
		t.Error("refunded is terminal")
	}
}

func TestRoomTransitions(t *testing.T) {
	cases := []struct {
		from    RoomStatus
		to      RoomStatus
		allowed bool
	}{
		{RoomVacant, RoomOccupied, true},
		{RoomVacant, RoomMaintenance, true},
		{RoomOccupied, RoomVacant, true},
		{RoomMaintenance, RoomVacant, true},
		{RoomOccupied, RoomMaintenance, false},
		{RoomMaintenance, RoomOccupied, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}
