package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "write failed", http.StatusInternalServerError)

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("booking", "approved", "cancelled")

	if err.Code != CodeInvalidTransition {
		t.Errorf("expected code %s, got %s", CodeInvalidTransition, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.HTTPStatus)
	}
	if err.Details["from"] != "approved" || err.Details["to"] != "cancelled" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestLifecycleConstructors(t *testing.T) {
	cases := []struct {
		err  *AppError
		code string
	}{
		{DuplicatePendingBooking(), CodeDuplicatePendingBooking},
		{RoomUnavailable("665f1c7f9b3e2a0001a4d001"), CodeRoomUnavailable},
		{AlreadyConfirmed("665f1c7f9b3e2a0001a4d002"), CodeAlreadyConfirmed},
	}

	for _, c := range cases {
		if c.err.Code != c.code {
			t.Errorf("expected code %s, got %s", c.code, c.err.Code)
		}
		if c.err.HTTPStatus != http.StatusConflict {
			t.Errorf("%s: expected status 409, got %d", c.code, c.err.HTTPStatus)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := NotFound("Rental")

	if !IsCode(err, CodeNotFound) {
		t.Error("IsCode should match NOT_FOUND")
	}
	if IsCode(err, CodeForbidden) {
		t.Error("IsCode should not match a different code")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Error("IsCode should be false for non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("plain errors should convert to INTERNAL_ERROR, got %s", appErr.Code)
	}
	if !errors.Is(appErr, plain) {
		t.Error("converted error should keep its cause")
	}

	forbidden := Forbidden("not your booking")
	if AsAppError(forbidden) != forbidden {
		t.Error("AppError should pass through unchanged")
	}
}
