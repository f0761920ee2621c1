package errors

import "errors"

var (
	ErrNotFound = errors.New("property not found")

	ErrRoomNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid property ID format")

	// ErrStatusConflict means a compare-and-swap update matched no document:
	// the room changed status between read and write.
	ErrStatusConflict = errors.New("room status changed concurrently")

	// ErrCounterConflict means the guarded counter update refused to push
	// available_rooms outside [0, total_rooms].
	ErrCounterConflict = errors.New("available rooms counter out of range")

	ErrDuplicateRoomNumber = errors.New("room number already exists in this property")
)
