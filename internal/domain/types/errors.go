package types

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid trip status transition")
	ErrInvalidAssignment = errors.New("vehicle and driver must both be set or both be empty")

	ErrTripNotFound    = errors.New("trip not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrDriverNotFound  = errors.New("driver not found")
	ErrNotFound        = errors.New("requested item not found")

	ErrListenerSetClosed = errors.New("listener set already closed")
)
