package reservation

import "errors"

var (
	ErrInvalidInterval   = errors.New("check-in must be before check-out")
	ErrPastDate          = errors.New("check-in is in the past")
	ErrCabinNotFound     = errors.New("cabin not found")
	ErrCabinInactive     = errors.New("cabin is not available for booking")
	ErrConflict          = errors.New("cabin already reserved for this period")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrNotFound          = errors.New("reservation not found")
	ErrInvalidInput      = errors.New("invalid reservation data")
)
