package reservation

import (
	"context"

	"cabana/internal/availability"
	"cabana/internal/model"
)

// Store persists reservations. Lookups return nil, nil when the row does not exist.
type Store interface {
	// WithTx runs fn in one write transaction; the transaction commits only if fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	GetReservationByCode(ctx context.Context, code string) (*model.Reservation, error)
	ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
}

// Tx is the transactional view used for check-then-write sequences.
type Tx interface {
	availability.Source
	GetCabin(ctx context.Context, id int64) (*model.Cabin, error)
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	InsertReservation(ctx context.Context, r *model.Reservation) (int64, error)
	UpdateReservation(ctx context.Context, r *model.Reservation) error
}

// Locker serializes writers of the same cabin across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Publisher receives domain events after a successful write.
type Publisher interface {
	PublishJSON(eventType string, payload any) error
}
