// Package reservation manages the reservation lifecycle: creation, edits and status changes.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"cabana/internal/availability"
	"cabana/internal/metrics"
	"cabana/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	EventCreated       = "reservation.created"
	EventUpdated       = "reservation.updated"
	EventStatusChanged = "reservation.status_changed"
)

// EventPayload is published with every reservation event.
type EventPayload struct {
	Reservation    model.Reservation `json:"reservation"`
	PreviousStatus model.Status      `json:"previous_status,omitempty"`
}

// Service implements the reservation lifecycle on top of a Store.
type Service struct {
	store  Store
	locker Locker
	events Publisher
	now    func() time.Time
	logger zerolog.Logger
}

type Option func(*Service)

// WithLocker holds a per-cabin lock around every interval-affecting write.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, logger *zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "reservation").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput describes a new reservation.
type CreateInput struct {
	CabinID  int64
	Customer model.Customer
	CheckIn  time.Time
	CheckOut time.Time
	Source   model.Source
	Notes    string
	// Confirm creates the reservation as CONFIRMED. Honored for OFFLINE reservations only.
	Confirm bool
}

// Create validates the request, checks availability and persists the reservation
// in a single transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	in.CheckIn, in.CheckOut = normalizeTime(in.CheckIn), normalizeTime(in.CheckOut)
	if !in.CheckIn.Before(in.CheckOut) {
		return nil, ErrInvalidInterval
	}
	if in.CheckIn.Before(normalizeTime(s.now())) {
		return nil, ErrPastDate
	}
	if in.Source == "" {
		in.Source = model.SourceOnline
	}
	if !in.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, in.Source)
	}
	customer := normalizeCustomer(in.Customer)
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	release, err := s.lockCabin(ctx, in.CabinID)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *model.Reservation
	err = s.store.WithTx(ctx, func(tx Tx) error {
		cabin, err := tx.GetCabin(ctx, in.CabinID)
		if err != nil {
			return fmt.Errorf("get cabin: %w", err)
		}
		if cabin == nil {
			return ErrCabinNotFound
		}
		if !cabin.IsActive {
			return ErrCabinInactive
		}

		conflict, err := availability.New(tx).HasConflict(ctx, cabin.ID, in.CheckIn, in.CheckOut, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrConflict
		}

		hours, total := Quote(cabin.PricePerHour, in.CheckIn, in.CheckOut)
		status := model.StatusPending
		if in.Confirm && in.Source == model.SourceOffline {
			status = model.StatusConfirmed
		}

		now := normalizeTime(s.now())
		r := &model.Reservation{
			Code:        uuid.NewString(),
			CabinID:     cabin.ID,
			CabinName:   cabin.Name,
			Customer:    customer,
			CheckIn:     in.CheckIn,
			CheckOut:    in.CheckOut,
			HoursBooked: hours,
			TotalPrice:  total,
			Status:      status,
			Source:      in.Source,
			Notes:       strings.TrimSpace(in.Notes),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		id, err := tx.InsertReservation(ctx, r)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		r.ID = id
		created = r
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.IncConflict()
		}
		return nil, err
	}

	metrics.IncReservationCreated(string(created.Source), string(created.Status))
	s.logger.Info().
		Int64("reservation_id", created.ID).
		Int64("cabin_id", created.CabinID).
		Str("status", string(created.Status)).
		Str("source", string(created.Source)).
		Str("total_price", created.TotalPrice.String()).
		Msg("reservation created")
	s.publish(EventCreated, created, "")
	return created, nil
}

// UpdateInput is a partial edit. Nil fields are left untouched.
type UpdateInput struct {
	CheckIn  *time.Time
	CheckOut *time.Time

	Name     *string
	Email    *string
	Phone    *string
	Document *string
	Notes    *string

	// HoursBooked and TotalPrice override the stored price snapshot.
	HoursBooked *float64
	TotalPrice  *model.Money
	// RecomputePrice re-prices the reservation at the cabin's current rate.
	RecomputePrice bool
}

func (in UpdateInput) touchesInterval() bool {
	return in.CheckIn != nil || in.CheckOut != nil
}

// UpdateResult carries the stored reservation after an edit.
type UpdateResult struct {
	Reservation *model.Reservation
	// PriceStale is set when the interval changed but the price snapshot was kept.
	PriceStale bool
}

// Update applies a partial edit. A changed interval is re-validated and re-checked
// against the cabin's other reservations.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*UpdateResult, error) {
	release := func() {}
	if in.touchesInterval() {
		current, err := s.store.GetReservation(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get reservation: %w", err)
		}
		if current == nil {
			return nil, ErrNotFound
		}
		release, err = s.lockCabin(ctx, current.CabinID)
		if err != nil {
			return nil, err
		}
	}
	defer release()

	var result UpdateResult
	err := s.store.WithTx(ctx, func(tx Tx) error {
		r, err := tx.GetReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if r == nil {
			return ErrNotFound
		}

		checkIn, checkOut := r.CheckIn, r.CheckOut
		if in.CheckIn != nil {
			checkIn = normalizeTime(*in.CheckIn)
		}
		if in.CheckOut != nil {
			checkOut = normalizeTime(*in.CheckOut)
		}
		intervalChanged := !checkIn.Equal(r.CheckIn) || !checkOut.Equal(r.CheckOut)

		if intervalChanged {
			if r.Status.IsTerminal() {
				return fmt.Errorf("%w: %s reservation cannot be rescheduled", ErrInvalidTransition, r.Status)
			}
			if !checkIn.Before(checkOut) {
				return ErrInvalidInterval
			}
			conflict, err := availability.New(tx).HasConflict(ctx, r.CabinID, checkIn, checkOut, r.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrConflict
			}
			r.CheckIn, r.CheckOut = checkIn, checkOut
		}

		applyCustomerPatch(r, in)
		if err := validateCustomer(r.Customer); err != nil {
			return err
		}

		switch {
		case in.HoursBooked != nil || in.TotalPrice != nil:
			if in.HoursBooked != nil {
				if *in.HoursBooked <= 0 {
					return fmt.Errorf("%w: hours_booked must be positive", ErrInvalidInput)
				}
				r.HoursBooked = *in.HoursBooked
			}
			if in.TotalPrice != nil {
				if *in.TotalPrice < 0 {
					return fmt.Errorf("%w: total_price cannot be negative", ErrInvalidInput)
				}
				r.TotalPrice = *in.TotalPrice
			}
			// A one-sided override leaves the other field priced for the old interval.
			result.PriceStale = intervalChanged && (in.HoursBooked == nil || in.TotalPrice == nil)
		case in.RecomputePrice:
			cabin, err := tx.GetCabin(ctx, r.CabinID)
			if err != nil {
				return fmt.Errorf("get cabin: %w", err)
			}
			if cabin == nil {
				return ErrCabinNotFound
			}
			r.HoursBooked, r.TotalPrice = Quote(cabin.PricePerHour, r.CheckIn, r.CheckOut)
		case intervalChanged:
			result.PriceStale = true
		}

		r.UpdatedAt = normalizeTime(s.now())
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		result.Reservation = r
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.IncConflict()
		}
		return nil, err
	}

	if result.PriceStale {
		s.logger.Warn().
			Int64("reservation_id", id).
			Float64("hours_booked", result.Reservation.HoursBooked).
			Str("total_price", result.Reservation.TotalPrice.String()).
			Msg("interval changed, price snapshot kept")
	}
	s.publish(EventUpdated, result.Reservation, "")
	return &result, nil
}

// Cancel moves a reservation to CANCELLED. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCancelled, nil)
}

// TransitionStatus moves a reservation to target if the edge is allowed.
func (s *Service) TransitionStatus(ctx context.Context, id int64, target model.Status) (*model.Reservation, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, target)
	}
	return s.transition(ctx, id, target, nil)
}

// Approve confirms a pending reservation.
func (s *Service) Approve(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusConfirmed, nil)
}

// Reject cancels a reservation that has not been approved yet.
func (s *Service) Reject(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCancelled, []model.Status{model.StatusPending})
}

func (s *Service) CheckIn(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCheckedIn, nil)
}

func (s *Service) CheckOut(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCheckedOut, nil)
}

func (s *Service) transition(ctx context.Context, id int64, target model.Status, from []model.Status) (*model.Reservation, error) {
	var (
		r        *model.Reservation
		previous model.Status
		changed  bool
	)
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		r, err = tx.GetReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if r == nil {
			return ErrNotFound
		}
		if target == model.StatusCancelled && r.Status == model.StatusCancelled {
			return nil
		}
		if len(from) > 0 && !containsStatus(from, r.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, target)
		}
		if !CanTransition(r.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, target)
		}

		previous = r.Status
		r.Status = target
		r.UpdatedAt = normalizeTime(s.now())
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return r, nil
	}

	metrics.IncStatusTransition(string(target))
	if target == model.StatusCancelled {
		metrics.IncReservationCancelled()
	}
	s.logger.Info().
		Int64("reservation_id", r.ID).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("reservation status changed")
	s.publish(EventStatusChanged, r, previous)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

// GetByCode looks a reservation up by its public confirmation code.
func (s *Service) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	if _, err := uuid.Parse(code); err != nil {
		return nil, ErrNotFound
	}
	r, err := s.store.GetReservationByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get reservation by code: %w", err)
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}
	if filter.Source != "" && !filter.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, filter.Source)
	}
	rs, err := s.store.ListReservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return rs, nil
}

func (s *Service) lockCabin(ctx context.Context, cabinID int64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.Acquire(ctx, fmt.Sprintf("cabin:%d", cabinID))
	if err != nil {
		return nil, fmt.Errorf("lock cabin %d: %w", cabinID, err)
	}
	return release, nil
}

func (s *Service) publish(eventType string, r *model.Reservation, previous model.Status) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, EventPayload{Reservation: *r, PreviousStatus: previous}); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}

// normalizeTime drops the zone and sub-second part; timestamps are stored at second precision in UTC.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func normalizeCustomer(c model.Customer) model.Customer {
	return model.Customer{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Document: strings.TrimSpace(c.Document),
	}
}

func validateCustomer(c model.Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, c.Email)
		}
	}
	return nil
}

func applyCustomerPatch(r *model.Reservation, in UpdateInput) {
	if in.Name != nil {
		r.Customer.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		r.Customer.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		r.Customer.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Document != nil {
		r.Customer.Document = strings.TrimSpace(*in.Document)
	}
	if in.Notes != nil {
		r.Notes = strings.TrimSpace(*in.Notes)
	}
}

func containsStatus(list []model.Status, s model.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
