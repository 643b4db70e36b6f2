package model

import "time"

// Status is a reservation lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
)

// OccupyingStatuses hold the cabin for their interval.
var OccupyingStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// IsOccupying reports whether a reservation in this status blocks its cabin.
func (s Status) IsOccupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// Source tells who created the reservation.
type Source string

const (
	SourceOnline  Source = "ONLINE"
	SourceOffline Source = "OFFLINE"
)

func (s Source) Valid() bool {
	return s == SourceOnline || s == SourceOffline
}

// Customer identifies the guest holding a reservation.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document,omitempty"`
}

type Reservation struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	CabinID     int64     `json:"cabin_id"`
	CabinName   string    `json:"cabin_name,omitempty"`
	Customer    Customer  `json:"customer"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	HoursBooked float64   `json:"hours_booked"`
	TotalPrice  Money     `json:"total_price"`
	Status      Status    `json:"status"`
	Source      Source    `json:"source"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overlaps reports whether the reservation's [CheckIn, CheckOut) intersects [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return Overlaps(r.CheckIn, r.CheckOut, start, end)
}

// Overlaps reports whether half-open intervals [s1, e1) and [s2, e2) intersect.
// Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// ReservationFilter narrows reservation listings. Zero values mean "any".
type ReservationFilter struct {
	CabinID  int64
	Statuses []Status
	Source   Source
	// From and To select reservations overlapping [From, To).
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
