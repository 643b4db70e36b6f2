package reservation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cabana/internal/model"
)

// memStore is an in-memory Store. WithTx holds one mutex for the whole callback
// and works on a copy that replaces the state only on success.
type memStore struct {
	mu           sync.Mutex
	cabins       map[int64]model.Cabin
	reservations map[int64]model.Reservation
	nextID       int64
	failInsert   error
}

func newMemStore(cabins ...model.Cabin) *memStore {
	s := &memStore{
		cabins:       make(map[int64]model.Cabin),
		reservations: make(map[int64]model.Reservation),
	}
	for _, c := range cabins {
		s.cabins[c.ID] = c
	}
	return s
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		cabins:       s.cabins,
		reservations: make(map[int64]model.Reservation, len(s.reservations)),
		nextID:       s.nextID,
		failInsert:   s.failInsert,
	}
	for id, r := range s.reservations {
		tx.reservations[id] = r
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.reservations = tx.reservations
	s.nextID = tx.nextID
	return nil
}

func (s *memStore) GetReservation(_ context.Context, id int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memStore) GetReservationByCode(_ context.Context, code string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.Code == code {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListReservations(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if f.CabinID != 0 && r.CabinID != f.CabinID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

type memTx struct {
	cabins       map[int64]model.Cabin
	reservations map[int64]model.Reservation
	nextID       int64
	failInsert   error
}

func (t *memTx) GetCabin(_ context.Context, id int64) (*model.Cabin, error) {
	c, ok := t.cabins[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memTx) GetReservation(_ context.Context, id int64) (*model.Reservation, error) {
	r, ok := t.reservations[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) ListOccupying(_ context.Context, cabinID int64, start, end time.Time, excludeID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.reservations {
		if r.CabinID != cabinID || r.ID == excludeID || !r.Status.IsOccupying() {
			continue
		}
		if r.CheckIn.Before(end) && start.Before(r.CheckOut) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) InsertReservation(_ context.Context, r *model.Reservation) (int64, error) {
	if t.failInsert != nil {
		return 0, t.failInsert
	}
	t.nextID++
	stored := *r
	stored.ID = t.nextID
	t.reservations[stored.ID] = stored
	return stored.ID, nil
}

func (t *memTx) UpdateReservation(_ context.Context, r *model.Reservation) error {
	if _, ok := t.reservations[r.ID]; !ok {
		return errors.New("no such reservation")
	}
	t.reservations[r.ID] = *r
	return nil
}
