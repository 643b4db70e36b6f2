package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cabana/internal/model"
	"cabana/internal/reservation"
)

// queryer is satisfied by *sql.DB, *sql.Tx and DB.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const reservationColumns = `r.id, r.code, r.cabin_id, c.name, r.customer_name, r.customer_email, r.customer_phone,
	r.customer_document, r.check_in, r.check_out, r.hours_booked, r.total_price, r.status, r.source, r.notes,
	r.created_at, r.updated_at`

const reservationFrom = ` FROM reservations r JOIN cabins c ON c.id = r.cabin_id`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		r                    model.Reservation
		cabinName            sql.NullString
		checkIn, checkOut    string
		createdAt, updatedAt string
		total                int64
		status, source       string
	)
	err := row.Scan(&r.ID, &r.Code, &r.CabinID, &cabinName, &r.Customer.Name, &r.Customer.Email, &r.Customer.Phone,
		&r.Customer.Document, &checkIn, &checkOut, &r.HoursBooked, &total, &status, &source, &r.Notes,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.CabinName = cabinName.String
	r.TotalPrice = model.Money(total)
	r.Status = model.Status(status)
	r.Source = model.Source(source)

	for _, f := range []struct {
		dst *time.Time
		src string
	}{{&r.CheckIn, checkIn}, {&r.CheckOut, checkOut}, {&r.CreatedAt, createdAt}, {&r.UpdatedAt, updatedAt}} {
		t, err := parseTime(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = t
	}
	return &r, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func getReservation(ctx context.Context, q queryer, where string, arg any) (*model.Reservation, error) {
	r, err := scanReservation(q.QueryRowContext(ctx, `SELECT `+reservationColumns+reservationFrom+` WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func listOccupying(ctx context.Context, q queryer, cabinID int64, start, end time.Time, excludeID int64) ([]model.Reservation, error) {
	statuses := make([]any, 0, len(model.OccupyingStatuses))
	for _, s := range model.OccupyingStatuses {
		statuses = append(statuses, string(s))
	}
	args := append([]any{cabinID, formatTime(end), formatTime(start), excludeID}, statuses...)

	rows, err := q.QueryContext(ctx, `SELECT `+reservationColumns+reservationFrom+`
		WHERE r.cabin_id = ?
		AND r.check_in < ? AND r.check_out > ?
		AND r.id != ?
		AND r.status IN (`+placeholders(len(statuses))+`)
		ORDER BY r.check_in`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func insertReservation(ctx context.Context, q queryer, r *model.Reservation) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO reservations (
			code, cabin_id, customer_name, customer_email, customer_phone, customer_document,
			check_in, check_out, hours_booked, total_price, status, source, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Code, r.CabinID, r.Customer.Name, r.Customer.Email, r.Customer.Phone, r.Customer.Document,
		formatTime(r.CheckIn), formatTime(r.CheckOut), r.HoursBooked, int64(r.TotalPrice),
		string(r.Status), string(r.Source), r.Notes, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func updateReservation(ctx context.Context, q queryer, r *model.Reservation) error {
	res, err := q.ExecContext(ctx, `
		UPDATE reservations SET
			customer_name = ?, customer_email = ?, customer_phone = ?, customer_document = ?,
			check_in = ?, check_out = ?, hours_booked = ?, total_price = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		r.Customer.Name, r.Customer.Email, r.Customer.Phone, r.Customer.Document,
		formatTime(r.CheckIn), formatTime(r.CheckOut), r.HoursBooked, int64(r.TotalPrice),
		string(r.Status), r.Notes, formatTime(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// txStore is the transactional view handed to reservation.Service.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) GetCabin(ctx context.Context, id int64) (*model.Cabin, error) {
	return getCabin(ctx, t.tx, id)
}

func (t *txStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return getReservation(ctx, t.tx, "r.id = ?", id)
}

func (t *txStore) ListOccupying(ctx context.Context, cabinID int64, start, end time.Time, excludeID int64) ([]model.Reservation, error) {
	return listOccupying(ctx, t.tx, cabinID, start, end, excludeID)
}

func (t *txStore) InsertReservation(ctx context.Context, r *model.Reservation) (int64, error) {
	return insertReservation(ctx, t.tx, r)
}

func (t *txStore) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	return updateReservation(ctx, t.tx, r)
}

// WithTx runs fn inside a BEGIN IMMEDIATE transaction. The write lock is taken
// before fn's first read, so concurrent check-then-insert sequences serialize.
func (db *DB) WithTx(ctx context.Context, fn func(tx reservation.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetReservation returns the reservation or nil when it does not exist.
func (db *DB) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return getReservation(ctx, db, "r.id = ?", id)
}

// GetReservationByCode looks a reservation up by confirmation code.
func (db *DB) GetReservationByCode(ctx context.Context, code string) (*model.Reservation, error) {
	return getReservation(ctx, db, "r.code = ?", code)
}

// ListOccupying reads outside a transaction; used for the public availability calendar.
func (db *DB) ListOccupying(ctx context.Context, cabinID int64, start, end time.Time, excludeID int64) ([]model.Reservation, error) {
	return listOccupying(ctx, db, cabinID, start, end, excludeID)
}

// ListReservations returns reservations matching filter, ordered by check-in.
func (db *DB) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.CabinID != 0 {
		where = append(where, "r.cabin_id = ?")
		args = append(args, f.CabinID)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "r.status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if f.Source != "" {
		where = append(where, "r.source = ?")
		args = append(args, string(f.Source))
	}
	if !f.From.IsZero() {
		where = append(where, "r.check_out > ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "r.check_in < ?")
		args = append(args, formatTime(f.To))
	}

	query := `SELECT ` + reservationColumns + reservationFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY r.check_in, r.id`
	switch {
	case f.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	case f.Offset > 0:
		// SQLite needs a LIMIT before OFFSET; -1 means no limit.
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, f.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}
