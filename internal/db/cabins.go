package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cabana/internal/config"
	"cabana/internal/model"
)

var (
	// ErrDuplicateName is returned when a cabin name is already taken.
	ErrDuplicateName = errors.New("cabin name already exists")
	// ErrCabinIDTaken is returned when cabins.yaml declares the ID of an admin-created cabin.
	ErrCabinIDTaken = errors.New("cabin id belongs to an admin-created cabin")
)

const cabinColumns = `id, name, capacity, price_per_hour, category, description, is_active, managed, created_at, updated_at`

func scanCabin(row interface{ Scan(...any) error }) (*model.Cabin, error) {
	var (
		c                  model.Cabin
		price              int64
		category           string
		createdAt, updated string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Capacity, &price, &category, &c.Description,
		&c.IsActive, &c.Managed, &createdAt, &updated); err != nil {
		return nil, err
	}
	c.PricePerHour = model.Money(price)
	c.Category = model.Category(category)

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

func getCabin(ctx context.Context, q queryer, id int64) (*model.Cabin, error) {
	c, err := scanCabin(q.QueryRowContext(ctx, `SELECT `+cabinColumns+` FROM cabins WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// GetCabin returns the cabin or nil when it does not exist.
func (db *DB) GetCabin(ctx context.Context, id int64) (*model.Cabin, error) {
	return getCabin(ctx, db, id)
}

// ListCabins returns cabins ordered by category and name.
func (db *DB) ListCabins(ctx context.Context, activeOnly bool) ([]model.Cabin, error) {
	query := `SELECT ` + cabinColumns + ` FROM cabins`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY category, name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cabins []model.Cabin
	for rows.Next() {
		c, err := scanCabin(rows)
		if err != nil {
			return nil, err
		}
		cabins = append(cabins, *c)
	}
	return cabins, rows.Err()
}

// CreateCabin inserts a cabin managed through the admin API.
func (db *DB) CreateCabin(ctx context.Context, c *model.Cabin) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx, `
		INSERT INTO cabins (name, capacity, price_per_hour, category, description, is_active, managed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		c.Name, c.Capacity, int64(c.PricePerHour), string(c.Category), c.Description, c.IsActive,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return wrapUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	c.Managed = false
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// UpdateCabin saves every mutable column. Existing reservations keep their price snapshot.
func (db *DB) UpdateCabin(ctx context.Context, c *model.Cabin) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx, `
		UPDATE cabins
		SET name = ?, capacity = ?, price_per_hour = ?, category = ?, description = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Capacity, int64(c.PricePerHour), string(c.Category), c.Description, c.IsActive, formatTime(now), c.ID,
	)
	if err != nil {
		return wrapUnique(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	c.UpdatedAt = now
	return nil
}

// SyncCabinsFromConfig applies cabins.yaml to the database.
// It upserts declared cabins and deactivates config-managed cabins that disappeared
// from the file. Cabins created through the admin API are left alone; a declared ID
// that belongs to one fails the whole sync with ErrCabinIDTaken.
func (db *DB) SyncCabinsFromConfig(ctx context.Context, cfg *config.CabinsConfig) error {
	if cfg == nil {
		return fmt.Errorf("cabins config is nil")
	}

	now := formatTime(time.Now())
	seen := make(map[int64]struct{})

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, decl := range cfg.Cabins {
		c := decl.Model()

		var managed bool
		err := tx.QueryRowContext(ctx, `SELECT managed FROM cabins WHERE id = ?`, c.ID).Scan(&managed)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("sync cabin %d: %w", c.ID, err)
		case !managed:
			return fmt.Errorf("sync cabin %d: %w", c.ID, ErrCabinIDTaken)
		}

		// Preserve created_at if the cabin already exists.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cabins (id, name, capacity, price_per_hour, category, description, is_active, managed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, COALESCE((SELECT created_at FROM cabins WHERE id = ?), ?), ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				capacity = excluded.capacity,
				price_per_hour = excluded.price_per_hour,
				category = excluded.category,
				description = excluded.description,
				is_active = excluded.is_active,
				managed = 1,
				updated_at = excluded.updated_at`,
			c.ID, c.Name, c.Capacity, int64(c.PricePerHour), string(c.Category), c.Description, c.IsActive,
			c.ID, now, now,
		)
		if err != nil {
			return fmt.Errorf("sync cabin %d: %w", c.ID, wrapUnique(err))
		}
		seen[c.ID] = struct{}{}
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM cabins WHERE managed = 1 AND is_active = 1`)
	if err != nil {
		return err
	}
	var stale []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `UPDATE cabins SET is_active = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("deactivate cabin %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	db.logger.Info().Int("cabins", len(seen)).Int("deactivated", len(stale)).Msg("cabins synced from config")
	return nil
}

func wrapUnique(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: cabins.name") {
		return fmt.Errorf("%w: %v", ErrDuplicateName, err)
	}
	return err
}
