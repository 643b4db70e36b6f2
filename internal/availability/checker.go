// Package availability decides whether a cabin is free for a time window.
package availability

import (
	"context"
	"fmt"
	"time"

	"cabana/internal/model"
)

// Source lists reservations that currently occupy a cabin.
//
// Implementations return reservations whose status is occupying and whose
// interval may intersect [start, end); excludeID (when non-zero) is left out.
// The checker re-tests every returned row, so a source is free to over-return.
type Source interface {
	ListOccupying(ctx context.Context, cabinID int64, start, end time.Time, excludeID int64) ([]model.Reservation, error)
}

// Checker answers conflict questions against a Source.
type Checker struct {
	src Source
}

func New(src Source) *Checker {
	return &Checker{src: src}
}

// HasConflict reports whether an occupying reservation of cabinID, other than excludeID,
// overlaps [start, end).
func (c *Checker) HasConflict(ctx context.Context, cabinID int64, start, end time.Time, excludeID int64) (bool, error) {
	conflicts, err := c.Conflicts(ctx, cabinID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// Conflicts returns the reservations that block [start, end) on cabinID.
func (c *Checker) Conflicts(ctx context.Context, cabinID int64, start, end time.Time, excludeID int64) ([]model.Reservation, error) {
	existing, err := c.src.ListOccupying(ctx, cabinID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list occupying reservations: %w", err)
	}

	var out []model.Reservation
	for i := range existing {
		r := &existing[i]
		if r.ID == excludeID && excludeID != 0 {
			continue
		}
		if !r.Status.IsOccupying() || r.CabinID != cabinID {
			continue
		}
		if r.Overlaps(start, end) {
			out = append(out, *r)
		}
	}
	return out, nil
}

// IsSlotBooked reports whether any occupying reservation covers part of the slot.
func (c *Checker) IsSlotBooked(ctx context.Context, cabinID int64, start, end time.Time) (bool, error) {
	return c.HasConflict(ctx, cabinID, start, end, 0)
}
