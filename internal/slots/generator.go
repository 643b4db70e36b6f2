// Package slots builds the bookable day grid shown by the public availability endpoint.
package slots

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Slot is one cell of the day grid.
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

// SlotInfo is the JSON form of a slot, in club-local wall time.
type SlotInfo struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "11:00"
	Available bool   `json:"available"`
}

// ScheduleInfo contains schedule parameters for a day.
type ScheduleInfo struct {
	StartTime    string // "08:00"
	EndTime      string // "18:00"
	SlotDuration int    // minutes
	IsClosed     bool
	Reason       string // holiday name or "day off"
}

// BookingChecker checks if a slot is booked. availability.Checker satisfies it.
type BookingChecker interface {
	IsSlotBooked(ctx context.Context, cabinID int64, start, end time.Time) (bool, error)
}

// Generator generates slots for a date.
type Generator struct {
	checker BookingChecker
	now     func() time.Time
}

func NewGenerator(checker BookingChecker) *Generator {
	return &Generator{checker: checker, now: time.Now}
}

// WithClock replaces the clock used to mark past slots.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// GenerateSlots walks the opening hours of date in slot-sized steps. A slot is
// available when it has not started yet and no occupying reservation overlaps it.
func (g *Generator) GenerateSlots(ctx context.Context, cabinID int64, date time.Time, schedule ScheduleInfo) ([]Slot, error) {
	if schedule.IsClosed {
		return nil, nil
	}
	if schedule.SlotDuration <= 0 {
		schedule.SlotDuration = 60
	}

	startTime, err := parseTimeOnDate(date, schedule.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	endTime, err := parseTimeOnDate(date, schedule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parse end time: %w", err)
	}

	step := time.Duration(schedule.SlotDuration) * time.Minute
	now := g.now()
	var slots []Slot

	for cursor := startTime; !cursor.Add(step).After(endTime); cursor = cursor.Add(step) {
		slotStart, slotEnd := cursor, cursor.Add(step)

		booked := false
		if g.checker != nil {
			booked, err = g.checker.IsSlotBooked(ctx, cabinID, slotStart, slotEnd)
			if err != nil {
				return nil, fmt.Errorf("check slot: %w", err)
			}
		}

		slots = append(slots, Slot{
			StartTime: slotStart,
			EndTime:   slotEnd,
			Available: !booked && !slotStart.Before(now),
		})
	}

	return slots, nil
}

// ToSlotInfo converts slots to SlotInfo.
func ToSlotInfo(slots []Slot) []SlotInfo {
	result := make([]SlotInfo, len(slots))
	for i, s := range slots {
		result[i] = SlotInfo{
			Start:     s.StartTime.Format("15:04"),
			End:       s.EndTime.Format("15:04"),
			Available: s.Available,
		}
	}
	return result
}

// GetAvailableSlots returns only available slots.
func GetAvailableSlots(slots []Slot) []Slot {
	var available []Slot
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		}
	}
	return available
}

// FindConsecutiveSlots groups adjacent available slots into free windows.
func FindConsecutiveSlots(slots []Slot) [][]Slot {
	available := GetAvailableSlots(slots)
	if len(available) == 0 {
		return nil
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].StartTime.Before(available[j].StartTime)
	})

	var groups [][]Slot
	current := []Slot{available[0]}
	for i := 1; i < len(available); i++ {
		if available[i].StartTime.Equal(current[len(current)-1].EndTime) {
			current = append(current, available[i])
		} else {
			groups = append(groups, current)
			current = []Slot{available[i]}
		}
	}
	return append(groups, current)
}

// Window is a free [Start, End) span made of consecutive slots.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FreeWindows collapses FindConsecutiveSlots into start/end pairs.
func FreeWindows(slots []Slot) []Window {
	groups := FindConsecutiveSlots(slots)
	out := make([]Window, 0, len(groups))
	for _, g := range groups {
		out = append(out, Window{
			Start: g[0].StartTime.Format("15:04"),
			End:   g[len(g)-1].EndTime.Format("15:04"),
		})
	}
	return out
}

func parseTimeOnDate(date time.Time, timeStr string) (time.Time, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute: %w", err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
