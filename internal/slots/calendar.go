package slots

import (
	"sync/atomic"
	"time"

	"cabana/internal/config"
)

var fallbackHours = config.OpeningHoursConfig{StartTime: "08:00", EndTime: "18:00", SlotDurationMinutes: 60}

// Calendar answers which hours a cabin can be booked on a given day.
// The cabins config is swapped atomically when cabins.yaml is reloaded.
type Calendar struct {
	cfg atomic.Pointer[config.CabinsConfig]
	loc *time.Location
}

func NewCalendar(cfg *config.CabinsConfig, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &Calendar{loc: loc}
	c.Update(cfg)
	return c
}

// Update installs a freshly loaded config.
func (c *Calendar) Update(cfg *config.CabinsConfig) {
	if cfg == nil {
		cfg = &config.CabinsConfig{}
	}
	c.cfg.Store(cfg)
}

// Location is the club's time zone; dates are interpreted in it.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// ParseDate reads a YYYY-MM-DD date at local midnight.
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, c.loc)
}

// Schedule returns the opening hours of cabinID on date. Cabins not declared in
// cabins.yaml use the defaults.
func (c *Calendar) Schedule(cabinID int64, date time.Time) ScheduleInfo {
	cfg := c.cfg.Load()
	date = date.In(c.loc)

	if ok, name := cfg.IsHoliday(date); ok {
		return ScheduleInfo{IsClosed: true, Reason: name}
	}
	if cfg.IsDayOff(date.Weekday()) {
		return ScheduleInfo{IsClosed: true, Reason: "day off"}
	}

	hours := &fallbackHours
	if cfg.Defaults.OpeningHours != nil {
		hours = cfg.Defaults.OpeningHours
	}
	if cab := cfg.GetCabinByID(cabinID); cab != nil && cab.OpeningHours != nil {
		hours = cab.OpeningHours
	}

	return ScheduleInfo{
		StartTime:    hours.StartTime,
		EndTime:      hours.EndTime,
		SlotDuration: hours.SlotDurationMinutes,
	}
}
