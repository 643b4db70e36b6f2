package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"cabana/internal/model"

	"gopkg.in/yaml.v3"
)

// CabinConfig represents a single cabin declared in cabins.yaml.
type CabinConfig struct {
	ID           int64               `yaml:"id"`
	Name         string              `yaml:"name"`
	Category     string              `yaml:"category"`
	Capacity     int                 `yaml:"capacity"`
	PricePerHour float64             `yaml:"price_per_hour"`
	Description  string              `yaml:"description"`
	IsActive     bool                `yaml:"is_active"`
	OpeningHours *OpeningHoursConfig `yaml:"opening_hours,omitempty"`
}

// OpeningHoursConfig is the bookable window of a day.
type OpeningHoursConfig struct {
	StartTime           string `yaml:"start_time"`            // "08:00"
	EndTime             string `yaml:"end_time"`              // "18:00"
	SlotDurationMinutes int    `yaml:"slot_duration_minutes"` // 60
}

// HolidayConfig is a date when the club is closed.
type HolidayConfig struct {
	Date string `yaml:"date"` // "2026-12-25"
	Name string `yaml:"name"`
}

// DefaultsConfig represents global default settings.
type DefaultsConfig struct {
	OpeningHours *OpeningHoursConfig `yaml:"opening_hours"`
	DaysOff      []int               `yaml:"days_off"` // 1=Mon, 7=Sun
}

// CabinsConfig is the root of cabins.yaml.
type CabinsConfig struct {
	Cabins   []CabinConfig   `yaml:"cabins"`
	Defaults DefaultsConfig  `yaml:"defaults"`
	Holidays []HolidayConfig `yaml:"holidays"`
}

// LoadCabinsConfig loads and validates cabins configuration from a YAML file.
func LoadCabinsConfig(path string) (*CabinsConfig, error) {
	if path == "" {
		path = "configs/cabins.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cabins config: %w", err)
	}
	return parseCabinsConfig(data)
}

func parseCabinsConfig(data []byte) (*CabinsConfig, error) {
	var cfg CabinsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse cabins config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate cabins config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *CabinsConfig) Validate() error {
	if len(c.Cabins) == 0 {
		return fmt.Errorf("no cabins defined")
	}

	ids := make(map[int64]bool)
	names := make(map[string]bool)

	for i, cab := range c.Cabins {
		if cab.ID <= 0 {
			return fmt.Errorf("cabin[%d]: id must be positive, got %d", i, cab.ID)
		}
		if ids[cab.ID] {
			return fmt.Errorf("cabin[%d]: duplicate id %d", i, cab.ID)
		}
		ids[cab.ID] = true

		if strings.TrimSpace(cab.Name) == "" {
			return fmt.Errorf("cabin[%d]: name is required", i)
		}
		if names[cab.Name] {
			return fmt.Errorf("cabin[%d]: duplicate name '%s'", i, cab.Name)
		}
		names[cab.Name] = true

		if !model.Category(strings.ToUpper(cab.Category)).Valid() {
			return fmt.Errorf("cabin[%d]: unknown category '%s'", i, cab.Category)
		}
		if cab.Capacity < 0 {
			return fmt.Errorf("cabin[%d]: capacity cannot be negative", i)
		}
		if cab.PricePerHour < 0 {
			return fmt.Errorf("cabin[%d]: price_per_hour cannot be negative", i)
		}

		if cab.OpeningHours != nil {
			if err := validateOpeningHours(cab.OpeningHours, fmt.Sprintf("cabin[%d].opening_hours", i)); err != nil {
				return err
			}
		}
	}

	if c.Defaults.OpeningHours != nil {
		if err := validateOpeningHours(c.Defaults.OpeningHours, "defaults.opening_hours"); err != nil {
			return err
		}
	}

	for i, h := range c.Holidays {
		if h.Date == "" {
			return fmt.Errorf("holiday[%d]: date is required", i)
		}
		if _, err := time.Parse("2006-01-02", h.Date); err != nil {
			return fmt.Errorf("holiday[%d]: invalid date format '%s', expected YYYY-MM-DD", i, h.Date)
		}
	}

	for i, d := range c.Defaults.DaysOff {
		if d < 1 || d > 7 {
			return fmt.Errorf("defaults.days_off[%d]: invalid day %d, must be 1-7 (1=Mon, 7=Sun)", i, d)
		}
	}

	return nil
}

func validateOpeningHours(h *OpeningHoursConfig, prefix string) error {
	if h.StartTime == "" {
		return fmt.Errorf("%s.start_time is required", prefix)
	}
	if h.EndTime == "" {
		return fmt.Errorf("%s.end_time is required", prefix)
	}

	start, err := time.Parse("15:04", h.StartTime)
	if err != nil {
		return fmt.Errorf("%s.start_time: invalid format '%s', expected HH:MM", prefix, h.StartTime)
	}
	end, err := time.Parse("15:04", h.EndTime)
	if err != nil {
		return fmt.Errorf("%s.end_time: invalid format '%s', expected HH:MM", prefix, h.EndTime)
	}
	if !end.After(start) {
		return fmt.Errorf("%s: end_time must be after start_time", prefix)
	}
	if h.SlotDurationMinutes < 0 {
		return fmt.Errorf("%s.slot_duration_minutes cannot be negative", prefix)
	}
	return nil
}

func (c *CabinsConfig) applyDefaults() {
	for i := range c.Cabins {
		if c.Cabins[i].OpeningHours == nil && c.Defaults.OpeningHours != nil {
			c.Cabins[i].OpeningHours = c.Defaults.OpeningHours
		}
		if c.Cabins[i].Capacity == 0 {
			c.Cabins[i].Capacity = 1
		}
		c.Cabins[i].Category = strings.ToUpper(c.Cabins[i].Category)
	}
}

// Model converts the declaration to a cabin row.
func (cab CabinConfig) Model() model.Cabin {
	return model.Cabin{
		ID:           cab.ID,
		Name:         cab.Name,
		Capacity:     cab.Capacity,
		PricePerHour: model.MoneyFromFloat(cab.PricePerHour),
		Category:     model.Category(cab.Category),
		Description:  cab.Description,
		IsActive:     cab.IsActive,
		Managed:      true,
	}
}

// GetCabinByID returns cabin config by ID.
func (c *CabinsConfig) GetCabinByID(id int64) *CabinConfig {
	for i := range c.Cabins {
		if c.Cabins[i].ID == id {
			return &c.Cabins[i]
		}
	}
	return nil
}

// IsHoliday checks if a date is a holiday.
func (c *CabinsConfig) IsHoliday(date time.Time) (bool, string) {
	dateStr := date.Format("2006-01-02")
	for _, h := range c.Holidays {
		if h.Date == dateStr {
			return true, h.Name
		}
	}
	return false, ""
}

// IsDayOff checks if a weekday is a day off.
func (c *CabinsConfig) IsDayOff(weekday time.Weekday) bool {
	// Convert Go's weekday (0=Sun) to our format (1=Mon, 7=Sun)
	day := int(weekday)
	if day == 0 {
		day = 7
	}

	for _, d := range c.Defaults.DaysOff {
		if d == day {
			return true
		}
	}
	return false
}

func (c *CabinsConfig) String() string {
	active := 0
	for _, cab := range c.Cabins {
		if cab.IsActive {
			active++
		}
	}
	return fmt.Sprintf("CabinsConfig: %d cabins (%d active), %d holidays",
		len(c.Cabins), active, len(c.Holidays))
}
