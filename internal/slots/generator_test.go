package slots

import (
	"context"
	"testing"
	"time"

	"cabana/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChecker marks slots booked by their local start time.
type mockChecker struct {
	bookedSlots map[string]bool // key: "HH:MM"
	calls       int
}

func (m *mockChecker) IsSlotBooked(_ context.Context, _ int64, start, _ time.Time) (bool, error) {
	m.calls++
	return m.bookedSlots[start.Format("15:04")], nil
}

type failingChecker struct{}

func (failingChecker) IsSlotBooked(context.Context, int64, time.Time, time.Time) (bool, error) {
	return false, assert.AnError
}

var (
	day   = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	early = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }
)

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name          string
		schedule      ScheduleInfo
		booked        map[string]bool
		expectedCount int
		available     int
	}{
		{
			name:          "full day no bookings",
			schedule:      ScheduleInfo{StartTime: "08:00", EndTime: "18:00", SlotDuration: 60},
			expectedCount: 10,
			available:     10,
		},
		{
			name:          "with bookings",
			schedule:      ScheduleInfo{StartTime: "08:00", EndTime: "18:00", SlotDuration: 60},
			booked:        map[string]bool{"09:00": true, "10:00": true},
			expectedCount: 10,
			available:     8,
		},
		{
			name:          "closed day",
			schedule:      ScheduleInfo{IsClosed: true},
			expectedCount: 0,
		},
		{
			name:          "30 minute slots",
			schedule:      ScheduleInfo{StartTime: "10:00", EndTime: "12:00", SlotDuration: 30},
			expectedCount: 4,
			available:     4,
		},
		{
			name:          "partial trailing slot dropped",
			schedule:      ScheduleInfo{StartTime: "10:00", EndTime: "12:30", SlotDuration: 60},
			expectedCount: 2,
			available:     2,
		},
		{
			name:          "default duration",
			schedule:      ScheduleInfo{StartTime: "10:00", EndTime: "12:00"},
			expectedCount: 2,
			available:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&mockChecker{bookedSlots: tt.booked}).WithClock(early)
			slots, err := g.GenerateSlots(context.Background(), 1, day, tt.schedule)
			require.NoError(t, err)
			assert.Len(t, slots, tt.expectedCount)
			assert.Len(t, GetAvailableSlots(slots), tt.available)
		})
	}
}

func TestGenerateSlots_PastSlotsUnavailable(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC) }
	g := NewGenerator(nil).WithClock(now)

	slots, err := g.GenerateSlots(context.Background(), 1, day, ScheduleInfo{StartTime: "08:00", EndTime: "13:00", SlotDuration: 60})
	require.NoError(t, err)

	info := ToSlotInfo(slots)
	require.Len(t, info, 5)
	assert.False(t, info[2].Available, "10:00 already started")
	assert.True(t, info[3].Available)
	assert.Equal(t, SlotInfo{Start: "12:00", End: "13:00", Available: true}, info[4])
}

func TestGenerateSlots_Errors(t *testing.T) {
	g := NewGenerator(failingChecker{}).WithClock(early)
	_, err := g.GenerateSlots(context.Background(), 1, day, ScheduleInfo{StartTime: "08:00", EndTime: "10:00", SlotDuration: 60})
	assert.ErrorIs(t, err, assert.AnError)

	g = NewGenerator(nil)
	_, err = g.GenerateSlots(context.Background(), 1, day, ScheduleInfo{StartTime: "8", EndTime: "10:00"})
	assert.Error(t, err)
	_, err = g.GenerateSlots(context.Background(), 1, day, ScheduleInfo{StartTime: "08:00", EndTime: "xx:00"})
	assert.Error(t, err)
}

func TestFreeWindows(t *testing.T) {
	g := NewGenerator(&mockChecker{bookedSlots: map[string]bool{"10:00": true, "11:00": true, "15:00": true}}).WithClock(early)
	slots, err := g.GenerateSlots(context.Background(), 1, day, ScheduleInfo{StartTime: "08:00", EndTime: "18:00", SlotDuration: 60})
	require.NoError(t, err)

	assert.Equal(t, []Window{
		{Start: "08:00", End: "10:00"},
		{Start: "12:00", End: "15:00"},
		{Start: "16:00", End: "18:00"},
	}, FreeWindows(slots))

	assert.Empty(t, FreeWindows(nil))
}

func TestCalendar_Schedule(t *testing.T) {
	cfg := &config.CabinsConfig{
		Cabins: []config.CabinConfig{
			{ID: 1, Name: "Bangalo 1", OpeningHours: &config.OpeningHoursConfig{StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30}},
			{ID: 2, Name: "Sunbed 1"},
		},
		Defaults: config.DefaultsConfig{
			OpeningHours: &config.OpeningHoursConfig{StartTime: "08:00", EndTime: "18:00", SlotDurationMinutes: 60},
			DaysOff:      []int{1}, // Monday
		},
		Holidays: []config.HolidayConfig{{Date: "2026-12-25", Name: "Natal"}},
	}
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	cal := NewCalendar(cfg, loc)

	thursday, err := cal.ParseDate("2026-01-15")
	require.NoError(t, err)

	assert.Equal(t, ScheduleInfo{StartTime: "09:00", EndTime: "17:00", SlotDuration: 30}, cal.Schedule(1, thursday))
	assert.Equal(t, ScheduleInfo{StartTime: "08:00", EndTime: "18:00", SlotDuration: 60}, cal.Schedule(2, thursday))
	assert.Equal(t, ScheduleInfo{StartTime: "08:00", EndTime: "18:00", SlotDuration: 60}, cal.Schedule(99, thursday))

	monday, _ := cal.ParseDate("2026-01-12")
	assert.Equal(t, ScheduleInfo{IsClosed: true, Reason: "day off"}, cal.Schedule(1, monday))

	xmas, _ := cal.ParseDate("2026-12-25")
	assert.Equal(t, ScheduleInfo{IsClosed: true, Reason: "Natal"}, cal.Schedule(1, xmas))

	cal.Update(nil)
	assert.Equal(t, ScheduleInfo{StartTime: "08:00", EndTime: "18:00", SlotDuration: 60}, cal.Schedule(1, monday))

	_, err = cal.ParseDate("15/01/2026")
	assert.Error(t, err)
}
