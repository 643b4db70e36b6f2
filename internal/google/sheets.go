// Package google mirrors reservations into a Google Sheets spreadsheet for desk staff.
package google

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cabana/internal/events"
	"cabana/internal/model"
	"cabana/internal/reservation"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var reservationHeader = []any{
	"ID", "Código", "Cabana", "Cliente", "Telefone", "Entrada", "Saída", "Horas", "Total", "Status", "Origem", "Atualizado",
}

// Source is what the mirror reads on every sync.
type Source interface {
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	ListCabins(ctx context.Context, activeOnly bool) ([]model.Cabin, error)
}

// SheetsService writes the reservation list and a daily occupancy grid.
type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	scheduleSheet string
	scheduleDays  int
	loc           *time.Location
	logger        *zerolog.Logger

	// rowCache maps reservation ID to its 1-based row in sheetName.
	rowCache map[int64]int
	mu       sync.RWMutex

	changed chan int64
}

// NewSheetsService authenticates with a service-account JSON key.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, loc *time.Location, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return NewSheetsServiceWithOptions(ctx, spreadsheetID, sheetName, loc, logger, option.WithCredentials(creds))
}

// NewSheetsServiceWithOptions builds the client from raw client options.
func NewSheetsServiceWithOptions(ctx context.Context, spreadsheetID, sheetName string, loc *time.Location, logger *zerolog.Logger, opts ...option.ClientOption) (*SheetsService, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SheetsService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		scheduleSheet: sheetName + " Agenda",
		scheduleDays:  7,
		loc:           loc,
		logger:        logger,
		rowCache:      make(map[int64]int),
		changed:       make(chan int64, 128),
	}, nil
}

// Subscribe queues every reservation change for the next Run iteration.
func (s *SheetsService) Subscribe(bus *events.Bus) {
	handler := func(ev events.Event) error {
		var p reservation.EventPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		select {
		case s.changed <- p.Reservation.ID:
		default:
			// Queue full: the periodic full sync will pick the change up.
		}
		return nil
	}
	bus.Subscribe(reservation.EventCreated, handler)
	bus.Subscribe(reservation.EventUpdated, handler)
	bus.Subscribe(reservation.EventStatusChanged, handler)
}

// Run performs a full sync every interval and applies queued changes in between.
func (s *SheetsService) Run(ctx context.Context, src Source, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.fullSync(ctx, src)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fullSync(ctx, src)
		case id := <-s.changed:
			if err := s.applyChange(ctx, src, id); err != nil {
				s.logger.Warn().Err(err).Int64("reservation_id", id).Msg("incremental sheet update failed, resyncing")
				s.fullSync(ctx, src)
			}
		}
	}
}

func (s *SheetsService) fullSync(ctx context.Context, src Source) {
	from := s.today(time.Now())
	rs, err := src.List(ctx, model.ReservationFilter{From: from})
	if err != nil {
		s.logger.Error().Err(err).Msg("sheets: list reservations")
		return
	}
	if err := s.SyncReservations(ctx, rs); err != nil {
		s.logger.Error().Err(err).Msg("sheets: sync reservations")
		return
	}

	cabins, err := src.ListCabins(ctx, true)
	if err != nil {
		s.logger.Error().Err(err).Msg("sheets: list cabins")
		return
	}
	if err := s.SyncSchedule(ctx, cabins, rs, from); err != nil {
		s.logger.Error().Err(err).Msg("sheets: sync schedule")
	}
}

// applyChange rewrites a single cached row. It returns an error when the row is
// unknown or the reservation left the active set, so the caller resyncs.
func (s *SheetsService) applyChange(ctx context.Context, src Source, id int64) error {
	row, ok := s.getCachedRow(id)
	if !ok {
		return fmt.Errorf("reservation %d not on sheet", id)
	}
	rs, err := src.List(ctx, model.ReservationFilter{From: s.today(time.Now())})
	if err != nil {
		return err
	}
	for i := range rs {
		if rs[i].ID != id {
			continue
		}
		if rs[i].Status == model.StatusCancelled {
			s.deleteCacheRow(id)
			return fmt.Errorf("reservation %d cancelled", id)
		}
		rng := a1(s.sheetName, fmt.Sprintf("A%d", row))
		vr := &sheets.ValueRange{Values: [][]any{reservationRowValues(&rs[i], s.loc)}}
		_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do()
		return err
	}
	return fmt.Errorf("reservation %d not in window", id)
}

// SyncReservations replaces the reservation sheet with the active reservations.
func (s *SheetsService) SyncReservations(ctx context.Context, rs []model.Reservation) error {
	active := filterActive(rs)

	values := make([][]any, 0, len(active)+1)
	values = append(values, reservationHeader)
	for i := range active {
		values = append(values, reservationRowValues(&active[i], s.loc))
	}

	if err := s.replace(ctx, s.sheetName, values); err != nil {
		return err
	}

	s.ClearCache()
	for i := range active {
		s.setCachedRow(active[i].ID, i+2)
	}
	s.logger.Info().Int("rows", len(active)).Msg("reservations sheet synced")
	return nil
}

// SyncSchedule writes a cabins by days grid starting at from.
func (s *SheetsService) SyncSchedule(ctx context.Context, cabins []model.Cabin, rs []model.Reservation, from time.Time) error {
	headers := s.prepareDateHeaders(from, s.scheduleDays)
	values := [][]any{headers}

	active := filterActive(rs)
	for _, cabin := range cabins {
		row := []any{cabin.Name}
		for d := 0; d < s.scheduleDays; d++ {
			dayStart := from.AddDate(0, 0, d)
			row = append(row, s.formatScheduleCell(cabin.ID, active, dayStart, dayStart.AddDate(0, 0, 1)))
		}
		values = append(values, row)
	}
	return s.replace(ctx, s.scheduleSheet, values)
}

func (s *SheetsService) replace(ctx context.Context, sheet string, values [][]any) error {
	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, a1(sheet, ""), &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	vr := &sheets.ValueRange{Values: values}
	if _, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, a1(sheet, "A1"), vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	return nil
}

// a1 builds an A1 range, quoting the sheet name.
func a1(sheet, cells string) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func (s *SheetsService) today(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

func (s *SheetsService) prepareDateHeaders(from time.Time, days int) []any {
	headers := make([]any, 0, days+1)
	headers = append(headers, "Cabana")
	for d := 0; d < days; d++ {
		headers = append(headers, from.AddDate(0, 0, d).Format("02/01"))
	}
	return headers
}

// formatScheduleCell lists the booked intervals of cabinID inside [dayStart, dayEnd).
func (s *SheetsService) formatScheduleCell(cabinID int64, rs []model.Reservation, dayStart, dayEnd time.Time) string {
	cell := ""
	for i := range rs {
		r := &rs[i]
		if r.CabinID != cabinID || !r.Overlaps(dayStart, dayEnd) {
			continue
		}
		if cell != "" {
			cell += "\n"
		}
		cell += fmt.Sprintf("%s-%s %s", r.CheckIn.In(s.loc).Format("15:04"), r.CheckOut.In(s.loc).Format("15:04"), r.Customer.Name)
	}
	if cell == "" {
		return "livre"
	}
	return cell
}

func filterActive(rs []model.Reservation) []model.Reservation {
	active := make([]model.Reservation, 0, len(rs))
	for _, r := range rs {
		if r.Status != model.StatusCancelled {
			active = append(active, r)
		}
	}
	return active
}

func reservationRowValues(r *model.Reservation, loc *time.Location) []any {
	const layout = "2006-01-02 15:04"
	return []any{
		r.ID,
		r.Code,
		r.CabinName,
		r.Customer.Name,
		r.Customer.Phone,
		r.CheckIn.In(loc).Format(layout),
		r.CheckOut.In(loc).Format(layout),
		r.HoursBooked,
		r.TotalPrice.String(),
		string(r.Status),
		string(r.Source),
		r.UpdatedAt.In(loc).Format(layout),
	}
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCacheRow(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rowCache, id)
}

// ClearCache forgets every cached row position.
func (s *SheetsService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache = make(map[int64]int)
}
