package export

import (
	"io"
	"time"

	"cabana/internal/model"
)

const (
	SheetReservations = "Reservations"
	SheetSummary      = "Summary"

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var reservationColumns = []string{
	"ID", "Code", "Cabin", "Customer", "Email", "Phone", "Document",
	"Check-in", "Check-out", "Hours", "Total", "Status", "Source", "Notes", "Created",
}

var summaryColumns = []string{"Status", "Reservations", "Hours", "Revenue"}

// WriteReservations writes a workbook with one row per reservation and a
// per-status summary. Times are rendered in loc.
func WriteReservations(w io.Writer, rs []model.Reservation, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	sw := newSheetWriter()
	defer sw.Close()

	if err := sw.AddSheet(SheetReservations); err != nil {
		return err
	}
	if err := sw.WriteHeader(reservationColumns); err != nil {
		return err
	}
	for i := range rs {
		if err := sw.WriteRow(reservationRow(&rs[i], loc)); err != nil {
			return err
		}
	}

	if err := sw.AddSheet(SheetSummary); err != nil {
		return err
	}
	if err := sw.WriteHeader(summaryColumns); err != nil {
		return err
	}
	for _, row := range summarize(rs) {
		if err := sw.WriteRow(row); err != nil {
			return err
		}
	}

	return sw.Save(w)
}

func reservationRow(r *model.Reservation, loc *time.Location) []any {
	const layout = "2006-01-02 15:04"
	return []any{
		r.ID,
		r.Code,
		r.CabinName,
		r.Customer.Name,
		r.Customer.Email,
		r.Customer.Phone,
		r.Customer.Document,
		r.CheckIn.In(loc).Format(layout),
		r.CheckOut.In(loc).Format(layout),
		r.HoursBooked,
		r.TotalPrice.Float(),
		string(r.Status),
		string(r.Source),
		r.Notes,
		r.CreatedAt.In(loc).Format(layout),
	}
}

var summaryOrder = []model.Status{
	model.StatusPending,
	model.StatusConfirmed,
	model.StatusCheckedIn,
	model.StatusInProgress,
	model.StatusCheckedOut,
	model.StatusCancelled,
}

// summarize returns a row per status plus a total row. Cancelled reservations
// are counted but excluded from total revenue.
func summarize(rs []model.Reservation) [][]any {
	type agg struct {
		count   int
		hours   float64
		revenue model.Money
	}
	byStatus := make(map[model.Status]*agg)
	for _, st := range summaryOrder {
		byStatus[st] = &agg{}
	}

	var total agg
	for i := range rs {
		a, ok := byStatus[rs[i].Status]
		if !ok {
			continue
		}
		a.count++
		a.hours += rs[i].HoursBooked
		a.revenue += rs[i].TotalPrice
		if rs[i].Status != model.StatusCancelled {
			total.count++
			total.hours += rs[i].HoursBooked
			total.revenue += rs[i].TotalPrice
		}
	}

	rows := make([][]any, 0, len(summaryOrder)+1)
	for _, st := range summaryOrder {
		a := byStatus[st]
		rows = append(rows, []any{string(st), a.count, a.hours, a.revenue.Float()})
	}
	return append(rows, []any{"TOTAL (excl. cancelled)", total.count, total.hours, total.revenue.Float()})
}
