package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cabana/internal/model"
)

// ReservationLister is the read side the daily digest needs.
type ReservationLister interface {
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
}

// StartDailyDigest sends the day's occupying reservations to staff chats every
// day at hour (club time). It returns immediately.
func (n *Notifier) StartDailyDigest(ctx context.Context, lister ReservationLister, hour int) {
	go func() {
		timer := time.NewTimer(timeUntilNextHour(time.Now().In(n.cfg.Location), hour))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				n.sendDigest(ctx, lister, time.Now())
				timer.Reset(timeUntilNextHour(time.Now().In(n.cfg.Location), hour))
			}
		}
	}()
}

func (n *Notifier) sendDigest(ctx context.Context, lister ReservationLister, now time.Time) {
	local := now.In(n.cfg.Location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.cfg.Location)

	rs, err := lister.List(ctx, model.ReservationFilter{
		Statuses: model.OccupyingStatuses,
		From:     dayStart,
		To:       dayStart.AddDate(0, 0, 1),
	})
	if err != nil {
		n.logger.Error().Err(err).Msg("digest: list reservations")
		return
	}
	n.broadcast(n.formatDigest(dayStart, rs))
}

func (n *Notifier) formatDigest(day time.Time, rs []model.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reservas de %s: %d\n", day.Format("02/01/2006"), len(rs))

	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CabinName != rs[j].CabinName {
			return rs[i].CabinName < rs[j].CabinName
		}
		return rs[i].CheckIn.Before(rs[j].CheckIn)
	})

	var total model.Money
	for i := range rs {
		r := &rs[i]
		fmt.Fprintf(&b, "%s %s-%s %s [%s]\n",
			r.CabinName,
			r.CheckIn.In(n.cfg.Location).Format("15:04"),
			r.CheckOut.In(n.cfg.Location).Format("15:04"),
			r.Customer.Name,
			r.Status)
		total += r.TotalPrice
	}
	fmt.Fprintf(&b, "Total previsto: R$ %s", total.String())
	return b.String()
}

func timeUntilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
