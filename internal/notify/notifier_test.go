package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"cabana/internal/events"
	"cabana/internal/model"
	"cabana/internal/reservation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []tgbotapi.MessageConfig
	errs  []error
	calls int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastConfig(chatIDs ...int64) Config {
	return Config{
		ChatIDs:     chatIDs,
		RateLimiter: RateLimiterConfig{Rate: 1000, Burst: 100},
		Retry:       RetryConfig{MaxRetries: 2, RetryDelays: []time.Duration{time.Millisecond, time.Millisecond}},
	}
}

func newNotifier(t *testing.T, sender TelegramSender, cfg Config) (*Notifier, *events.Bus) {
	t.Helper()
	logger := zerolog.Nop()
	n := NewNotifier(sender, cfg, &logger)
	bus := events.NewBus(&logger)
	n.Subscribe(bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go n.Run(ctx)
	return n, bus
}

func sampleReservation(source model.Source, status model.Status) model.Reservation {
	in := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	return model.Reservation{
		ID: 7, CabinName: "Bangalo 1", Customer: model.Customer{Name: "Ana", Phone: "+55 11 99999-0000"},
		CheckIn: in, CheckOut: in.Add(8 * time.Hour), TotalPrice: 80000, Status: status, Source: source,
	}
}

func TestNotifier_OnlineCreatedIsBroadcast(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newNotifier(t, sender, fastConfig(1, 2))

	require.NoError(t, bus.PublishJSON(reservation.EventCreated, reservation.EventPayload{
		Reservation: sampleReservation(model.SourceOnline, model.StatusPending),
	}))

	assert.Eventually(t, func() bool { return len(sender.messages()) == 2 }, time.Second, 5*time.Millisecond)
	msgs := sender.messages()
	assert.ElementsMatch(t, []int64{1, 2}, []int64{msgs[0].ChatID, msgs[1].ChatID})
	assert.Contains(t, msgs[0].Text, "Nova reserva online")
	assert.Contains(t, msgs[0].Text, "Bangalo 1")
	assert.Contains(t, msgs[0].Text, "R$ 800.00")
}

func TestNotifier_IgnoresOfflineAndNonCancelTransitions(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newNotifier(t, sender, fastConfig(1))

	require.NoError(t, bus.PublishJSON(reservation.EventCreated, reservation.EventPayload{
		Reservation: sampleReservation(model.SourceOffline, model.StatusConfirmed),
	}))
	require.NoError(t, bus.PublishJSON(reservation.EventStatusChanged, reservation.EventPayload{
		Reservation:    sampleReservation(model.SourceOnline, model.StatusConfirmed),
		PreviousStatus: model.StatusPending,
	}))
	require.NoError(t, bus.PublishJSON(reservation.EventStatusChanged, reservation.EventPayload{
		Reservation:    sampleReservation(model.SourceOnline, model.StatusCancelled),
		PreviousStatus: model.StatusConfirmed,
	}))

	assert.Eventually(t, func() bool { return len(sender.messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return len(sender.messages()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.True(t, strings.HasPrefix(sender.messages()[0].Text, "Reserva cancelada (era CONFIRMED)"))
}

func TestNotifier_RetriesTransientErrors(t *testing.T) {
	sender := &fakeSender{errs: []error{
		&tgbotapi.Error{Code: 429, Message: "Too Many Requests"},
		&tgbotapi.Error{Code: 502, Message: "Bad Gateway"},
	}}
	_, bus := newNotifier(t, sender, fastConfig(1))

	require.NoError(t, bus.PublishJSON(reservation.EventCreated, reservation.EventPayload{
		Reservation: sampleReservation(model.SourceOnline, model.StatusPending),
	}))

	assert.Eventually(t, func() bool { return len(sender.messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, sender.callCount())
}

func TestNotifier_StopsOnForbidden(t *testing.T) {
	sender := &fakeSender{errs: []error{&tgbotapi.Error{Code: 403, Message: "bot was blocked by the user"}}}
	logger := zerolog.Nop()
	n := NewNotifier(sender, fastConfig(1), &logger)

	err := n.sendWithRetry(context.Background(), outgoing{chatID: 1, text: "x"})
	assert.Error(t, err)
	assert.Equal(t, 1, sender.callCount())
}

func TestNotifier_GivesUpAfterMaxRetries(t *testing.T) {
	sender := &fakeSender{errs: []error{assert.AnError, assert.AnError, assert.AnError, assert.AnError}}
	logger := zerolog.Nop()
	n := NewNotifier(sender, fastConfig(1), &logger)

	err := n.sendWithRetry(context.Background(), outgoing{chatID: 1, text: "x"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, sender.callCount())
}

type staticLister struct {
	rs     []model.Reservation
	filter model.ReservationFilter
}

func (s *staticLister) List(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.filter = f
	return s.rs, nil
}

func TestNotifier_Digest(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	sender := &fakeSender{}
	cfg := fastConfig(1)
	cfg.Location = loc
	n, _ := newNotifier(t, sender, cfg)

	a := sampleReservation(model.SourceOnline, model.StatusConfirmed)
	b := sampleReservation(model.SourceOffline, model.StatusPending)
	b.CabinName, b.TotalPrice = "Anexo", 10000
	lister := &staticLister{rs: []model.Reservation{a, b}}

	n.sendDigest(context.Background(), lister, time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, loc), lister.filter.From)
	assert.Equal(t, model.OccupyingStatuses, lister.filter.Statuses)

	assert.Eventually(t, func() bool { return len(sender.messages()) == 1 }, time.Second, 5*time.Millisecond)
	text := sender.messages()[0].Text
	assert.True(t, strings.HasPrefix(text, "Reservas de 15/01/2026: 2"))
	assert.Less(t, strings.Index(text, "Anexo"), strings.Index(text, "Bangalo 1"))
	assert.Contains(t, text, "09:00-17:00")
	assert.Contains(t, text, "R$ 900.00")
}

func TestTimeUntilNextHour(t *testing.T) {
	now := time.Date(2026, 1, 15, 7, 30, 0, 0, time.UTC)
	assert.Equal(t, 30*time.Minute, timeUntilNextHour(now, 8))
	assert.Equal(t, 23*time.Hour+30*time.Minute, timeUntilNextHour(now, 7))
}

func TestRateLimiter(t *testing.T) {
	r := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	assert.True(t, r.TryAcquire())
	assert.True(t, r.TryAcquire())
	assert.False(t, r.TryAcquire())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, r.Wait(ctx))
}
