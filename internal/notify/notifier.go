// Package notify forwards reservation events to staff Telegram chats.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cabana/internal/events"
	"cabana/internal/metrics"
	"cabana/internal/model"
	"cabana/internal/reservation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the subset of tgbotapi.BotAPI used here.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RetryConfig controls resending after transient Telegram errors.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		RetryDelays: []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// Config bundles notifier settings.
type Config struct {
	ChatIDs     []int64
	Location    *time.Location
	QueueSize   int
	RateLimiter RateLimiterConfig
	Retry       RetryConfig
}

type outgoing struct {
	chatID int64
	text   string
}

// Notifier queues staff messages from bus handlers and sends them from Run.
// Publishing never blocks on Telegram.
type Notifier struct {
	sender  TelegramSender
	cfg     Config
	limiter *RateLimiter
	queue   chan outgoing
	logger  zerolog.Logger
}

func NewNotifier(sender TelegramSender, cfg Config, logger *zerolog.Logger) *Notifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RateLimiter.Rate <= 0 {
		cfg.RateLimiter = DefaultRateLimiterConfig()
	}
	if cfg.Retry.RetryDelays == nil {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Notifier{
		sender:  sender,
		cfg:     cfg,
		limiter: NewRateLimiter(cfg.RateLimiter),
		queue:   make(chan outgoing, cfg.QueueSize),
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// Subscribe wires the notifier to reservation events.
func (n *Notifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(reservation.EventCreated, n.handleCreated)
	bus.Subscribe(reservation.EventStatusChanged, n.handleStatusChanged)
}

func (n *Notifier) handleCreated(ev events.Event) error {
	var p reservation.EventPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	// Desk staff already know about reservations they entered themselves.
	if p.Reservation.Source != model.SourceOnline {
		return nil
	}
	n.broadcast(n.formatCreated(&p.Reservation))
	return nil
}

func (n *Notifier) handleStatusChanged(ev events.Event) error {
	var p reservation.EventPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	if p.Reservation.Status != model.StatusCancelled {
		return nil
	}
	n.broadcast(n.formatCancelled(&p.Reservation, p.PreviousStatus))
	return nil
}

func (n *Notifier) broadcast(text string) {
	for _, id := range n.cfg.ChatIDs {
		select {
		case n.queue <- outgoing{chatID: id, text: text}:
		default:
			metrics.ObserveNotification("dropped", 0)
			n.logger.Warn().Int64("chat_id", id).Msg("notification queue full, dropping message")
		}
	}
	metrics.SetNotificationQueue(len(n.queue))
}

// Run drains the queue until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			metrics.SetNotificationQueue(len(n.queue))
			start := time.Now()
			err := n.sendWithRetry(ctx, msg)
			switch {
			case err == nil:
				metrics.ObserveNotification("sent", time.Since(start))
			case !errors.Is(err, context.Canceled):
				metrics.ObserveNotification("failed", time.Since(start))
				n.logger.Error().Err(err).Int64("chat_id", msg.chatID).Msg("notification not delivered")
			}
		}
	}
}

func (n *Notifier) sendWithRetry(ctx context.Context, msg outgoing) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	delays := n.cfg.Retry.RetryDelays
	var lastErr error
	for attempt := 0; attempt <= n.cfg.Retry.MaxRetries; attempt++ {
		m := tgbotapi.NewMessage(msg.chatID, msg.text)
		_, err := n.sender.Send(m)
		if err == nil {
			return nil
		}
		lastErr = err

		wait := time.Duration(0)
		if attempt < len(delays) {
			wait = delays[attempt]
		}

		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) {
			switch tgErr.Code {
			case 429:
				if tgErr.RetryAfter > 0 {
					wait = time.Duration(tgErr.RetryAfter) * time.Second
				}
			case 400, 403:
				return err
			}
		}
		if attempt == n.cfg.Retry.MaxRetries {
			break
		}

		metrics.IncNotificationRetry()
		n.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying telegram send")
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return fmt.Errorf("send failed after %d attempts: %w", n.cfg.Retry.MaxRetries+1, lastErr)
}

func (n *Notifier) formatCreated(r *model.Reservation) string {
	var b strings.Builder
	b.WriteString("Nova reserva online\n")
	n.writeDetails(&b, r)
	return b.String()
}

func (n *Notifier) formatCancelled(r *model.Reservation, previous model.Status) string {
	var b strings.Builder
	b.WriteString("Reserva cancelada")
	if previous != "" {
		fmt.Fprintf(&b, " (era %s)", previous)
	}
	b.WriteString("\n")
	n.writeDetails(&b, r)
	return b.String()
}

func (n *Notifier) writeDetails(b *strings.Builder, r *model.Reservation) {
	loc := n.cfg.Location
	fmt.Fprintf(b, "#%d %s\n", r.ID, r.CabinName)
	fmt.Fprintf(b, "%s %s-%s\n",
		r.CheckIn.In(loc).Format("02/01/2006"),
		r.CheckIn.In(loc).Format("15:04"),
		r.CheckOut.In(loc).Format("15:04"))
	fmt.Fprintf(b, "Cliente: %s", r.Customer.Name)
	if r.Customer.Phone != "" {
		fmt.Fprintf(b, " (%s)", r.Customer.Phone)
	}
	fmt.Fprintf(b, "\nTotal: R$ %s", r.TotalPrice.String())
}
