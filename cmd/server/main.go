package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabana/internal/api"
	"cabana/internal/cache"
	"cabana/internal/config"
	"cabana/internal/db"
	"cabana/internal/events"
	"cabana/internal/google"
	"cabana/internal/lock"
	"cabana/internal/logging"
	"cabana/internal/metrics"
	"cabana/internal/notify"
	"cabana/internal/reservation"
	"cabana/internal/slots"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

func main() {
	// .env is optional; values referenced as ${VAR} in config.yaml come from it.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CABANA_CONFIG_PATH"))
	if err != nil {
		boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, os.Stdout)
	defer logCloser.Close()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid time zone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	var locker reservation.Locker
	switch {
	case cfg.Locking.Backend == "redis" && rdb != nil:
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL(), cfg.LockWait())
	case cfg.Locking.Backend == "redis":
		logger.Warn().Msg("locking.backend is redis but redis.address is empty, using in-process locks")
		fallthrough
	default:
		locker = lock.NewLocalLocker(cfg.LockWait())
	}

	bus := events.NewBus(&logger)
	svc := reservation.NewService(database, &logger,
		reservation.WithLocker(locker),
		reservation.WithPublisher(bus),
	)
	catalog := cache.NewCabins(database, rdb, cfg.CabinsCacheTTL(), &logger)
	calendar := slots.NewCalendar(nil, loc)

	// Initial load and hot reload of cabins.yaml.
	if err := config.WatchCabins(ctx, cfg.CabinsConfigPath, 30*time.Second, &logger, func(updated *config.CabinsConfig) {
		if err := database.SyncCabinsFromConfig(ctx, updated); err != nil {
			logger.Error().Err(err).Msg("failed to apply cabins config")
			return
		}
		calendar.Update(updated)
		catalog.Invalidate(ctx)
		logger.Info().Time("reloaded_at", time.Now()).Msg("cabins config applied")
	}); err != nil {
		logger.Error().Err(err).Str("path", cfg.CabinsConfigPath).Msg("cabins config watch failed")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		startBackups(ctx, database, cfg, &logger)
	}

	if cfg.Sheets.Enabled {
		sheetsSvc, err := google.NewSheetsService(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, loc, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("google sheets disabled")
		} else {
			sheetsSvc.Subscribe(bus)
			go sheetsSvc.Run(ctx, sheetsSource{svc, catalog}, cfg.SheetsInterval())
		}
	}

	if cfg.Telegram.BotToken != "" {
		startNotifier(ctx, cfg, svc, bus, loc, &logger)
	}

	var rateStore limiter.Store
	if rdb != nil {
		rateStore, err = sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "cabana:ratelimit"})
		if err != nil {
			logger.Fatal().Err(err).Msg("rate limit store error")
		}
	}

	server := api.NewServer(api.Deps{
		Reservations: svc,
		Cabins:       database,
		Catalog:      catalog,
		Occupancy:    database,
		Calendar:     calendar,
		Logger:       &logger,
	}, api.Options{
		Mode:            cfg.Server.Mode,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		JWTSecret:       cfg.Auth.JWTSecret,
		CreateRateLimit: cfg.Booking.CreateRateLimit,
		RateLimitStore:  rateStore,
	})
	router, err := server.Router()
	if err != nil {
		logger.Fatal().Err(err).Msg("build router error")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Str("timezone", loc.String()).Msg("cabana reservation service started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("http server error")
	}
	logger.Info().Msg("shutting down")
}

// sheetsSource joins the reservation listing with the cached cabin catalog.
type sheetsSource struct {
	*reservation.Service
	*cache.Cabins
}

func startBackups(ctx context.Context, database *db.DB, cfg *config.Config, logger *zerolog.Logger) {
	if cfg.Backup.Path == "" {
		cfg.Backup.Path = "backups"
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = 24
	}
	if cfg.Backup.RetentionDays <= 0 {
		cfg.Backup.RetentionDays = 14
	}
	interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
	backups := db.NewBackupService(database, cfg.Backup.Path, interval, cfg.Backup.RetentionDays, logger)
	go backups.Start(ctx)
}

func startNotifier(ctx context.Context, cfg *config.Config, svc *reservation.Service, bus *events.Bus, loc *time.Location, logger *zerolog.Logger) {
	if len(cfg.Telegram.StaffChatIDs) == 0 {
		logger.Warn().Msg("telegram.staff_chat_ids is empty, notifications disabled")
		return
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("telegram notifications disabled")
		return
	}
	bot.Debug = cfg.Telegram.Debug
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier authorized")

	n := notify.NewNotifier(bot, notify.Config{ChatIDs: cfg.Telegram.StaffChatIDs, Location: loc}, logger)
	n.Subscribe(bus)
	go n.Run(ctx)
	if cfg.Telegram.DigestHour >= 0 {
		n.StartDailyDigest(ctx, svc, cfg.Telegram.DigestHour)
	}
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctxPing, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	serve(ctx, "health", port, mux, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, "metrics", port, mux, logger)
}

func serve(ctx context.Context, name string, port int, h http.Handler, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str("server", name).Msg("server error")
	}
}
