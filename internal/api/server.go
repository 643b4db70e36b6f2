// Package api exposes the reservation service over HTTP.
package api

import (
	"context"
	"time"

	"cabana/internal/availability"
	"cabana/internal/model"
	"cabana/internal/reservation"
	"cabana/internal/slots"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
)

// CabinStore is the persistent cabin catalog.
type CabinStore interface {
	GetCabin(ctx context.Context, id int64) (*model.Cabin, error)
	ListCabins(ctx context.Context, activeOnly bool) ([]model.Cabin, error)
	CreateCabin(ctx context.Context, c *model.Cabin) error
	UpdateCabin(ctx context.Context, c *model.Cabin) error
}

// CabinCatalog serves catalog reads, usually through a cache.
type CabinCatalog interface {
	ListCabins(ctx context.Context, activeOnly bool) ([]model.Cabin, error)
	Invalidate(ctx context.Context)
}

// Deps are the collaborators behind the handlers.
type Deps struct {
	Reservations *reservation.Service
	Cabins       CabinStore
	Catalog      CabinCatalog // optional
	Occupancy    availability.Source
	Calendar     *slots.Calendar
	Logger       *zerolog.Logger
}

// Options configure the HTTP surface.
type Options struct {
	Mode            string // gin mode
	AllowedOrigins  []string
	JWTSecret       string
	CreateRateLimit string        // e.g. "10-M"; empty disables limiting
	RateLimitStore  limiter.Store // nil uses an in-memory store
}

type Server struct {
	svc       *reservation.Service
	cabins    CabinStore
	catalog   CabinCatalog
	occupancy availability.Source
	calendar  *slots.Calendar
	opts      Options
	now       func() time.Time
	logger    zerolog.Logger
}

func NewServer(deps Deps, opts Options) *Server {
	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = deps.Logger.With().Str("component", "api").Logger()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = uncachedCatalog{deps.Cabins}
	}
	calendar := deps.Calendar
	if calendar == nil {
		calendar = slots.NewCalendar(nil, time.UTC)
	}
	return &Server{
		svc:       deps.Reservations,
		cabins:    deps.Cabins,
		catalog:   catalog,
		occupancy: deps.Occupancy,
		calendar:  calendar,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() (*gin.Engine, error) {
	if s.opts.Mode != "" {
		gin.SetMode(s.opts.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.logger))
	r.Use(cors.New(corsConfig(s.opts.AllowedOrigins)))

	createLimit := func(c *gin.Context) { c.Next() }
	if s.opts.CreateRateLimit != "" {
		mw, err := NewRateLimiter(s.opts.CreateRateLimit, s.opts.RateLimitStore)
		if err != nil {
			return nil, err
		}
		createLimit = mw
	}

	pub := r.Group("/api")
	{
		pub.GET("/cabins", s.listCabins)
		pub.GET("/cabins/:id", s.getCabin)
		pub.GET("/cabins/:id/availability", s.cabinAvailability)
		pub.POST("/reservations", createLimit, s.createPublicReservation)
		pub.GET("/reservations/:code", s.getReservationByCode)
	}

	if s.opts.JWTSecret == "" {
		s.logger.Warn().Msg("auth.jwt_secret is empty, admin routes will reject every request")
	}
	admin := r.Group("/api/admin", JWTAuth([]byte(s.opts.JWTSecret)))
	{
		res := admin.Group("/reservations", RequireRole(RoleStaff, RoleAdmin))
		res.GET("", s.listReservations)
		res.POST("", s.createAdminReservation)
		res.GET("/export", s.exportReservations)
		res.GET("/:id", s.getReservation)
		res.PATCH("/:id", s.updateReservation)
		res.POST("/:id/cancel", s.cancelReservation)
		res.POST("/:id/approve", s.approveReservation)
		res.POST("/:id/reject", s.rejectReservation)
		res.POST("/:id/check-in", s.checkInReservation)
		res.POST("/:id/check-out", s.checkOutReservation)
		res.POST("/:id/status", s.transitionReservation)

		cab := admin.Group("/cabins", RequireRole(RoleAdmin))
		cab.GET("", s.listAllCabins)
		cab.POST("", s.createCabin)
		cab.PATCH("/:id", s.updateCabin)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type uncachedCatalog struct {
	CabinStore
}

func (uncachedCatalog) Invalidate(context.Context) {}
