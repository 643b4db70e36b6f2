package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"cabana/internal/db"
	"cabana/internal/export"
	"cabana/internal/model"
	"cabana/internal/reservation"
	"cabana/internal/slots"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db     *db.DB
	router *gin.Engine
	cabin  *model.Cabin
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "cabana.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cabin := &model.Cabin{Name: "Bangalo 1", Capacity: 4, PricePerHour: 8000, Category: model.CategoryBangalo, IsActive: true}
	require.NoError(t, database.CreateCabin(context.Background(), cabin))

	svc := reservation.NewService(database, &logger, reservation.WithClock(func() time.Time { return fixedNow }))
	if opts.JWTSecret == "" {
		opts.JWTSecret = testSecret
	}
	srv := NewServer(Deps{
		Reservations: svc,
		Cabins:       database,
		Occupancy:    database,
		Calendar:     slots.NewCalendar(nil, time.UTC),
		Logger:       &logger,
	}, opts)
	srv.now = func() time.Time { return fixedNow }

	router, err := srv.Router()
	require.NoError(t, err)
	return &testEnv{db: database, router: router, cabin: cabin}
}

func token(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "maria",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func bookingBody(cabinID int64, from, to string) map[string]any {
	return map[string]any{
		"cabin_id":  cabinID,
		"customer":  map[string]any{"name": "Ana Souza", "email": "ana@example.com", "phone": "+55 11 99999-0000"},
		"check_in":  "2026-01-15T" + from + ":00Z",
		"check_out": "2026-01-15T" + to + ":00Z",
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestPublicReservation_CreateAndLookup(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "10:00", "12:30"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[model.Reservation](t, w)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, model.SourceOnline, created.Source)
	assert.Equal(t, 2.5, created.HoursBooked)
	assert.Equal(t, model.Money(20000), created.TotalPrice)
	assert.Equal(t, "Bangalo 1", created.CabinName)

	w = env.do(t, http.MethodGet, "/api/reservations/"+created.Code, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[model.Reservation](t, w).ID)

	w = env.do(t, http.MethodGet, "/api/reservations/not-a-code", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicReservation_IgnoresConfirmAndSource(t *testing.T) {
	env := newTestEnv(t, Options{})

	body := bookingBody(env.cabin.ID, "10:00", "11:00")
	body["confirm"] = true
	body["source"] = "OFFLINE"

	w := env.do(t, http.MethodPost, "/api/reservations", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decode[model.Reservation](t, w)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, model.SourceOnline, r.Source)
}

func TestPublicReservation_Errors(t *testing.T) {
	env := newTestEnv(t, Options{})
	w := env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "10:00", "12:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	inactive := &model.Cabin{Name: "Old", Capacity: 2, PricePerHour: 1000, Category: model.CategoryTable, IsActive: false}
	require.NoError(t, env.db.CreateCabin(context.Background(), inactive))

	past := bookingBody(env.cabin.ID, "10:00", "11:00")
	past["check_in"], past["check_out"] = "2026-01-09T10:00:00Z", "2026-01-09T11:00:00Z"

	noName := bookingBody(env.cabin.ID, "14:00", "15:00")
	noName["customer"] = map[string]any{"email": "x@example.com"}

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"overlap", bookingBody(env.cabin.ID, "11:00", "13:00"), http.StatusConflict, "conflict"},
		{"inverted interval", bookingBody(env.cabin.ID, "15:00", "14:00"), http.StatusBadRequest, "invalid_interval"},
		{"empty interval", bookingBody(env.cabin.ID, "15:00", "15:00"), http.StatusBadRequest, "invalid_interval"},
		{"past date", past, http.StatusBadRequest, "past_date"},
		{"unknown cabin", bookingBody(999, "10:00", "11:00"), http.StatusNotFound, "cabin_not_found"},
		{"inactive cabin", bookingBody(inactive.ID, "10:00", "11:00"), http.StatusUnprocessableEntity, "cabin_inactive"},
		{"missing name", noName, http.StatusBadRequest, "invalid_input"},
		{"malformed body", map[string]any{"cabin_id": "x"}, http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/reservations", tt.body, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[errorBody](t, w).Code)
		})
	}

	// Touching the existing reservation is allowed.
	w = env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "12:00", "13:00"), "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPublicReservation_RateLimited(t *testing.T) {
	env := newTestEnv(t, Options{CreateRateLimit: "2-M"})

	hours := [][2]string{{"08:00", "09:00"}, {"09:00", "10:00"}, {"10:00", "11:00"}}
	var codes []int
	for _, h := range hours {
		codes = append(codes, env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, h[0], h[1]), "").Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cabins", nil, "").Code)
}

func TestCabins_Public(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	require.NoError(t, env.db.CreateCabin(ctx, &model.Cabin{Name: "Mesa 1", Capacity: 2, PricePerHour: 2000, Category: model.CategoryTable, IsActive: true}))
	hidden := &model.Cabin{Name: "Hidden", Capacity: 2, PricePerHour: 2000, Category: model.CategoryTable, IsActive: false}
	require.NoError(t, env.db.CreateCabin(ctx, hidden))

	w := env.do(t, http.MethodGet, "/api/cabins", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct{ Cabins []model.Cabin }](t, w).Cabins
	assert.Len(t, all, 2)

	w = env.do(t, http.MethodGet, "/api/cabins?category=table", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tables := decode[struct{ Cabins []model.Cabin }](t, w).Cabins
	require.Len(t, tables, 1)
	assert.Equal(t, "Mesa 1", tables[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/cabins?category=yacht", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cabins/1", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/cabins/"+itoa(hidden.ID), nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/cabins/abc", nil, "").Code)
}

func TestCabinAvailability(t *testing.T) {
	env := newTestEnv(t, Options{})
	w := env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "10:00", "12:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/cabins/1/availability?date=2026-01-15", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[availabilityResponse](t, w)
	assert.False(t, resp.Closed)
	assert.Equal(t, "UTC", resp.Timezone)
	require.Len(t, resp.Slots, 10)
	for _, s := range resp.Slots {
		booked := s.Start == "10:00" || s.Start == "11:00"
		assert.Equal(t, !booked, s.Available, s.Start)
	}
	assert.Equal(t, []slots.Window{{Start: "08:00", End: "10:00"}, {Start: "12:00", End: "18:00"}}, resp.FreeWindows)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/cabins/1/availability", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/cabins/1/availability?date=15/01/2026", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/cabins/42/availability?date=2026-01-15", nil, "").Code)
}

func TestAdmin_Auth(t *testing.T) {
	env := newTestEnv(t, Options{})

	expired := token(t, RoleAdmin, -time.Minute)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: RoleAdmin}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		bearer string
		status int
	}{
		{"no token", "/api/admin/reservations", "", http.StatusUnauthorized},
		{"expired", "/api/admin/reservations", expired, http.StatusUnauthorized},
		{"wrong secret", "/api/admin/reservations", forged, http.StatusUnauthorized},
		{"no expiry", "/api/admin/reservations", noExp, http.StatusUnauthorized},
		{"unknown role", "/api/admin/reservations", token(t, "guest", time.Hour), http.StatusForbidden},
		{"staff reads reservations", "/api/admin/reservations", token(t, RoleStaff, time.Hour), http.StatusOK},
		{"staff cannot manage cabins", "/api/admin/cabins", token(t, RoleStaff, time.Hour), http.StatusForbidden},
		{"admin manages cabins", "/api/admin/cabins", token(t, RoleAdmin, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil, tt.bearer)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestAdmin_Lifecycle(t *testing.T) {
	env := newTestEnv(t, Options{})
	staff := token(t, RoleStaff, time.Hour)

	body := bookingBody(env.cabin.ID, "10:00", "12:00")
	body["confirm"] = true
	w := env.do(t, http.MethodPost, "/api/admin/reservations", body, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decode[model.Reservation](t, w)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	assert.Equal(t, model.SourceOffline, r.Source)

	base := "/api/admin/reservations/" + itoa(r.ID)

	w = env.do(t, http.MethodPost, base+"/approve", nil, staff)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, w).Code)

	w = env.do(t, http.MethodPost, base+"/check-in", nil, staff)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.StatusCheckedIn, decode[model.Reservation](t, w).Status)

	w = env.do(t, http.MethodPost, base+"/check-out", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusCheckedOut, decode[model.Reservation](t, w).Status)

	w = env.do(t, http.MethodPost, base+"/cancel", nil, staff)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The slot is free again after check-out.
	w = env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "10:00", "12:00"), "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/admin/reservations/999/cancel", nil, staff).Code)
}

func TestAdmin_ApproveRejectAndStatus(t *testing.T) {
	env := newTestEnv(t, Options{})
	staff := token(t, RoleStaff, time.Hour)

	create := func(from, to string) string {
		w := env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, from, to), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return "/api/admin/reservations/" + itoa(decode[model.Reservation](t, w).ID)
	}

	a := create("08:00", "09:00")
	w := env.do(t, http.MethodPost, a+"/approve", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusConfirmed, decode[model.Reservation](t, w).Status)

	b := create("09:00", "10:00")
	w = env.do(t, http.MethodPost, b+"/reject", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusCancelled, decode[model.Reservation](t, w).Status)

	c := create("10:00", "11:00")
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, c+"/status", map[string]string{"status": "CHECKED_IN"}, staff).Code)

	w = env.do(t, http.MethodPost, c+"/status", map[string]string{"status": "confirmed"}, staff)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.StatusConfirmed, decode[model.Reservation](t, w).Status)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, c+"/status", map[string]string{"status": "LOST"}, staff).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, c+"/status", map[string]string{}, staff).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, c+"/status", map[string]string{"status": "PENDING"}, staff).Code)
}

func TestAdmin_UpdateReservation(t *testing.T) {
	env := newTestEnv(t, Options{})
	staff := token(t, RoleStaff, time.Hour)

	w := env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "10:00", "12:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[model.Reservation](t, w)
	w = env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, "14:00", "15:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	path := "/api/admin/reservations/" + itoa(first.ID)

	type updateResponse struct {
		Reservation model.Reservation `json:"reservation"`
		PriceStale  bool              `json:"price_stale"`
	}

	w = env.do(t, http.MethodPatch, path, map[string]any{"check_out": "2026-01-15T13:00:00Z"}, staff)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[updateResponse](t, w)
	assert.True(t, res.PriceStale)
	assert.Equal(t, model.Money(16000), res.Reservation.TotalPrice)

	w = env.do(t, http.MethodPatch, path, map[string]any{"recompute_price": true, "notes": "guarda-sol extra"}, staff)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[updateResponse](t, w)
	assert.False(t, res.PriceStale)
	assert.Equal(t, model.Money(24000), res.Reservation.TotalPrice)
	assert.Equal(t, "guarda-sol extra", res.Reservation.Notes)

	w = env.do(t, http.MethodPatch, path, map[string]any{"check_out": "2026-01-15T14:30:00Z"}, staff)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = env.do(t, http.MethodPatch, path, map[string]any{"check_out": "2026-01-15T09:00:00Z"}, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, "/api/admin/reservations/999", map[string]any{"notes": "x"}, staff).Code)
}

func TestAdmin_ListAndExport(t *testing.T) {
	env := newTestEnv(t, Options{})
	staff := token(t, RoleStaff, time.Hour)

	for _, h := range [][2]string{{"08:00", "09:00"}, {"10:00", "11:00"}, {"12:00", "13:00"}} {
		w := env.do(t, http.MethodPost, "/api/reservations", bookingBody(env.cabin.ID, h[0], h[1]), "")
		require.Equal(t, http.StatusCreated, w.Code)
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/admin/reservations/1/cancel", nil, staff).Code)

	type listResponse struct {
		Reservations []model.Reservation `json:"reservations"`
		Count        int                 `json:"count"`
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 3},
		{"pending only", "?status=pending", 2},
		{"several statuses", "?status=PENDING,CANCELLED", 3},
		{"by cabin", "?cabin_id=" + itoa(env.cabin.ID), 3},
		{"window", "?from=2026-01-15T09:30:00Z&to=2026-01-15T12:00:00Z", 1},
		{"by date", "?from=2026-01-15&to=2026-01-16", 3},
		{"paged", "?limit=2&offset=2", 1},
		{"offline source", "?source=offline", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/admin/reservations"+tt.query, nil, staff)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.want, decode[listResponse](t, w).Count)
		})
	}

	for _, q := range []string{"?status=LOST", "?cabin_id=x", "?from=yesterday", "?limit=-1"} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/admin/reservations"+q, nil, staff).Code, q)
	}

	w := env.do(t, http.MethodGet, "/api/admin/reservations/export?status=PENDING", nil, staff)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reservas_20260110_1200.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetReservations)
	require.NoError(t, err)
	assert.Len(t, rows, 3) // header + two pending
}

func TestAdmin_Cabins(t *testing.T) {
	env := newTestEnv(t, Options{})
	admin := token(t, RoleAdmin, time.Hour)

	w := env.do(t, http.MethodPost, "/api/admin/cabins", map[string]any{
		"name": "Lounge Sul", "capacity": 8, "price_per_hour": "150.00", "category": "lounge",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Cabin](t, w)
	assert.Equal(t, model.CategoryLounge, created.Category)
	assert.Equal(t, model.Money(15000), created.PricePerHour)
	assert.True(t, created.IsActive)

	w = env.do(t, http.MethodPost, "/api/admin/cabins", map[string]any{
		"name": "Lounge Sul", "capacity": 2, "price_per_hour": 10, "category": "LOUNGE",
	}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_name", decode[errorBody](t, w).Code)

	w = env.do(t, http.MethodPost, "/api/admin/cabins", map[string]any{"name": "X", "category": "YACHT"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/api/admin/cabins/" + itoa(created.ID)
	w = env.do(t, http.MethodPatch, path, map[string]any{"is_active": false, "price_per_hour": 200}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Cabin](t, w)
	assert.False(t, updated.IsActive)
	assert.Equal(t, model.Money(20000), updated.PricePerHour)
	assert.Equal(t, "Lounge Sul", updated.Name)

	// Disabled cabins leave the public catalog but stay in the admin one.
	w = env.do(t, http.MethodGet, "/api/cabins", nil, "")
	assert.Len(t, decode[struct{ Cabins []model.Cabin }](t, w).Cabins, 1)
	w = env.do(t, http.MethodGet, "/api/admin/cabins", nil, admin)
	assert.Len(t, decode[struct{ Cabins []model.Cabin }](t, w).Cabins, 2)

	w = env.do(t, http.MethodPost, "/api/reservations", bookingBody(created.ID, "10:00", "11:00"), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, "/api/admin/cabins/999", map[string]any{"capacity": 3}, admin).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPatch, path, map[string]any{"capacity": 0}, admin).Code)
}

func TestRouter_InvalidRateLimit(t *testing.T) {
	srv := NewServer(Deps{}, Options{CreateRateLimit: "lots"})
	_, err := srv.Router()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "lots"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
