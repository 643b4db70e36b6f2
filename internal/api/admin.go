package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cabana/internal/export"
	"cabana/internal/model"
	"cabana/internal/reservation"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/reservations?cabin_id=&status=PENDING,CONFIRMED&source=&from=&to=&limit=&offset=
func (s *Server) listReservations(c *gin.Context) {
	filter, ok := s.parseFilter(c)
	if !ok {
		return
	}
	rs, err := s.svc.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if rs == nil {
		rs = []model.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"reservations": rs, "count": len(rs)})
}

// POST /api/admin/reservations
func (s *Server) createAdminReservation(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Source == "" {
		req.Source = model.SourceOffline
	}

	r, err := s.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info().Str("by", c.GetString(ctxSubject)).Int64("id", r.ID).Msg("reservation created by staff")
	c.JSON(http.StatusCreated, r)
}

// GET /api/admin/reservations/export
func (s *Server) exportReservations(c *gin.Context) {
	filter, ok := s.parseFilter(c)
	if !ok {
		return
	}
	filter.Limit, filter.Offset = 0, 0

	rs, err := s.svc.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReservations(&buf, rs, s.calendar.Location()); err != nil {
		s.writeError(c, fmt.Errorf("export reservations: %w", err))
		return
	}

	name := fmt.Sprintf("reservas_%s.xlsx", s.now().In(s.calendar.Location()).Format("20060102_1504"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// GET /api/admin/reservations/:id
func (s *Server) getReservation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	r, err := s.svc.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// updateRequest is a partial edit; absent fields are left unchanged.
type updateRequest struct {
	CheckIn        *time.Time   `json:"check_in"`
	CheckOut       *time.Time   `json:"check_out"`
	Name           *string      `json:"name"`
	Email          *string      `json:"email"`
	Phone          *string      `json:"phone"`
	Document       *string      `json:"document"`
	Notes          *string      `json:"notes"`
	HoursBooked    *float64     `json:"hours_booked"`
	TotalPrice     *model.Money `json:"total_price"`
	RecomputePrice bool         `json:"recompute_price"`
}

// PATCH /api/admin/reservations/:id
func (s *Server) updateReservation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := s.svc.Update(c.Request.Context(), id, reservation.UpdateInput{
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Document:       req.Document,
		Notes:          req.Notes,
		HoursBooked:    req.HoursBooked,
		TotalPrice:     req.TotalPrice,
		RecomputePrice: req.RecomputePrice,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res.Reservation, "price_stale": res.PriceStale})
}

// applyStatus runs a lifecycle action on :id and writes the stored reservation.
func (s *Server) applyStatus(c *gin.Context, action func(ctx context.Context, id int64) (*model.Reservation, error)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	r, err := action(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info().
		Str("by", c.GetString(ctxSubject)).
		Int64("id", r.ID).
		Str("status", string(r.Status)).
		Msg("reservation status changed")
	c.JSON(http.StatusOK, r)
}

func (s *Server) cancelReservation(c *gin.Context)   { s.applyStatus(c, s.svc.Cancel) }
func (s *Server) approveReservation(c *gin.Context)  { s.applyStatus(c, s.svc.Approve) }
func (s *Server) rejectReservation(c *gin.Context)   { s.applyStatus(c, s.svc.Reject) }
func (s *Server) checkInReservation(c *gin.Context)  { s.applyStatus(c, s.svc.CheckIn) }
func (s *Server) checkOutReservation(c *gin.Context) { s.applyStatus(c, s.svc.CheckOut) }

// POST /api/admin/reservations/:id/status {"status": "CONFIRMED"}
func (s *Server) transitionReservation(c *gin.Context) {
	var req struct {
		Status model.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	target := model.Status(strings.ToUpper(string(req.Status)))
	if !target.Valid() {
		badRequest(c, "unknown status")
		return
	}
	s.applyStatus(c, func(ctx context.Context, id int64) (*model.Reservation, error) {
		return s.svc.TransitionStatus(ctx, id, target)
	})
}

// parseFilter reads listing filters from the query string. Dates accept
// RFC 3339 or YYYY-MM-DD in the club's time zone.
func (s *Server) parseFilter(c *gin.Context) (model.ReservationFilter, bool) {
	var f model.ReservationFilter

	if v := c.Query("cabin_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid cabin_id")
			return f, false
		}
		f.CabinID = id
	}
	if v := c.Query("status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Statuses = append(f.Statuses, model.Status(strings.ToUpper(part)))
			}
		}
	}
	if v := c.Query("source"); v != "" {
		f.Source = model.Source(strings.ToUpper(v))
	}

	var err error
	if f.From, err = s.parseTimeParam(c.Query("from")); err != nil {
		badRequest(c, "invalid from")
		return f, false
	}
	if f.To, err = s.parseTimeParam(c.Query("to")); err != nil {
		badRequest(c, "invalid to")
		return f, false
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid "+p.name)
			return f, false
		}
		*p.dst = n
	}
	return f, true
}

func (s *Server) parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return s.calendar.ParseDate(v)
}
