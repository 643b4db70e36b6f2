package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"cabana/internal/availability"
	"cabana/internal/model"
	"cabana/internal/reservation"
	"cabana/internal/slots"

	"github.com/gin-gonic/gin"
)

// createRequest is the body of POST /api/reservations and its admin twin.
type createRequest struct {
	CabinID  int64          `json:"cabin_id" binding:"required"`
	Customer model.Customer `json:"customer"`
	CheckIn  time.Time      `json:"check_in" binding:"required"`
	CheckOut time.Time      `json:"check_out" binding:"required"`
	Notes    string         `json:"notes"`

	// Admin only.
	Source  model.Source `json:"source"`
	Confirm bool         `json:"confirm"`
}

func (req createRequest) input() reservation.CreateInput {
	return reservation.CreateInput{
		CabinID:  req.CabinID,
		Customer: req.Customer,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Source:   req.Source,
		Notes:    req.Notes,
		Confirm:  req.Confirm,
	}
}

// GET /api/cabins?category=BANGALO
func (s *Server) listCabins(c *gin.Context) {
	cabins, err := s.catalog.ListCabins(c.Request.Context(), true)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if cat := strings.ToUpper(c.Query("category")); cat != "" {
		if !model.Category(cat).Valid() {
			badRequest(c, "unknown category")
			return
		}
		filtered := cabins[:0:0]
		for _, cab := range cabins {
			if string(cab.Category) == cat {
				filtered = append(filtered, cab)
			}
		}
		cabins = filtered
	}

	if cabins == nil {
		cabins = []model.Cabin{}
	}
	c.JSON(http.StatusOK, gin.H{"cabins": cabins})
}

// GET /api/cabins/:id
func (s *Server) getCabin(c *gin.Context) {
	cabin, ok := s.activeCabin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cabin)
}

// availabilityResponse is the day grid of one cabin.
type availabilityResponse struct {
	CabinID     int64            `json:"cabin_id"`
	Date        string           `json:"date"`
	Timezone    string           `json:"timezone"`
	Closed      bool             `json:"closed"`
	Reason      string           `json:"reason,omitempty"`
	Slots       []slots.SlotInfo `json:"slots"`
	FreeWindows []slots.Window   `json:"free_windows"`
}

// GET /api/cabins/:id/availability?date=YYYY-MM-DD
func (s *Server) cabinAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		badRequest(c, "date is required")
		return
	}
	date, err := s.calendar.ParseDate(dateStr)
	if err != nil {
		badRequest(c, "invalid date format; expected YYYY-MM-DD")
		return
	}

	cabin, ok := s.activeCabin(c)
	if !ok {
		return
	}

	schedule := s.calendar.Schedule(cabin.ID, date)
	gen := slots.NewGenerator(availability.New(s.occupancy)).WithClock(s.now)
	daySlots, err := gen.GenerateSlots(c.Request.Context(), cabin.ID, date, schedule)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, availabilityResponse{
		CabinID:     cabin.ID,
		Date:        dateStr,
		Timezone:    s.calendar.Location().String(),
		Closed:      schedule.IsClosed,
		Reason:      schedule.Reason,
		Slots:       slots.ToSlotInfo(daySlots),
		FreeWindows: slots.FreeWindows(daySlots),
	})
}

// POST /api/reservations
func (s *Server) createPublicReservation(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	in := req.input()
	in.Source = model.SourceOnline
	in.Confirm = false

	r, err := s.svc.Create(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /api/reservations/:code
func (s *Server) getReservationByCode(c *gin.Context) {
	r, err := s.svc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// activeCabin loads :id and writes 404 when the cabin is missing or disabled.
func (s *Server) activeCabin(c *gin.Context) (*model.Cabin, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}
	cabin, err := s.cabins.GetCabin(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	if cabin == nil || !cabin.IsActive {
		notFound(c, "cabin not found")
		return nil, false
	}
	return cabin, true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
