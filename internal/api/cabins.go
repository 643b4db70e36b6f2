package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"cabana/internal/model"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/cabins lists every cabin, including disabled ones.
func (s *Server) listAllCabins(c *gin.Context) {
	cabins, err := s.catalog.ListCabins(c.Request.Context(), false)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if cabins == nil {
		cabins = []model.Cabin{}
	}
	c.JSON(http.StatusOK, gin.H{"cabins": cabins})
}

type cabinRequest struct {
	Name         *string      `json:"name"`
	Capacity     *int         `json:"capacity"`
	PricePerHour *model.Money `json:"price_per_hour"`
	Category     *string      `json:"category"`
	Description  *string      `json:"description"`
	IsActive     *bool        `json:"is_active"`
}

// apply copies the present fields onto cab and validates the result.
func (req cabinRequest) apply(cab *model.Cabin) error {
	if req.Name != nil {
		cab.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		cab.Capacity = *req.Capacity
	}
	if req.PricePerHour != nil {
		cab.PricePerHour = *req.PricePerHour
	}
	if req.Category != nil {
		cab.Category = model.Category(strings.ToUpper(*req.Category))
	}
	if req.Description != nil {
		cab.Description = *req.Description
	}
	if req.IsActive != nil {
		cab.IsActive = *req.IsActive
	}

	switch {
	case cab.Name == "":
		return errors.New("name is required")
	case cab.Capacity <= 0:
		return errors.New("capacity must be positive")
	case cab.PricePerHour < 0:
		return errors.New("price_per_hour must not be negative")
	case !cab.Category.Valid():
		return errors.New("unknown category")
	}
	return nil
}

// POST /api/admin/cabins
func (s *Server) createCabin(c *gin.Context) {
	var req cabinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	cab := model.Cabin{Capacity: 1, IsActive: true}
	if err := req.apply(&cab); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := s.cabins.CreateCabin(c.Request.Context(), &cab); err != nil {
		s.writeError(c, err)
		return
	}
	s.catalog.Invalidate(c.Request.Context())
	s.logger.Info().Str("by", c.GetString(ctxSubject)).Int64("id", cab.ID).Str("name", cab.Name).Msg("cabin created")
	c.JSON(http.StatusCreated, cab)
}

// PATCH /api/admin/cabins/:id
func (s *Server) updateCabin(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req cabinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	cab, err := s.cabins.GetCabin(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if cab == nil {
		notFound(c, "cabin not found")
		return
	}
	if err := req.apply(cab); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := s.cabins.UpdateCabin(c.Request.Context(), cab); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "cabin not found")
			return
		}
		s.writeError(c, err)
		return
	}
	s.catalog.Invalidate(c.Request.Context())
	if cab.Managed {
		s.logger.Warn().Int64("id", cab.ID).Msg("cabin is declared in cabins.yaml; the next sync will overwrite this edit")
	}
	c.JSON(http.StatusOK, cab)
}
