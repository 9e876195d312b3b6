package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/api"
	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/venue"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Book a venue
// @Description  Reserves [start_at, end_at) in a recinto for the caller
// @Tags         reservas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body booking.CreateRequest true "Reservation"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reservas [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// @Summary      Cancel a reservation
// @Tags         reservas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reserva ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /reservas/{id} [delete]
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Reservation cancelled"})
}

// @Summary      My reservations
// @Tags         reservas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} booking.BookingWithDetails
// @Failure      500 {object} api.ErrorResponse
// @Router       /reservas/mias [get]
func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	out, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, out)
}

// @Summary      Reservations of a venue
// @Description  Workers and admins only
// @Tags         reservas,admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Recinto ID"
// @Success      200 {array} booking.BookingWithDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /recintos/{id}/reservas [get]
func (h *Handler) ListByVenue(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	out, err := h.service.ListByVenue(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// @Summary      Reservation analytics
// @Description  Daily totals of reservations starting in [from, to). Admin only.
// @Tags         reservas,admin
// @Produce      json
// @Security     BearerAuth
// @Param        from query string true "Start datetime (RFC3339)"
// @Param        to   query string true "End datetime (RFC3339)"
// @Success      200 {object} booking.StatsResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/analytics/reservas [get]
func (h *Handler) Stats(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from and to query params are required"})
		return
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from format, use RFC3339"})
		return
	}

	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to format, use RFC3339"})
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{From: from, To: to, Data: stats})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInterval), errors.Is(err, ErrSlotInPast), errors.Is(err, ErrInvalidStatsRange):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Reservation not found"})
	case errors.Is(err, venue.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Venue not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Insufficient permissions"})
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrVenueUnavailable), errors.Is(err, ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
