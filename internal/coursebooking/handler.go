package coursebooking

import (
	"errors"
	"net/http"

	"github.com/dar44/reserva-municipal-sub001/internal/api"
	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/course"
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

// @Summary      Request a venue for a course
// @Description  Organizers ask for [start_at, end_at) in a recinto. The request starts pendiente.
// @Tags         curso-reservas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body coursebooking.RequestInput true "Course booking request"
// @Success      201 {object} coursebooking.CourseBooking
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /curso-reservas [post]
func (h *Handler) Request(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var in RequestInput
	if !api.BindAndValidate(c, &in) {
		return
	}

	cb, err := h.service.Request(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cb)
}

// @Summary      Review a course booking
// @Description  Workers approve, reject or cancel pendiente requests. Admins may revise any decision.
// @Tags         curso-reservas,admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Curso reserva ID"
// @Param        request body coursebooking.Decision true "Decision"
// @Success      200 {object} coursebooking.CourseBooking
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /curso-reservas/{id}/decision [put]
func (h *Handler) Decide(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	var d Decision
	if !api.BindAndValidate(c, &d) {
		return
	}

	cb, err := h.service.Decide(c.Request.Context(), actor, id, d)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cb)
}

// @Summary      Pending course bookings
// @Tags         curso-reservas,admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} coursebooking.CourseBookingWithDetails
// @Failure      500 {object} api.ErrorResponse
// @Router       /curso-reservas/pendientes [get]
func (h *Handler) ListPending(c *gin.Context) {
	out, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch course bookings"})
		return
	}

	c.JSON(http.StatusOK, out)
}

// @Summary      My course bookings
// @Tags         curso-reservas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} coursebooking.CourseBookingWithDetails
// @Failure      500 {object} api.ErrorResponse
// @Router       /curso-reservas/mias [get]
func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	out, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch course bookings"})
		return
	}

	c.JSON(http.StatusOK, out)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInterval), errors.Is(err, ErrSlotInPast), errors.Is(err, ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrCourseBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Course booking not found"})
	case errors.Is(err, course.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Course not found"})
	case errors.Is(err, venue.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Venue not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Insufficient permissions"})
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrVenueUnavailable),
		errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
