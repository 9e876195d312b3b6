package venue

import (
	"errors"
	"net/http"

	"github.com/dar44/reserva-municipal-sub001/internal/api"

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

// @Summary      Create a venue
// @Description  Admin-only: register a new recinto
// @Tags         admin,recintos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body venue.CreateVenueRequest true "Venue payload"
// @Success      201 {object} venue.Venue
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/recintos [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateVenueRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create venue"})
		return
	}

	c.JSON(http.StatusCreated, v)
}

// @Summary      List venues
// @Tags         recintos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} venue.Venue
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /recintos [get]
func (h *Handler) List(c *gin.Context) {
	venues, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch venues"})
		return
	}

	c.JSON(http.StatusOK, venues)
}

// @Summary      Get a venue
// @Tags         recintos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Recinto ID"
// @Success      200 {object} venue.Venue
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /recintos/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	v, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// @Summary      Change venue state
// @Description  Admin-only: set a recinto to Disponible, No disponible or Bloqueado
// @Tags         admin,recintos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Recinto ID"
// @Param        request body venue.SetStateRequest true "New state"
// @Success      200 {object} venue.Venue
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/recintos/{id}/estado [put]
func (h *Handler) SetState(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	var req SetStateRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	v, err := h.service.SetState(c.Request.Context(), id, req.State)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrVenueNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Venue not found"})
	case errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
