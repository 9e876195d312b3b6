package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/dar44/reserva-municipal-sub001/internal/api"
	"github.com/dar44/reserva-municipal-sub001/internal/auth"

	"github.com/gin-gonic/gin"
)

const SignatureHeader = "X-Signature"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Pay a reservation
// @Description  Opens a checkout for an unpaid reserva of the caller
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reserva ID"
// @Success      201 {object} payment.CheckoutResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Router       /reservas/{id}/pago [post]
func (h *Handler) PayReserva(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	h.startCheckout(c, Target{ReservaID: &id})
}

// @Summary      Pay a course enrollment
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Inscripcion ID"
// @Success      201 {object} payment.CheckoutResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Router       /inscripciones/{id}/pago [post]
func (h *Handler) PayInscripcion(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	h.startCheckout(c, Target{InscripcionID: &id})
}

func (h *Handler) startCheckout(c *gin.Context, t Target) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.service.StartCheckout(c.Request.Context(), actor, t)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTarget):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrTargetNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Forbidden"})
		case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrTargetCancelled), errors.Is(err, ErrCheckoutInProgress):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrUpstreamSync):
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Payment provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to start checkout"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary      Payment status
// @Description  Reconciles the payment with the provider and returns its estado. Safe to poll.
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Pago ID"
// @Success      200 {object} payment.ReconcileResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /pagos/{id}/estado [get]
func (h *Handler) Status(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.service.ReconcileFor(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPaymentID):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid payment id"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Forbidden"})
		case errors.Is(err, ErrTargetNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
		case errors.Is(err, ErrUpstreamSync):
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "upstream sync failed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to reconcile payment"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Payment provider webhook
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Param        X-Signature header string true "Hex HMAC-SHA256 of the body"
// @Success      200 {object} payment.WebhookResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /webhooks/pagos [post]
func (h *Handler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unreadable body"})
		return
	}

	result, err := h.service.HandleWebhook(c.Request.Context(), raw, c.GetHeader(SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid signature"})
		case errors.Is(err, ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid payload"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process webhook"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
