package course

import (
	"errors"
	"net/http"

	"github.com/dar44/reserva-municipal-sub001/internal/api"
	"github.com/dar44/reserva-municipal-sub001/internal/auth"

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

// @Summary      Create a course
// @Description  Organizers publish a course that citizens can enroll in
// @Tags         cursos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body course.CreateCourseRequest true "Course payload"
// @Success      201 {object} course.Course
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /cursos [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req CreateCourseRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	course, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// @Summary      List courses
// @Tags         cursos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} course.Course
// @Failure      500 {object} api.ErrorResponse
// @Router       /cursos [get]
func (h *Handler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch courses"})
		return
	}

	c.JSON(http.StatusOK, courses)
}

// @Summary      Enroll in a course
// @Tags         cursos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Curso ID"
// @Success      201 {object} course.Enrollment
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /cursos/{id}/inscripciones [post]
func (h *Handler) Enroll(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.Enroll(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

// @Summary      My enrollments
// @Tags         cursos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} course.EnrollmentWithCourse
// @Failure      500 {object} api.ErrorResponse
// @Router       /inscripciones/mias [get]
func (h *Handler) ListMyEnrollments(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	out, err := h.service.ListMyEnrollments(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch enrollments"})
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Course not found"})
	case errors.Is(err, ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Insufficient permissions"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
