package coursebooking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/course"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Request(ctx context.Context, actor auth.Actor, in RequestInput) (*CourseBooking, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CourseBooking), args.Error(1)
}

func (m *MockService) Decide(ctx context.Context, actor auth.Actor, id int64, d Decision) (*CourseBooking, error) {
	args := m.Called(ctx, actor, id, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CourseBooking), args.Error(1)
}

func (m *MockService) ListPending(ctx context.Context) ([]CourseBookingWithDetails, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CourseBookingWithDetails), args.Error(1)
}

func (m *MockService) ListMine(ctx context.Context, actor auth.Actor) ([]CourseBookingWithDetails, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CourseBookingWithDetails), args.Error(1)
}

func setupRouter(svc Service, actor auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", actor.UID)
		c.Set("user_role", actor.Role)
		c.Next()
	})
	r.POST("/curso-reservas", h.Request)
	r.PUT("/curso-reservas/:id/decision", h.Decide)
	r.GET("/curso-reservas/pendientes", h.ListPending)
	r.GET("/curso-reservas/mias", h.ListMine)
	return r
}

func TestHandler_Request(t *testing.T) {
	body := `{"curso_id":2,"recinto_id":3,"start_at":"2030-01-01T09:00:00Z","end_at":"2030-01-01T11:00:00Z"}`

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Created", nil, http.StatusCreated},
		{"Conflict", ErrSlotUnavailable, http.StatusConflict},
		{"Not my course", ErrForbidden, http.StatusForbidden},
		{"Unknown course", course.ErrCourseNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("Request", mock.Anything, organizer, mock.Anything).Return(nil, tt.err)
			} else {
				svc.On("Request", mock.Anything, organizer, mock.Anything).Return(&CourseBooking{ID: 20, Status: StatusPending}, nil)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/curso-reservas", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(svc, organizer).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_Decide(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{"Approved", `{"status":"aprobada"}`, nil, http.StatusOK},
		{"Unknown status", `{"status":"quizas"}`, nil, http.StatusBadRequest},
		{"Already reviewed", `{"status":"rechazada"}`, ErrForbidden, http.StatusForbidden},
		{"Lost race", `{"status":"rechazada"}`, ErrConcurrentUpdate, http.StatusConflict},
		{"Missing", `{"status":"rechazada"}`, ErrCourseBookingNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("Decide", mock.Anything, worker, int64(20), mock.Anything).Return(nil, tt.err)
			} else {
				svc.On("Decide", mock.Anything, worker, int64(20), mock.Anything).Return(&CourseBooking{ID: 20, Status: StatusApproved}, nil)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest("PUT", "/curso-reservas/20/decision", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(svc, worker).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
