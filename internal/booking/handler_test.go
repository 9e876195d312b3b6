package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/venue"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) Cancel(ctx context.Context, actor auth.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockService) ListMine(ctx context.Context, actor auth.Actor) ([]BookingWithDetails, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockService) ListByVenue(ctx context.Context, recintoID int64) ([]BookingWithDetails, error) {
	args := m.Called(ctx, recintoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockService) Stats(ctx context.Context, from, to time.Time) ([]DayStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DayStats), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", citizen.UID)
		c.Set("user_role", citizen.Role)
		c.Next()
	})
	r.POST("/reservas", h.Create)
	r.DELETE("/reservas/:id", h.Cancel)
	r.GET("/reservas/mias", h.ListMine)
	r.GET("/recintos/:id/reservas", h.ListByVenue)
	r.GET("/admin/analytics/reservas", h.Stats)
	return r
}

func TestHandler_Create(t *testing.T) {
	body := `{"recinto_id":3,"start_at":"2030-05-01T10:00:00Z","end_at":"2030-05-01T11:00:00Z"}`

	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"Created", body, nil, http.StatusCreated, `"status":"activa"`},
		{"Conflict", body, ErrSlotUnavailable, http.StatusConflict, `"time slot unavailable"`},
		{"Blocked venue", body, ErrVenueUnavailable, http.StatusConflict, ""},
		{"Unknown venue", body, venue.ErrVenueNotFound, http.StatusNotFound, ""},
		{"End before start", `{"recinto_id":3,"start_at":"2030-05-01T11:00:00Z","end_at":"2030-05-01T10:00:00Z"}`, nil, http.StatusBadRequest, "EndAt"},
		{"Missing venue", `{"start_at":"2030-05-01T10:00:00Z","end_at":"2030-05-01T11:00:00Z"}`, nil, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("Create", mock.Anything, citizen, mock.Anything).Return(nil, tt.err)
			} else {
				svc.On("Create", mock.Anything, citizen, mock.Anything).Return(&Booking{ID: 1, RecintoID: 3, Status: StatusActive}, nil)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/reservas", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestHandler_Cancel(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
	}{
		{"Cancelled", "/reservas/5", nil, http.StatusOK},
		{"Forbidden", "/reservas/5", ErrForbidden, http.StatusForbidden},
		{"Not found", "/reservas/5", ErrBookingNotFound, http.StatusNotFound},
		{"Twice", "/reservas/5", ErrAlreadyCancelled, http.StatusConflict},
		{"Bad id", "/reservas/x", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Cancel", mock.Anything, citizen, int64(5)).Return(tt.err)

			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, httptest.NewRequest("DELETE", tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_Stats(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Missing params", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest("GET", "/admin/analytics/reservas", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bad format", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest("GET", "/admin/analytics/reservas?from=yesterday&to=today", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Ok", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Stats", mock.Anything, from, to).Return([]DayStats{{Day: from, Total: 3}}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/admin/analytics/reservas?from=2024-05-01T00:00:00Z&to=2024-06-01T00:00:00Z", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":3`)
	})
}
