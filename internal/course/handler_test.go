package course

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, actor auth.Actor, req CreateCourseRequest) (*Course, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Course), args.Error(1)
}

func (m *MockService) List(ctx context.Context) ([]Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Course), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id int64) (*Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Course), args.Error(1)
}

func (m *MockService) Enroll(ctx context.Context, actor auth.Actor, cursoID int64) (*Enrollment, error) {
	args := m.Called(ctx, actor, cursoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Enrollment), args.Error(1)
}

func (m *MockService) ListMyEnrollments(ctx context.Context, actor auth.Actor) ([]EnrollmentWithCourse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]EnrollmentWithCourse), args.Error(1)
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
	r.POST("/cursos", h.Create)
	r.GET("/cursos", h.List)
	r.POST("/cursos/:id/inscripciones", h.Enroll)
	r.GET("/inscripciones/mias", h.ListMyEnrollments)
	return r
}

func TestHandler_Create(t *testing.T) {
	organizer := auth.Actor{UID: 5, Role: auth.RoleOrganizer}

	t.Run("Created", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Create", mock.Anything, organizer, CreateCourseRequest{Name: "Yoga", PriceCents: 2000}).
			Return(&Course{ID: 1, Name: "Yoga"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/cursos", strings.NewReader(`{"name":"Yoga","price_cents":2000}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, organizer).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		citizen := auth.Actor{UID: 7, Role: auth.RoleCitizen}
		svc := new(MockService)
		svc.On("Create", mock.Anything, citizen, mock.Anything).Return(nil, ErrForbidden)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/cursos", strings.NewReader(`{"name":"Yoga"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, citizen).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_Enroll(t *testing.T) {
	citizen := auth.Actor{UID: 7, Role: auth.RoleCitizen}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Created", nil, http.StatusCreated},
		{"Duplicate", ErrAlreadyEnrolled, http.StatusConflict},
		{"Unknown course", ErrCourseNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("Enroll", mock.Anything, citizen, int64(3)).Return(nil, tt.err)
			} else {
				svc.On("Enroll", mock.Anything, citizen, int64(3)).Return(&Enrollment{ID: 1}, nil)
			}

			w := httptest.NewRecorder()
			setupRouter(svc, citizen).ServeHTTP(w, httptest.NewRequest("POST", "/cursos/3/inscripciones", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
