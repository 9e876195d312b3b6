package course

import (
	"context"
	"errors"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrForbidden       = errors.New("forbidden")
)

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateCourseRequest) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	Get(ctx context.Context, id int64) (*Course, error)
	Enroll(ctx context.Context, actor auth.Actor, cursoID int64) (*Enrollment, error)
	ListMyEnrollments(ctx context.Context, actor auth.Actor) ([]EnrollmentWithCourse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateCourseRequest) (*Course, error) {
	if actor.Role != auth.RoleOrganizer && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.Create(ctx, actor.UID, req)
}

func (s *service) List(ctx context.Context) ([]Course, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Enroll(ctx context.Context, actor auth.Actor, cursoID int64) (*Enrollment, error) {
	if _, err := s.repo.GetByID(ctx, cursoID); err != nil {
		return nil, err
	}

	e, err := s.repo.Enroll(ctx, cursoID, actor.UID)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("course enrollment created", "curso_id", cursoID, "user_id", actor.UID)
	return e, nil
}

func (s *service) ListMyEnrollments(ctx context.Context, actor auth.Actor) ([]EnrollmentWithCourse, error) {
	return s.repo.GetUserEnrollments(ctx, actor.UID)
}
