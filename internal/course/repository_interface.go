package course

import "context"

type Repository interface {
	Create(ctx context.Context, organizerUID int, req CreateCourseRequest) (*Course, error)
	GetAll(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id int64) (*Course, error)
	Enroll(ctx context.Context, cursoID int64, userID int) (*Enrollment, error)
	GetUserEnrollments(ctx context.Context, userID int) ([]EnrollmentWithCourse, error)
}
