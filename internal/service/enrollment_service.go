package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util"
)

// EnrollmentService runs the enrollment workflow. The linkage lives in a
// single join relation, so there is no two-document write to keep
// consistent: the insert either fully happens or fully doesn't.
type EnrollmentService struct {
	courses     repository.CourseRepository
	users       repository.UserRepository
	enrollments repository.EnrollmentRepository
	dispatcher  events.Dispatcher
}

// EnrollmentDependencies bundles requirements for the enrollment service.
type EnrollmentDependencies struct {
	CourseRepo     repository.CourseRepository
	UserRepo       repository.UserRepository
	EnrollmentRepo repository.EnrollmentRepository
	Dispatcher     events.Dispatcher
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	return &EnrollmentService{
		courses:     deps.CourseRepo,
		users:       deps.UserRepo,
		enrollments: deps.EnrollmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Enroll links a user to a course exactly once. Two concurrent requests
// for the same pair cannot both succeed: the advisory existence check only
// shortcuts the common case, the join-table primary key decides the race.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID, userID string) error {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("course", map[string]any{"courseId": courseID})
		}
		return apperrors.MapError(err)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"userId": userID})
		}
		return apperrors.MapError(err)
	}

	enrolled, err := s.enrollments.Exists(ctx, courseID, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if enrolled {
		return apperrors.NewConflict("already enrolled in this course", nil)
	}

	if err := s.enrollments.Create(ctx, courseID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("already enrolled in this course", nil)
		}
		return apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventStudentEnrolled, events.StudentEnrolledPayload{
			CourseID: courseID,
			UserID:   userID,
		}))
	}
	return nil
}

// EnrolledCourseIDs lists the courses a user is enrolled in, in
// enrollment order.
func (s *EnrollmentService) EnrolledCourseIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.enrollments.ListCourseIDsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ids, nil
}
