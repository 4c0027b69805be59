package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// EnrollmentRepository persists the course<->user join relation. The
// composite primary key makes Create the serialization point for
// concurrent enrollments of the same pair.
type EnrollmentRepository interface {
	Create(ctx context.Context, courseID, userID string) error
	Exists(ctx context.Context, courseID, userID string) (bool, error)
	ListStudentsByCourse(ctx context.Context, courseID string) ([]domain.UserRef, error)
	ListCourseIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository instantiates repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) Create(ctx context.Context, courseID, userID string) error {
	const query = `INSERT INTO enrollments (course_id, user_id) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, courseID, userID); err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, courseID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, courseID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *enrollmentRepository) ListStudentsByCourse(ctx context.Context, courseID string) ([]domain.UserRef, error) {
	const query = `
        SELECT u.id, u.name, u.email
        FROM enrollments e
        JOIN users u ON u.id = e.user_id
        WHERE e.course_id=$1
        ORDER BY e.created_at ASC`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]domain.UserRef, 0)
	for rows.Next() {
		var ref domain.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, err
		}
		students = append(students, ref)
	}
	return students, rows.Err()
}

func (r *enrollmentRepository) ListCourseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `
        SELECT course_id FROM enrollments WHERE user_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
