package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// CourseFilter captures catalog search parameters.
type CourseFilter struct {
	SearchTerm string
	Limit      int
	Offset     int
}

// CourseWithCreator pairs a course with its creator's public identity.
type CourseWithCreator struct {
	Course  domain.Course
	Creator domain.UserRef
}

// CourseRepository encapsulates course persistence.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*CourseWithCreator, error)
	ListWithFilter(ctx context.Context, filter CourseFilter) ([]CourseWithCreator, error)
	CountWithFilter(ctx context.Context, filter CourseFilter) (int, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	content, err := encodeContent(course.Content)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO courses (title, description, content, creator_id, enrollment_status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		course.Title,
		course.Description,
		content,
		course.CreatorID,
		course.EnrollmentStatus,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	content, err := encodeContent(course.Content)
	if err != nil {
		return err
	}

	const query = `
        UPDATE courses SET title=$1, description=$2, content=$3, enrollment_status=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		course.Title,
		course.Description,
		content,
		course.EnrollmentStatus,
		course.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*CourseWithCreator, error) {
	const query = `
        SELECT c.id, c.title, c.description, c.content, c.creator_id, c.enrollment_status,
               c.created_at, c.updated_at, u.id, u.name, u.email
        FROM courses c
        JOIN users u ON u.id = c.creator_id
        WHERE c.id=$1`

	row := r.pool.QueryRow(ctx, query, id)
	item, err := scanCourseWithCreator(row)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *courseRepository) ListWithFilter(ctx context.Context, filter CourseFilter) ([]CourseWithCreator, error) {
	query := `
        SELECT c.id, c.title, c.description, c.content, c.creator_id, c.enrollment_status,
               c.created_at, c.updated_at, u.id, u.name, u.email
        FROM courses c
        JOIN users u ON u.id = c.creator_id`
	args := []any{}

	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		query += fmt.Sprintf(" WHERE c.title ILIKE $%d OR c.description ILIKE $%d", len(args), len(args))
	}

	query += " ORDER BY c.created_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CourseWithCreator, 0)
	for rows.Next() {
		item, err := scanCourseWithCreator(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *courseRepository) CountWithFilter(ctx context.Context, filter CourseFilter) (int, error) {
	query := `SELECT COUNT(*) FROM courses c`
	args := []any{}

	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		query += fmt.Sprintf(" WHERE c.title ILIKE $%d OR c.description ILIKE $%d", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanCourseWithCreator(row pgx.Row) (*CourseWithCreator, error) {
	var (
		item    CourseWithCreator
		content []byte
	)
	if err := row.Scan(
		&item.Course.ID,
		&item.Course.Title,
		&item.Course.Description,
		&content,
		&item.Course.CreatorID,
		&item.Course.EnrollmentStatus,
		&item.Course.CreatedAt,
		&item.Course.UpdatedAt,
		&item.Creator.ID,
		&item.Creator.Name,
		&item.Creator.Email,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &item.Course.Content); err != nil {
		return nil, err
	}
	return &item, nil
}

func encodeContent(blocks []domain.ContentBlock) ([]byte, error) {
	if blocks == nil {
		blocks = []domain.ContentBlock{}
	}
	return json.Marshal(blocks)
}
