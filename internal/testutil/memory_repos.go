// Package testutil provides in-memory repository implementations used by
// service and transport tests. They mirror the Postgres semantics the
// services rely on: pgx.ErrNoRows for missing rows and
// repository.ErrDuplicate for unique-constraint violations, with the
// check-and-insert done under a single lock.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
)

// MemoryUserRepo is an in-memory repository.UserRepository.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewMemoryUserRepo builds an empty user store.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]domain.User)}
}

// Create inserts a user, enforcing email uniqueness atomically.
func (r *MemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// GetByID returns a stored user by id.
func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

// GetByEmail returns a stored user by email.
func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// Delete removes a user; used to simulate tokens for vanished accounts.
func (r *MemoryUserRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// MemoryCourseRepo is an in-memory repository.CourseRepository. Creators
// are resolved through the associated user repo, like the SQL join does.
type MemoryCourseRepo struct {
	mu      sync.Mutex
	courses map[string]domain.Course
	order   []string
	Users   *MemoryUserRepo
}

// NewMemoryCourseRepo builds an empty course store.
func NewMemoryCourseRepo(users *MemoryUserRepo) *MemoryCourseRepo {
	return &MemoryCourseRepo{courses: make(map[string]domain.Course), Users: users}
}

// Create inserts a course.
func (r *MemoryCourseRepo) Create(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	r.courses[course.ID] = *course
	r.order = append(r.order, course.ID)
	return nil
}

// Update replaces a stored course document.
func (r *MemoryCourseRepo) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.courses[course.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = time.Now()
	r.courses[course.ID] = *course
	return nil
}

// GetByID returns a course with its creator resolved.
func (r *MemoryCourseRepo) GetByID(ctx context.Context, id string) (*repository.CourseWithCreator, error) {
	r.mu.Lock()
	course, ok := r.courses[id]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.withCreator(ctx, course)
}

// ListWithFilter returns matching courses in creation order.
func (r *MemoryCourseRepo) ListWithFilter(ctx context.Context, filter repository.CourseFilter) ([]repository.CourseWithCreator, error) {
	matched := r.matching(filter)

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	items := make([]repository.CourseWithCreator, 0, len(matched))
	for _, course := range matched {
		item, err := r.withCreator(ctx, course)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// CountWithFilter counts matching courses.
func (r *MemoryCourseRepo) CountWithFilter(_ context.Context, filter repository.CourseFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *MemoryCourseRepo) matching(filter repository.CourseFilter) []domain.Course {
	r.mu.Lock()
	defer r.mu.Unlock()
	term := strings.ToLower(filter.SearchTerm)
	matched := make([]domain.Course, 0, len(r.order))
	for _, id := range r.order {
		course := r.courses[id]
		if term != "" &&
			!strings.Contains(strings.ToLower(course.Title), term) &&
			!strings.Contains(strings.ToLower(course.Description), term) {
			continue
		}
		matched = append(matched, course)
	}
	return matched
}

func (r *MemoryCourseRepo) withCreator(ctx context.Context, course domain.Course) (*repository.CourseWithCreator, error) {
	creator, err := r.Users.GetByID(ctx, course.CreatorID)
	if err != nil {
		return nil, err
	}
	return &repository.CourseWithCreator{
		Course:  course,
		Creator: domain.UserRef{ID: creator.ID, Name: creator.Name, Email: creator.Email},
	}, nil
}

type enrollmentKey struct {
	courseID string
	userID   string
}

// MemoryEnrollmentRepo is an in-memory repository.EnrollmentRepository.
type MemoryEnrollmentRepo struct {
	mu      sync.Mutex
	rows    map[enrollmentKey]time.Time
	ordinal map[enrollmentKey]int
	next    int
	Users   *MemoryUserRepo
}

// NewMemoryEnrollmentRepo builds an empty enrollment store.
func NewMemoryEnrollmentRepo(users *MemoryUserRepo) *MemoryEnrollmentRepo {
	return &MemoryEnrollmentRepo{
		rows:    make(map[enrollmentKey]time.Time),
		ordinal: make(map[enrollmentKey]int),
		Users:   users,
	}
}

// Create inserts the join row; the duplicate check and insert happen under
// one lock, mirroring the primary-key guarantee.
func (r *MemoryEnrollmentRepo) Create(_ context.Context, courseID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := enrollmentKey{courseID: courseID, userID: userID}
	if _, exists := r.rows[key]; exists {
		return repository.ErrDuplicate
	}
	r.rows[key] = time.Now()
	r.ordinal[key] = r.next
	r.next++
	return nil
}

// Exists reports whether the pair is enrolled.
func (r *MemoryEnrollmentRepo) Exists(_ context.Context, courseID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.rows[enrollmentKey{courseID: courseID, userID: userID}]
	return exists, nil
}

// ListStudentsByCourse returns enrolled students in enrollment order.
func (r *MemoryEnrollmentRepo) ListStudentsByCourse(ctx context.Context, courseID string) ([]domain.UserRef, error) {
	keys := r.sortedKeys(func(k enrollmentKey) bool { return k.courseID == courseID })

	students := make([]domain.UserRef, 0, len(keys))
	for _, key := range keys {
		user, err := r.Users.GetByID(ctx, key.userID)
		if err != nil {
			return nil, err
		}
		students = append(students, domain.UserRef{ID: user.ID, Name: user.Name, Email: user.Email})
	}
	return students, nil
}

// ListCourseIDsByUser returns the user's course ids in enrollment order.
func (r *MemoryEnrollmentRepo) ListCourseIDsByUser(_ context.Context, userID string) ([]string, error) {
	keys := r.sortedKeys(func(k enrollmentKey) bool { return k.userID == userID })
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, key.courseID)
	}
	return ids, nil
}

// Count returns the total number of join rows.
func (r *MemoryEnrollmentRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *MemoryEnrollmentRepo) sortedKeys(match func(enrollmentKey) bool) []enrollmentKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]enrollmentKey, 0, len(r.rows))
	for key := range r.rows {
		if match(key) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return r.ordinal[keys[i]] < r.ordinal[keys[j]] })
	return keys
}
