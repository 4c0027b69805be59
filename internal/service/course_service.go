package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/cache"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	"github.com/spec-kit/course-service/internal/validation"
	apperrors "github.com/spec-kit/course-service/pkg/util"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CourseService coordinates catalog workflows.
type CourseService struct {
	courses     repository.CourseRepository
	users       repository.UserRepository
	enrollments repository.EnrollmentRepository
	listCache   *cache.CourseListCache
	dispatcher  events.Dispatcher
}

// CourseDependencies bundles requirements for the course service.
type CourseDependencies struct {
	CourseRepo     repository.CourseRepository
	UserRepo       repository.UserRepository
	EnrollmentRepo repository.EnrollmentRepository
	ListCache      *cache.CourseListCache
	Dispatcher     events.Dispatcher
}

// CourseUpdateInput is a partial course patch; nil fields keep the stored
// value. The merged document is re-validated before persisting.
type CourseUpdateInput struct {
	Title            *string
	Description      *string
	Content          []validation.ContentBlockInput
	EnrollmentStatus *string
}

// CoursePage is one page of the catalog listing.
type CoursePage struct {
	Items       []repository.CourseWithCreator `json:"items"`
	Total       int                            `json:"total"`
	CurrentPage int                            `json:"current_page"`
	TotalPages  int                            `json:"total_pages"`
}

// NewCourseService constructs the service.
func NewCourseService(deps CourseDependencies) *CourseService {
	return &CourseService{
		courses:     deps.CourseRepo,
		users:       deps.UserRepo,
		enrollments: deps.EnrollmentRepo,
		listCache:   deps.ListCache,
		dispatcher:  deps.Dispatcher,
	}
}

// Create validates the payload and persists a course for the creator.
func (s *CourseService) Create(ctx context.Context, creatorID string, input validation.CourseInput) (*domain.Course, error) {
	normalized, vErrs := validation.ValidateCourse(input)
	if len(vErrs) > 0 {
		return nil, apperrors.NewValidationError("validation failed", vErrs.Details())
	}

	// Creator must reference an existing account even when the token is valid.
	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}

	course := &domain.Course{
		Title:            normalized.Title,
		Description:      normalized.Description,
		Content:          normalized.Content,
		CreatorID:        creatorID,
		EnrollmentStatus: normalized.EnrollmentStatus,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.listCache.Invalidate(ctx)
	s.publish(ctx, events.EventCourseCreated, events.CourseCreatedPayload{
		CourseID:  course.ID,
		CreatorID: course.CreatorID,
		Title:     course.Title,
		Status:    course.EnrollmentStatus,
	})
	return course, nil
}

// List returns a catalog page matching the search term, creator resolved.
func (s *CourseService) List(ctx context.Context, page, limit int, search string) (*CoursePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	search = strings.TrimSpace(search)

	if payload, ok := s.listCache.Get(ctx, page, limit, search); ok {
		var cached CoursePage
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	filter := repository.CourseFilter{
		SearchTerm: search,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	items, err := s.courses.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.courses.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &CoursePage{
		Items:       items,
		Total:       total,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
	}
	if payload, err := json.Marshal(result); err == nil {
		s.listCache.Set(ctx, page, limit, search, payload)
	}
	return result, nil
}

// Get returns one course with creator and enrolled students resolved.
func (s *CourseService) Get(ctx context.Context, id string) (*repository.CourseWithCreator, []domain.UserRef, error) {
	item, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("course", map[string]any{"courseId": id})
		}
		return nil, nil, apperrors.MapError(err)
	}

	students, err := s.enrollments.ListStudentsByCourse(ctx, id)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return item, students, nil
}

// Update merges the patch into the stored course after checking that the
// requester created it, then persists the whole document.
func (s *CourseService) Update(ctx context.Context, id string, patch CourseUpdateInput, requesterID string) (*domain.Course, error) {
	existing, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"courseId": id})
		}
		return nil, apperrors.MapError(err)
	}
	if existing.Course.CreatorID != requesterID {
		return nil, apperrors.NewForbidden("not authorized")
	}

	merged := validation.CourseInput{
		Title:            existing.Course.Title,
		Description:      existing.Course.Description,
		Content:          contentToInput(existing.Course.Content),
		EnrollmentStatus: string(existing.Course.EnrollmentStatus),
	}
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Content != nil {
		merged.Content = patch.Content
	}
	if patch.EnrollmentStatus != nil {
		merged.EnrollmentStatus = *patch.EnrollmentStatus
	}

	normalized, vErrs := validation.ValidateCourse(merged)
	if len(vErrs) > 0 {
		return nil, apperrors.NewValidationError("validation failed", vErrs.Details())
	}

	course := existing.Course
	course.Title = normalized.Title
	course.Description = normalized.Description
	course.Content = normalized.Content
	course.EnrollmentStatus = normalized.EnrollmentStatus
	if err := s.courses.Update(ctx, &course); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"courseId": id})
		}
		return nil, apperrors.MapError(err)
	}

	s.listCache.Invalidate(ctx)
	s.publish(ctx, events.EventCourseUpdated, events.CourseUpdatedPayload{
		CourseID:  course.ID,
		UpdaterID: requesterID,
		Status:    course.EnrollmentStatus,
	})
	return &course, nil
}

func (s *CourseService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.New(eventType, payload))
}

func contentToInput(blocks []domain.ContentBlock) []validation.ContentBlockInput {
	out := make([]validation.ContentBlockInput, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, validation.ContentBlockInput{Type: string(block.Type), Data: block.Data})
	}
	return out
}
