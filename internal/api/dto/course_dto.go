package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
)

// CreateCourseRequest payload for new courses.
type CreateCourseRequest struct {
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Content          []ContentBlockRequest `json:"content"`
	EnrollmentStatus string                `json:"enrollmentStatus"`
}

// UpdateCourseRequest is a partial patch; absent fields keep stored values.
type UpdateCourseRequest struct {
	Title            *string               `json:"title"`
	Description      *string               `json:"description"`
	Content          []ContentBlockRequest `json:"content"`
	EnrollmentStatus *string               `json:"enrollmentStatus"`
}

// ContentBlockRequest is one inbound content block.
type ContentBlockRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ContentBlockResponse is one outbound content block.
type ContentBlockResponse struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CourseResponse is the public shape of a course. Creator is resolved to
// a public identity; EnrolledStudents is always an array, empty until
// detail reads fill it in.
type CourseResponse struct {
	ID               string                 `json:"id"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Content          []ContentBlockResponse `json:"content"`
	Creator          domain.UserRef         `json:"creator"`
	EnrollmentStatus string                 `json:"enrollmentStatus"`
	EnrolledStudents []domain.UserRef       `json:"enrolledStudents"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// CourseListData is the payload of the catalog listing.
type CourseListData struct {
	Courses     []CourseResponse `json:"courses"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	Total       int              `json:"total"`
}

// NewCourseResponse maps a course with its resolved creator.
func NewCourseResponse(item repository.CourseWithCreator) CourseResponse {
	blocks := make([]ContentBlockResponse, 0, len(item.Course.Content))
	for _, block := range item.Course.Content {
		blocks = append(blocks, ContentBlockResponse{Type: string(block.Type), Data: block.Data})
	}
	return CourseResponse{
		ID:               item.Course.ID,
		Title:            item.Course.Title,
		Description:      item.Course.Description,
		Content:          blocks,
		Creator:          item.Creator,
		EnrollmentStatus: string(item.Course.EnrollmentStatus),
		EnrolledStudents: []domain.UserRef{},
		CreatedAt:        item.Course.CreatedAt,
		UpdatedAt:        item.Course.UpdatedAt,
	}
}
