package validation

import (
	"encoding/json"
	"strings"

	"github.com/spec-kit/course-service/internal/domain"
)

// CourseInput is the inbound course payload. Unknown JSON fields are
// dropped by decoding, matching the permissive schema of the API.
type CourseInput struct {
	Title            string              `json:"title" validate:"required"`
	Description      string              `json:"description" validate:"required"`
	Content          []ContentBlockInput `json:"content" validate:"omitempty,dive"`
	EnrollmentStatus string              `json:"enrollmentStatus" validate:"omitempty,oneof=open closed draft"`
}

// ContentBlockInput is one inbound content block.
type ContentBlockInput struct {
	Type string          `json:"type" validate:"required,oneof=text video document"`
	Data json.RawMessage `json:"data"`
}

// NormalizedCourse is the validated, default-applied course payload.
type NormalizedCourse struct {
	Title            string
	Description      string
	Content          []domain.ContentBlock
	EnrollmentStatus domain.EnrollmentStatus
}

var courseValidate = newValidate()

// ValidateCourse normalizes and validates a course payload, collecting all
// field errors. Title and description are trimmed before the required
// check; content defaults to an empty list and status to draft.
func ValidateCourse(input CourseInput) (*NormalizedCourse, ValidationErrors) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if errs := toValidationErrors("CourseInput", courseValidate.Struct(input)); len(errs) > 0 {
		return nil, errs
	}

	normalized := &NormalizedCourse{
		Title:            input.Title,
		Description:      input.Description,
		Content:          make([]domain.ContentBlock, 0, len(input.Content)),
		EnrollmentStatus: domain.EnrollmentStatusDraft,
	}
	for _, block := range input.Content {
		normalized.Content = append(normalized.Content, domain.ContentBlock{
			Type: domain.ContentType(block.Type),
			Data: block.Data,
		})
	}
	if input.EnrollmentStatus != "" {
		status, _ := domain.ParseEnrollmentStatus(input.EnrollmentStatus)
		normalized.EnrollmentStatus = status
	}
	return normalized, nil
}
