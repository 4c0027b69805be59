package domain

import (
	"encoding/json"
	"time"
)

// EnrollmentStatus enumerates course lifecycle states.
type EnrollmentStatus string

const (
	EnrollmentStatusOpen   EnrollmentStatus = "open"
	EnrollmentStatusClosed EnrollmentStatus = "closed"
	EnrollmentStatusDraft  EnrollmentStatus = "draft"
)

// ParseEnrollmentStatus maps a payload value onto a closed status.
func ParseEnrollmentStatus(value string) (EnrollmentStatus, bool) {
	switch EnrollmentStatus(value) {
	case EnrollmentStatusOpen, EnrollmentStatusClosed, EnrollmentStatusDraft:
		return EnrollmentStatus(value), true
	default:
		return "", false
	}
}

// ContentType enumerates supported content block kinds.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeVideo    ContentType = "video"
	ContentTypeDocument ContentType = "document"
)

// ContentBlock is one unit of course material. Data is an opaque payload
// owned by the client (plain string or structured object).
type ContentBlock struct {
	Type ContentType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Course is the aggregate for published course material.
type Course struct {
	ID               string
	Title            string
	Description      string
	Content          []ContentBlock
	CreatorID        string
	EnrollmentStatus EnrollmentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Enrollment is one row of the course<->user join relation. The primary
// key on (CourseID, UserID) is what guarantees a pair enrolls at most once.
type Enrollment struct {
	CourseID  string
	UserID    string
	CreatedAt time.Time
}
