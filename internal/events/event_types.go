package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/course-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventCourseCreated   EventType = "course_created"
	EventCourseUpdated   EventType = "course_updated"
	EventStudentEnrolled EventType = "student_enrolled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with identity and time.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// CourseCreatedPayload payload.
type CourseCreatedPayload struct {
	CourseID  string                  `json:"course_id"`
	CreatorID string                  `json:"creator_id"`
	Title     string                  `json:"title"`
	Status    domain.EnrollmentStatus `json:"status"`
}

// CourseUpdatedPayload payload.
type CourseUpdatedPayload struct {
	CourseID  string                  `json:"course_id"`
	UpdaterID string                  `json:"updater_id"`
	Status    domain.EnrollmentStatus `json:"status"`
}

// StudentEnrolledPayload payload.
type StudentEnrolledPayload struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
}
