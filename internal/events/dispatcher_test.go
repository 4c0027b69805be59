package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	ctx := context.Background()

	var got []Event
	d.Subscribe(EventStudentEnrolled, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})
	d.Subscribe(EventCourseCreated, func(_ context.Context, _ Event) error {
		t.Fatal("handler for a different event type must not fire")
		return nil
	})

	event := New(EventStudentEnrolled, StudentEnrolledPayload{CourseID: "c1", UserID: "u1"})
	if err := d.Publish(ctx, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected one delivery, got %d", len(got))
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() {
		t.Fatalf("expected stamped event, got %+v", got[0])
	}
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	second := false
	d.Subscribe(EventUserRegistered, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, _ Event) error {
		second = true
		return nil
	})

	if err := d.Publish(context.Background(), New(EventUserRegistered, nil)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !second {
		t.Fatal("expected later handlers to run despite an earlier error")
	}
}
