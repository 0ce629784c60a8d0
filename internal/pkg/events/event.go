// Package events fans purchase lifecycle events out to optional sinks in the background.
package events

import (
	"context"
	"time"

	"coursehub/pkg/money"

	"github.com/google/uuid"
)

type Type string

const (
	PaymentSucceeded    Type = "payment.succeeded"
	PaymentFailed       Type = "payment.failed"
	CourseEnrolled      Type = "course.enrolled"
	EnrollmentCancelled Type = "enrollment.cancelled"
)

type Event struct {
	ID         string       `json:"id"`
	Type       Type         `json:"type"`
	UserID     string       `json:"userId"`
	CourseID   string       `json:"courseId"`
	OrderID    string       `json:"orderId,omitempty"`
	Amount     money.Amount `json:"amount"`
	Currency   string       `json:"currency,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// New stamps an event with an id and the current time.
func New(t Type, userID, courseID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		CourseID:   courseID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(e Event)
}

// Sink delivers one event to an external system.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}
