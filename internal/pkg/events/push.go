package events

import (
	"context"

	"coursehub/internal/pkg/push"
)

// PushSink notifies the buyer's devices when a course becomes available.
type PushSink struct {
	service push.PushService
}

func NewPushSink(service push.PushService) *PushSink {
	return &PushSink{service: service}
}

func (s *PushSink) Name() string { return "push" }

func (s *PushSink) Deliver(_ context.Context, e Event) error {
	var title, body string
	switch e.Type {
	case PaymentSucceeded:
		title, body = "Payment successful", "Your course is ready. Happy learning!"
	case CourseEnrolled:
		title, body = "Enrolled", "You have been enrolled in a new course."
	default:
		return nil
	}

	return s.service.PushToAccount(e.UserID, title, body, map[string]string{
		"type":     string(e.Type),
		"courseId": e.CourseID,
		"orderId":  e.OrderID,
	})
}
