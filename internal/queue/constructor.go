package queue

import (
	"github.com/mosesmwila/zareat-api/internal/notify"
)

const TaskTypeSendNotification = "notification:send"

type SendNotificationPayload struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Queue owns the worker side of notification delivery.
type Queue struct {
	n notify.Notifier
}

func NewQueue(n notify.Notifier) *Queue {
	return &Queue{
		n: n,
	}
}
