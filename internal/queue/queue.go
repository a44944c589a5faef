package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/mosesmwila/zareat-api/internal/notify"
)

// Notifier enqueues notification sends instead of delivering them inline.
// MaxRetry is zero: delivery is fire-and-forget, a failed send is only
// logged by the worker.
type Notifier struct {
	client *asynq.Client
}

func NewNotifier(client *asynq.Client) *Notifier {
	return &Notifier{client: client}
}

var _ notify.Notifier = (*Notifier)(nil)

func (q *Notifier) Send(ctx context.Context, to, subject, body string) error {
	taskPayload, err := json.Marshal(SendNotificationPayload{
		Email:   to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSendNotification, taskPayload, asynq.MaxRetry(0))

	_, err = q.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	log.Printf("Notification queued for %s: %s", to, subject)
	return nil
}
