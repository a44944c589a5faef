package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleSendNotificationTask(ctx context.Context, task *asynq.Task) error {
	var payload SendNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.n.Send(ctx, payload.Email, payload.Subject, payload.Body); err != nil {
		// Delivery failures stay inside the queue; the triggering
		// operation already completed.
		log.Printf("Notification delivery failed for %s: %v", payload.Email, err)
	}
	return nil
}
