package queue

import (
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// JobMessage is the payload carried on the generate queue. It only
// names the job; the worker loads the full parameters from the store so
// the queue never holds stale copies.
type JobMessage struct {
	JobID string `json:"job_id"`
}

// PublishJob enqueues a generation job by id.
func PublishJob(ch *amqp091.Channel, jobID string) error {
	data, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to serialize job message: %w", err)
	}
	return PublishFIFO(ch, GenerateQueue, data)
}

// DecodeJob parses a delivery from the generate queue.
func DecodeJob(body []byte) (JobMessage, error) {
	var msg JobMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("failed to parse job message: %w", err)
	}
	if msg.JobID == "" {
		return msg, fmt.Errorf("job message missing job_id")
	}
	return msg, nil
}
