package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcome = "email:welcome"
)

// WelcomeEmailPayload is serialized into the task payload stored in Redis.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewWelcomeEmailTask builds the welcome task: up to 3 retries on the
// default queue, 30s per attempt.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{
		To:   to,
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
