package events

import "context"

// TaskCreatedEvent is the payload published when a task is created. It
// carries identity only; listeners load whatever else they need.
type TaskCreatedEvent struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	Number    int64  `json:"number"`
	Name      string `json:"name"`
}

type Publisher interface {
	TaskCreated(ctx context.Context, event TaskCreatedEvent) error
}
