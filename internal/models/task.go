package models

import (
	"encoding/json"
	"time"
)

// Task statuses; transitions are pending -> processing -> completed|failed
const (
	TaskPending    = "pending"
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// Task types the webhook processor understands
const (
	TaskWelcomeEmail = "welcome_email"
	TaskPublishPost  = "publish_post"
	TaskCleanup      = "cleanup"
	TaskNotification = "notification"
)

type Task struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     string          `json:"status"`
	RetryCount int             `json:"retryCount"`
	UserID     string          `json:"userId"`
	MessageID  string          `json:"messageId,omitempty"`
	Result     string          `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type ScheduleTaskRequest struct {
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	DelaySeconds int             `json:"delaySeconds,omitempty"`
}
