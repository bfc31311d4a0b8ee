// Package queue carries task activity events over RabbitMQ: the API
// publishes them, the consume command appends them to an activity log.
package queue

import (
	"fmt"
	"strings"
	"time"
)

// ActivityQueue is the durable queue task events are routed to.
const ActivityQueue = "task.activity"

// Event types.
const (
	TaskCreated   = "task.created"
	TaskCompleted = "task.completed"
	TaskDeleted   = "task.deleted"
)

// TaskEvent describes one change to one or more tasks of a user.
type TaskEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	TaskIDs    []int64   `json:"task_ids"`
	Title      string    `json:"title,omitempty"`
	IsDone     *bool     `json:"is_done,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent stamps an event with the current UTC time.
func NewTaskEvent(eventType, userID string, ids ...int64) TaskEvent {
	return TaskEvent{Type: eventType, UserID: userID, TaskIDs: ids, OccurredAt: time.Now().UTC()}
}

// Line renders the event as one activity log line.
func (e TaskEvent) Line() string {
	ids := make([]string, len(e.TaskIDs))
	for i, id := range e.TaskIDs {
		ids[i] = fmt.Sprint(id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | user_id=%s | tasks=[%s]",
		e.OccurredAt.UTC().Format(time.RFC3339), e.Type, e.UserID, strings.Join(ids, ","))
	if e.Title != "" {
		fmt.Fprintf(&b, " | title=%q", e.Title)
	}
	if e.IsDone != nil {
		fmt.Fprintf(&b, " | is_done=%t", *e.IsDone)
	}
	b.WriteByte('\n')
	return b.String()
}
