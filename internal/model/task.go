package model

import "time"

// Task is a row of the `tasks` table.  UserID is the owner and is kept
// out of API payloads.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"-"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask is returned when a task is created; it omits owner and
// creation time.
type NewTask struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsDone      bool      `json:"is_done"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Created converts a stored task into its creation response.
func (t Task) Created() NewTask {
	return NewTask{ID: t.ID, Title: t.Title, Description: t.Description, IsDone: t.IsDone, UpdatedAt: t.UpdatedAt}
}

// TaskFilter narrows task listings.  A nil IsDone means "any status".
type TaskFilter struct {
	IsDone *bool
	Limit  int
	Offset int
}
