package models

import (
	"time"
)

// MaxTaskTextLength bounds the task text, measured in runes.
const MaxTaskTextLength = 500

// Task represents a single task item owned by exactly one user.
type Task struct {
	ID        int       `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTaskRequest is the body for task creation. Completed defaults to
// false when omitted.
type CreateTaskRequest struct {
	Text      string `json:"text"`
	Completed *bool  `json:"completed"`
}

// UpdateTaskRequest is the body for task updates. Text is replaced only when
// provided; Completed is always overwritten.
type UpdateTaskRequest struct {
	Text      *string `json:"text"`
	Completed bool    `json:"completed"`
}
