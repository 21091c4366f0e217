package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Task status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a unit of work, optionally assigned to a user and
// optionally carrying PDF attachments.
type Task struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	Status      string        `gorm:"default:'pending'" json:"status"`
	Priority    string        `gorm:"default:'medium'" json:"priority"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	AssignedTo  *uint         `json:"assignedTo,omitempty"`
	Assignee    *TaskAssignee `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Documents   DocumentList  `gorm:"type:json" json:"documents,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TaskAssignee is the reduced view of the assigned user that task
// responses expose. It reads from the users table.
type TaskAssignee struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (TaskAssignee) TableName() string {
	return "users"
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// DocumentList is an ordered list of stored attachment filenames,
// persisted as a JSON column for portability across sqlite and postgres.
type DocumentList []string

func (d DocumentList) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *DocumentList) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported document list type %T", value)
	}
}
