package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusArchived   TaskStatus = "archived"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func IsValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusReview,
		TaskStatusCompleted, TaskStatusArchived:
		return true
	}
	return false
}

func IsValidTaskPriority(p string) bool {
	switch TaskPriority(p) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	Title          string
	Description    string
	CreatedBy      User
	Priority       TaskPriority
	Status         TaskStatus
	CategoryID     *uuid.UUID
	CategoryName   *string
	DueDate        *time.Time
	IsMilestone    bool
	DependsOnID    *uuid.UUID
	Tags           string
	EstimatedHours *float64
	ActualHours    *float64
	Assignees      []TaskAssignment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusAccepted AssignmentStatus = "accepted"
	AssignmentStatusDeclined AssignmentStatus = "declined"
)

// TaskAssignment links a task to a user; the (task, user) pair is unique.
type TaskAssignment struct {
	TaskID     uuid.UUID
	User       User
	Status     AssignmentStatus
	AssignedAt time.Time
}

// IsAssignee reports whether the user has an individual assignment on the task.
func (t *Task) IsAssignee(userID uuid.UUID) bool {
	for _, a := range t.Assignees {
		if a.User.ID == userID {
			return true
		}
	}
	return false
}
