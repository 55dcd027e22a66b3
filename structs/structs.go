// Package structs defines the task domain models and request bodies.
package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status enumerates the lifecycle states of a task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// DeadlineLayout is the calendar-date layout accepted in request bodies.
const DeadlineLayout = "2006-01-02"

// Subtask is a soft-deletable sub-document embedded in a task.
type Subtask struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Subject   string             `bson:"subject" json:"subject"`
	Deadline  time.Time          `bson:"deadline" json:"deadline"`
	Status    Status             `bson:"status" json:"status"`
	IsDeleted bool               `bson:"isDeleted" json:"-"`
}

// Task is a soft-deletable sub-document embedded in a user. Subtasks keep
// insertion order; nothing re-sorts them.
type Task struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Subject   string             `bson:"subject" json:"subject"`
	Deadline  time.Time          `bson:"deadline" json:"deadline"`
	Status    Status             `bson:"status" json:"status"`
	IsDeleted bool               `bson:"isDeleted" json:"-"`
	Subtasks  []Subtask          `bson:"subtasks" json:"subtasks"`
}

// VisibleSubtasks returns the subtasks not flagged deleted, preserving order.
// The result is never nil.
func VisibleSubtasks(subtasks []Subtask) []Subtask {
	visible := make([]Subtask, 0, len(subtasks))
	for _, st := range subtasks {
		if !st.IsDeleted {
			visible = append(visible, st)
		}
	}
	return visible
}

// VisibleTask returns a copy of the task with deleted subtasks filtered out,
// or nil when the task itself is flagged deleted. A live subtask under a
// deleted task stays hidden because the parent is dropped first.
func VisibleTask(task *Task) *Task {
	if task == nil || task.IsDeleted {
		return nil
	}
	filtered := *task
	filtered.Subtasks = VisibleSubtasks(task.Subtasks)
	return &filtered
}

// VisibleTasks filters deleted tasks and, inside each survivor, deleted
// subtasks. Order follows the input. The result is never nil.
func VisibleTasks(tasks []Task) []Task {
	visible := make([]Task, 0, len(tasks))
	for i := range tasks {
		if t := VisibleTask(&tasks[i]); t != nil {
			visible = append(visible, *t)
		}
	}
	return visible
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TaskBody carries the three mutable task fields. Deadline travels as an ISO
// calendar date.
type TaskBody struct {
	Subject  string `json:"subject" binding:"required"`
	Deadline string `json:"deadline" binding:"required,datetime=2006-01-02"`
	Status   string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// DeadlineTime parses the deadline field. Binding validates the layout, so a
// parse failure only happens when the body bypassed validation.
func (b *TaskBody) DeadlineTime() (time.Time, error) {
	return time.Parse(DeadlineLayout, b.Deadline)
}

// SubtaskUpdate addresses one existing subtask in a batch update.
type SubtaskUpdate struct {
	ID       string `json:"_id" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	Deadline string `json:"deadline" binding:"required,datetime=2006-01-02"`
	Status   string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// DeadlineTime parses the deadline field of a batch entry.
func (u *SubtaskUpdate) DeadlineTime() (time.Time, error) {
	return time.Parse(DeadlineLayout, u.Deadline)
}

// AddSubtasksRequest is the body of POST /tasks/:taskId/subtasks.
type AddSubtasksRequest struct {
	Subtasks []TaskBody `json:"subtasks" binding:"required,min=1,dive"`
}

// UpdateSubtasksRequest is the body of PUT /tasks/:taskId/subtasks.
type UpdateSubtasksRequest struct {
	Subtasks []SubtaskUpdate `json:"subtasks" binding:"required,min=1,dive"`
}
