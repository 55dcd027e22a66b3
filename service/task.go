package service

import (
	"context"
	"errors"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService owns the task and subtask lifecycle. Every operation is
// parameterized by the owning user's id and re-applies the soft-delete
// visibility filter at both the task and the subtask level on each read.
type TaskService struct {
	tasks  repository.TaskRepository
	logger *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		logger: logger,
	}
}

// Create generates a task id, appends the task to the user's embedded
// collection and returns the task as seen through the same read path used
// for lookups, so the response carries exactly the persisted shape.
func (s *TaskService) Create(ctx context.Context, userID string, body *structs.TaskBody) (*structs.Task, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}

	deadline, err := body.DeadlineTime()
	if err != nil {
		return nil, err
	}

	task := &structs.Task{
		ID:       primitive.NewObjectID(),
		Subject:  body.Subject,
		Deadline: deadline,
		Status:   structs.Status(body.Status),
		Subtasks: []structs.Subtask{},
	}

	if err := s.tasks.Insert(ctx, uid, task); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, task.ID.Hex())
}

// List returns all visible tasks of the user in insertion order, each with
// its subtasks filtered the same way. The slice is empty, never nil, when
// the user has no tasks; a missing user surfaces as ErrUserNotFound.
func (s *TaskService) List(ctx context.Context, userID string) ([]structs.Task, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}

	tasks, err := s.tasks.FindAll(ctx, uid)
	if err != nil {
		return nil, err
	}

	return structs.VisibleTasks(tasks), nil
}

// Get returns the single visible task matching the user and task ids, with
// deleted subtasks filtered out. Anything that does not match, including a
// malformed id or another user's task, is ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*structs.Task, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrTaskNotFound
	}
	tid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, repository.ErrTaskNotFound
	}

	task, err := s.tasks.FindByID(ctx, uid, tid)
	if err != nil {
		return nil, err
	}

	return structs.VisibleTask(task), nil
}

// Update replaces the three mutable fields and re-reads the task through
// the filtered get path, so the response reflects committed state rather
// than the caller's input. A missing task makes the write a no-op and the
// read-back reports ErrTaskNotFound.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, body *structs.TaskBody) (*structs.Task, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrTaskNotFound
	}
	tid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, repository.ErrTaskNotFound
	}

	deadline, err := body.DeadlineTime()
	if err != nil {
		return nil, err
	}

	fields := repository.TaskFields{
		Subject:  body.Subject,
		Deadline: deadline,
		Status:   structs.Status(body.Status),
	}
	if err := s.tasks.UpdateFields(ctx, uid, tid, fields); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, taskID)
}

// Delete flips the deleted flag on the matching task. Idempotent; deleting
// an already-deleted or nonexistent task is a silent no-op. Errors are
// propagated here and swallowed at the HTTP boundary.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	tid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return err
	}

	return s.tasks.SoftDelete(ctx, uid, tid)
}

// ListSubtasks returns the visible subtasks of the given task, or an empty
// slice when the task has none or does not exist.
func (s *TaskService) ListSubtasks(ctx context.Context, userID, taskID string) ([]structs.Subtask, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return []structs.Subtask{}, nil
		}
		return nil, err
	}

	return task.Subtasks, nil
}

// AddSubtasks appends the batch to the task's embedded collection in the
// given order, ids assigned before the write, and returns the task's full
// filtered subtask list after the append.
func (s *TaskService) AddSubtasks(ctx context.Context, userID, taskID string, req *structs.AddSubtasksRequest) ([]structs.Subtask, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []structs.Subtask{}, nil
	}
	tid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return []structs.Subtask{}, nil
	}

	subtasks := make([]structs.Subtask, 0, len(req.Subtasks))
	for i := range req.Subtasks {
		deadline, err := req.Subtasks[i].DeadlineTime()
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, structs.Subtask{
			ID:       primitive.NewObjectID(),
			Subject:  req.Subtasks[i].Subject,
			Deadline: deadline,
			Status:   structs.Status(req.Subtasks[i].Status),
		})
	}

	if err := s.tasks.PushSubtasks(ctx, uid, tid, subtasks); err != nil {
		return nil, err
	}

	return s.ListSubtasks(ctx, userID, taskID)
}

// UpdateSubtasks applies each batch entry independently: one underlying
// write per subtask, no transactional grouping, so a concurrent reader may
// observe a partially-applied batch. Entries whose id matches nothing are
// silently skipped. Returns the full filtered subtask list after all
// entries have been attempted.
func (s *TaskService) UpdateSubtasks(ctx context.Context, userID, taskID string, req *structs.UpdateSubtasksRequest) ([]structs.Subtask, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []structs.Subtask{}, nil
	}
	tid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return []structs.Subtask{}, nil
	}

	for i := range req.Subtasks {
		entry := &req.Subtasks[i]

		sid, err := primitive.ObjectIDFromHex(entry.ID)
		if err != nil {
			// Malformed id matches nothing, same as an unknown one.
			continue
		}
		deadline, err := entry.DeadlineTime()
		if err != nil {
			return nil, err
		}

		fields := repository.TaskFields{
			Subject:  entry.Subject,
			Deadline: deadline,
			Status:   structs.Status(entry.Status),
		}
		if err := s.tasks.UpdateSubtask(ctx, uid, tid, sid, fields); err != nil {
			return nil, err
		}
	}

	return s.ListSubtasks(ctx, userID, taskID)
}

// DeleteSubtask flips the deleted flag on the matching subtask. Idempotent
// and a silent no-op when nothing matches, mirroring Delete.
func (s *TaskService) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	tid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return err
	}
	sid, err := primitive.ObjectIDFromHex(subtaskID)
	if err != nil {
		return err
	}

	return s.tasks.SoftDeleteSubtask(ctx, uid, tid, sid)
}
