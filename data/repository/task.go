package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository defines task and subtask operations against the embedded
// collections of a user document. Every filter is scoped by the owning
// user's id; an id belonging to another user simply matches nothing.
type TaskRepository interface {
	Insert(ctx context.Context, userID primitive.ObjectID, task *structs.Task) error
	FindAll(ctx context.Context, userID primitive.ObjectID) ([]structs.Task, error)
	FindByID(ctx context.Context, userID, taskID primitive.ObjectID) (*structs.Task, error)
	UpdateFields(ctx context.Context, userID, taskID primitive.ObjectID, fields TaskFields) error
	SoftDelete(ctx context.Context, userID, taskID primitive.ObjectID) error
	PushSubtasks(ctx context.Context, userID, taskID primitive.ObjectID, subtasks []structs.Subtask) error
	UpdateSubtask(ctx context.Context, userID, taskID, subtaskID primitive.ObjectID, fields TaskFields) error
	SoftDeleteSubtask(ctx context.Context, userID, taskID, subtaskID primitive.ObjectID) error
}

// TaskFields carries the three mutable fields of a task or subtask. The
// deleted flag and the subtask collection are never touched through this.
type TaskFields struct {
	Subject  string
	Deadline time.Time
	Status   structs.Status
}

type taskRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewTaskRepository creates a new task repository on the users collection.
func NewTaskRepository(db *mongo.Database, logger *logger.Logger) TaskRepository {
	return &taskRepository{
		collection: db.Collection("users"),
		logger:     logger,
	}
}

// Insert appends the task to the user's embedded task collection. The task id
// is assigned by the caller so it can be read back immediately.
func (r *taskRepository) Insert(ctx context.Context, userID primitive.ObjectID, task *structs.Task) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"tasks": task}},
	)
	if err != nil {
		r.logger.Error(ctx, "failed to insert task", "user_id", userID.Hex(), "error", err)
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	r.logger.Info(ctx, "task created", "user_id", userID.Hex(), "task_id", task.ID.Hex())
	return nil
}

// FindAll returns the user's raw embedded task collection in insertion order.
// Soft-delete filtering happens at the service layer so both levels are
// filtered independently.
func (r *taskRepository) FindAll(ctx context.Context, userID primitive.ObjectID) ([]structs.Task, error) {
	opts := options.FindOne().SetProjection(bson.M{"tasks": 1})

	var doc struct {
		Tasks []structs.Task `bson:"tasks"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error(ctx, "failed to list tasks", "user_id", userID.Hex(), "error", err)
		return nil, err
	}

	return doc.Tasks, nil
}

// FindByID returns the single task matching the user, the task id and
// isDeleted=false, via an $elemMatch projection. Subtasks come back raw.
func (r *taskRepository) FindByID(ctx context.Context, userID, taskID primitive.ObjectID) (*structs.Task, error) {
	match := bson.M{"$elemMatch": bson.M{"_id": taskID, "isDeleted": false}}
	filter := bson.M{"_id": userID, "tasks": match}
	opts := options.FindOne().SetProjection(bson.M{"tasks": match})

	var doc struct {
		Tasks []structs.Task `bson:"tasks"`
	}
	err := r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error(ctx, "failed to find task", "user_id", userID.Hex(), "task_id", taskID.Hex(), "error", err)
		return nil, err
	}
	if len(doc.Tasks) == 0 {
		return nil, ErrTaskNotFound
	}

	return &doc.Tasks[0], nil
}

// UpdateFields replaces the three mutable fields of the matching task through
// the positional operator. A missing task matches nothing and the update is a
// no-op.
func (r *taskRepository) UpdateFields(ctx context.Context, userID, taskID primitive.ObjectID, fields TaskFields) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks._id": taskID},
		bson.M{"$set": bson.M{
			"tasks.$.subject":  fields.Subject,
			"tasks.$.deadline": fields.Deadline,
			"tasks.$.status":   fields.Status,
		}},
	)
	if err != nil {
		r.logger.Error(ctx, "failed to update task", "user_id", userID.Hex(), "task_id", taskID.Hex(), "error", err)
	}
	return err
}

// SoftDelete flips the deleted flag on the matching task. Deleting an
// already-deleted or nonexistent task matches nothing and succeeds.
func (r *taskRepository) SoftDelete(ctx context.Context, userID, taskID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks._id": taskID},
		bson.M{"$set": bson.M{"tasks.$.isDeleted": true}},
	)
	if err != nil {
		r.logger.Error(ctx, "failed to delete task", "user_id", userID.Hex(), "task_id", taskID.Hex(), "error", err)
	}
	return err
}

// PushSubtasks appends the subtasks to the matching task in the given order.
func (r *taskRepository) PushSubtasks(ctx context.Context, userID, taskID primitive.ObjectID, subtasks []structs.Subtask) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks._id": taskID},
		bson.M{"$push": bson.M{"tasks.$.subtasks": bson.M{"$each": subtasks}}},
	)
	if err != nil {
		r.logger.Error(ctx, "failed to add subtasks", "user_id", userID.Hex(), "task_id", taskID.Hex(), "error", err)
	}
	return err
}

// UpdateSubtask replaces the three mutable fields of one subtask, addressed
// through an array filter. A non-matching subtask id is a silent no-op.
func (r *taskRepository) UpdateSubtask(ctx context.Context, userID, taskID, subtaskID primitive.ObjectID, fields TaskFields) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"st._id": subtaskID}},
	})

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks._id": taskID},
		bson.M{"$set": bson.M{
			"tasks.$.subtasks.$[st].subject":  fields.Subject,
			"tasks.$.subtasks.$[st].deadline": fields.Deadline,
			"tasks.$.subtasks.$[st].status":   fields.Status,
		}},
		opts,
	)
	if err != nil {
		r.logger.Error(ctx, "failed to update subtask",
			"user_id", userID.Hex(), "task_id", taskID.Hex(), "subtask_id", subtaskID.Hex(), "error", err)
	}
	return err
}

// SoftDeleteSubtask flips the deleted flag on one subtask. Idempotent, silent
// no-op when nothing matches.
func (r *taskRepository) SoftDeleteSubtask(ctx context.Context, userID, taskID, subtaskID primitive.ObjectID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"st._id": subtaskID}},
	})

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks._id": taskID},
		bson.M{"$set": bson.M{"tasks.$.subtasks.$[st].isDeleted": true}},
		opts,
	)
	if err != nil {
		r.logger.Error(ctx, "failed to delete subtask",
			"user_id", userID.Hex(), "task_id", taskID.Hex(), "subtask_id", subtaskID.Hex(), "error", err)
	}
	return err
}
