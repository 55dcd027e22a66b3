// Package repository provides MongoDB-backed persistence for user documents
// and their embedded tasks.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/ncore/ecode"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrUserNotFound is returned when no user matches the given identity.
	ErrUserNotFound = errors.New(ecode.NotExist("user"))
	// ErrEmailExists is returned when the unique email index rejects an insert.
	ErrEmailExists = errors.New(ecode.AlreadyExist("user"))
	// ErrTaskNotFound is returned when no visible task matches the given ids.
	ErrTaskNotFound = errors.New(ecode.NotExist("task"))
)

// User is the aggregate root: tasks and subtasks live embedded in the user
// document, so every task write is an update against this document.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	Tasks    []structs.Task     `bson:"tasks" json:"-"`
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
}

type userRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository(db *mongo.Database, logger *logger.Logger) UserRepository {
	collection := db.Collection("users")

	// Unique index on email backstops the pre-insert existence check.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn(ctx, "failed to create index on email", "error", err)
	}

	return &userRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create inserts a new user. The caller is expected to have hashed the
// password already; plaintext never reaches this layer.
func (r *userRepository) Create(ctx context.Context, user *User) (*User, error) {
	user.ID = primitive.NewObjectID()
	if user.Tasks == nil {
		user.Tasks = []structs.Task{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		r.logger.Error(ctx, "failed to create user", "error", err)
		return nil, err
	}

	r.logger.Info(ctx, "user created", "id", user.ID.Hex())
	return user, nil
}

// FindByEmail retrieves a user by email, password hash included. Used by the
// login flow only.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error(ctx, "failed to find user by email", "email", email, "error", err)
		return nil, err
	}

	return &user, nil
}

// FindByID retrieves a user by ID with the password and the embedded task
// collection excluded from the projection. Callers needing tasks go through
// the task repository.
func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	opts := options.FindOne().SetProjection(bson.M{"password": 0, "tasks": 0})

	var user User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error(ctx, "failed to find user", "id", id.Hex(), "error", err)
		return nil, err
	}

	return &user, nil
}
