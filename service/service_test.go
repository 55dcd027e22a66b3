package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/structs"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for the users collection. Two views
// share its state: the store itself implements the user repository and
// memTasks implements the task repository, with the same matching
// semantics as the MongoDB queries. Task writes match deleted tasks too,
// reads go through the visibility filter, and non-matching writes are
// silent no-ops.
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*repository.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[primitive.ObjectID]*repository.User)}
}

func (m *memStore) Create(_ context.Context, user *repository.User) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, repository.ErrEmailExists
		}
	}

	user.ID = primitive.NewObjectID()
	if user.Tasks == nil {
		user.Tasks = []structs.Task{}
	}
	stored := *user
	stored.Tasks = append([]structs.Task(nil), user.Tasks...)
	m.users[user.ID] = &stored
	return user, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) FindByID(_ context.Context, id primitive.ObjectID) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	cp.Password = ""
	cp.Tasks = nil
	return &cp, nil
}

func (m *memStore) remove(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// task returns a pointer into the stored slice. Callers hold m.mu.
func (m *memStore) task(userID, taskID primitive.ObjectID) *structs.Task {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	for i := range u.Tasks {
		if u.Tasks[i].ID == taskID {
			return &u.Tasks[i]
		}
	}
	return nil
}

// memTasks is the task repository view over a memStore.
type memTasks struct {
	store *memStore
}

func (m *memTasks) Insert(_ context.Context, userID primitive.ObjectID, task *structs.Task) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	u, ok := m.store.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Tasks = append(u.Tasks, *task)
	return nil
}

func (m *memTasks) FindAll(_ context.Context, userID primitive.ObjectID) ([]structs.Task, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	u, ok := m.store.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return append([]structs.Task(nil), u.Tasks...), nil
}

func (m *memTasks) FindByID(_ context.Context, userID, taskID primitive.ObjectID) (*structs.Task, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	t := m.store.task(userID, taskID)
	if t == nil || t.IsDeleted {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	cp.Subtasks = append([]structs.Subtask(nil), t.Subtasks...)
	return &cp, nil
}

func (m *memTasks) UpdateFields(_ context.Context, userID, taskID primitive.ObjectID, fields repository.TaskFields) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if t := m.store.task(userID, taskID); t != nil {
		t.Subject = fields.Subject
		t.Deadline = fields.Deadline
		t.Status = fields.Status
	}
	return nil
}

func (m *memTasks) SoftDelete(_ context.Context, userID, taskID primitive.ObjectID) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if t := m.store.task(userID, taskID); t != nil {
		t.IsDeleted = true
	}
	return nil
}

func (m *memTasks) PushSubtasks(_ context.Context, userID, taskID primitive.ObjectID, subtasks []structs.Subtask) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if t := m.store.task(userID, taskID); t != nil {
		t.Subtasks = append(t.Subtasks, subtasks...)
	}
	return nil
}

func (m *memTasks) UpdateSubtask(_ context.Context, userID, taskID, subtaskID primitive.ObjectID, fields repository.TaskFields) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	t := m.store.task(userID, taskID)
	if t == nil {
		return nil
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Subject = fields.Subject
			t.Subtasks[i].Deadline = fields.Deadline
			t.Subtasks[i].Status = fields.Status
		}
	}
	return nil
}

func (m *memTasks) SoftDeleteSubtask(_ context.Context, userID, taskID, subtaskID primitive.ObjectID) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	t := m.store.task(userID, taskID)
	if t == nil {
		return nil
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].IsDeleted = true
		}
	}
	return nil
}

func newTestService(store *memStore) *Service {
	log := logger.StdLogger()
	return &Service{
		Auth: NewAuthService(store, "test-secret", time.Hour, log),
		User: NewUserService(store, log),
		Task: NewTaskService(&memTasks{store: store}, log),
	}
}

func registerUser(t *testing.T, svc *Service, store *memStore, email string) *repository.User {
	t.Helper()

	err := svc.Auth.Register(context.Background(), &structs.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "s3cret",
	})
	require.NoError(t, err)

	user, err := store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}
