package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-list/internal/metrics"
	"github.com/BuzzLyutic/task-list/internal/model"
	"github.com/BuzzLyutic/task-list/internal/repo"
)

const DefaultKey = "todo_app_tasks_v1"

// TaskStore владеет коллекцией задач и после каждой мутации пишет ее целиком в BlobStore.
type TaskStore struct {
	mu     sync.Mutex
	blobs  repo.BlobStore
	key    string
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	tasks  []model.Task // новые в начале
}

type Option func(*TaskStore)

func WithKey(key string) Option {
	return func(s *TaskStore) { s.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *TaskStore) { s.newID = gen }
}

func NewTaskStore(blobs repo.BlobStore, logger *zap.Logger, opts ...Option) *TaskStore {
	s := &TaskStore{
		blobs:  blobs,
		key:    DefaultKey,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  newUUID,
		tasks:  []model.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UUIDv7: миллисекунды + случайные биты
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load читает коллекцию из хранилища. Ошибки не возвращает: при любой проблеме
// остается пустая коллекция, а причина пишется в лог.
func (s *TaskStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = []model.Task{}

	raw, found, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("Failed to load tasks",
			zap.String("key", s.key),
			zap.Error(fmt.Errorf("%w: %w", ErrPersistenceRead, err)),
		)
		return
	}
	if !found || raw == "" {
		s.logger.Info("No saved tasks, starting empty", zap.String("key", s.key))
		return
	}

	tasks, err := repo.DecodeCollection(raw)
	if err != nil {
		s.logger.Warn("Failed to load tasks",
			zap.String("key", s.key),
			zap.Error(fmt.Errorf("%w: %w", ErrPersistenceRead, err)),
		)
		return
	}

	s.tasks = s.repair(tasks)
	s.logger.Info("Tasks loaded", zap.String("key", s.key), zap.Int("count", len(s.tasks)))
}

// repair отбрасывает записи, нарушающие инварианты модели
func (s *TaskStore) repair(tasks []model.Task) []model.Task {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]model.Task, 0, len(tasks))
	for i, t := range tasks {
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		if t.ID == "" || t.Title == "" {
			s.logger.Warn("Dropping invalid task record", zap.Int("index", i), zap.String("id", t.ID))
			continue
		}
		if _, dup := seen[t.ID]; dup {
			s.logger.Warn("Dropping duplicate task id", zap.Int("index", i), zap.String("id", t.ID))
			continue
		}
		seen[t.ID] = struct{}{}

		if t.Priority == "" {
			t.Priority = model.PriorityNormal
		}
		if !t.Completed && t.CompletedAt != nil {
			s.logger.Warn("Clearing completedAt on active task", zap.String("id", t.ID))
			t.CompletedAt = nil
		}
		if t.Completed && t.CompletedAt == nil {
			// точное время неизвестно, берем время последнего изменения
			at := t.UpdatedAt
			if at.IsZero() {
				at = s.now()
			}
			s.logger.Warn("Stamping missing completedAt on completed task", zap.String("id", t.ID))
			t.CompletedAt = &at
		}
		out = append(out, t)
	}
	return out
}

// Tasks возвращает копию коллекции в порядке хранения
func (s *TaskStore) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.tasks)
}

func (s *TaskStore) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	fields, err := in.Parse()
	if err != nil { // Валидация введенных данных
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := model.Task{
		ID:          s.uniqueID(),
		Title:       fields.Title,
		Description: fields.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Due:         fields.Due,
		Priority:    fields.Priority,
	}

	next := make([]model.Task, 0, len(s.tasks)+1)
	next = append(next, task)
	next = append(next, s.tasks...)

	if err := s.commit(ctx, "create", next); err != nil {
		return model.Task{}, err
	}
	return task.Clone(), nil
}

func (s *TaskStore) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	fields, err := in.Parse()
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	next := cloneAll(s.tasks)
	t := &next[idx]
	t.Title = fields.Title
	t.Description = fields.Description
	t.Due = fields.Due
	t.Priority = fields.Priority
	t.UpdatedAt = s.now()

	if err := s.commit(ctx, "update", next); err != nil {
		return model.Task{}, err
	}
	return next[idx].Clone(), nil
}

// ToggleComplete выставляет completed. Повторный вызов с тем же значением
// все равно обновляет updatedAt и пишет коллекцию.
func (s *TaskStore) ToggleComplete(ctx context.Context, id string, completed bool) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.now()
	next := cloneAll(s.tasks)
	t := &next[idx]
	t.Completed = completed
	if completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now

	if err := s.commit(ctx, "toggle", next); err != nil {
		return model.Task{}, err
	}
	return next[idx].Clone(), nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:idx]...)
	next = append(next, s.tasks[idx+1:]...)

	return s.commit(ctx, "delete", next)
}

// ClearCompleted удаляет все выполненные задачи и возвращает их количество
func (s *TaskStore) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}
	removed := len(s.tasks) - len(next)

	if err := s.commit(ctx, "clear_completed", next); err != nil {
		return 0, err
	}
	return removed, nil
}

// commit пишет коллекцию целиком и только после успешной записи заменяет ее в памяти
func (s *TaskStore) commit(ctx context.Context, op string, next []model.Task) error {
	raw, err := repo.EncodeCollection(next)
	if err == nil {
		err = s.blobs.Set(ctx, s.key, raw)
	}
	metrics.ObserveWrite(op, err)
	if err != nil {
		s.logger.Error("Failed to save tasks", zap.String("op", op), zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}

	s.tasks = next
	s.logger.Debug("Tasks saved", zap.String("op", op), zap.Int("count", len(next)))
	return nil
}

func (s *TaskStore) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
		s.logger.Warn("Generated task id collides, retrying", zap.String("id", id))
	}
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
