// Package session - командный интерфейс для UI: по методу на действие
// пользователя плюс состояние фильтра и поиска, от которого зависит отрисовка.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-list/internal/model"
	"github.com/BuzzLyutic/task-list/internal/service"
	"github.com/BuzzLyutic/task-list/internal/worker"
)

var ErrCancelled = errors.New("action cancelled")

const (
	PromptDelete         = "Delete this task?"
	PromptClearCompleted = "Remove all completed tasks?"
)

// Store - часть service.TaskStore, нужная сессии
type Store interface {
	Load(ctx context.Context)
	Tasks() []model.Task
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error)
	ToggleComplete(ctx context.Context, id string, completed bool) (model.Task, error)
	Delete(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) (int, error)
}

// View - то, что рисует UI. Empty: показать заглушку "нет задач"
type View struct {
	Filter model.Filter `json:"filter"`
	Query  string       `json:"query"`
	Tasks  []model.Task `json:"tasks"`
	Empty  bool         `json:"empty"`
	Total  int          `json:"total"`
}

type Session struct {
	store    Store
	debounce *worker.Debouncer
	logger   *zap.Logger
	confirm  func(prompt string) bool
	onRender func(View)

	mu     sync.Mutex
	filter model.Filter
	query  string
	view   View
}

type Option func(*Session)

// WithConfirm спрашивает подтверждение для Remove и ClearCompleted; false отменяет действие
func WithConfirm(confirm func(prompt string) bool) Option {
	return func(s *Session) { s.confirm = confirm }
}

// WithRenderer вызывается с каждым новым View. Выполняется под блокировкой
// сессии, поэтому обратно в сессию звать нельзя.
func WithRenderer(fn func(View)) Option {
	return func(s *Session) { s.onRender = fn }
}

func New(store Store, debounce *worker.Debouncer, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		store:    store,
		debounce: debounce,
		logger:   logger,
		filter:   model.FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.view = View{Filter: s.filter, Tasks: []model.Task{}, Empty: true}
	return s
}

// Start загружает сохраненную коллекцию и рисует первый вид
func (s *Session) Start(ctx context.Context) {
	s.store.Load(ctx)
	s.render()
}

func (s *Session) Add(ctx context.Context, in model.TaskInput) (model.Task, error) {
	t, err := s.store.Create(ctx, in)
	if err != nil {
		return t, err
	}
	s.render()
	return t, nil
}

func (s *Session) Edit(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	t, err := s.store.Update(ctx, id, in)
	if err != nil {
		return t, err
	}
	s.render()
	return t, nil
}

func (s *Session) Toggle(ctx context.Context, id string, completed bool) (model.Task, error) {
	t, err := s.store.ToggleComplete(ctx, id, completed)
	if err != nil {
		return t, err
	}
	s.render()
	return t, nil
}

func (s *Session) Remove(ctx context.Context, id string) error {
	if !s.confirmed(PromptDelete) {
		return ErrCancelled
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Session) ClearCompleted(ctx context.Context) (int, error) {
	if !s.confirmed(PromptClearCompleted) {
		return 0, ErrCancelled
	}
	n, err := s.store.ClearCompleted(ctx)
	if err != nil {
		return 0, err
	}
	s.render()
	return n, nil
}

// SetFilter меняет фильтр и сразу перерисовывает
func (s *Session) SetFilter(f model.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	s.render()
}

// Search запоминает запрос сразу, а перерисовывает только после задержки
func (s *Session) Search(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	s.debounce.Trigger(s.render)
}

// View возвращает последний отрисованный вид
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Tasks = make([]model.Task, len(s.view.Tasks))
	copy(v.Tasks, s.view.Tasks)
	return v
}

// Close отменяет отложенную отрисовку поиска
func (s *Session) Close() {
	s.debounce.Stop()
}

func (s *Session) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// снимок коллекции и запись вида под одной блокировкой
	tasks := s.store.Tasks()

	visible := service.Project(tasks, s.filter, s.query)
	s.view = View{
		Filter: s.filter,
		Query:  s.query,
		Tasks:  visible,
		Empty:  len(visible) == 0,
		Total:  len(tasks),
	}
	s.logger.Debug("View rendered",
		zap.String("filter", string(s.filter)),
		zap.String("query", s.query),
		zap.Int("visible", len(visible)),
		zap.Int("total", len(tasks)),
	)
	if s.onRender != nil {
		s.onRender(s.view)
	}
}

func (s *Session) confirmed(prompt string) bool {
	if s.confirm == nil {
		return true
	}
	return s.confirm(prompt)
}
