package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-list/internal/model"
	"github.com/BuzzLyutic/task-list/internal/service"
	"github.com/BuzzLyutic/task-list/internal/session"
	"github.com/BuzzLyutic/task-list/pkg/respond"
)

// Snapshotter отдает текущую коллекцию для проекции без состояния сессии
type Snapshotter interface {
	Tasks() []model.Task
}

type TaskHandler struct {
	session *session.Session
	tasks   Snapshotter
	logger  *zap.Logger
}

func NewTaskHandler(sess *session.Session, tasks Snapshotter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		session: sess,
		tasks:   tasks,
		logger:  logger,
	}
}

func (h *TaskHandler) Routes(r chi.Router) {
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/clear-completed", h.ClearCompleted)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/completed", h.Toggle)
		r.Delete("/{id}", h.Delete)
	})
	r.Get("/api/view", h.GetView)
	r.Put("/api/view", h.SetView)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		h.handleErrors(w, r, fmt.Errorf("%w: %w", service.ErrValidation, err))
		return
	}
	query := r.URL.Query().Get("q")

	all := h.tasks.Tasks()
	visible := service.Project(all, filter, query)
	respond.JSON(w, r, http.StatusOK, session.View{
		Filter: filter,
		Query:  query,
		Tasks:  visible,
		Empty:  len(visible) == 0,
		Total:  len(all),
	})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.session.Add(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.session.Edit(r.Context(), id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

type toggleRequest struct {
	Completed *bool `json:"completed"`
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Completed == nil {
		respond.Validation(w, r, "completed", "completed is required")
		return
	}

	task, err := h.session.Toggle(r.Context(), id, *req.Completed)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.session.Remove(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.session.ClearCompleted(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]int{"removed": n})
}

func (h *TaskHandler) GetView(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.session.View())
}

type viewRequest struct {
	Filter *string `json:"filter"`
	Query  *string `json:"query"`
}

// SetView меняет фильтр сразу, а поиск - с задержкой; отвечает 202 и текущим видом
func (h *TaskHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Filter != nil {
		filter, err := model.ParseFilter(*req.Filter)
		if err != nil {
			h.handleErrors(w, r, fmt.Errorf("%w: %w", service.ErrValidation, err))
			return
		}
		h.session.SetFilter(filter)
	}
	if req.Query != nil {
		h.session.Search(*req.Query)
	}

	respond.JSON(w, r, http.StatusAccepted, h.session.View())
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, session.ErrCancelled):
		respond.Error(w, r, http.StatusConflict, "cancelled")
	case errors.Is(err, service.ErrValidation):
		respond.Validation(w, r, fieldOf(err), validationMessage(err))
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func fieldOf(err error) string {
	switch {
	case errors.Is(err, model.ErrTitleRequired):
		return "title"
	case errors.Is(err, model.ErrInvalidPriority):
		return "priority"
	case errors.Is(err, model.ErrInvalidDue):
		return "due"
	case errors.Is(err, model.ErrInvalidFilter):
		return "filter"
	default:
		return ""
	}
}

func validationMessage(err error) string {
	if errors.Is(err, model.ErrTitleRequired) {
		return "title is required"
	}
	// "validation error: invalid due date: \"x\"" -> "invalid due date: \"x\""
	var wrapped interface{ Unwrap() []error }
	if errors.As(err, &wrapped) {
		if errs := wrapped.Unwrap(); len(errs) == 2 {
			return errs[1].Error()
		}
	}
	return err.Error()
}
