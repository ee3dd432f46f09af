package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDue      = errors.New("invalid due date")
	ErrInvalidFilter   = errors.New("invalid filter")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority принимает токен из формы; пустая строка означает normal.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"desc"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Due         *time.Time `json:"due"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// UnmarshalJSON принимает due в любом формате ParseDue: браузерная версия
// хранит сырое значение <input type="datetime-local">, например "2024-12-05T18:30".
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Due *string `json:"due"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Due = nil
	if aux.Due != nil {
		due, err := ParseDue(*aux.Due)
		if err != nil {
			return fmt.Errorf("task %q: %w", t.ID, err)
		}
		t.Due = due
	}
	return nil
}

// Clone возвращает копию без общих указателей.
func (t Task) Clone() Task {
	if t.Due != nil {
		due := *t.Due
		t.Due = &due
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

// TaskInput - сырые значения полей формы создания/редактирования
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"desc"`
	Due         string `json:"due"`
	Priority    string `json:"priority"`
}

// TaskFields - провалидированные поля, которые меняют create и update
type TaskFields struct {
	Title       string
	Description string
	Due         *time.Time
	Priority    Priority
}

func (in TaskInput) Parse() (TaskFields, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return TaskFields{}, ErrTitleRequired
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return TaskFields{}, err
	}
	due, err := ParseDue(in.Due)
	if err != nil {
		return TaskFields{}, err
	}
	return TaskFields{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Due:         due,
		Priority:    priority,
	}, nil
}

var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04", // <input type="datetime-local">
	"2006-01-02",
}

// ParseDue разбирает срок; пустая строка - срока нет.
func ParseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			ts = ts.UTC()
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDue, s)
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// Match сообщает, проходит ли задача фильтр
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
