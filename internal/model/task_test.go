package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Priority
		wantErr bool
	}{
		{name: "empty defaults to normal", in: "", want: PriorityNormal},
		{name: "low", in: "low", want: PriorityLow},
		{name: "upper case high", in: " HIGH ", want: PriorityHigh},
		{name: "unknown token", in: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPriority)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty means no deadline", in: "  "},
		{name: "datetime-local", in: "2025-03-01T09:30", want: ptr(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))},
		{name: "date only", in: "2025-03-01", want: ptr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339 with offset", in: "2025-03-01T12:00:00+03:00", want: ptr(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))},
		{name: "garbage", in: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDue(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDue)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestTaskInput_Parse(t *testing.T) {
	fields, err := TaskInput{
		Title:       "  Buy milk \n",
		Description: "  two liters ",
		Priority:    "high",
	}.Parse()
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", fields.Title)
	assert.Equal(t, "two liters", fields.Description)
	assert.Equal(t, PriorityHigh, fields.Priority)
	assert.Nil(t, fields.Due)

	_, err = TaskInput{Title: " \t "}.Parse()
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = TaskInput{Title: "ok", Due: "soon"}.Parse()
	assert.ErrorIs(t, err, ErrInvalidDue)
}

func TestFilter(t *testing.T) {
	open := Task{ID: "a"}
	done := Task{ID: "b", Completed: true}

	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	assert.True(t, FilterAll.Match(open))
	assert.True(t, FilterAll.Match(done))
	assert.True(t, FilterActive.Match(open))
	assert.False(t, FilterActive.Match(done))
	assert.False(t, FilterCompleted.Match(open))
	assert.True(t, FilterCompleted.Match(done))

	_, err = ParseFilter("archived")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestTask_Clone(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := Task{ID: "x", Due: &due}

	cp := orig.Clone()
	*cp.Due = cp.Due.Add(time.Hour)

	assert.Equal(t, due, *orig.Due)
}

func TestTask_UnmarshalJSON_Due(t *testing.T) {
	tests := []struct {
		name    string
		due     string
		want    *time.Time
		wantErr bool
	}{
		{name: "null", due: `null`},
		{name: "datetime-local", due: `"2024-12-05T18:30"`, want: ptr(time.Date(2024, 12, 5, 18, 30, 0, 0, time.UTC))},
		{name: "date only", due: `"2024-12-05"`, want: ptr(time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", due: `"2024-12-05T18:30:00Z"`, want: ptr(time.Date(2024, 12, 5, 18, 30, 0, 0, time.UTC))},
		{name: "garbage", due: `"tomorrow"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"id":"a","title":"Dentist","createdAt":"2024-12-01T10:00:00.000Z","due":` + tt.due + `,"priority":"high"}`

			var task Task
			err := json.Unmarshal([]byte(raw), &task)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", task.ID)
			assert.Equal(t, "Dentist", task.Title)
			assert.Equal(t, PriorityHigh, task.Priority)
			assert.Equal(t, time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC), task.CreatedAt)
			assert.Equal(t, tt.want, task.Due)
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
