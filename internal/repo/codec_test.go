package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-list/internal/model"
)

func TestCollectionRoundTrip(t *testing.T) {
	created := time.Date(2025, 5, 1, 8, 0, 0, 123456789, time.UTC)
	due := time.Date(2025, 5, 3, 18, 30, 0, 0, time.UTC)
	doneAt := time.Date(2025, 5, 2, 9, 15, 0, 0, time.UTC)

	tasks := []model.Task{
		{
			ID:          "b",
			Title:       "Pay rent",
			Description: "before the 3rd",
			CreatedAt:   created.Add(time.Minute),
			UpdatedAt:   doneAt,
			Due:         &due,
			Priority:    model.PriorityHigh,
			Completed:   true,
			CompletedAt: &doneAt,
		},
		{
			ID:        "a",
			Title:     "Buy milk",
			CreatedAt: created,
			UpdatedAt: created,
			Priority:  model.PriorityNormal,
		},
	}

	raw, err := EncodeCollection(tasks)
	require.NoError(t, err)

	got, err := DecodeCollection(raw)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
	assert.Nil(t, got[1].Due)
	assert.Nil(t, got[1].CompletedAt)
}

func TestEncodeCollection_AbsentFieldsAreNull(t *testing.T) {
	raw, err := EncodeCollection([]model.Task{{ID: "a", Title: "t", Priority: model.PriorityLow}})
	require.NoError(t, err)
	assert.Contains(t, raw, `"due":null`)
	assert.Contains(t, raw, `"completedAt":null`)
	assert.Contains(t, raw, `"desc":""`)
}

func TestEncodeCollection_Empty(t *testing.T) {
	raw, err := EncodeCollection(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestDecodeCollection(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{name: "empty array", raw: "[]", wantLen: 0},
		{name: "json null", raw: "null", wantLen: 0},
		{
			name:    "browser blob",
			raw:     `[{"id":"lq2k1x9ab","title":"Buy milk","desc":"","createdAt":"2024-12-01T10:00:00.000Z","due":null,"priority":"normal","completed":false,"completedAt":null,"updatedAt":"2024-12-01T10:00:00.000Z"}]`,
			wantLen: 1,
		},
		{
			name: "browser blob with datetime-local due",
			raw: `[{"id":"lq2k1x9ab","title":"Dentist","desc":"","createdAt":"2024-12-01T10:00:00.000Z","due":"2024-12-05T18:30","priority":"high","completed":false,"completedAt":null,"updatedAt":"2024-12-01T10:00:00.000Z"},` +
				`{"id":"lq2k1x9ac","title":"Buy milk","desc":"2L","createdAt":"2024-12-01T09:00:00.000Z","due":null,"priority":"normal","completed":true,"completedAt":"2024-12-01T11:00:00.000Z","updatedAt":"2024-12-01T11:00:00.000Z"}]`,
			wantLen: 2,
		},
		{name: "unparseable due", raw: `[{"id":"a","title":"t","due":"someday"}]`, wantErr: true},
		{name: "truncated", raw: `[{"id":"a"`, wantErr: true},
		{name: "not an array", raw: `{"id":"a"}`, wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCollection(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestDecodeCollection_BrowserDueSurvivesRoundTrip(t *testing.T) {
	raw := `[{"id":"lq2k1x9ab","title":"Dentist","desc":"","createdAt":"2024-12-01T10:00:00.000Z","due":"2024-12-05T18:30","priority":"high","completed":false,"completedAt":null,"updatedAt":"2024-12-01T10:00:00.000Z"}]`

	got, err := DecodeCollection(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Due)
	assert.Equal(t, time.Date(2024, 12, 5, 18, 30, 0, 0, time.UTC), *got[0].Due)

	encoded, err := EncodeCollection(got)
	require.NoError(t, err)
	again, err := DecodeCollection(encoded)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}
