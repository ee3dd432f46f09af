package repo

import (
	"encoding/json"
	"fmt"

	"github.com/BuzzLyutic/task-list/internal/model"
)

// EncodeCollection сериализует всю коллекцию в JSON-массив.
// Пустые due/completedAt пишутся как null.
func EncodeCollection(tasks []model.Task) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode collection: %w", err)
	}
	return string(data), nil
}

// DecodeCollection разбирает значение, записанное EncodeCollection (или браузерной версией).
func DecodeCollection(raw string) ([]model.Task, error) {
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}
