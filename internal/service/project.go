package service

import (
	"strings"

	"github.com/BuzzLyutic/task-list/internal/model"
)

// Project отбирает задачи по фильтру и строке поиска, сохраняя исходный порядок.
// Поиск - подстрока без учета регистра в "title desc"; пустой запрос пропускает все.
func Project(tasks []model.Task, filter model.Filter, query string) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Match(t) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), q) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}
