package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
)

// isUUID проверяет строковый идентификатор.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// uniqueStrings убирает повторы, сохраняя порядок первого вхождения.
func uniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		result = append(result, it)
	}
	return result
}

// parseDateKeys разбирает ключи YYYY-MM-DD с семантикой множества.
// Некорректные ключи добавляются в verr под полем field.
func parseDateKeys(keys []string, field string, verr *ValidationError) []time.Time {
	keys = uniqueStrings(keys)
	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := calendar.ParseDateKey(k)
		if err != nil {
			verr.Add(field, "некорректная дата "+k+": ожидается формат YYYY-MM-DD")
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// foreignKeyField переводит столбец БД в имя поля API.
func foreignKeyField(column string) string {
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "id" {
			parts[i] = "Id"
			continue
		}
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
