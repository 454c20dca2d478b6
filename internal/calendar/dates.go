// Пакет calendar — календарные вычисления планировщика:
// границы недель, последовательности дней, ключи дат и праздники.
// Все функции чистые и безопасны для конкурентного вызова.
//
// Даты нормализуются к полуночи UTC: сравнение и ключи строятся по
// календарному дню, а не по моменту времени, что исключает сдвиги
// из-за часовых поясов.
package calendar

import (
	"fmt"
	"time"
)

// DateKeyLayout — формат канонического ключа даты.
const DateKeyLayout = "2006-01-02"

// Direction — направление навигации по неделям.
type Direction int

const (
	// Prev — назад во времени.
	Prev Direction = -1
	// Next — вперёд во времени.
	Next Direction = 1
)

// DefaultNavigationWeeks — шаг навигации по умолчанию.
const DefaultNavigationWeeks = 2

// Date возвращает дату (полночь UTC) для указанного календарного дня.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize отбрасывает время и часовой пояс, сохраняя календарный день.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// WeekStart возвращает понедельник недели, в которую попадает дата.
func WeekStart(date time.Time) time.Time {
	d := Normalize(date)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // воскресенье — последний день недели
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// GenerateDays возвращает ровно 7*numWeeks последовательных дней,
// начиная с понедельника недели start.
func GenerateDays(start time.Time, numWeeks int) []time.Time {
	if numWeeks <= 0 {
		return []time.Time{}
	}
	monday := WeekStart(start)
	days := make([]time.Time, 0, numWeeks*7)
	for i := 0; i < numWeeks*7; i++ {
		days = append(days, monday.AddDate(0, 0, i))
	}
	return days
}

// DateKey форматирует дату как YYYY-MM-DD.
func DateKey(date time.Time) string {
	return date.Format(DateKeyLayout)
}

// ParseDateKey разбирает строку YYYY-MM-DD. Любой другой формат — ошибка.
func ParseDateKey(key string) (time.Time, error) {
	if len(key) != len(DateKeyLayout) {
		return time.Time{}, fmt.Errorf("некорректная дата %q: ожидается формат YYYY-MM-DD", key)
	}
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("некорректная дата %q: ожидается формат YYYY-MM-DD", key)
	}
	return t, nil
}

// NavigateWeeks сдвигает дату на weeks недель в направлении dir.
// При weeks <= 0 используется шаг DefaultNavigationWeeks.
func NavigateWeeks(current time.Time, dir Direction, weeks int) time.Time {
	if weeks <= 0 {
		weeks = DefaultNavigationWeeks
	}
	if dir == Prev {
		weeks = -weeks
	}
	return Normalize(current).AddDate(0, 0, 7*weeks)
}

// IsWeekend — суббота или воскресенье.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateKeys форматирует срез дат в ключи.
func DateKeys(dates []time.Time) []string {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = DateKey(d)
	}
	return keys
}
