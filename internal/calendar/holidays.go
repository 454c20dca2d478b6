package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Допустимый диапазон лет для расчёта праздников.
// Проверяется вызывающей стороной (ValidYear), сам расчёт ошибок не имеет.
const (
	MinYear = 2000
	MaxYear = 2100
)

// Смещения подвижных праздников от Пасхи (в днях).
const (
	easterMondayOffset   = 1
	pentecostOffset      = 49
	corpusChristiOffset  = 60
	holidaysPerYearCount = 13
)

// fixedHoliday — праздник с фиксированной датой.
type fixedHoliday struct {
	month time.Month
	day   int
}

// fixedHolidays — государственные праздники Польши с фиксированной датой.
var fixedHolidays = []fixedHoliday{
	{time.January, 1},   // Новый год
	{time.January, 6},   // Богоявление
	{time.May, 1},       // Праздник труда
	{time.May, 3},       // День Конституции
	{time.August, 15},   // Успение
	{time.November, 1},  // День всех святых
	{time.November, 11}, // День независимости
	{time.December, 25}, // Рождество
	{time.December, 26}, // Второй день Рождества
}

// ValidYear проверяет, что год лежит в диапазоне MinYear..MaxYear.
func ValidYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("год %d вне допустимого диапазона %d-%d", year, MinYear, MaxYear)
	}
	return nil
}

// Easter вычисляет дату Пасхи (григорианский календарь)
// анонимным алгоритмом Гаусса/Мииса/Бучера в целых числах.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return Date(year, time.Month(month), day)
}

// Holidays возвращает упорядоченный по возрастанию список
// из 13 праздничных дат года: фиксированные праздники, Пасха,
// Пасхальный понедельник, Троица (+49) и Праздник Тела Христова (+60).
func Holidays(year int) []time.Time {
	easter := Easter(year)

	days := make([]time.Time, 0, holidaysPerYearCount)
	for _, h := range fixedHolidays {
		days = append(days, Date(year, h.month, h.day))
	}
	days = append(days,
		easter,
		easter.AddDate(0, 0, easterMondayOffset),
		easter.AddDate(0, 0, pentecostOffset),
		easter.AddDate(0, 0, corpusChristiOffset),
	)

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// HolidaySet — множество праздников по ключу YYYY-MM-DD.
type HolidaySet map[string]struct{}

// NewHolidaySet строит множество праздников для указанных лет.
func NewHolidaySet(years ...int) HolidaySet {
	set := make(HolidaySet, len(years)*holidaysPerYearCount)
	for _, y := range years {
		set.Add(Holidays(y)...)
	}
	return set
}

// Add добавляет даты в множество.
func (s HolidaySet) Add(dates ...time.Time) {
	for _, d := range dates {
		s[DateKey(Normalize(d))] = struct{}{}
	}
}

// Merge добавляет в множество все ключи другого множества.
func (s HolidaySet) Merge(other HolidaySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Contains проверяет принадлежность даты по календарному дню.
func (s HolidaySet) Contains(date time.Time) bool {
	_, ok := s[DateKey(Normalize(date))]
	return ok
}

// Keys возвращает отсортированные ключи множества.
func (s HolidaySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsNonWorkingDay — выходной или праздник.
func IsNonWorkingDay(date time.Time, holidays HolidaySet) bool {
	return IsWeekend(date) || holidays.Contains(date)
}

// WorkingDays фильтрует рабочие дни, сохраняя порядок.
// Результат — индексное пространство для выделения диапазона дат.
func WorkingDays(days []time.Time, holidays HolidaySet) []time.Time {
	result := make([]time.Time, 0, len(days))
	for _, d := range days {
		if !IsNonWorkingDay(d, holidays) {
			result = append(result, d)
		}
	}
	return result
}
