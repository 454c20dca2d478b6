// holidays.go — праздники по годам с LRU-кэшем.
// Каждая отрисовка сетки планировщика запрашивает праздники своих лет,
// поэтому вычисленные множества хранятся в кэше.
package service

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
)

// Prometheus-метрики кэша праздников.
var (
	holidayCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pl_holiday_cache_hits_total",
		Help: "Общее количество попаданий в кэш праздников.",
	})
	holidayCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pl_holiday_cache_misses_total",
		Help: "Общее количество промахов кэша праздников.",
	})
)

// HolidayService — праздники Польши по годам.
type HolidayService struct {
	cache *lru.Cache[int, calendar.HolidaySet]
}

// NewHolidayService создаёт сервис с кэшем на size лет.
func NewHolidayService(size int) (*HolidayService, error) {
	cache, err := lru.New[int, calendar.HolidaySet](size)
	if err != nil {
		return nil, fmt.Errorf("создание кэша праздников: %w", err)
	}
	return &HolidayService{cache: cache}, nil
}

// Year возвращает отсортированные ключи праздников года.
// Год вне диапазона MinYear..MaxYear — ошибка валидации.
func (s *HolidayService) Year(year int) ([]string, error) {
	if err := calendar.ValidYear(year); err != nil {
		return nil, NewValidationError("year", err.Error())
	}
	return s.yearSet(year).Keys(), nil
}

// Range возвращает множество праздников всех лет, которые затрагивает
// период [from, to]. Годы вне допустимого диапазона пропускаются.
func (s *HolidayService) Range(from, to time.Time) calendar.HolidaySet {
	set := make(calendar.HolidaySet)
	for y := from.Year(); y <= to.Year(); y++ {
		if calendar.ValidYear(y) != nil {
			continue
		}
		set.Merge(s.yearSet(y))
	}
	return set
}

// yearSet возвращает множество из кэша. Результат только для чтения.
func (s *HolidayService) yearSet(year int) calendar.HolidaySet {
	if set, ok := s.cache.Get(year); ok {
		holidayCacheHitsTotal.Inc()
		return set
	}
	holidayCacheMissesTotal.Inc()

	set := calendar.NewHolidaySet(year)
	s.cache.Add(year, set)
	return set
}
