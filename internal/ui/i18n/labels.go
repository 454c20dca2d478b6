// labels.go — подписи дней недели и названия месяцев для сетки планировщика.
package i18n

import (
	"context"
	"strconv"
	"time"
)

// dayKeys — ключи каталога по time.Weekday (воскресенье — 0).
var dayKeys = [7]string{
	time.Sunday:    "day.sun",
	time.Monday:    "day.mon",
	time.Tuesday:   "day.tue",
	time.Wednesday: "day.wed",
	time.Thursday:  "day.thu",
	time.Friday:    "day.fri",
	time.Saturday:  "day.sat",
}

// DayLabel возвращает короткую подпись дня недели («Pn» … «Nd»).
func DayLabel(ctx context.Context, day time.Weekday) string {
	return T(ctx, dayKeys[day%7])
}

// MonthName возвращает название месяца («Styczeń» … «Grudzień»).
func MonthName(ctx context.Context, month time.Month) string {
	return T(ctx, "month."+strconv.Itoa(int(month)))
}
