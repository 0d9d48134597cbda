package branch

import (
	"order_lifecycle/internal/model"
	"time"
)

// OpenBySchedule проверяет, попадает ли момент в активное окно расписания на этот день недели.
// Окно с началом позже конца переходит через полночь.
func OpenBySchedule(schedule []model.ScheduleEntry, at time.Time) bool {
	day := model.WeekdayOf(at.Weekday())
	t := model.ClockOf(at)

	for _, e := range schedule {
		if !e.IsActive || e.DayOfWeek != day {
			continue
		}
		if windowContains(e, t) {
			return true
		}
	}
	return false
}

func windowContains(e model.ScheduleEntry, t model.ClockTime) bool {
	switch {
	case e.StartTime < e.EndTime:
		return e.StartTime <= t && t <= e.EndTime
	case e.StartTime > e.EndTime:
		return t >= e.StartTime || t <= e.EndTime
	default:
		return false
	}
}
