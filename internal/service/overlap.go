package service

import (
	"time"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

// Overlaps reports whether two same-day windows conflict. Boundaries are closed:
// 10:00-11:00 and 11:00-12:00 overlap.
func Overlaps(aStart, aEnd, bStart, bEnd models.ClockTime) bool {
	return aStart <= bEnd && aEnd >= bStart
}

// SchedulesOverlap reports whether two schedules share a day and overlap in time.
func SchedulesOverlap(a, b models.ClassSchedule) bool {
	if a.Day != b.Day {
		return false
	}
	return Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
}

func validateClassDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return appErrors.Clone(appErrors.ErrValidation, "class end date must not be before start date")
	}
	return nil
}
