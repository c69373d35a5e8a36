// Package schedule holds the pure date arithmetic behind recurring
// transaction projection and budget period windows. Nothing in here
// touches the database or the clock; callers pass "now" in.
package schedule

import (
	"time"

	"smartwallet/internal/models"
)

// NextDate returns the occurrence that follows date for the given
// frequency. Month and year steps use calendar arithmetic, so a rule
// anchored on Jan 31 advanced monthly normalizes into early March the
// same way the platform date libraries do. Unrecognized frequencies
// fall back to monthly.
func NextDate(date time.Time, frequency models.Frequency) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return date.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return date.AddDate(0, 0, 7)
	case models.FrequencyBiweekly:
		return date.AddDate(0, 0, 14)
	case models.FrequencyYearly:
		return date.AddDate(1, 0, 0)
	default:
		return date.AddDate(0, 1, 0)
	}
}

// PeriodWindow returns the inclusive [start, end] range a budget of the
// given period covers at the instant now. Weekly windows begin on the
// most recent Sunday at midnight local time, monthly on the first of the
// month, yearly on January 1. Unrecognized periods are treated as
// monthly. The end of the window is always now itself.
func PeriodWindow(period models.BudgetPeriod, now time.Time) (time.Time, time.Time) {
	var start time.Time
	switch period {
	case models.BudgetPeriodWeekly:
		sunday := now.AddDate(0, 0, -int(now.Weekday()))
		start = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, now.Location())
	case models.BudgetPeriodYearly:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return start, now
}
