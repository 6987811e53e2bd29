package util

import "time"

// DaysPerPlannerWeek is the width of a planner week column
const DaysPerPlannerWeek = 7

// WeekOfMonth returns the 1-based planner week containing the given day of month.
// Days 1-7 are week 1, 8-14 week 2, 15-21 week 3, 22-28 week 4 and 29-31 week 5.
func WeekOfMonth(day int) int {
	if day < 1 {
		return 1
	}
	week := (day-1)/DaysPerPlannerWeek + 1
	if week > 5 {
		return 5
	}
	return week
}

// CurrentBudgetWeek returns the planner week the given time falls in
func CurrentBudgetWeek(now time.Time) int {
	return WeekOfMonth(now.Day())
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the next date on or after now that falls on due's month and day.
// Annual expenses keep their original date string; only the month/day recur.
func NextOccurrence(due, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candidate := CalculateActualDate(today.Year(), due.Month(), due.Day())
	if candidate.Before(today) {
		candidate = CalculateActualDate(today.Year()+1, due.Month(), due.Day())
	}
	return candidate
}

// MonthsUntil counts whole calendar months from now until target, minimum 1.
// A target later in the current month counts as one month.
func MonthsUntil(now, target time.Time) int {
	months := (target.Year()-now.Year())*12 + int(target.Month()) - int(now.Month())
	if months < 1 {
		return 1
	}
	return months
}
